package vm

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
)

const (
	// DefaultTapeSize is the classic tape length of 30000 cells.
	DefaultTapeSize = 30000

	// DefaultEOF is the value stored by the input instruction when the input
	// stream is exhausted. It is the C EOF value -1 truncated to a byte.
	DefaultEOF = 0xff

	cancelCheckInterval = 4096
)

// Status describes whether the machine can be ticked and why it stopped.
type Status int

// Machine states.
const (
	StatusRunning   Status = iota // more instructions can be executed
	StatusFinished                // program counter reached the end of the program
	StatusHalted                  // a halt instruction was executed
	StatusFaulted                 // an execution fault occurred
	StatusInvalid                 // program failed validation, execution is refused
	StatusDestroyed               // buffers have been released
)

var statusNames = map[Status]string{
	StatusRunning:   "running",
	StatusFinished:  "finished",
	StatusHalted:    "halted",
	StatusFaulted:   "faulted",
	StatusInvalid:   "invalid",
	StatusDestroyed: "destroyed",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Options controls construction of a machine.
type Options struct {
	TapeSize  int     // number of tape cells
	Dialect   Dialect // instruction set used to decode the program
	Strict    bool    // reject bytes that are not instructions instead of skipping them
	JumpTable bool    // precompute bracket partners instead of scanning at runtime
	EOF       byte    // value stored by the input instruction at end of stream

	Input  io.Reader // defaults to os.Stdin
	Output io.Writer // defaults to os.Stdout
}

// NewOptions returns the default machine options.
func NewOptions() Options {
	return Options{
		TapeSize: DefaultTapeSize,
		Dialect:  Classic,
		EOF:      DefaultEOF,
	}
}

// State is a snapshot of the scalar registers of a machine.
type State struct {
	PC     int    // index of the next instruction
	TP     int    // tape pointer
	LD     int    // loop entries minus loop exits
	ST     byte   // auxiliary store register
	Ticks  uint64 // instructions executed since construction or reset
	Status Status
}

// VM is a tape machine executing a single program. It is not safe for
// concurrent use, independent machines do not share any state.
type VM struct {
	program []byte
	tape    []byte
	set     *InstructionSet
	jumps   []int
	opts    Options

	in  io.ByteReader
	out io.Writer
	buf [1]byte

	pc    int
	tp    int
	ld    int
	st    byte
	ticks uint64

	status Status
	err    error
}

// New copies the program, allocates a zeroed tape and validates the program.
// A program that fails validation returns an error and no machine.
func New(program []byte, opts Options) (*VM, error) {
	v, err := newMachine(program, opts)
	if err != nil {
		return nil, err
	}
	if err := v.Validate(); err != nil {
		return nil, err
	}
	return v, nil
}

func newMachine(program []byte, opts Options) (*VM, error) {
	if len(program) == 0 {
		return nil, newError(ErrKindEmptyProgram, -1)
	}
	if opts.TapeSize < 1 {
		return nil, newError(ErrKindInvalidTapeSize, -1)
	}

	v := &VM{
		program: append([]byte(nil), program...),
		tape:    make([]byte, opts.TapeSize),
		set:     opts.Dialect.set(),
		opts:    opts,
	}

	input := opts.Input
	if input == nil {
		input = os.Stdin
	}
	if br, ok := input.(io.ByteReader); ok {
		v.in = br
	} else {
		v.in = bufio.NewReaderSize(input, 16)
	}

	v.out = opts.Output
	if v.out == nil {
		v.out = os.Stdout
	}

	v.Reset()
	return v, nil
}

// Validate checks the program again and builds the jump table if enabled.
// On failure the machine refuses any further execution.
func (v *VM) Validate() error {
	if v.status == StatusDestroyed {
		return newError(ErrKindRefused, -1)
	}
	if err := validate(v.program, v.set, v.opts.Strict); err != nil {
		v.status = StatusInvalid
		v.err = err
		return err
	}
	if v.opts.JumpTable && v.jumps == nil {
		v.jumps = buildJumpTable(v.program, v.set)
	}
	return nil
}

// Reset zeroes the tape and all registers so that the program can be
// executed again. It does not validate the program again and does not
// lift the refusal of an invalid or destroyed machine.
func (v *VM) Reset() {
	if v.status == StatusDestroyed {
		return
	}
	clear(v.tape)
	v.pc = 0
	v.tp = 0
	v.ld = 0
	v.st = 0
	v.ticks = 0
	if v.status != StatusInvalid {
		v.status = StatusRunning
		v.err = nil
	}
}

// Tick executes one instruction. It returns false once the machine stopped:
// the program counter is past the end, a halt instruction was executed,
// an execution fault occurred or the machine refuses to run. Err returns
// the fault if there was one.
func (v *VM) Tick() bool {
	if v.status != StatusRunning {
		return false
	}
	if v.pc >= len(v.program) {
		v.status = StatusFinished
		return false
	}

	ins := v.set.Lookup(v.program[v.pc])
	v.ticks++
	if err := v.execute(ins); err != nil {
		v.status = StatusFaulted
		v.err = err
		return false
	}
	return v.status == StatusRunning
}

// Run ticks the machine until it stops or the context is cancelled.
// It returns the execution fault, the context error or nil.
func (v *VM) Run(ctx context.Context) error {
	for v.Tick() {
		if v.ticks%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
	}
	return v.Err()
}

// Destroy releases the program and the tape. The machine can not be used
// afterwards.
func (v *VM) Destroy() {
	v.program = nil
	v.tape = nil
	v.jumps = nil
	v.status = StatusDestroyed
	v.err = newError(ErrKindRefused, -1)
}

// Err returns the error that stopped the machine, nil if it is running or
// stopped regularly.
func (v *VM) Err() error {
	return v.err
}

// Status returns the current machine status.
func (v *VM) Status() Status {
	return v.status
}

// State returns a snapshot of the registers.
func (v *VM) State() State {
	return State{
		PC:     v.pc,
		TP:     v.tp,
		LD:     v.ld,
		ST:     v.st,
		Ticks:  v.ticks,
		Status: v.status,
	}
}

// Current returns the instruction at the program counter. The second return
// value is false if the program counter is past the end of the program.
func (v *VM) Current() (Instruction, bool) {
	if v.pc >= len(v.program) {
		return Unbound, false
	}
	return v.set.Lookup(v.program[v.pc]), true
}

// Cell returns the value of the tape cell at index i. The second return
// value is false if i is outside the tape or the machine was destroyed.
func (v *VM) Cell(i int) (byte, bool) {
	if i < 0 || i >= len(v.tape) {
		return 0, false
	}
	return v.tape[i], true
}

// Tape returns a copy of the tape.
func (v *VM) Tape() []byte {
	return append([]byte(nil), v.tape...)
}

// Program returns a copy of the program.
func (v *VM) Program() []byte {
	return append([]byte(nil), v.program...)
}

// Dialect returns the dialect the program is decoded with.
func (v *VM) Dialect() Dialect {
	return v.opts.Dialect
}
