// Package pipeline orchestrates the load, validate and execute workflow stages.
package pipeline

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/retroenv/retrobf/internal/app"
	"github.com/retroenv/retrobf/internal/detector"
	"github.com/retroenv/retrobf/internal/loader"
	"github.com/retroenv/retrobf/internal/options"
	"github.com/retroenv/retrobf/internal/vm"
	"github.com/retroenv/retrogolib/log"
)

// Process exit codes.
const (
	ExitSuccess     = 0
	ExitNotFound    = 1
	ExitEmpty       = 2
	ExitInvalid     = 3
	ExitFault       = 4
	ExitConfig      = 5
	ExitInterrupted = 130
)

const cancelCheckInterval = 4096

// Pipeline orchestrates the complete execution workflow.
type Pipeline struct {
	logger   *log.Logger
	detector *detector.Detector
	loader   *loader.Loader

	input  io.Reader
	output io.Writer
}

// New creates a new execution pipeline. Program output is written to output
// and program input is read from input.
func New(logger *log.Logger, input io.Reader, output io.Writer) *Pipeline {
	return &Pipeline{
		logger:   logger,
		detector: detector.New(logger),
		loader:   loader.New(),
		input:    input,
		output:   output,
	}
}

// Execute loads the program file named in the options and runs it.
func (p *Pipeline) Execute(ctx context.Context, opts options.Program) (vm.State, error) {
	if !p.loader.Exists(opts.Input) {
		return vm.State{}, fmt.Errorf("loading program: %w: %s", loader.ErrNotFound, opts.Input)
	}
	program, err := p.loader.Load(opts.Input)
	if err != nil {
		return vm.State{}, fmt.Errorf("loading program: %w", err)
	}

	dialect := p.detector.Detect(opts)
	return p.ExecuteProgram(ctx, program, opts, dialect)
}

// ExecuteProgram runs an in-memory program until it stops or the context
// is cancelled. This is useful for testing and programmatic usage.
func (p *Pipeline) ExecuteProgram(ctx context.Context, program []byte, opts options.Program,
	dialect vm.Dialect) (vm.State, error) {

	app.PrintInfo(p.logger, opts, program, dialect)

	out := bufio.NewWriter(p.output)
	machineOpts := opts.Machine(dialect)
	machineOpts.Output = out
	machineOpts.Input = &flushingReader{
		ctx:    ctx,
		reader: bufio.NewReader(p.input),
		writer: out,
	}

	machine, err := vm.New(program, machineOpts)
	if err != nil {
		return vm.State{}, fmt.Errorf("validating program: %w", err)
	}
	defer machine.Destroy()

	if opts.Trace {
		err = p.trace(ctx, machine)
	} else {
		err = machine.Run(ctx)
	}

	if flushErr := out.Flush(); flushErr != nil && err == nil {
		err = fmt.Errorf("writing output: %w", flushErr)
	}

	state := machine.State()
	app.PrintSummary(p.logger, state)
	if err != nil {
		return state, fmt.Errorf("executing program: %w", err)
	}
	return state, nil
}

// trace ticks the machine and logs every instruction before it is executed.
func (p *Pipeline) trace(ctx context.Context, machine *vm.VM) error {
	for {
		state := machine.State()
		if ins, ok := machine.Current(); ok {
			cell, _ := machine.Cell(state.TP)
			p.logger.Debug("Tick",
				log.Int("pc", state.PC),
				log.String("op", ins.Name()),
				log.Int("tp", state.TP),
				log.Uint8("cell", cell),
				log.Int("ld", state.LD),
			)
		}

		if !machine.Tick() {
			return machine.Err()
		}
		if state.Ticks%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
	}
}

// ExitCode maps an error returned by the pipeline to a process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, context.Canceled):
		return ExitInterrupted
	case errors.Is(err, loader.ErrNotFound):
		return ExitNotFound
	case errors.Is(err, loader.ErrEmpty):
		return ExitEmpty
	}

	kind := vm.KindOf(err)
	switch {
	case kind == vm.ErrKindEmptyProgram:
		return ExitEmpty
	case kind.IsLoadError():
		return ExitInvalid
	default:
		return ExitFault
	}
}

// flushingReader flushes pending program output before it blocks on input,
// so that prompts are visible before the program waits for a byte. A read
// that would block runs in its own goroutine and is abandoned when the
// context is cancelled. The abandoned read stays pending and its result is
// delivered to the next read.
type flushingReader struct {
	ctx     context.Context
	reader  *bufio.Reader
	writer  *bufio.Writer
	pending chan readResult
}

type readResult struct {
	b   byte
	err error
}

func (r *flushingReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	b, err := r.ReadByte()
	if err != nil {
		return 0, err
	}
	p[0] = b
	return 1, nil
}

func (r *flushingReader) ReadByte() (byte, error) {
	if err := r.writer.Flush(); err != nil {
		return 0, err
	}

	if r.pending == nil {
		if r.reader.Buffered() > 0 {
			return r.reader.ReadByte()
		}
		if err := r.ctx.Err(); err != nil {
			return 0, err
		}

		result := make(chan readResult, 1)
		go func() {
			b, err := r.reader.ReadByte()
			result <- readResult{b: b, err: err}
		}()
		r.pending = result
	}

	select {
	case res := <-r.pending:
		r.pending = nil
		return res.b, res.err
	case <-r.ctx.Done():
		return 0, r.ctx.Err()
	}
}
