package vm

import (
	"fmt"
	"strings"
)

// Instruction is the decoded meaning of a single program byte.
type Instruction uint8

// Instructions of the classic and the extended dialect.
const (
	Unbound Instruction = iota // byte has no meaning in the active dialect

	MoveRight
	MoveLeft
	Increment
	Decrement
	Output
	Input
	LoopOpen
	LoopClose

	Halt
	StorePosition
	RecallPosition
	ShiftRight
	ShiftLeft
	Not
	Xor
	And
	Or
)

type instructionInfo struct {
	name     string
	char     byte
	extended bool
}

var instructionInfos = [...]instructionInfo{
	Unbound:        {name: "unbound"},
	MoveRight:      {name: "right", char: '>'},
	MoveLeft:       {name: "left", char: '<'},
	Increment:      {name: "inc", char: '+'},
	Decrement:      {name: "dec", char: '-'},
	Output:         {name: "out", char: '.'},
	Input:          {name: "in", char: ','},
	LoopOpen:       {name: "open", char: '['},
	LoopClose:      {name: "close", char: ']'},
	Halt:           {name: "halt", char: '@', extended: true},
	StorePosition:  {name: "store", char: '$', extended: true},
	RecallPosition: {name: "recall", char: '=', extended: true},
	ShiftRight:     {name: "shr", char: '}', extended: true},
	ShiftLeft:      {name: "shl", char: '{', extended: true},
	Not:            {name: "not", char: '~', extended: true},
	Xor:            {name: "xor", char: '^', extended: true},
	And:            {name: "and", char: '&', extended: true},
	Or:             {name: "or", char: '|', extended: true},
}

// Name returns the mnemonic of the instruction.
func (i Instruction) Name() string {
	if int(i) >= len(instructionInfos) {
		return fmt.Sprintf("instruction(%d)", i)
	}
	return instructionInfos[i].name
}

// Char returns the program byte that encodes the instruction,
// or 0 for Unbound.
func (i Instruction) Char() byte {
	if int(i) >= len(instructionInfos) {
		return 0
	}
	return instructionInfos[i].char
}

// IsExtended returns whether the instruction only exists in the extended dialect.
func (i Instruction) IsExtended() bool {
	if int(i) >= len(instructionInfos) {
		return false
	}
	return instructionInfos[i].extended
}

func (i Instruction) String() string {
	return i.Name()
}

// Dialect selects the instruction set that a program is decoded with.
type Dialect int

// Supported dialects.
const (
	Classic Dialect = iota
	Extended
)

// DialectFromString parses a dialect name. An empty name returns Classic
// and false so that callers can fall back to auto detection.
func DialectFromString(name string) (Dialect, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "classic", "bf", "brainfuck":
		return Classic, true
	case "extended", "bfx":
		return Extended, true
	default:
		return Classic, false
	}
}

func (d Dialect) String() string {
	switch d {
	case Classic:
		return "classic"
	case Extended:
		return "extended"
	default:
		return fmt.Sprintf("dialect(%d)", int(d))
	}
}

// InstructionSet maps every possible program byte to an instruction.
type InstructionSet [256]Instruction

// Lookup returns the instruction encoded by b.
func (s *InstructionSet) Lookup(b byte) Instruction {
	return s[b]
}

var (
	classicSet  = buildInstructionSet(false)
	extendedSet = buildInstructionSet(true)
)

// Set returns the instruction set of the dialect. The returned table is a
// copy, modifying it does not affect running machines.
func (d Dialect) Set() InstructionSet {
	return *d.set()
}

func (d Dialect) set() *InstructionSet {
	if d == Extended {
		return &extendedSet
	}
	return &classicSet
}

func buildInstructionSet(extended bool) InstructionSet {
	var set InstructionSet
	for i, info := range instructionInfos {
		ins := Instruction(i)
		if ins == Unbound || (info.extended && !extended) {
			continue
		}
		set[info.char] = ins
	}
	return set
}
