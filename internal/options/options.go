// Package options contains the program options.
package options

import (
	"github.com/retroenv/retrobf/internal/vm"
)

// Parameters contains file path options.
type Parameters struct {
	Input  string `arg:"positional" usage:"program file to execute"`
	Config string `flag:"c" usage:"TOML configuration file"`
}

// Flags contains behavior options.
type Flags struct {
	Dialect   string `flag:"d" usage:"dialect: classic, extended (default: auto-detect)"`
	Strict    bool   `flag:"strict" usage:"reject bytes that are not instructions"`
	JumpTable bool   `flag:"jumptable" usage:"precompute bracket jump targets"`
	TapeSize  int    `flag:"tape" usage:"number of tape cells" default:"30000"`
	EOF       uint   `flag:"eof" usage:"cell value stored when input is exhausted" default:"255"`
	Trace     bool   `flag:"trace" usage:"log every executed instruction"`
	Debug     bool   `flag:"debug" usage:"enable debug logging"`
	Quiet     bool   `flag:"q" usage:"quiet mode"`
}

// Program options of the interpreter.
type Program struct {
	Parameters
	Flags

	// SetFlags contains the names of flags passed on the command line.
	SetFlags map[string]bool
}

// NewProgram returns a new options instance with default options.
func NewProgram() Program {
	return Program{
		Flags: Flags{
			TapeSize: vm.DefaultTapeSize,
			EOF:      vm.DefaultEOF,
		},
		SetFlags: map[string]bool{},
	}
}

// IsSet returns whether the flag with the given name was passed explicitly.
func (p Program) IsSet(name string) bool {
	return p.SetFlags[name]
}

// Machine returns the machine options for the given dialect. Input and
// output streams are left to the caller.
func (p Program) Machine(dialect vm.Dialect) vm.Options {
	opts := vm.NewOptions()
	opts.Dialect = dialect
	opts.TapeSize = p.TapeSize
	opts.Strict = p.Strict
	opts.JumpTable = p.JumpTable
	opts.EOF = byte(p.EOF)
	return opts
}
