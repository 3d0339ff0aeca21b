// Package cli handles command line interface logic
package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/retroenv/retrobf/internal/options"
	"github.com/retroenv/retrobf/internal/vm"
)

// ParseFlags parses command line flags and returns the program options.
func ParseFlags() (options.Program, error) {
	flags := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	flags.SetOutput(io.Discard)

	opts := options.NewProgram()
	readOptionFlags(flags, &opts)

	err := flags.Parse(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return opts, &UsageError{flags: flags}
	}
	if err != nil {
		return opts, &UsageError{flags: flags, msg: err.Error()}
	}

	args := flags.Args()
	if len(args) == 0 {
		return opts, &UsageError{flags: flags}
	}
	if err := validateArgs(args); err != nil {
		return opts, err
	}
	opts.Input = args[0]

	flags.Visit(func(f *flag.Flag) {
		opts.SetFlags[f.Name] = true
	})
	if opts.Trace {
		opts.Debug = true
	}

	if err := ValidateOptions(opts); err != nil {
		return opts, err
	}
	return opts, nil
}

// UsageError represents an error that should show usage information.
// An empty message means that only usage was requested.
type UsageError struct {
	flags *flag.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

// UsageOnly returns whether the invocation did not contain an actual error.
func (e *UsageError) UsageOnly() bool {
	return e.msg == ""
}

// ShowUsage prints the usage and the flag defaults.
func (e *UsageError) ShowUsage() {
	fmt.Printf("usage: retrobf [options] <program file>\n\n")
	if e.flags != nil {
		e.flags.SetOutput(os.Stdout)
		e.flags.PrintDefaults()
	}
	fmt.Println()
}

// ValidateOptions checks option values that the flag package can not check.
func ValidateOptions(opts options.Program) error {
	if opts.Dialect != "" {
		if _, ok := vm.DialectFromString(opts.Dialect); !ok {
			return fmt.Errorf("unsupported dialect: %s. Valid options: classic, extended", opts.Dialect)
		}
	}
	if opts.TapeSize < 1 {
		return fmt.Errorf("invalid tape size %d, must be at least 1", opts.TapeSize)
	}
	if opts.EOF > 0xff {
		return fmt.Errorf("invalid eof value %d, must fit into a byte", opts.EOF)
	}
	return nil
}

// validateArgs checks if arguments are in correct order
func validateArgs(args []string) error {
	for i, arg := range args {
		if i > 0 && arg != "" && arg[0] == '-' {
			return &UsageError{
				msg: fmt.Sprintf("Potential argument %s found after program file, please pass the program file as last argument", arg),
			}
		}
	}
	if len(args) > 1 {
		return &UsageError{msg: fmt.Sprintf("only one program file is supported, got %d", len(args))}
	}
	return nil
}

func readOptionFlags(flags *flag.FlagSet, opts *options.Program) {
	flags.StringVar(&opts.Config, "c", "", "name of a TOML configuration file with a [vm] table")
	flags.StringVar(&opts.Dialect, "d", "", "instruction dialect (classic/extended) - if not auto-detected from file extension")
	flags.BoolVar(&opts.Strict, "strict", false, "reject bytes that are not instructions instead of skipping them as comments")
	flags.BoolVar(&opts.JumpTable, "jumptable", false, "precompute bracket jump targets when loading the program")
	flags.IntVar(&opts.TapeSize, "tape", opts.TapeSize, "number of tape cells")
	flags.UintVar(&opts.EOF, "eof", opts.EOF, "cell value stored by the input instruction when input is exhausted")
	flags.BoolVar(&opts.Trace, "trace", false, "log every executed instruction, implies -debug")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debugging options for extended logging")
	flags.BoolVar(&opts.Quiet, "q", false, "perform operations quietly")
}
