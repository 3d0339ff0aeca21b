// Package main implements a Brainfuck program validator
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/retroenv/retrobf/internal/config"
	"github.com/retroenv/retrobf/internal/detector"
	"github.com/retroenv/retrobf/internal/loader"
	"github.com/retroenv/retrobf/internal/options"
	"github.com/retroenv/retrobf/internal/pipeline"
	"github.com/retroenv/retrobf/internal/vm"
	"github.com/retroenv/retrogolib/buildinfo"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

type optionFlags struct {
	files   []string
	dialect string
	strict  bool
	quiet   bool
}

func main() {
	o := readArguments()

	if !o.quiet {
		printBanner()
	}

	os.Exit(checkFiles(os.Stdout, o))
}

func readArguments() optionFlags {
	flags := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	o := optionFlags{}

	flags.StringVar(&o.dialect, "d", "", "instruction dialect (classic/extended) - if not auto-detected from file extension")
	flags.BoolVar(&o.strict, "strict", false, "reject bytes that are not instructions")
	flags.BoolVar(&o.quiet, "q", false, "perform operations quietly")

	err := flags.Parse(os.Args[1:])
	args := flags.Args()

	if err != nil || len(args) == 0 {
		printBanner()
		fmt.Printf("usage: bfcheck [options] <files to validate>\n\n")
		flags.PrintDefaults()
		os.Exit(pipeline.ExitSuccess)
	}
	o.files = args

	return o
}

func printBanner() {
	fmt.Println("[---------------------------------]")
	fmt.Println("[ bfcheck - Brainfuck validator   ]")
	fmt.Printf("[---------------------------------]\n\n")
	fmt.Printf("version: %s\n\n", buildinfo.Version(version, commit, date))
}

// checkFiles validates every file and returns the exit code of the first
// failing file, or success.
func checkFiles(w io.Writer, o optionFlags) int {
	logger := config.CreateLogger(false, o.quiet)
	dialects := detector.New(logger)
	ldr := loader.New()

	exitCode := pipeline.ExitSuccess
	for _, file := range o.files {
		err := checkFile(ldr, dialects, file, o)
		if err == nil {
			if !o.quiet {
				_, _ = fmt.Fprintf(w, "%s: ok\n", file)
			}
			continue
		}

		_, _ = fmt.Fprintf(w, "%s: %s\n", file, err)
		if exitCode == pipeline.ExitSuccess {
			exitCode = pipeline.ExitCode(err)
		}
	}
	return exitCode
}

func checkFile(ldr *loader.Loader, dialects *detector.Detector, file string, o optionFlags) error {
	program, err := ldr.Load(file)
	if err != nil {
		return err
	}

	opts := o.program(file)
	dialect := dialects.Detect(opts)
	if err := vm.Validate(program, dialect, opts.Strict); err != nil {
		return fmt.Errorf("%s dialect: %w", dialect, err)
	}
	return nil
}

func (o optionFlags) program(file string) options.Program {
	opts := options.NewProgram()
	opts.Input = file
	opts.Dialect = o.dialect
	opts.Strict = o.strict
	return opts
}
