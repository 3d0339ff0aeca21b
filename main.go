// Package main implements the main entry point for a Brainfuck interpreter
package main

import (
	"context"
	"errors"
	"os"

	"github.com/retroenv/retrobf/internal/app"
	"github.com/retroenv/retrobf/internal/cli"
	"github.com/retroenv/retrobf/internal/config"
	"github.com/retroenv/retrobf/internal/pipeline"
	retroapp "github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/log"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx := retroapp.Context()

	opts, err := cli.ParseFlags()
	if err != nil {
		logger := config.CreateLogger(opts.Debug, opts.Quiet)
		var usageErr *cli.UsageError
		if errors.As(err, &usageErr) {
			app.PrintBanner(logger, opts, version, commit, date)
			usageErr.ShowUsage()
			if usageErr.UsageOnly() {
				return pipeline.ExitSuccess
			}
		}
		logger.Error(err.Error())
		return pipeline.ExitConfig
	}

	logger := config.CreateLogger(opts.Debug, opts.Quiet)

	if opts.Config != "" {
		cfg, err := config.LoadFile(opts.Config)
		if err != nil {
			logger.Error("Loading configuration failed", log.Err(err))
			return pipeline.ExitConfig
		}
		cfg.Apply(&opts)
		if err := cli.ValidateOptions(opts); err != nil {
			logger.Error("Invalid configuration", log.Err(err))
			return pipeline.ExitConfig
		}
	}

	app.PrintBanner(logger, opts, version, commit, date)

	p := pipeline.New(logger, os.Stdin, os.Stdout)
	if _, err := p.Execute(ctx, opts); err != nil {
		// Handle context cancellation (Ctrl+C) gracefully
		if errors.Is(err, context.Canceled) {
			logger.Info("Execution interrupted")
		} else {
			logger.Error("Execution failed", log.Err(err))
		}
		return pipeline.ExitCode(err)
	}
	return pipeline.ExitSuccess
}
