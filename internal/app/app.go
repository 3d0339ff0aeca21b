// Package app provides the main application helper for the interpreter.
package app

import (
	"encoding/hex"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/retroenv/retrobf/internal/options"
	"github.com/retroenv/retrobf/internal/vm"
	"github.com/retroenv/retrogolib/buildinfo"
	"github.com/retroenv/retrogolib/log"
	"github.com/zeebo/blake3"
)

// PrintBanner prints application version information.
func PrintBanner(logger *log.Logger, opts options.Program, version, commit, date string) {
	if opts.Quiet {
		return
	}

	logger.Info("retrobf", log.String("version", buildinfo.Version(version, commit, date)))

	if date != "" && !strings.Contains(date, "unknown") {
		logger.Debug("Build", log.String("date", date))
	}
}

// PrintInfo prints the information about the program that is about to run.
func PrintInfo(logger *log.Logger, opts options.Program, program []byte, dialect vm.Dialect) {
	logger.Debug("Program fingerprint",
		log.String("file", opts.Input),
		log.String("blake3", Fingerprint(program)),
	)

	if opts.Quiet {
		return
	}

	logger.Info("Running program",
		log.String("file", opts.Input),
		log.String("size", humanize.Bytes(uint64(len(program)))),
		log.Stringer("dialect", dialect),
		log.String("tape", humanize.Comma(int64(opts.TapeSize))+" cells"),
	)
}

// PrintSummary prints the final machine state after execution stopped.
func PrintSummary(logger *log.Logger, state vm.State) {
	logger.Debug("Execution stopped",
		log.Stringer("status", state.Status),
		log.String("ticks", humanize.Comma(int64(state.Ticks))),
		log.Int("pc", state.PC),
		log.Int("tp", state.TP),
	)
}

// Fingerprint returns the hex encoded BLAKE3 hash of a program.
func Fingerprint(program []byte) string {
	sum := blake3.Sum256(program)
	return hex.EncodeToString(sum[:])
}
