// Package detector handles instruction dialect detection.
package detector

import (
	"path/filepath"
	"strings"

	"github.com/retroenv/retrobf/internal/options"
	"github.com/retroenv/retrobf/internal/vm"
	"github.com/retroenv/retrogolib/log"
)

// Detector handles dialect detection from file extensions and options.
type Detector struct {
	logger *log.Logger
}

// New creates a new dialect detector.
func New(logger *log.Logger) *Detector {
	return &Detector{
		logger: logger,
	}
}

// Detect determines the dialect from options or file auto-detection.
// It first checks if a dialect is explicitly specified in options, otherwise
// attempts to detect the dialect from the input filename extension.
func (d *Detector) Detect(opts options.Program) vm.Dialect {
	dialect, ok := vm.DialectFromString(opts.Dialect)
	if !ok {
		dialect = d.detectFromFile(opts.Input)
		d.logger.Debug("Auto-detected dialect",
			log.Stringer("dialect", dialect),
			log.String("file", opts.Input))
	}
	return dialect
}

// detectFromFile determines the dialect based on file extension.
func (d *Detector) detectFromFile(filename string) vm.Dialect {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".bfx":
		return vm.Extended
	default:
		// .bf, .b and unknown extensions
		return vm.Classic
	}
}
