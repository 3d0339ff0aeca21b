// Package config handles application configuration and setup
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/retroenv/retrobf/internal/options"
	"github.com/retroenv/retrobf/internal/vm"
	"github.com/retroenv/retrogolib/log"
)

// CreateLogger creates a logger with appropriate settings
func CreateLogger(debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	if debug {
		cfg.Level = log.DebugLevel
	} else if quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}

// File represents a TOML configuration file.
type File struct {
	VM Machine `toml:"vm"`
}

// Machine contains the machine settings of a configuration file.
// Unset values are nil so that they do not override defaults.
type Machine struct {
	TapeSize  *int   `toml:"tape_size"`
	Dialect   string `toml:"dialect"`
	Strict    *bool  `toml:"strict"`
	EOF       *uint  `toml:"eof"`
	JumpTable *bool  `toml:"jump_table"`
}

// LoadFile parses a TOML configuration file.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse parses TOML configuration data, name is only used in errors.
func Parse(data []byte, name string) (*File, error) {
	var f File
	md, err := toml.Decode(string(data), &f)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", name, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown key '%s' in %s", undecoded[0].String(), name)
	}
	if f.VM.Dialect != "" {
		if _, ok := vm.DialectFromString(f.VM.Dialect); !ok {
			return nil, fmt.Errorf("unsupported dialect '%s' in %s", f.VM.Dialect, name)
		}
	}
	return &f, nil
}

// Apply copies the file settings into the program options. Flags that were
// set explicitly on the command line take precedence.
func (f *File) Apply(opts *options.Program) {
	m := f.VM
	if m.TapeSize != nil && !opts.IsSet("tape") {
		opts.TapeSize = *m.TapeSize
	}
	if m.Dialect != "" && !opts.IsSet("d") {
		opts.Dialect = m.Dialect
	}
	if m.Strict != nil && !opts.IsSet("strict") {
		opts.Strict = *m.Strict
	}
	if m.EOF != nil && !opts.IsSet("eof") {
		opts.EOF = *m.EOF
	}
	if m.JumpTable != nil && !opts.IsSet("jumptable") {
		opts.JumpTable = *m.JumpTable
	}
}
