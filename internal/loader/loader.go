// Package loader handles program file loading operations.
package loader

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

var (
	// ErrNotFound is returned when the program file does not exist.
	ErrNotFound = errors.New("file not found")
	// ErrEmpty is returned when the program file is empty, a directory or unreadable.
	ErrEmpty = errors.New("file is empty or unreadable")
)

// Loader handles loading program files from disk.
type Loader struct{}

// New creates a new program loader.
func New() *Loader {
	return &Loader{}
}

// Exists returns whether anything exists at the given path.
func (l *Loader) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Load returns the full contents of the regular file at path.
// The returned buffer is owned by the caller.
func (l *Loader) Load(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrEmpty, path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrEmpty, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", ErrEmpty, path, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmpty, path)
	}
	return data, nil
}
