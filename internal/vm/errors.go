package vm

import (
	"errors"
	"fmt"
)

// ErrorKind classifies load errors and execution faults.
type ErrorKind int

// Error kinds reported by the machine.
const (
	ErrKindNone ErrorKind = iota
	ErrKindEmptyProgram
	ErrKindInvalidTapeSize
	ErrKindUnknownInstruction
	ErrKindUnmatchedClose
	ErrKindUnbalanced
	ErrKindUnmatchedOpenAtRuntime
	ErrKindUnmatchedCloseAtRuntime
	ErrKindIO
	ErrKindRefused
)

var errorMessages = map[ErrorKind]string{
	ErrKindNone:                    "ok",
	ErrKindEmptyProgram:            "program is empty",
	ErrKindInvalidTapeSize:         "tape size must be at least 1",
	ErrKindUnknownInstruction:      "unknown instruction",
	ErrKindUnmatchedClose:          "unmatched close bracket",
	ErrKindUnbalanced:              "unbalanced brackets",
	ErrKindUnmatchedOpenAtRuntime:  "unmatched open bracket",
	ErrKindUnmatchedCloseAtRuntime: "unmatched close bracket",
	ErrKindIO:                      "i/o failure",
	ErrKindRefused:                 "machine refuses to execute",
}

func (k ErrorKind) String() string {
	if msg, ok := errorMessages[k]; ok {
		return msg
	}
	return fmt.Sprintf("error kind %d", int(k))
}

// IsLoadError returns whether the kind is detected before execution starts.
func (k ErrorKind) IsLoadError() bool {
	switch k {
	case ErrKindEmptyProgram, ErrKindInvalidTapeSize, ErrKindUnknownInstruction,
		ErrKindUnmatchedClose, ErrKindUnbalanced:
		return true
	default:
		return false
	}
}

// Error describes a load error or an execution fault. Index is the program
// position the error refers to, or -1 if it does not refer to one.
type Error struct {
	Kind  ErrorKind
	Index int
	Byte  byte
	Err   error
}

func newError(kind ErrorKind, index int) *Error {
	return &Error{Kind: kind, Index: index}
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	switch {
	case e.Kind == ErrKindUnknownInstruction:
		msg = fmt.Sprintf("%s '%c' (%d) at %d", msg, printable(e.Byte), e.Byte, e.Index)
	case e.Index >= 0:
		msg = fmt.Sprintf("%s at %d", msg, e.Index)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %s", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind, which allows
// errors.Is(err, &vm.Error{Kind: vm.ErrKindUnbalanced}).
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of a machine error, or ErrKindNone if err is not one.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ErrKindNone
}

func printable(b byte) byte {
	if b < 0x20 || b > 0x7e {
		return '?'
	}
	return b
}
