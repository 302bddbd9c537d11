package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors - use with errors.Is()
var (
	ErrUnknownFormat = errors.New("unknown format")
	ErrInvalidFormat = errors.New("invalid format")
	ErrNotFound      = errors.New("not found")
	ErrClosed        = errors.New("library closed")
)

type (
	// UnknownFormatError means every detection strategy was exhausted.
	UnknownFormatError struct {
		File string
	}

	// InvalidFormatError means the format was identified but the content is malformed.
	InvalidFormatError struct {
		File   string
		Format string
		Err    error
	}

	// IOError wraps an underlying read/write failure.
	IOError struct {
		Op   string
		Path string
		Err  error
	}

	// IndexCorruptionWarning describes a stale or unreadable document met during
	// reconciliation. It is reported, never returned as a failure.
	IndexCorruptionWarning struct {
		Path   string
		Reason string
	}
)

func (e *UnknownFormatError) Error() string {
	if e.File == "" {
		return "unknown song format"
	}
	return fmt.Sprintf("unknown song format: %s", e.File)
}

func (e *UnknownFormatError) Is(target error) bool { return target == ErrUnknownFormat }

func (e *InvalidFormatError) Error() string {
	msg := "invalid " + e.Format + " document"
	if e.File != "" {
		msg += " " + e.File
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *InvalidFormatError) Unwrap() error { return e.Err }

func (e *InvalidFormatError) Is(target error) bool { return target == ErrInvalidFormat }

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

func (w IndexCorruptionWarning) String() string {
	return fmt.Sprintf("%s: %s", w.Path, w.Reason)
}

// Invalid is shorthand for building an InvalidFormatError without a file name.
func Invalid(kind, msg string, args ...any) *InvalidFormatError {
	return &InvalidFormatError{Format: kind, Err: fmt.Errorf(msg, args...)}
}

// WithFile returns err with the file name attached when err is a format error.
func WithFile(err error, file string) error {
	var inv *InvalidFormatError
	if errors.As(err, &inv) && inv.File == "" {
		cp := *inv
		cp.File = file
		return &cp
	}
	var unk *UnknownFormatError
	if errors.As(err, &unk) && unk.File == "" {
		return &UnknownFormatError{File: file}
	}
	return err
}
