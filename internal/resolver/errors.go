package resolver

import (
	"errors"
	"fmt"
)

// ErrCycle is wrapped by an UnsupportedError when a type refers back to
// itself through the types it is composed of.
var ErrCycle = errors.New("cyclic type reference")

// UnsupportedError reports a type that no analyzer can handle.
type UnsupportedError struct {
	Type   string
	Reason string
	Err    error
}

func (e *UnsupportedError) Error() string {
	msg := "unsupported type " + e.Type
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *UnsupportedError) Unwrap() error { return e.Err }

// InternalError reports a failure while emitting code for an already
// resolved field. It points at a defect in an analyzer, not at user input.
type InternalError struct {
	Field    string
	Analyzer string
	Err      error
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("internal error in %s analyzer for field %s: %v", e.Analyzer, e.Field, e.Err)
}

func (e *InternalError) Unwrap() error { return e.Err }

func unsupported(sig, reason string, err error) *UnsupportedError {
	return &UnsupportedError{Type: sig, Reason: reason, Err: err}
}
