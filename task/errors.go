package task

import (
	"errors"
	"fmt"
)

// ErrCancelled marks the termination of an operation by cancellation.
var ErrCancelled = errors.New("task cancelled")

// CancellationError reports that the operation with ID ended because it was
// cancelled. It matches ErrCancelled and the error the operation returned.
type CancellationError struct {
	ID  string
	Err error
}

func (e *CancellationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("task %q cancelled", e.ID)
	}
	return fmt.Sprintf("task %q cancelled: %v", e.ID, e.Err)
}

func (e *CancellationError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrCancelled}
	}
	return []error{ErrCancelled, e.Err}
}

// IsCancellation reports whether err stems from cancelling the work rather
// than from the work failing.
func IsCancellation(err error) bool {
	return errors.Is(err, ErrCancelled)
}

// PanicError carries a value recovered from a panicking operation or handler.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("task panicked: %v", e.Value)
}

// Unwrap exposes the panic value when it is itself an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
