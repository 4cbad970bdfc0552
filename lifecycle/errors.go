package lifecycle

import "errors"

var (
	// ErrClosed is returned when work is started on a closed Manager.
	ErrClosed = errors.New("lifecycle manager closed")

	// ErrEmptyID is returned when work is started without an id.
	ErrEmptyID = errors.New("work id is empty")

	// ErrNilOperation is returned when work is started without an operation.
	ErrNilOperation = errors.New("work operation is nil")
)
