package store

import (
	"errors"
	"fmt"
)

// ErrClosed is returned by Dispatch after Close, and completes events that
// were still queued when the store closed.
var ErrClosed = errors.New("store closed")

// Interceptor hook names reported in InterceptorError.
const (
	HookBefore  = "before"
	HookAfter   = "after"
	HookOnError = "on_error"
)

// InterceptorError reports a failing or panicking interceptor hook.
type InterceptorError struct {
	Index int    // Position of the interceptor in registration order.
	Hook  string // HookBefore, HookAfter or HookOnError.
	Err   error
}

func (e *InterceptorError) Error() string {
	return fmt.Sprintf("interceptor %d %s hook: %v", e.Index, e.Hook, e.Err)
}

func (e *InterceptorError) Unwrap() error {
	return e.Err
}

// ReducerError reports a reducer that panicked. The event is aborted the same
// way as a failing before hook.
type ReducerError struct {
	Err error
}

func (e *ReducerError) Error() string {
	return fmt.Sprintf("reducer failed: %v", e.Err)
}

func (e *ReducerError) Unwrap() error {
	return e.Err
}
