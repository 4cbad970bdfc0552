package store

import (
	"context"
	"time"

	"github.com/tailored-agentic-units/store/task"
)

// Reducer applies event to state and returns the work to run for it. It is
// called once per event while the store holds its state lock.
type Reducer[S, E any] func(event E, state *S) task.Node[S]

// Interceptor observes event processing. Hooks receive a copy of the state.
//
// A Before error aborts the event and is routed to every OnError hook.
// After errors and panics in any hook are logged; they never change the
// outcome of the event and never stop the remaining interceptors.
type Interceptor[S, E any] interface {
	Before(ctx context.Context, event E, state S) error
	After(ctx context.Context, event E, state S, result task.Node[S], elapsed time.Duration) error
	OnError(ctx context.Context, err error, event E, state S)
}

// InterceptorFuncs adapts optional hook functions to the Interceptor
// interface. Nil fields are skipped.
type InterceptorFuncs[S, E any] struct {
	BeforeFunc  func(ctx context.Context, event E, state S) error
	AfterFunc   func(ctx context.Context, event E, state S, result task.Node[S], elapsed time.Duration) error
	OnErrorFunc func(ctx context.Context, err error, event E, state S)
}

func (f InterceptorFuncs[S, E]) Before(ctx context.Context, event E, state S) error {
	if f.BeforeFunc == nil {
		return nil
	}
	return f.BeforeFunc(ctx, event, state)
}

func (f InterceptorFuncs[S, E]) After(ctx context.Context, event E, state S, result task.Node[S], elapsed time.Duration) error {
	if f.AfterFunc == nil {
		return nil
	}
	return f.AfterFunc(ctx, event, state, result, elapsed)
}

func (f InterceptorFuncs[S, E]) OnError(ctx context.Context, err error, event E, state S) {
	if f.OnErrorFunc != nil {
		f.OnErrorFunc(ctx, err, event, state)
	}
}
