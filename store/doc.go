// Package store implements the dispatch coordinator: a single serialization
// point that receives events, applies a reducer to an exclusively owned
// state value, and drives the task tree the reducer returns to completion
// before the next event is processed.
//
//	s, err := store.New(reduce, State{}, store.WithInterceptors(logging))
//	c, err := s.Dispatch(ctx, Increment{})
//	err = c.Wait(ctx)
//
// Events are processed strictly one at a time in dispatch order. Run leaves
// of a single event's tree execute concurrently through a lifecycle.Manager
// and write back to state only through the task.Mutator handed to them.
package store
