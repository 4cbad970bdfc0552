package store

import "context"

// queue is the FIFO between Dispatch and the processing loop. Sends fail
// with the cause of the owning context once it is done.
type queue[T any] struct {
	channel chan T
	context context.Context
}

func newQueue[T any](ctx context.Context, size int) *queue[T] {
	return &queue[T]{
		channel: make(chan T, size),
		context: ctx,
	}
}

func (q *queue[T]) Send(ctx context.Context, item T) error {
	if q.context.Err() != nil {
		return context.Cause(q.context)
	}

	select {
	case q.channel <- item:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-q.context.Done():
		return context.Cause(q.context)
	}
}

func (q *queue[T]) Receive() (T, error) {
	select {
	case item := <-q.channel:
		return item, nil
	case <-q.context.Done():
		var zero T
		return zero, context.Cause(q.context)
	}
}

func (q *queue[T]) TryReceive() (T, bool) {
	select {
	case item := <-q.channel:
		return item, true
	default:
		var zero T
		return zero, false
	}
}

func (q *queue[T]) Len() int {
	return len(q.channel)
}

func (q *queue[T]) Capacity() int {
	return cap(q.channel)
}
