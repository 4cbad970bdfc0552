package store

import (
	"context"
	"fmt"
	"time"
)

// Completion tracks one dispatched event. It completes after the event's
// interceptors, reducer and entire task tree have finished.
type Completion struct {
	seq     uint64
	done    chan struct{}
	err     error
	elapsed time.Duration
}

func newCompletion(seq uint64) *Completion {
	return &Completion{seq: seq, done: make(chan struct{})}
}

// Seq returns the dispatch sequence number, starting at 1.
func (c *Completion) Seq() uint64 {
	return c.seq
}

// Done is closed when processing of the event has finished.
func (c *Completion) Done() <-chan struct{} {
	return c.done
}

// Err returns nil once the event was processed, an *InterceptorError or
// *ReducerError if it was aborted, or ErrClosed if the store closed before
// it was processed. Failures of individual Run leaves are not reported here.
func (c *Completion) Err() error {
	select {
	case <-c.done:
		return c.err
	default:
		return nil
	}
}

// Elapsed returns the processing time of the event once Done is closed.
func (c *Completion) Elapsed() time.Duration {
	select {
	case <-c.done:
		return c.elapsed
	default:
		return 0
	}
}

// Wait blocks until the event has been processed or ctx ends.
func (c *Completion) Wait(ctx context.Context) error {
	select {
	case <-c.done:
		return c.err
	case <-ctx.Done():
		return fmt.Errorf("waiting for event %d: %w", c.seq, ctx.Err())
	}
}

func (c *Completion) finish(err error, elapsed time.Duration) {
	c.err = err
	c.elapsed = elapsed
	close(c.done)
}
