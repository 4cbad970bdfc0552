package store

import (
	"context"
	"sync"

	"github.com/tailored-agentic-units/store/lifecycle"
	"github.com/tailored-agentic-units/store/observability"
	"github.com/tailored-agentic-units/store/task"
)

// execute interprets node and returns once all of its work has finished.
//
// Chains of the same operator are flattened into one level before they run,
// so call depth grows only where Merged and Concatenated nodes alternate.
// Merged children run concurrently and are joined. Concatenated children run
// in order; once the store is closed no further child is started.
func (s *Store[S, E]) execute(ctx context.Context, node task.Node[S]) {
	switch n := node.(type) {
	case task.EmptyNode[S]:
	case *task.RunNode[S]:
		s.runLeaf(ctx, n)
	case *task.CancelNode[S]:
		s.manager.CancelMany(n.IDs()...)
	case *task.MergedNode[S]:
		children := n.FlattenMerged()

		var wg sync.WaitGroup
		wg.Add(len(children))
		for _, child := range children {
			go func() {
				defer wg.Done()
				s.execute(ctx, child)
			}()
		}
		wg.Wait()
	case *task.ConcatenatedNode[S]:
		for _, child := range n.FlattenConcatenated() {
			if s.ctx.Err() != nil {
				return
			}
			s.execute(ctx, child)
		}
	}
}

// runLeaf starts n through the lifecycle manager and waits for it, including
// its error handler. Leaf failures never escape: without a handler they are
// reported as events and discarded.
func (s *Store[S, E]) runLeaf(ctx context.Context, n *task.RunNode[S]) {
	id := n.ID()
	if id == "" {
		id = s.ids.NextID()
	}

	op, onError := n.Operation(), n.ErrorHandler()
	w := lifecycle.Work{
		ID:       id,
		Priority: n.Priority(),
		Operation: func(ctx context.Context) error {
			return op(ctx, s.mutate)
		},
		OnError: func(err error) {
			if onError != nil {
				onError(err, s.mutate)
				return
			}
			if !task.IsCancellation(err) {
				s.emit(ctx, EventTaskUnhandled, observability.LevelWarning, map[string]any{
					"id":    id,
					"error": err.Error(),
				})
			}
		},
	}

	var (
		h   *lifecycle.Handle
		err error
	)
	if n.CancelInFlight() {
		h, err = s.manager.Start(w)
	} else {
		h, err = s.manager.StartQueued(s.ctx, w)
	}
	if err != nil {
		s.emit(ctx, EventTaskRejected, observability.LevelWarning, map[string]any{
			"id":    id,
			"error": err.Error(),
		})
		return
	}

	<-h.Done()
}
