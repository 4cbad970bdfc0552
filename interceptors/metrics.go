package interceptors

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/tailored-agentic-units/store/task"
)

// MetricsSnapshot is a point-in-time copy of the collected counters.
type MetricsSnapshot struct {
	Started       int64
	Completed     int64
	Failed        int64
	Leaves        int64
	TotalDuration time.Duration
	MaxDuration   time.Duration
}

// Metrics counts dispatches and their durations. It is safe for concurrent
// use and may be shared between stores with the same type parameters.
type Metrics[S, E any] struct {
	started       atomic.Int64
	completed     atomic.Int64
	failed        atomic.Int64
	leaves        atomic.Int64
	totalDuration atomic.Int64
	maxDuration   atomic.Int64
}

func NewMetrics[S, E any]() *Metrics[S, E] {
	return &Metrics[S, E]{}
}

func (m *Metrics[S, E]) Before(ctx context.Context, event E, state S) error {
	m.started.Add(1)
	return nil
}

func (m *Metrics[S, E]) After(ctx context.Context, event E, state S, result task.Node[S], elapsed time.Duration) error {
	m.completed.Add(1)
	m.leaves.Add(int64(task.Leaves(result)))
	m.totalDuration.Add(int64(elapsed))

	for {
		current := m.maxDuration.Load()
		if int64(elapsed) <= current || m.maxDuration.CompareAndSwap(current, int64(elapsed)) {
			break
		}
	}
	return nil
}

func (m *Metrics[S, E]) OnError(ctx context.Context, err error, event E, state S) {
	m.failed.Add(1)
}

// Snapshot returns the current counters.
func (m *Metrics[S, E]) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Started:       m.started.Load(),
		Completed:     m.completed.Load(),
		Failed:        m.failed.Load(),
		Leaves:        m.leaves.Load(),
		TotalDuration: time.Duration(m.totalDuration.Load()),
		MaxDuration:   time.Duration(m.maxDuration.Load()),
	}
}

// AverageDuration returns the mean processing time of completed events.
func (s MetricsSnapshot) AverageDuration() time.Duration {
	if s.Completed == 0 {
		return 0
	}
	return s.TotalDuration / time.Duration(s.Completed)
}
