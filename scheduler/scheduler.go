// Package scheduler provides the primitive the lifecycle manager uses to run
// operations asynchronously.
//
// Two implementations are available: Goroutines starts one goroutine per
// scheduled function, and Pool drains a priority queue with a bounded set of
// workers so that higher-priority work starts first under load.
package scheduler

import (
	"fmt"

	"github.com/tailored-agentic-units/store/task"
)

// Scheduler runs functions asynchronously. Schedule must not block on the
// execution of fn.
type Scheduler interface {
	Schedule(priority task.Priority, fn func())

	// Close releases scheduler resources after already scheduled functions
	// have started. Functions scheduled after Close still run.
	Close()
}

// Goroutines schedules every function on its own goroutine. Priority is
// ignored.
type Goroutines struct{}

func (Goroutines) Schedule(_ task.Priority, fn func()) {
	go fn()
}

func (Goroutines) Close() {}

// New creates the scheduler selected by cfg.Mode.
func New(cfg Config) (Scheduler, error) {
	switch cfg.Mode {
	case "", ModeGoroutines:
		return Goroutines{}, nil
	case ModePool:
		return NewPool(cfg), nil
	default:
		return nil, fmt.Errorf("unknown scheduler mode: %s", cfg.Mode)
	}
}
