package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
)

// Handle refers to one started unit of work.
type Handle struct {
	id     string
	done   chan struct{}
	err    error
	cancel func()
}

// ID returns the id the work was registered under.
func (h *Handle) ID() string {
	return h.id
}

// Done is closed once the operation has returned, its error handler has run,
// and its entry has been removed.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Err returns the final error of the operation once Done is closed, and nil
// before that. Cancellations are reported as *task.CancellationError.
func (h *Handle) Err() error {
	select {
	case <-h.done:
		return h.err
	default:
		return nil
	}
}

// Wait blocks until the work completes or ctx ends.
func (h *Handle) Wait(ctx context.Context) error {
	select {
	case <-h.done:
		return h.err
	case <-ctx.Done():
		return fmt.Errorf("waiting for %s: %w", h.id, ctx.Err())
	}
}

// Cancel cancels this work if it is still the registered entry for its id.
// It has no effect on newer work that superseded it.
func (h *Handle) Cancel() {
	h.cancel()
}

// LogValue renders the handle as its id in slog output.
func (h *Handle) LogValue() slog.Value {
	return slog.StringValue(h.id)
}
