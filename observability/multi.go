package observability

import (
	"context"
	"fmt"
	"log/slog"
)

// MultiObserver fans out events to multiple observers in order.
//
// A panicking observer is recovered and reported to the fallback logger;
// the remaining observers still receive the event.
type MultiObserver struct {
	observers []Observer
	fallback  *slog.Logger
}

// NewMultiObserver creates a MultiObserver that forwards events to all
// non-nil observers. Recovered panics are logged to slog.Default().
func NewMultiObserver(observers ...Observer) *MultiObserver {
	filtered := make([]Observer, 0, len(observers))
	for _, obs := range observers {
		if obs != nil {
			filtered = append(filtered, obs)
		}
	}
	return &MultiObserver{observers: filtered, fallback: slog.Default()}
}

// WithFallback sets the logger that receives recovered observer panics.
func (m *MultiObserver) WithFallback(logger *slog.Logger) *MultiObserver {
	if logger != nil {
		m.fallback = logger
	}
	return m
}

// Len reports the number of wrapped observers.
func (m *MultiObserver) Len() int {
	return len(m.observers)
}

func (m *MultiObserver) OnEvent(ctx context.Context, event Event) {
	for i, obs := range m.observers {
		m.deliver(ctx, i, obs, event)
	}
}

func (m *MultiObserver) deliver(ctx context.Context, index int, obs Observer, event Event) {
	defer func() {
		if r := recover(); r != nil {
			m.fallback.ErrorContext(
				ctx,
				"observer panicked",
				slog.Int("observer_index", index),
				slog.String("event_type", string(event.Type)),
				slog.String("panic", fmt.Sprint(r)),
			)
		}
	}()
	obs.OnEvent(ctx, event)
}
