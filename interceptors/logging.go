package interceptors

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tailored-agentic-units/store/task"
)

// Logging writes one structured log record per interceptor hook.
type Logging[S, E any] struct {
	logger *slog.Logger
	name   string
}

// NewLogging creates a Logging interceptor. A nil logger falls back to
// slog.Default().
func NewLogging[S, E any](logger *slog.Logger, name string) *Logging[S, E] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Logging[S, E]{logger: logger, name: name}
}

func (l *Logging[S, E]) Before(ctx context.Context, event E, state S) error {
	l.logger.DebugContext(
		ctx,
		"dispatching event",
		slog.String("store", l.name),
		slog.String("event", eventName(event)),
	)
	return nil
}

func (l *Logging[S, E]) After(ctx context.Context, event E, state S, result task.Node[S], elapsed time.Duration) error {
	l.logger.InfoContext(
		ctx,
		"event processed",
		slog.String("store", l.name),
		slog.String("event", eventName(event)),
		slog.String("tasks", task.Describe(result)),
		slog.Int("leaves", task.Leaves(result)),
		slog.Duration("duration", elapsed),
	)
	return nil
}

func (l *Logging[S, E]) OnError(ctx context.Context, err error, event E, state S) {
	l.logger.ErrorContext(
		ctx,
		"event failed",
		slog.String("store", l.name),
		slog.String("event", eventName(event)),
		slog.String("error", err.Error()),
	)
}

func eventName(event any) string {
	if s, ok := event.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", event)
}
