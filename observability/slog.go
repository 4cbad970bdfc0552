package observability

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"time"
)

// SlogObserver writes events as slog records. The event type is the message,
// the event timestamp is the record time and Data entries become attributes
// in key order.
type SlogObserver struct {
	logger *slog.Logger
	group  string
}

// SlogOption configures a SlogObserver.
type SlogOption func(*SlogObserver)

// WithDataGroup nests Data attributes under name instead of writing them at
// the top level of the record.
func WithDataGroup(name string) SlogOption {
	return func(o *SlogObserver) { o.group = name }
}

// NewSlogObserver creates a SlogObserver that writes to logger. A nil logger
// follows slog.Default(), including later calls to slog.SetDefault.
func NewSlogObserver(logger *slog.Logger, opts ...SlogOption) *SlogObserver {
	o := &SlogObserver{logger: logger}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *SlogObserver) OnEvent(ctx context.Context, event Event) {
	logger := o.logger
	if logger == nil {
		logger = slog.Default()
	}

	level := event.Level.SlogLevel()
	if !logger.Enabled(ctx, level) {
		return
	}

	at := event.Timestamp
	if at.IsZero() {
		at = time.Now()
	}

	record := slog.NewRecord(at, level, string(event.Type), 0)
	if event.Source != "" {
		record.AddAttrs(slog.String("source", event.Source))
	}
	if len(event.Data) > 0 {
		record.AddAttrs(o.dataAttrs(event.Data)...)
	}

	// Handler errors are dropped; observers never fail the caller.
	_ = logger.Handler().Handle(ctx, record)
}

func (o *SlogObserver) dataAttrs(data map[string]any) []slog.Attr {
	attrs := make([]slog.Attr, 0, len(data))
	for _, k := range slices.Sorted(maps.Keys(data)) {
		attrs = append(attrs, slog.Any(k, data[k]))
	}

	if o.group == "" {
		return attrs
	}
	return []slog.Attr{{Key: o.group, Value: slog.GroupValue(attrs...)}}
}
