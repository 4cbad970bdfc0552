package store

import (
	"log/slog"

	"github.com/tailored-agentic-units/store/observability"
	"github.com/tailored-agentic-units/store/scheduler"
	"github.com/tailored-agentic-units/store/task"
)

type settings struct {
	config       Config
	interceptors []any
	observer     observability.Observer
	logger       *slog.Logger
	ids          task.IDGenerator
	scheduler    scheduler.Scheduler
}

// Option configures a Store. Options override the collaborators New would
// otherwise create from the config.
type Option func(*settings)

// WithConfig merges cfg over DefaultConfig.
func WithConfig(cfg Config) Option {
	return func(s *settings) { s.config.Merge(&cfg) }
}

// WithInterceptors appends interceptors. They run in the order given, after
// any added by earlier options. Their type parameters must match the Store's.
func WithInterceptors[S, E any](interceptors ...Interceptor[S, E]) Option {
	return func(s *settings) {
		for _, ic := range interceptors {
			s.interceptors = append(s.interceptors, ic)
		}
	}
}

// WithObserver overrides the observer named in the config.
func WithObserver(o observability.Observer) Option {
	return func(s *settings) { s.observer = o }
}

// WithLogger sets the logger for interceptor failures. Without WithObserver
// it also backs a SlogObserver for store events.
func WithLogger(l *slog.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// WithIDGenerator overrides the UUIDv7 generator used for unnamed Run nodes.
func WithIDGenerator(g task.IDGenerator) Option {
	return func(s *settings) { s.ids = g }
}

// WithScheduler overrides the config-created scheduler. The Store does not
// close a scheduler passed this way.
func WithScheduler(sch scheduler.Scheduler) Option {
	return func(s *settings) { s.scheduler = sch }
}
