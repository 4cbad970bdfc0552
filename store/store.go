package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tailored-agentic-units/store/lifecycle"
	"github.com/tailored-agentic-units/store/observability"
	"github.com/tailored-agentic-units/store/scheduler"
	"github.com/tailored-agentic-units/store/task"
)

type dispatch[E any] struct {
	ctx        context.Context
	event      E
	completion *Completion
}

// Store owns a state value of type S and processes events of type E one at
// a time.
type Store[S, E any] struct {
	name         string
	reducer      Reducer[S, E]
	interceptors []Interceptor[S, E]
	observer     observability.Observer
	logger       *slog.Logger
	ids          task.IDGenerator

	scheduler     scheduler.Scheduler
	ownsScheduler bool
	manager       *lifecycle.Manager

	// stateMu is held by exactly one writer at a time: the reducer during
	// dispatch, or a Run leaf inside its Mutator.
	stateMu sync.Mutex
	state   S

	queue  *queue[*dispatch[E]]
	sendMu sync.RWMutex
	closed bool
	sealed chan struct{}
	done   chan struct{}

	ctx       context.Context
	cancel    context.CancelCauseFunc
	closeOnce sync.Once
	release   sync.Once

	phase      atomic.Int32
	seq        atomic.Uint64
	dispatched atomic.Int64
	processed  atomic.Int64
	aborted    atomic.Int64
}

// New creates a Store that applies reducer to events, starting from initial.
// The processing loop starts immediately; call Close to stop it.
func New[S, E any](reducer Reducer[S, E], initial S, opts ...Option) (*Store[S, E], error) {
	if reducer == nil {
		return nil, errors.New("reducer is nil")
	}

	set := settings{config: DefaultConfig()}
	for _, opt := range opts {
		opt(&set)
	}
	cfg := set.config

	interceptors := make([]Interceptor[S, E], 0, len(set.interceptors))
	for i, v := range set.interceptors {
		ic, ok := v.(Interceptor[S, E])
		if !ok {
			return nil, fmt.Errorf("interceptor %d: %T does not match the store's state and event types", i, v)
		}
		interceptors = append(interceptors, ic)
	}

	logger := set.logger
	if logger == nil {
		logger = slog.Default()
	}

	observer := set.observer
	if observer == nil {
		if set.logger != nil {
			observer = observability.NewSlogObserver(set.logger)
		} else {
			obs, err := observability.ResolveObserver(cfg.Observer)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve observer: %w", err)
			}
			observer = obs
		}
	}

	sch, owns := set.scheduler, false
	if sch == nil {
		created, err := scheduler.New(cfg.Scheduler)
		if err != nil {
			return nil, fmt.Errorf("failed to create scheduler: %w", err)
		}
		sch, owns = created, true
	}

	ids := set.ids
	if ids == nil {
		ids = task.UUIDGenerator{}
	}

	ctx, cancel := context.WithCancelCause(context.Background())

	s := &Store[S, E]{
		name:          cfg.Name,
		reducer:       reducer,
		interceptors:  interceptors,
		observer:      observer,
		logger:        logger,
		ids:           ids,
		scheduler:     sch,
		ownsScheduler: owns,
		manager: lifecycle.New(
			lifecycle.WithScheduler(sch),
			lifecycle.WithObserver(observer),
			lifecycle.WithName(cfg.Name),
		),
		state:  initial,
		queue:  newQueue[*dispatch[E]](ctx, cfg.QueueSize),
		sealed: make(chan struct{}),
		done:   make(chan struct{}),
		ctx:    ctx,
		cancel: cancel,
	}

	go s.loop()

	return s, nil
}

// Name returns the configured store name.
func (s *Store[S, E]) Name() string {
	return s.name
}

// Dispatch enqueues event and returns its Completion without waiting for it
// to be processed. It blocks only while the queue is full.
//
// A Run operation must not wait on the Completion of an event it dispatches
// itself: that event is processed only after the current tree finishes.
func (s *Store[S, E]) Dispatch(ctx context.Context, event E) (*Completion, error) {
	s.sendMu.RLock()
	defer s.sendMu.RUnlock()

	if s.closed {
		return nil, ErrClosed
	}

	c := newCompletion(s.seq.Add(1))
	if err := s.queue.Send(ctx, &dispatch[E]{ctx: ctx, event: event, completion: c}); err != nil {
		return nil, err
	}
	s.dispatched.Add(1)

	return c, nil
}

// Send dispatches event and waits for it to be processed.
func (s *Store[S, E]) Send(ctx context.Context, event E) error {
	c, err := s.Dispatch(ctx, event)
	if err != nil {
		return err
	}
	return c.Wait(ctx)
}

// State returns a copy of the owned state. Reference fields such as maps
// and slices are shared with the store and must not be modified.
// It must not be called from inside a Mutator function.
func (s *Store[S, E]) State() S {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return s.state
}

// RunningCount returns the number of registered Run leaves.
func (s *Store[S, E]) RunningCount() int {
	return s.manager.Count()
}

// IsRunning reports whether a Run leaf with id is registered.
func (s *Store[S, E]) IsRunning(id any) bool {
	return s.manager.IsRunning(task.ID(id))
}

// Cancel cancels the Run leaf registered under id.
func (s *Store[S, E]) Cancel(id any) bool {
	return s.manager.Cancel(task.ID(id))
}

// CancelAll cancels every registered Run leaf and returns how many there
// were.
func (s *Store[S, E]) CancelAll() int {
	return s.manager.CancelAll()
}

// Status returns a snapshot of the store's processing state and counters.
func (s *Store[S, E]) Status() Status {
	s.sendMu.RLock()
	closed := s.closed
	s.sendMu.RUnlock()

	phase := Phase(s.phase.Load())
	if closed {
		phase = PhaseClosed
	}

	return Status{
		Name:          s.name,
		Phase:         phase,
		Queued:        s.queue.Len(),
		QueueCapacity: s.queue.Capacity(),
		Running:       s.manager.Count(),
		Dispatched:    s.dispatched.Load(),
		Processed:     s.processed.Load(),
		Aborted:       s.aborted.Load(),
	}
}

// Close stops accepting events, cancels every running leaf and waits for the
// processing loop and the leaves to return. Events still queued complete with
// ErrClosed. Close returns ctx's error if it ends first; calling Close again
// resumes the wait.
func (s *Store[S, E]) Close(ctx context.Context) error {
	s.closeOnce.Do(func() {
		s.cancel(ErrClosed)

		s.sendMu.Lock()
		s.closed = true
		s.sendMu.Unlock()
		close(s.sealed)

		s.manager.Close()

		s.emit(context.Background(), EventClose, observability.LevelInfo, map[string]any{
			"dispatched": s.dispatched.Load(),
			"processed":  s.processed.Load(),
		})
	})

	select {
	case <-s.done:
	case <-ctx.Done():
		return fmt.Errorf("waiting for store %s to stop: %w", s.name, ctx.Err())
	}

	if err := s.manager.Wait(ctx); err != nil {
		return err
	}

	if s.ownsScheduler {
		s.release.Do(s.scheduler.Close)
	}
	return nil
}

func (s *Store[S, E]) loop() {
	defer close(s.done)

	for {
		d, err := s.queue.Receive()
		if err != nil {
			break
		}
		if s.ctx.Err() != nil {
			d.completion.finish(ErrClosed, 0)
			continue
		}
		s.process(d)
	}

	<-s.sealed
	for {
		d, ok := s.queue.TryReceive()
		if !ok {
			return
		}
		d.completion.finish(ErrClosed, 0)
	}
}

func (s *Store[S, E]) process(d *dispatch[E]) {
	s.phase.Store(int32(PhaseProcessing))
	defer s.phase.Store(int32(PhaseIdle))

	ctx := context.WithoutCancel(d.ctx)
	start := time.Now()
	seq := d.completion.Seq()

	s.emit(ctx, EventDispatchStart, observability.LevelVerbose, map[string]any{
		"seq":   seq,
		"event": fmt.Sprintf("%T", d.event),
	})

	state := s.State()
	for i, ic := range s.interceptors {
		if err := s.before(ctx, i, ic, d.event, state); err != nil {
			s.abort(ctx, d, err, start)
			return
		}
	}

	node, err := s.reduce(d.event)
	if err != nil {
		s.abort(ctx, d, err, start)
		return
	}

	s.execute(ctx, node)
	elapsed := time.Since(start)

	state = s.State()
	for i, ic := range s.interceptors {
		s.after(ctx, i, ic, d.event, state, node, elapsed)
	}

	s.processed.Add(1)
	s.emit(ctx, EventDispatchComplete, observability.LevelVerbose, map[string]any{
		"seq":      seq,
		"leaves":   task.Leaves(node),
		"duration": elapsed,
	})

	d.completion.finish(nil, elapsed)
}

func (s *Store[S, E]) abort(ctx context.Context, d *dispatch[E], err error, start time.Time) {
	state := s.State()
	for i, ic := range s.interceptors {
		s.onError(ctx, i, ic, err, d.event, state)
	}

	s.aborted.Add(1)
	s.emit(ctx, EventDispatchAbort, observability.LevelWarning, map[string]any{
		"seq":   d.completion.Seq(),
		"error": err.Error(),
	})

	d.completion.finish(err, time.Since(start))
}

func (s *Store[S, E]) reduce(event E) (node task.Node[S], err error) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			node = nil
			err = &ReducerError{Err: &task.PanicError{Value: r, Stack: debug.Stack()}}
		}
	}()

	node = s.reducer(event, &s.state)
	if node == nil {
		node = task.Empty[S]()
	}
	return node, nil
}

func (s *Store[S, E]) mutate(fn func(state *S)) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	fn(&s.state)
}

func (s *Store[S, E]) before(ctx context.Context, i int, ic Interceptor[S, E], event E, state S) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &InterceptorError{Index: i, Hook: HookBefore, Err: &task.PanicError{Value: r, Stack: debug.Stack()}}
		}
	}()

	if err := ic.Before(ctx, event, state); err != nil {
		return &InterceptorError{Index: i, Hook: HookBefore, Err: err}
	}
	return nil
}

func (s *Store[S, E]) after(ctx context.Context, i int, ic Interceptor[S, E], event E, state S, node task.Node[S], elapsed time.Duration) {
	defer func() {
		if r := recover(); r != nil {
			s.hookFailed(ctx, &InterceptorError{Index: i, Hook: HookAfter, Err: &task.PanicError{Value: r}})
		}
	}()

	if err := ic.After(ctx, event, state, node, elapsed); err != nil {
		s.hookFailed(ctx, &InterceptorError{Index: i, Hook: HookAfter, Err: err})
	}
}

func (s *Store[S, E]) onError(ctx context.Context, i int, ic Interceptor[S, E], err error, event E, state S) {
	defer func() {
		if r := recover(); r != nil {
			s.hookFailed(ctx, &InterceptorError{Index: i, Hook: HookOnError, Err: &task.PanicError{Value: r}})
		}
	}()

	ic.OnError(ctx, err, event, state)
}

func (s *Store[S, E]) hookFailed(ctx context.Context, err *InterceptorError) {
	s.logger.WarnContext(
		ctx,
		"interceptor hook failed",
		slog.String("store", s.name),
		slog.Int("interceptor", err.Index),
		slog.String("hook", err.Hook),
		slog.String("error", err.Err.Error()),
	)

	s.emit(ctx, EventInterceptorFailure, observability.LevelWarning, map[string]any{
		"interceptor": err.Index,
		"hook":        err.Hook,
		"error":       err.Err.Error(),
	})
}

func (s *Store[S, E]) emit(ctx context.Context, t observability.EventType, level observability.Level, data map[string]any) {
	if data == nil {
		data = make(map[string]any, 1)
	}
	data["store"] = s.name

	observability.Emit(ctx, s.observer, observability.Event{
		Type:   t,
		Level:  level,
		Source: "store.Store",
		Data:   data,
	})
}
