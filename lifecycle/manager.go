package lifecycle

import (
	"context"
	"fmt"
	"runtime/debug"
	"slices"
	"sync"
	"time"

	"github.com/tailored-agentic-units/store/observability"
	"github.com/tailored-agentic-units/store/scheduler"
	"github.com/tailored-agentic-units/store/task"
)

// Operation is the work run by the Manager. ctx is cancelled when the work
// is cancelled.
type Operation func(ctx context.Context) error

// ErrorHandler receives the error of a failed operation before its entry is
// removed.
type ErrorHandler func(err error)

// Work describes a unit of work to start.
type Work struct {
	ID        string
	Operation Operation
	OnError   ErrorHandler
	Priority  task.Priority
}

type entry struct {
	handle  *Handle
	cancel  context.CancelCauseFunc
	run     func()
	started time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithScheduler sets the scheduler that runs operations. The Manager does
// not close it.
func WithScheduler(s scheduler.Scheduler) Option {
	return func(m *Manager) { m.scheduler = s }
}

// WithObserver sets the observer that receives task events.
func WithObserver(o observability.Observer) Option {
	return func(m *Manager) { m.observer = o }
}

// WithName labels the Manager in emitted events.
func WithName(name string) Option {
	return func(m *Manager) { m.name = name }
}

// Manager tracks running work by id.
type Manager struct {
	name      string
	scheduler scheduler.Scheduler
	observer  observability.Observer

	mu      sync.Mutex
	entries map[string]*entry
	closed  bool

	ctx     context.Context
	cancel  context.CancelCauseFunc
	running sync.WaitGroup
}

// New creates a Manager. Without options it schedules each operation on its
// own goroutine and discards events.
func New(opts ...Option) *Manager {
	ctx, cancel := context.WithCancelCause(context.Background())

	m := &Manager{
		name:      "default",
		scheduler: scheduler.Goroutines{},
		observer:  observability.NoOpObserver{},
		entries:   make(map[string]*entry),
		ctx:       ctx,
		cancel:    cancel,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// IsRunning reports whether an entry with id is registered.
func (m *Manager) IsRunning(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries[id]
	return ok
}

// Count returns the number of registered entries.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// IDs returns the registered ids in sorted order.
func (m *Manager) IDs() []string {
	m.mu.Lock()
	ids := make([]string, 0, len(m.entries))
	for id := range m.entries {
		ids = append(ids, id)
	}
	m.mu.Unlock()

	slices.Sort(ids)
	return ids
}

// Handle returns the handle registered under id, or nil.
func (m *Manager) Handle(id string) *Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.entries[id]; ok {
		return e.handle
	}
	return nil
}

// Start registers and schedules w. A running entry with the same id is
// cancelled and removed first; its context is done before w is scheduled.
func (m *Manager) Start(w Work) (*Handle, error) {
	if err := validate(w); err != nil {
		return nil, err
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, ErrClosed
	}

	previous := m.removeLocked(w.ID)
	if previous != nil {
		previous.cancel(task.ErrCancelled)
	}
	e := m.registerLocked(w)
	m.mu.Unlock()

	if previous != nil {
		m.emit(EventTaskSupersede, observability.LevelVerbose, w.ID, nil)
	}
	m.schedule(e, w)
	return e.handle, nil
}

// StartQueued starts w once no entry with the same id is running. Unlike
// Start it never cancels existing work; it waits for it to finish. It returns
// early with ctx's error if ctx ends while waiting.
func (m *Manager) StartQueued(ctx context.Context, w Work) (*Handle, error) {
	if err := validate(w); err != nil {
		return nil, err
	}

	for {
		m.mu.Lock()
		if m.closed {
			m.mu.Unlock()
			return nil, ErrClosed
		}

		previous, busy := m.entries[w.ID]
		if !busy {
			e := m.registerLocked(w)
			m.mu.Unlock()
			m.schedule(e, w)
			return e.handle, nil
		}
		m.mu.Unlock()

		select {
		case <-previous.handle.done:
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for %s: %w", w.ID, ctx.Err())
		}
	}
}

// Cancel cancels and removes the entry with id. It reports whether an entry
// was found.
func (m *Manager) Cancel(id string) bool {
	m.mu.Lock()
	e := m.removeLocked(id)
	if e != nil {
		e.cancel(task.ErrCancelled)
	}
	m.mu.Unlock()

	if e == nil {
		return false
	}
	m.emit(EventTaskCancel, observability.LevelVerbose, id, nil)
	return true
}

// CancelMany cancels every listed id and returns how many entries were
// cancelled. Unknown and repeated ids are ignored.
func (m *Manager) CancelMany(ids ...string) int {
	cancelled := 0
	for _, id := range ids {
		if m.Cancel(id) {
			cancelled++
		}
	}
	return cancelled
}

// CancelAll cancels and removes every entry and returns how many there were.
func (m *Manager) CancelAll() int {
	m.mu.Lock()
	removed := m.entries
	m.entries = make(map[string]*entry)
	for _, e := range removed {
		e.cancel(task.ErrCancelled)
	}
	m.mu.Unlock()

	for id := range removed {
		m.emit(EventTaskCancel, observability.LevelVerbose, id, nil)
	}
	return len(removed)
}

// Close cancels every entry and rejects further work. Operations that are
// still returning may outlive Close; use Wait to join them.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	removed := m.entries
	m.entries = make(map[string]*entry)
	m.mu.Unlock()

	m.cancel(task.ErrCancelled)
	for _, e := range removed {
		e.cancel(task.ErrCancelled)
	}

	m.emit(EventManagerClose, observability.LevelInfo, "", map[string]any{
		"cancelled": len(removed),
	})
}

// Wait blocks until every started operation has returned or ctx ends.
func (m *Manager) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		m.running.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for running work: %w", ctx.Err())
	}
}

func validate(w Work) error {
	if w.ID == "" {
		return ErrEmptyID
	}
	if w.Operation == nil {
		return ErrNilOperation
	}
	return nil
}

func (m *Manager) registerLocked(w Work) *entry {
	ctx, cancel := context.WithCancelCause(m.ctx)
	e := &entry{
		handle: &Handle{
			id:   w.ID,
			done: make(chan struct{}),
		},
		cancel:  cancel,
		started: time.Now(),
	}
	e.handle.cancel = func() { m.cancelEntry(e) }

	e.run = func() { m.execute(ctx, e, w) }

	m.entries[w.ID] = e
	m.running.Add(1)
	return e
}

func (m *Manager) removeLocked(id string) *entry {
	e, ok := m.entries[id]
	if !ok {
		return nil
	}
	delete(m.entries, id)
	return e
}

func (m *Manager) cancelEntry(e *entry) {
	m.mu.Lock()
	current, ok := m.entries[e.handle.id]
	if !ok || current != e {
		m.mu.Unlock()
		return
	}
	delete(m.entries, e.handle.id)
	e.cancel(task.ErrCancelled)
	m.mu.Unlock()

	m.emit(EventTaskCancel, observability.LevelVerbose, e.handle.id, nil)
}

func (m *Manager) schedule(e *entry, w Work) {
	m.emit(EventTaskStart, observability.LevelVerbose, w.ID, map[string]any{
		"priority": w.Priority.String(),
	})
	m.scheduler.Schedule(w.Priority, e.run)
}

func (m *Manager) execute(ctx context.Context, e *entry, w Work) {
	defer m.running.Done()

	var err error
	if ctx.Err() != nil {
		err = &task.CancellationError{ID: w.ID, Err: context.Cause(ctx)}
	} else {
		err = invoke(ctx, w.Operation)
		if err != nil && ctx.Err() != nil {
			err = &task.CancellationError{ID: w.ID, Err: err}
		}
	}

	if err != nil && w.OnError != nil {
		m.handleError(w, err)
	}

	m.finish(e, err)
}

func invoke(ctx context.Context, op Operation) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &task.PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return op(ctx)
}

func (m *Manager) handleError(w Work, err error) {
	defer func() {
		if r := recover(); r != nil {
			m.emit(EventTaskError, observability.LevelError, w.ID, map[string]any{
				"error":         fmt.Sprint(r),
				"handler_panic": true,
			})
		}
	}()
	w.OnError(err)
}

func (m *Manager) finish(e *entry, err error) {
	m.mu.Lock()
	if current, ok := m.entries[e.handle.id]; ok && current == e {
		delete(m.entries, e.handle.id)
	}
	m.mu.Unlock()

	e.cancel(nil)
	e.handle.err = err
	close(e.handle.done)

	data := map[string]any{
		"duration": time.Since(e.started),
	}
	switch {
	case err == nil:
		m.emit(EventTaskComplete, observability.LevelVerbose, e.handle.id, data)
	case task.IsCancellation(err):
		data["cancelled"] = true
		m.emit(EventTaskComplete, observability.LevelVerbose, e.handle.id, data)
	default:
		data["error"] = err.Error()
		m.emit(EventTaskError, observability.LevelWarning, e.handle.id, data)
	}
}

func (m *Manager) emit(t observability.EventType, level observability.Level, id string, data map[string]any) {
	if data == nil {
		data = make(map[string]any, 2)
	}
	data["manager"] = m.name
	if id != "" {
		data["id"] = id
	}

	observability.Emit(m.ctx, m.observer, observability.Event{
		Type:   t,
		Level:  level,
		Source: "lifecycle.Manager",
		Data:   data,
	})
}
