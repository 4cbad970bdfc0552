package observability

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
)

// ErrUnknownObserver is returned when a name has no registered observer.
var ErrUnknownObserver = errors.New("unknown observer")

// Registry maps names to observers so configuration files can select them.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Observer
}

// NewRegistry creates a registry holding "noop" and "slog". The slog entry
// follows slog.Default().
func NewRegistry() *Registry {
	return &Registry{
		entries: map[string]Observer{
			"noop": NoOpObserver{},
			"slog": NewSlogObserver(nil),
		},
	}
}

// Register adds or replaces the observer stored under name.
func (r *Registry) Register(name string, observer Observer) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.entries == nil {
		r.entries = make(map[string]Observer)
	}
	r.entries[name] = observer
}

// Get returns the observer stored under name.
func (r *Registry) Get(name string) (Observer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	obs, exists := r.entries[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownObserver, name)
	}
	return obs, nil
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Resolve turns a comma-separated list of names into one observer.
//
// Blank and repeated names are ignored, and NoOpObserver entries are
// dropped. A single remaining observer is returned as-is; several
// are combined with a MultiObserver in the order listed. When nothing
// remains the result is NoOpObserver.
func (r *Registry) Resolve(spec string) (Observer, error) {
	var (
		resolved []Observer
		seen     = make(map[string]bool)
	)

	for part := range strings.SplitSeq(spec, ",") {
		name := strings.TrimSpace(part)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		obs, err := r.Get(name)
		if err != nil {
			return nil, err
		}
		if _, ok := obs.(NoOpObserver); ok {
			continue
		}
		resolved = append(resolved, obs)
	}

	switch len(resolved) {
	case 0:
		return NoOpObserver{}, nil
	case 1:
		return resolved[0], nil
	default:
		return NewMultiObserver(resolved...), nil
	}
}

var defaultRegistry = NewRegistry()

// GetObserver returns the observer registered under name in the process-wide
// registry.
func GetObserver(name string) (Observer, error) {
	return defaultRegistry.Get(name)
}

// RegisterObserver adds or replaces a named observer in the process-wide
// registry.
func RegisterObserver(name string, observer Observer) {
	defaultRegistry.Register(name, observer)
}

// Observers returns the names in the process-wide registry in sorted order.
func Observers() []string {
	return defaultRegistry.Names()
}

// ResolveObserver resolves a comma-separated list of names against the
// process-wide registry. See Registry.Resolve.
func ResolveObserver(spec string) (Observer, error) {
	return defaultRegistry.Resolve(spec)
}
