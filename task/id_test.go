package task_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/tailored-agentic-units/store/task"
)

func TestID(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{name: "nil", in: nil, want: ""},
		{name: "string", in: "fetch", want: "fetch"},
		{name: "int", in: 12, want: "12"},
		{name: "int64", in: int64(-4), want: "-4"},
		{name: "uint64", in: uint64(8), want: "8"},
		{name: "stringer", in: stringerID{5}, want: "item-5"},
		{name: "stringer pointer", in: &stringerID{6}, want: "item-6"},
		{name: "nil stringer pointer", in: (*stringerID)(nil), want: "<nil>"},
		{name: "nil-safe stringer pointer", in: (*nilSafeID)(nil), want: "none"},
		{name: "named int stringer", in: slotID(3), want: "slot-3"},
		{name: "struct", in: struct{ A int }{1}, want: "{1}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := task.ID(tt.in); got != tt.want {
				t.Errorf("ID(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

type nilSafeID struct{ name string }

func (id *nilSafeID) String() string {
	if id == nil {
		return "none"
	}
	return id.name
}

type slotID int

func (s slotID) String() string { return fmt.Sprintf("slot-%d", int(s)) }

func TestCounterGenerator(t *testing.T) {
	gen := task.NewCounterGenerator("leaf-")
	if got := gen.NextID(); got != "leaf-1" {
		t.Errorf("first id = %q, want leaf-1", got)
	}
	if got := gen.NextID(); got != "leaf-2" {
		t.Errorf("second id = %q, want leaf-2", got)
	}
}

func TestGenerators_Unique(t *testing.T) {
	generators := map[string]task.IDGenerator{
		"counter": task.NewCounterGenerator("x"),
		"uuid":    task.UUIDGenerator{},
	}

	for name, gen := range generators {
		t.Run(name, func(t *testing.T) {
			var (
				mu   sync.Mutex
				seen = make(map[string]bool)
				wg   sync.WaitGroup
			)
			for range 8 {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for range 100 {
						id := gen.NextID()
						mu.Lock()
						if seen[id] {
							t.Errorf("duplicate id %q", id)
						}
						seen[id] = true
						mu.Unlock()
					}
				}()
			}
			wg.Wait()

			if len(seen) != 800 {
				t.Errorf("generated %d unique ids, want 800", len(seen))
			}
		})
	}
}

func TestCancellationError(t *testing.T) {
	err := &task.CancellationError{ID: "fetch", Err: context.Canceled}

	if !task.IsCancellation(err) {
		t.Error("IsCancellation() = false, want true")
	}
	if !errors.Is(err, context.Canceled) {
		t.Error("errors.Is(err, context.Canceled) = false, want true")
	}

	wrapped := fmt.Errorf("leaf failed: %w", err)
	var cancelErr *task.CancellationError
	if !errors.As(wrapped, &cancelErr) || cancelErr.ID != "fetch" {
		t.Errorf("errors.As failed for %v", wrapped)
	}

	if task.IsCancellation(errors.New("boom")) {
		t.Error("plain error reported as cancellation")
	}
	if task.IsCancellation(context.Canceled) {
		t.Error("bare context.Canceled reported as cancellation")
	}

	bare := &task.CancellationError{ID: "x"}
	if bare.Error() != `task "x" cancelled` || !task.IsCancellation(bare) {
		t.Errorf("bare cancellation error = %q", bare.Error())
	}
}

func TestPanicError(t *testing.T) {
	cause := errors.New("nil map write")
	err := &task.PanicError{Value: cause}

	if !errors.Is(err, cause) {
		t.Error("PanicError should unwrap an error value")
	}
	if (&task.PanicError{Value: "boom"}).Unwrap() != nil {
		t.Error("non-error panic value should not unwrap")
	}
	if got := (&task.PanicError{Value: "boom"}).Error(); got != "task panicked: boom" {
		t.Errorf("Error() = %q", got)
	}
}

func TestPriority_String(t *testing.T) {
	if task.PriorityUserInitiated.String() != "user-initiated" {
		t.Errorf("got %q", task.PriorityUserInitiated.String())
	}
	if task.Priority(42).String() != "unknown" {
		t.Errorf("got %q", task.Priority(42).String())
	}
}
