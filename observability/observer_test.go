package observability_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/tailored-agentic-units/store/observability"
)

func TestLevel_String(t *testing.T) {
	tests := []struct {
		name  string
		level observability.Level
		want  string
	}{
		{name: "trace range", level: 1, want: "TRACE"},
		{name: "verbose maps to DEBUG", level: observability.LevelVerbose, want: "DEBUG"},
		{name: "info maps to INFO", level: observability.LevelInfo, want: "INFO"},
		{name: "warning maps to WARN", level: observability.LevelWarning, want: "WARN"},
		{name: "error maps to ERROR", level: observability.LevelError, want: "ERROR"},
		{name: "fatal range", level: 21, want: "FATAL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.level.String(); got != tt.want {
				t.Errorf("Level(%d).String() = %q, want %q", tt.level, got, tt.want)
			}
		})
	}
}

func TestLevel_SlogLevel(t *testing.T) {
	tests := []struct {
		level observability.Level
		want  slog.Level
	}{
		{level: observability.LevelVerbose, want: slog.LevelDebug},
		{level: observability.LevelInfo, want: slog.LevelInfo},
		{level: observability.LevelWarning, want: slog.LevelWarn},
		{level: observability.LevelError, want: slog.LevelError},
	}

	for _, tt := range tests {
		if got := tt.level.SlogLevel(); got != tt.want {
			t.Errorf("Level(%d).SlogLevel() = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestEmit_StampsTimestamp(t *testing.T) {
	rec := &observability.Recorder{}
	before := time.Now()

	observability.Emit(context.Background(), rec, observability.Event{Type: "test.event"})

	events := rec.Events()
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0].Timestamp.Before(before) {
		t.Errorf("timestamp %v not stamped after %v", events[0].Timestamp, before)
	}
}

func TestEmit_NilObserver(t *testing.T) {
	observability.Emit(context.Background(), nil, observability.Event{Type: "test.event"})
}

func TestMultiObserver_NilFiltering(t *testing.T) {
	rec := &observability.Recorder{}
	multi := observability.NewMultiObserver(nil, rec, nil)

	if multi.Len() != 1 {
		t.Errorf("Len() = %d, want 1", multi.Len())
	}

	multi.OnEvent(context.Background(), observability.Event{Type: "test.event"})

	if len(rec.Events()) != 1 {
		t.Errorf("received %d events, want 1", len(rec.Events()))
	}
}

type panicObserver struct{}

func (panicObserver) OnEvent(ctx context.Context, event observability.Event) {
	panic("observer failure")
}

func TestMultiObserver_RecoversPanickingObserver(t *testing.T) {
	var buf bytes.Buffer
	fallback := slog.New(slog.NewTextHandler(&buf, nil))

	first := &observability.Recorder{}
	last := &observability.Recorder{}
	multi := observability.NewMultiObserver(first, panicObserver{}, panicObserver{}, last).
		WithFallback(fallback)

	multi.OnEvent(context.Background(), observability.Event{Type: "test.event"})

	if len(first.Events()) != 1 {
		t.Errorf("first observer received %d events, want 1", len(first.Events()))
	}
	if len(last.Events()) != 1 {
		t.Errorf("last observer received %d events, want 1", len(last.Events()))
	}
	if got := strings.Count(buf.String(), "observer panicked"); got != 2 {
		t.Errorf("fallback logged %d panics, want 2: %s", got, buf.String())
	}
}

func TestSlogObserver_LevelMapping(t *testing.T) {
	tests := []struct {
		name      string
		level     observability.Level
		minLevel  slog.Level
		expectLog bool
	}{
		{name: "verbose at debug handler", level: observability.LevelVerbose, minLevel: slog.LevelDebug, expectLog: true},
		{name: "verbose at info handler", level: observability.LevelVerbose, minLevel: slog.LevelInfo, expectLog: false},
		{name: "info at warn handler", level: observability.LevelInfo, minLevel: slog.LevelWarn, expectLog: false},
		{name: "error at error handler", level: observability.LevelError, minLevel: slog.LevelError, expectLog: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: tt.minLevel}))

			observability.NewSlogObserver(logger).OnEvent(context.Background(), observability.Event{
				Type:   "test.event",
				Level:  tt.level,
				Source: "test",
			})

			if hasOutput := buf.Len() > 0; hasOutput != tt.expectLog {
				t.Errorf("log output = %v, want %v (buf: %q)", hasOutput, tt.expectLog, buf.String())
			}
		})
	}
}

func TestSlogObserver_EventTypeAsMessage(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	observability.NewSlogObserver(logger).OnEvent(context.Background(), observability.Event{
		Type:   "store.dispatch.start",
		Level:  observability.LevelInfo,
		Source: "store.Dispatch",
		Data:   map[string]any{"sequence": 42},
	})

	output := buf.String()
	for _, want := range []string{"store.dispatch.start", "source=store.Dispatch", "sequence=42"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output, got: %s", want, output)
		}
	}
}

func TestSlogObserver_DataLayout(t *testing.T) {
	event := observability.Event{
		Type:   "task.complete",
		Level:  observability.LevelInfo,
		Source: "store.execute",
		Data:   map[string]any{"zeta": 3, "beta": 2, "alpha": 1},
	}

	t.Run("sorted top-level attributes", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))

		observability.NewSlogObserver(logger).OnEvent(context.Background(), event)

		output := buf.String()
		alpha, beta, zeta := strings.Index(output, "alpha=1"), strings.Index(output, "beta=2"), strings.Index(output, "zeta=3")
		if alpha < 0 || !(alpha < beta && beta < zeta) {
			t.Errorf("attributes not in key order: %s", output)
		}
	})

	t.Run("grouped attributes", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))

		observability.NewSlogObserver(logger, observability.WithDataGroup("data")).
			OnEvent(context.Background(), event)

		output := buf.String()
		for _, want := range []string{"source=store.execute", "data.alpha=1", "data.beta=2", "data.zeta=3"} {
			if !strings.Contains(output, want) {
				t.Errorf("expected %q in output, got: %s", want, output)
			}
		}
	})
}

func TestSlogObserver_UsesEventTimestamp(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	observability.NewSlogObserver(logger).OnEvent(context.Background(), observability.Event{
		Type:      "store.dispatch.start",
		Level:     observability.LevelInfo,
		Timestamp: at,
	})

	if !strings.Contains(buf.String(), `"time":"2024-01-02T03:04:05Z"`) {
		t.Errorf("record time is not the event timestamp: %s", buf.String())
	}
}

func TestSlogObserver_FollowsDefaultLogger(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	obs := observability.NewSlogObserver(nil)

	var buf bytes.Buffer
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))

	obs.OnEvent(context.Background(), observability.Event{Type: "late.default", Level: observability.LevelInfo})

	if !strings.Contains(buf.String(), "late.default") {
		t.Errorf("observer did not write to the current default logger: %q", buf.String())
	}
}

func TestRegistry_Resolve(t *testing.T) {
	reg := observability.NewRegistry()
	first := &observability.Recorder{}
	second := &observability.Recorder{}
	reg.Register("first", first)
	reg.Register("second", second)

	tests := []struct {
		name       string
		spec       string
		wantMulti  int
		wantFirst  int
		wantSecond int
		wantErr    bool
	}{
		{name: "single name", spec: "first", wantFirst: 1},
		{name: "two names", spec: "first,second", wantMulti: 2, wantFirst: 1, wantSecond: 1},
		{name: "spaces and repeats", spec: " second , first,second ,", wantMulti: 2, wantFirst: 1, wantSecond: 1},
		{name: "noop is dropped", spec: "noop,second", wantSecond: 1},
		{name: "only noop", spec: "noop"},
		{name: "empty", spec: ""},
		{name: "unknown name", spec: "first,missing", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first.Reset()
			second.Reset()

			obs, err := reg.Resolve(tt.spec)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Resolve(%q) error = %v, wantErr %v", tt.spec, err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, observability.ErrUnknownObserver) {
					t.Errorf("Resolve(%q) error = %v, want ErrUnknownObserver", tt.spec, err)
				}
				return
			}

			multi, isMulti := obs.(*observability.MultiObserver)
			if tt.wantMulti > 0 {
				if !isMulti || multi.Len() != tt.wantMulti {
					t.Errorf("Resolve(%q) = %T, want MultiObserver of %d", tt.spec, obs, tt.wantMulti)
				}
			} else if isMulti {
				t.Errorf("Resolve(%q) returned a MultiObserver for one observer", tt.spec)
			}

			obs.OnEvent(context.Background(), observability.Event{Type: "test.event"})
			if got := len(first.Events()); got != tt.wantFirst {
				t.Errorf("first received %d events, want %d", got, tt.wantFirst)
			}
			if got := len(second.Events()); got != tt.wantSecond {
				t.Errorf("second received %d events, want %d", got, tt.wantSecond)
			}
		})
	}
}

func TestRegistry_ZeroValue(t *testing.T) {
	var reg observability.Registry
	if _, err := reg.Get("slog"); err == nil {
		t.Error("zero Registry should start empty")
	}

	reg.Register("rec", &observability.Recorder{})
	if names := reg.Names(); len(names) != 1 || names[0] != "rec" {
		t.Errorf("Names() = %v, want [rec]", names)
	}
}

func TestRegistry(t *testing.T) {
	for _, name := range []string{"noop", "slog"} {
		if _, err := observability.GetObserver(name); err != nil {
			t.Errorf("GetObserver(%q) error = %v", name, err)
		}
	}
	if _, err := observability.GetObserver("nonexistent"); err == nil {
		t.Error("GetObserver(nonexistent) should fail")
	}

	rec := &observability.Recorder{}
	observability.RegisterObserver("test-recorder", rec)

	obs, err := observability.GetObserver("test-recorder")
	if err != nil {
		t.Fatalf("GetObserver failed: %v", err)
	}
	obs.OnEvent(context.Background(), observability.Event{Type: "test.event"})
	if len(rec.Events()) != 1 {
		t.Errorf("received %d events, want 1", len(rec.Events()))
	}

	found := false
	for _, name := range observability.Observers() {
		if name == "test-recorder" {
			found = true
		}
	}
	if !found {
		t.Errorf("Observers() = %v, missing test-recorder", observability.Observers())
	}
}

func TestRecorder_Concurrent(t *testing.T) {
	rec := &observability.Recorder{}

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for range 50 {
				rec.OnEvent(context.Background(), observability.Event{
					Type: "test.event",
					Data: map[string]any{"goroutine": id},
				})
			}
		}(i)
	}
	wg.Wait()

	if got := len(rec.OfType("test.event")); got != 500 {
		t.Errorf("recorded %d events, want 500", got)
	}

	rec.Reset()
	if len(rec.Events()) != 0 {
		t.Errorf("Reset() left %d events", len(rec.Events()))
	}
}
