package store_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tailored-agentic-units/store/scheduler"
	"github.com/tailored-agentic-units/store/store"
)

func TestDefaultConfig(t *testing.T) {
	cfg := store.DefaultConfig()

	want := store.Config{
		Name:      "default",
		Observer:  "slog",
		QueueSize: 100,
		Scheduler: scheduler.Config{Mode: scheduler.ModeGoroutines, WorkerCap: 16, Handoff: scheduler.DefaultHandoff},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("DefaultConfig() mismatch (-want +got):\n%s", diff)
	}
}

func TestConfig_Merge(t *testing.T) {
	tests := []struct {
		name   string
		source store.Config
		want   store.Config
	}{
		{
			name:   "zero source keeps defaults",
			source: store.Config{},
			want:   store.DefaultConfig(),
		},
		{
			name:   "overrides name and queue",
			source: store.Config{Name: "counter", QueueSize: 8},
			want: store.Config{
				Name:      "counter",
				Observer:  "slog",
				QueueSize: 8,
				Scheduler: scheduler.DefaultConfig(),
			},
		},
		{
			name:   "merges nested scheduler",
			source: store.Config{Observer: "noop", Scheduler: scheduler.Config{Mode: scheduler.ModePool, MaxWorkers: 2}},
			want: store.Config{
				Name:      "default",
				Observer:  "noop",
				QueueSize: 100,
				Scheduler: scheduler.Config{Mode: scheduler.ModePool, MaxWorkers: 2, WorkerCap: 16, Handoff: scheduler.DefaultHandoff},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := store.DefaultConfig()
			cfg.Merge(&tt.source)
			if diff := cmp.Diff(tt.want, cfg); diff != "" {
				t.Errorf("Merge() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()

	t.Run("valid file", func(t *testing.T) {
		path := filepath.Join(dir, "store.json")
		data := `{"name": "orders", "queue_size": 32, "scheduler": {"mode": "pool", "max_workers": 4}}`
		if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
			t.Fatal(err)
		}

		cfg, err := store.LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}

		want := store.Config{
			Name:      "orders",
			Observer:  "slog",
			QueueSize: 32,
			Scheduler: scheduler.Config{Mode: scheduler.ModePool, MaxWorkers: 4, WorkerCap: 16, Handoff: scheduler.DefaultHandoff},
		}
		if diff := cmp.Diff(want, *cfg); diff != "" {
			t.Errorf("LoadConfig() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := store.LoadConfig(filepath.Join(dir, "missing.json")); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		path := filepath.Join(dir, "broken.json")
		if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
			t.Fatal(err)
		}
		if _, err := store.LoadConfig(path); err == nil {
			t.Error("expected error for invalid JSON")
		}
	})
}
