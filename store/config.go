package store

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tailored-agentic-units/store/scheduler"
)

// Config holds initialization parameters for a Store. Functional options
// passed to New override the collaborators created from it.
//
// Example JSON:
//
//	{
//	  "name": "counter",
//	  "observer": "slog",
//	  "queue_size": 256,
//	  "scheduler": {"mode": "pool", "max_workers": 4}
//	}
type Config struct {
	// Name labels the store in events and logs.
	Name string `json:"name,omitempty"`

	// Observer is a comma-separated list of names resolved through the
	// observability registry, e.g. "slog" or "slog,metrics".
	Observer string `json:"observer,omitempty"`

	// QueueSize bounds the number of dispatched events awaiting processing.
	// Dispatch blocks while the queue is full.
	QueueSize int `json:"queue_size,omitempty"`

	Scheduler scheduler.Config `json:"scheduler"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Name:      "default",
		Observer:  "slog",
		QueueSize: 100,
		Scheduler: scheduler.DefaultConfig(),
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Name != "" {
		c.Name = source.Name
	}

	if source.Observer != "" {
		c.Observer = source.Observer
	}

	if source.QueueSize > 0 {
		c.QueueSize = source.QueueSize
	}

	c.Scheduler.Merge(&source.Scheduler)
}

// LoadConfig reads a JSON config file, merges it with defaults, and returns
// the resulting Config.
func LoadConfig(filename string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var loaded Config
	if err := json.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.Merge(&loaded)
	return &cfg, nil
}
