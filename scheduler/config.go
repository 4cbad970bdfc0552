package scheduler

import "time"

// DefaultHandoff is how long a pool worker waits for a function before
// leaving it to run on its own.
const DefaultHandoff = 10 * time.Millisecond

const (
	ModeGoroutines = "goroutines"
	ModePool       = "pool"
)

// Config selects and sizes the scheduler.
//
// Example JSON:
//
//	{"mode": "pool", "max_workers": 8}
type Config struct {
	// Mode is "goroutines" (default) or "pool".
	Mode string `json:"mode"`

	// MaxWorkers specifies exact pool size (0 = auto-detect)
	MaxWorkers int `json:"max_workers"`

	// WorkerCap limits auto-detected workers
	WorkerCap int `json:"worker_cap"`

	// Handoff is how long a pool worker waits for a running function before
	// starting the next one. JSON values are nanoseconds.
	Handoff time.Duration `json:"handoff"`
}

// DefaultConfig returns a goroutine-per-task scheduler configuration with a
// worker cap of 16 and the default handoff for pool mode.
func DefaultConfig() Config {
	return Config{
		Mode:       ModeGoroutines,
		MaxWorkers: 0,
		WorkerCap:  16,
		Handoff:    DefaultHandoff,
	}
}

func (c *Config) Merge(source *Config) {
	if source.Mode != "" {
		c.Mode = source.Mode
	}

	if source.MaxWorkers > 0 {
		c.MaxWorkers = source.MaxWorkers
	}

	if source.WorkerCap > 0 {
		c.WorkerCap = source.WorkerCap
	}

	if source.Handoff > 0 {
		c.Handoff = source.Handoff
	}
}
