package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/tailored-agentic-units/store/store"
)

var (
	configFile string
	verbose    bool
	logFormat  string
)

var rootCmd = &cobra.Command{
	Use:   "storectl",
	Short: "Run demonstration stores",
	Long: `storectl runs small stores that exercise sequential dispatch, merged
fan-out, cancellation and deep task chains, and prints what happened.

Store settings can be supplied as a JSON file with --config:

  {"name": "demo", "queue_size": 64, "scheduler": {"mode": "pool"}}`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to store config JSON file")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable verbose logging to stderr")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format: text or json")

	rootCmd.AddCommand(counterCmd)
	rootCmd.AddCommand(nestedCmd)
	rootCmd.AddCommand(observersCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig returns the config named by --config, or defaults labelled
// with name.
func loadConfig(name string) (store.Config, error) {
	if configFile == "" {
		cfg := store.DefaultConfig()
		cfg.Name = name
		return cfg, nil
	}

	cfg, err := store.LoadConfig(configFile)
	if err != nil {
		return store.Config{}, err
	}
	return *cfg, nil
}

func newLogger(w io.Writer) (*slog.Logger, error) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	switch logFormat {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unknown log format: %s", logFormat)
	}
}
