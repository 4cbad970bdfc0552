package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tailored-agentic-units/store/store"
	"github.com/tailored-agentic-units/store/task"
)

var depth int

var nestedCmd = &cobra.Command{
	Use:   "nested",
	Short: "Run a deep chain of sequential tasks",
	Long: `Builds a concatenation of --depth update tasks, nested one level per
task, runs it through a store and reports the deepest level reached.`,
	RunE: runNested,
}

func init() {
	nestedCmd.Flags().IntVar(&depth, "depth", 500, "Nesting depth of the task chain")
}

type depthState struct {
	Depth    int
	MaxDepth int
}

type descend struct {
	Levels int
}

func reduceDepth(e descend, s *depthState) task.Node[depthState] {
	node := task.Empty[depthState]()
	for level := 1; level <= e.Levels; level++ {
		node = task.Concatenate(node, task.Update(func(s *depthState) {
			s.Depth = level
			s.MaxDepth = max(s.MaxDepth, level)
		}))
	}
	return node
}

func runNested(cmd *cobra.Command, args []string) error {
	if depth < 0 {
		return fmt.Errorf("depth must not be negative: %d", depth)
	}

	cfg, err := loadConfig("nested")
	if err != nil {
		return err
	}

	logger, err := newLogger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	s, err := store.New(reduceDepth, depthState{},
		store.WithConfig(cfg),
		store.WithLogger(logger),
		store.WithIDGenerator(task.NewCounterGenerator("level-")),
	)
	if err != nil {
		return fmt.Errorf("failed to create store: %w", err)
	}
	defer s.Close(cmd.Context())

	start := time.Now()
	if err := s.Send(cmd.Context(), descend{Levels: depth}); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "max depth: %d (%s)\n", s.State().MaxDepth, time.Since(start).Round(time.Millisecond))
	return nil
}
