package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tailored-agentic-units/store/interceptors"
	"github.com/tailored-agentic-units/store/store"
	"github.com/tailored-agentic-units/store/task"
)

var (
	fanOut    int
	slowDelay time.Duration
)

var counterCmd = &cobra.Command{
	Use:   "counter",
	Short: "Run the counter demonstration",
	Long: `Runs a counter store through four rounds:

  1. a slow increment followed immediately by a fast one
  2. a merged fan-out of increments
  3. a long-running watcher that is cancelled by id
  4. a failing task whose error is recorded by its handler`,
	RunE: runCounter,
}

func init() {
	counterCmd.Flags().IntVar(&fanOut, "fan-out", 10, "Number of merged increments in round 2")
	counterCmd.Flags().DurationVar(&slowDelay, "slow-delay", 100*time.Millisecond, "Delay of the slow increment")
}

type counterState struct {
	Count     int
	History   []string
	Errors    []string
	Cancelled int
}

type counterEvent struct {
	Kind string
	N    int
}

func (e counterEvent) String() string {
	return e.Kind
}

var errFlaky = errors.New("flaky task failed")

func reduceCounter(delay time.Duration) store.Reducer[counterState, counterEvent] {
	return func(e counterEvent, s *counterState) task.Node[counterState] {
		switch e.Kind {
		case "slow":
			return task.Run(func(ctx context.Context, mutate task.Mutator[counterState]) error {
				select {
				case <-time.After(delay):
				case <-ctx.Done():
					return ctx.Err()
				}
				mutate(func(s *counterState) {
					s.Count++
					s.History = append(s.History, "slow")
				})
				return nil
			}, task.WithID("slow"))
		case "fast":
			s.Count++
			s.History = append(s.History, "fast")
		case "fanout":
			nodes := make([]task.Node[counterState], 0, e.N)
			for i := range e.N {
				nodes = append(nodes, task.Update(func(s *counterState) { s.Count++ }, task.WithID(fmt.Sprintf("inc-%d", i))))
			}
			return task.Merge(nodes...)
		case "watch":
			return task.RunCatching(
				func(ctx context.Context, mutate task.Mutator[counterState]) error {
					<-ctx.Done()
					return ctx.Err()
				},
				recordFailure,
				task.WithID("watch"),
				task.CancelInFlight(),
				task.AtPriority(task.PriorityBackground),
			)
		case "fail":
			return task.RunCatching(
				func(ctx context.Context, mutate task.Mutator[counterState]) error {
					return errFlaky
				},
				recordFailure,
			)
		}
		return task.Empty[counterState]()
	}
}

func recordFailure(err error, mutate task.Mutator[counterState]) {
	if task.IsCancellation(err) {
		mutate(func(s *counterState) { s.Cancelled++ })
		return
	}
	mutate(func(s *counterState) { s.Errors = append(s.Errors, err.Error()) })
}

func runCounter(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig("counter")
	if err != nil {
		return err
	}

	logger, err := newLogger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	metrics := interceptors.NewMetrics[counterState, counterEvent]()
	s, err := store.New(reduceCounter(slowDelay), counterState{},
		store.WithConfig(cfg),
		store.WithLogger(logger),
		store.WithInterceptors(
			interceptors.NewLogging[counterState, counterEvent](logger, cfg.Name),
			metrics,
		),
	)
	if err != nil {
		return fmt.Errorf("failed to create store: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.Close(closeCtx)
	}()

	out := cmd.OutOrStdout()
	if err := playCounter(ctx, s, fanOut, out); err != nil {
		return err
	}

	status := s.Status()
	snap := metrics.Snapshot()
	fmt.Fprintf(out, "status: processed=%d aborted=%d running=%d queue=%d/%d\n",
		status.Processed, status.Aborted, status.Running, status.Queued, status.QueueCapacity)
	fmt.Fprintf(out, "metrics: started=%d completed=%d leaves=%d avg=%s\n",
		snap.Started, snap.Completed, snap.Leaves, snap.AverageDuration().Round(time.Microsecond))
	return nil
}

func playCounter(ctx context.Context, s *store.Store[counterState, counterEvent], n int, out io.Writer) error {
	if _, err := s.Dispatch(ctx, counterEvent{Kind: "slow"}); err != nil {
		return err
	}
	if err := s.Send(ctx, counterEvent{Kind: "fast"}); err != nil {
		return err
	}
	fmt.Fprintf(out, "round 1: history=%s count=%d\n", strings.Join(s.State().History, ","), s.State().Count)

	if err := s.Send(ctx, counterEvent{Kind: "fanout", N: n}); err != nil {
		return err
	}
	fmt.Fprintf(out, "round 2: count=%d\n", s.State().Count)

	watch, err := s.Dispatch(ctx, counterEvent{Kind: "watch"})
	if err != nil {
		return err
	}
	if err := waitRunning(ctx, s, "watch"); err != nil {
		return err
	}
	s.Cancel("watch")
	if err := watch.Wait(ctx); err != nil {
		return err
	}
	fmt.Fprintf(out, "round 3: cancelled=%d errors=%d running=%d\n",
		s.State().Cancelled, len(s.State().Errors), s.RunningCount())

	if err := s.Send(ctx, counterEvent{Kind: "fail"}); err != nil {
		return err
	}
	fmt.Fprintf(out, "round 4: errors=%s\n", strings.Join(s.State().Errors, ";"))
	return nil
}

func waitRunning(ctx context.Context, s *store.Store[counterState, counterEvent], id string) error {
	ticker := time.NewTicker(time.Millisecond)
	defer ticker.Stop()

	for !s.IsRunning(id) {
		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for %s to start: %w", id, ctx.Err())
		case <-ticker.C:
		}
	}
	return nil
}
