package scheduler

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// Task is a unit of periodic work such as a snapshot refresh or a store prune.
type Task struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Scheduler owns the background loops: each task runs once immediately and
// then on its own interval, independently of the others.
type Scheduler struct {
	tasks  []Task
	logger *slog.Logger
}

// NewScheduler creates a scheduler for the given tasks. Tasks with a
// non-positive interval run once.
func NewScheduler(tasks []Task, logger *slog.Logger) *Scheduler {
	return &Scheduler{tasks: tasks, logger: logger}
}

// Run starts one goroutine per task and blocks until ctx is cancelled.
// It returns nil on graceful shutdown; task failures are logged, not returned.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("starting scheduler", "tasks", len(s.tasks))

	g, ctx := errgroup.WithContext(ctx)
	for _, t := range s.tasks {
		g.Go(func() error {
			s.loop(ctx, t)
			return nil
		})
	}
	err := g.Wait()
	s.logger.Info("shutting down scheduler")
	return err
}

func (s *Scheduler) loop(ctx context.Context, t Task) {
	s.runOnce(ctx, t)
	if t.Interval <= 0 {
		return
	}

	ticker := time.NewTicker(t.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx, t)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context, t Task) {
	if ctx.Err() != nil {
		return
	}
	start := time.Now()
	if err := t.Run(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		s.logger.Error("task failed", "task", t.Name, "error", err)
		return
	}
	s.logger.Debug("task complete", "task", t.Name, "elapsed", time.Since(start))
}
