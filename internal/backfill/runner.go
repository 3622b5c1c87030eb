package backfill

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofrs/flock"

	"github.com/amishk599/cadre/internal/model"
)

// ErrLocked is returned when another maintenance run holds the lock.
var ErrLocked = errors.New("another backfill is running")

// Store is the read-write access a backfill needs.
type Store interface {
	model.RecordSource
	model.RecordUpdater
}

// Options bounds a run.
type Options struct {
	BatchSize    int           // records per update request, at most 10
	Delay        time.Duration // pause after each update request
	MaxRuntime   time.Duration // stop starting new work after this long
	ATSBatchSize int           // companies looked up per ATS URL run
	ATSDelay     time.Duration // pause before each URL lookup
	LockPath     string        // empty disables locking
}

// Runner executes maintenance runs against the backing store. Each run
// holds a file lock so only one process writes at a time, and its report is
// delivered to the notifier.
type Runner struct {
	store    Store
	tables   model.TableNames
	opts     Options
	notifier model.Notifier
	logger   *slog.Logger
	now      func() time.Time
	sleep    func(ctx context.Context, d time.Duration) error
}

// NewRunner creates a Runner.
func NewRunner(store Store, tables model.TableNames, opts Options, notifier model.Notifier, logger *slog.Logger) *Runner {
	if opts.BatchSize <= 0 || opts.BatchSize > 10 {
		opts.BatchSize = 10
	}
	if opts.ATSBatchSize <= 0 {
		opts.ATSBatchSize = 15
	}
	return &Runner{
		store:    store,
		tables:   tables,
		opts:     opts,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
		sleep:    sleepCtx,
	}
}

// run holds the lock around fn, times it, and notifies the result.
func (r *Runner) run(ctx context.Context, name string, fn func(ctx context.Context, rep *model.RunReport, deadline time.Time) error) (model.RunReport, error) {
	rep := model.RunReport{Name: name}

	if r.opts.LockPath != "" {
		lock := flock.New(r.opts.LockPath)
		locked, err := lock.TryLock()
		if err != nil {
			return rep, fmt.Errorf("%s: acquiring lock: %w", name, err)
		}
		if !locked {
			return rep, fmt.Errorf("%s: %w", name, ErrLocked)
		}
		defer lock.Unlock()
	}

	start := r.now()
	err := fn(ctx, &rep, start.Add(r.opts.MaxRuntime))
	rep.Runtime = r.now().Sub(start)
	if err != nil {
		return rep, fmt.Errorf("%s: %w", name, err)
	}

	r.logger.Info("backfill finished",
		"name", name,
		"processed", rep.Processed,
		"updated", rep.Updated,
		"skipped", rep.Skipped,
		"errors", len(rep.Errors),
		"has_more", rep.HasMore,
		"elapsed", rep.Runtime,
	)
	if err := r.notifier.Notify(rep); err != nil {
		r.logger.Error("notifying backfill report", "name", name, "error", err)
	}
	return rep, nil
}

// flush writes updates in batches, counting successes and failures. It
// returns false when the deadline passed or ctx ended before every batch was
// sent. A zero deadline never expires.
func (r *Runner) flush(ctx context.Context, table string, updates []model.RecordUpdate, rep *model.RunReport, deadline time.Time) bool {
	for start := 0; start < len(updates); start += r.opts.BatchSize {
		if !deadline.IsZero() && r.now().After(deadline) {
			return false
		}
		end := min(start+r.opts.BatchSize, len(updates))
		batch := updates[start:end]
		if err := r.store.UpdateRecords(ctx, table, batch); err != nil {
			r.logger.Warn("batch update failed", "table", table, "records", len(batch), "error", err)
			rep.Errors = append(rep.Errors, err.Error())
		} else {
			rep.Updated += len(batch)
		}
		if err := r.sleep(ctx, r.opts.Delay); err != nil {
			return false
		}
	}
	return true
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
