package board

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/amishk599/cadre/internal/model"
	"github.com/amishk599/cadre/internal/source"
)

// Status says where the records of a FetchResult came from.
type Status string

const (
	// StatusLive means the backing store answered. The table may still be empty.
	StatusLive Status = "live"
	// StatusEmpty means an optional table is missing or unreadable and was
	// replaced by no records.
	StatusEmpty Status = "empty"
	// StatusFallback means the fetch failed and a stored snapshot or the
	// sample dataset was substituted.
	StatusFallback Status = "fallback"
)

// FetchResult is the outcome of fetching one table. Err holds the failure
// behind an empty or fallback result.
type FetchResult struct {
	Table     string
	Records   []model.Record
	Status    Status
	Sample    bool      // records are the built-in sample dataset
	FetchedAt time.Time // when the records were read from the store
	Err       error
}

// Fetcher reads tables from the backing store and degrades failures instead
// of returning them. A nil source means the store is not configured.
type Fetcher struct {
	source   model.RecordSource
	store    model.SnapshotStore
	sample   *source.SampleSource
	pageSize int
	now      func() time.Time
	logger   *slog.Logger
}

// NewFetcher creates a Fetcher. Successful fetches are saved to store; failed
// ones are replaced from it when possible, then from sample.
func NewFetcher(src model.RecordSource, store model.SnapshotStore, sample *source.SampleSource, pageSize int, logger *slog.Logger) *Fetcher {
	return &Fetcher{
		source:   src,
		store:    store,
		sample:   sample,
		pageSize: pageSize,
		now:      time.Now,
		logger:   logger,
	}
}

// Configured reports whether a backing store is wired in.
func (f *Fetcher) Configured() bool {
	return f.source != nil
}

// Fetch lists table. Optional tables degrade to StatusEmpty when missing;
// every other failure is replaced by a stored snapshot, or by sample records.
func (f *Fetcher) Fetch(ctx context.Context, table string, optional bool) FetchResult {
	if f.source == nil {
		return f.sampleResult(table, model.ErrNotConfigured)
	}

	start := f.now()
	records, err := f.source.ListRecords(ctx, table, model.Query{PageSize: f.pageSize})
	if err == nil {
		f.logger.Debug("fetched table", "table", table, "records", len(records), "elapsed", time.Since(start))
		if err := f.store.SaveSnapshot(table, records); err != nil {
			f.logger.Warn("saving snapshot failed", "table", table, "error", err)
		}
		return FetchResult{Table: table, Records: records, Status: StatusLive, FetchedAt: start}
	}

	if optional && errors.Is(err, model.ErrTableNotFound) {
		f.logger.Info("optional table missing", "table", table)
		return FetchResult{Table: table, Status: StatusEmpty, Err: err}
	}

	f.logger.Warn("fetch failed, degrading", "table", table, "error", err)
	if stale, fetchedAt, serr := f.store.LoadSnapshot(table); serr == nil {
		return FetchResult{Table: table, Records: stale, Status: StatusFallback, FetchedAt: fetchedAt, Err: err}
	}
	if optional {
		return FetchResult{Table: table, Status: StatusEmpty, Err: err}
	}
	return f.sampleResult(table, err)
}

func (f *Fetcher) sampleResult(table string, err error) FetchResult {
	return FetchResult{
		Table:     table,
		Records:   f.sample.Records(table),
		Status:    StatusFallback,
		Sample:    true,
		FetchedAt: f.now(),
		Err:       err,
	}
}

// Probe reads a single record of table and reports what happened.
func (f *Fetcher) Probe(ctx context.Context, table string) ProbeResult {
	res := ProbeResult{Table: table}
	if f.source == nil {
		res.Status = ProbeUnconfigured
		return res
	}
	start := f.now()
	records, err := f.source.ListRecords(ctx, table, model.Query{PageSize: 1, MaxRecords: 1})
	res.Elapsed = time.Since(start)
	switch {
	case err == nil:
		res.Status = ProbeOK
		res.Sample = len(records)
	case errors.Is(err, model.ErrTableNotFound):
		res.Status = ProbeMissing
		res.Error = err.Error()
	default:
		res.Status = ProbeError
		res.Error = err.Error()
	}
	return res
}

// Probe outcomes.
const (
	ProbeOK           = "ok"
	ProbeMissing      = "missing"
	ProbeError        = "error"
	ProbeUnconfigured = "unconfigured"
)

// ProbeResult describes one table's reachability.
type ProbeResult struct {
	Table   string        `json:"table"`
	Status  string        `json:"status"`
	Sample  int           `json:"sampleRecords"`
	Elapsed time.Duration `json:"elapsedNs"`
	Error   string        `json:"error,omitempty"`
}
