package backfill

import (
	"context"
	"fmt"
	"time"

	"github.com/amishk599/cadre/internal/ats"
	"github.com/amishk599/cadre/internal/model"
	"github.com/amishk599/cadre/internal/normalize"
)

// datesScanLimit caps the jobs examined by one dates run.
const datesScanLimit = 1000

const airtableTimeLayout = "2006-01-02T15:04:05.000Z"

// Dates fills First Seen from each record's creation time and repairs Date
// Posted from the stored ATS snapshot, for jobs whose First Seen is blank.
func (r *Runner) Dates(ctx context.Context) (model.RunReport, error) {
	return r.run(ctx, "backfill-dates", func(ctx context.Context, rep *model.RunReport, deadline time.Time) error {
		records, err := r.store.ListRecords(ctx, r.tables.Jobs, model.Query{
			Fields:     []string{"Raw JSON", "Date Posted", "First Seen"},
			Formula:    "{First Seen} = BLANK()",
			PageSize:   100,
			MaxRecords: datesScanLimit,
		})
		if err != nil {
			return fmt.Errorf("listing jobs: %w", err)
		}

		var updates []model.RecordUpdate
		for _, rec := range records {
			rep.Processed++
			if rec.CreatedTime.IsZero() {
				rep.Skipped++
				continue
			}
			updates = append(updates, model.RecordUpdate{ID: rec.ID, Fields: dateFields(rec)})
		}

		done := r.flush(ctx, r.tables.Jobs, updates, rep, deadline)
		rep.HasMore = !done || len(records) == datesScanLimit
		return nil
	})
}

// dateFields computes the date columns to write for one job.
func dateFields(rec model.Record) map[string]any {
	fields := map[string]any{
		"First Seen": rec.CreatedTime.UTC().Format(airtableTimeLayout),
	}
	p, ok := ats.ParsePosting(normalize.String(rec.Fields, normalize.JobRawJSON))
	if !ok {
		return fields
	}
	switch {
	case p.Published != "":
		fields["Date Posted"] = p.Published
	case p.Source == ats.SourceGreenhouse && p.UpdatedAt != "":
		// Greenhouse only exposes updated_at, which is not a publish date.
		if normalize.String(rec.Fields, normalize.JobDatePosted) == p.UpdatedAt {
			fields["Date Posted"] = nil
		}
	}
	return fields
}
