package backfill

import (
	"context"
	"fmt"
	"time"

	"github.com/amishk599/cadre/internal/model"
	"github.com/amishk599/cadre/internal/normalize"
)

// URLFinder suggests a job-board API URL for a company.
type URLFinder interface {
	Find(ctx context.Context, company string) (string, error)
}

// PostingCounter fetches a job-board API URL and counts its postings.
type PostingCounter interface {
	CountPostings(ctx context.Context, boardURL string) (int, error)
}

// ATSURLs looks up the job-board API URL of companies that have none, checks
// that the URL answers, and stores it.
func (r *Runner) ATSURLs(ctx context.Context, finder URLFinder, counter PostingCounter) (model.RunReport, error) {
	return r.run(ctx, "enrich-ats-urls", func(ctx context.Context, rep *model.RunReport, deadline time.Time) error {
		companies, err := r.store.ListRecords(ctx, r.tables.Companies, model.Query{
			Fields:     []string{"Company", "Jobs API URL"},
			Formula:    "AND({Jobs API URL} = '', {Company} != '')",
			MaxRecords: r.opts.ATSBatchSize,
		})
		if err != nil {
			return fmt.Errorf("listing companies: %w", err)
		}
		rep.HasMore = len(companies) == r.opts.ATSBatchSize

		var updates []model.RecordUpdate
		for _, c := range companies {
			if r.now().After(deadline) {
				rep.HasMore = true
				break
			}
			name := normalize.String(c.Fields, normalize.CompanyName)
			if name == "" || normalize.String(c.Fields, normalize.CompanyJobsURL) != "" {
				rep.Skipped++
				continue
			}
			rep.Processed++

			if err := r.sleep(ctx, r.opts.ATSDelay); err != nil {
				return err
			}
			url, err := finder.Find(ctx, name)
			if err != nil {
				rep.Errors = append(rep.Errors, fmt.Sprintf("%s: %v", name, err))
				continue
			}
			if url == "" {
				rep.Skipped++
				rep.Results = append(rep.Results, name+": not found")
				continue
			}
			n, err := counter.CountPostings(ctx, url)
			if err != nil {
				rep.Skipped++
				rep.Results = append(rep.Results, fmt.Sprintf("%s: %s unverified (%v)", name, url, err))
				continue
			}
			updates = append(updates, model.RecordUpdate{ID: c.ID, Fields: map[string]any{"Jobs API URL": url}})
			rep.Results = append(rep.Results, fmt.Sprintf("%s: %s (%d postings)", name, url, n))
		}

		if !r.flush(ctx, r.tables.Companies, updates, rep, time.Time{}) {
			return ctx.Err()
		}
		return nil
	})
}
