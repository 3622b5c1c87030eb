package backfill

import (
	"context"
	"fmt"
	"time"

	"github.com/amishk599/cadre/internal/classify"
	"github.com/amishk599/cadre/internal/model"
	"github.com/amishk599/cadre/internal/normalize"
)

// functionsBatch is how many unclassified jobs are listed per round.
const functionsBatch = 50

// Functions classifies the titles of jobs without a function and links the
// matching function record.
func (r *Runner) Functions(ctx context.Context, provider classify.LLMProvider) (model.RunReport, error) {
	return r.run(ctx, "backfill-functions", func(ctx context.Context, rep *model.RunReport, deadline time.Time) error {
		fnRecords, err := r.store.ListRecords(ctx, r.tables.Functions, model.Query{Fields: []string{"Function"}})
		if err != nil {
			return fmt.Errorf("listing functions: %w", err)
		}
		var functions []classify.Function
		for _, f := range fnRecords {
			if name := normalize.String(f.Fields, normalize.FunctionName); name != "" {
				functions = append(functions, classify.Function{ID: f.ID, Name: name})
			}
		}
		if len(functions) == 0 {
			return fmt.Errorf("no functions defined in %s", r.tables.Functions)
		}
		classifier := classify.NewFunctionClassifier(provider, classify.FunctionTemplate, functions)

		// Jobs answered "Other" stay unclassified, so they are remembered to
		// keep the loop from listing them forever.
		seen := make(map[string]bool)
		for {
			if r.now().After(deadline) {
				rep.HasMore = true
				return nil
			}
			jobs, err := r.store.ListRecords(ctx, r.tables.Jobs, model.Query{
				Fields:     []string{"Title", "Function"},
				Formula:    "NOT({Function})",
				MaxRecords: functionsBatch + len(seen),
			})
			if err != nil {
				return fmt.Errorf("listing jobs: %w", err)
			}

			var pending []model.Record
			for _, j := range jobs {
				if !seen[j.ID] && len(normalize.Strings(j.Fields, normalize.JobFunction)) == 0 {
					pending = append(pending, j)
				}
			}
			if len(pending) == 0 {
				return nil
			}

			var updates []model.RecordUpdate
			for _, j := range pending {
				if r.now().After(deadline) {
					rep.HasMore = true
					break
				}
				seen[j.ID] = true
				rep.Processed++
				title := normalize.String(j.Fields, normalize.JobTitle)

				res, err := classifier.Classify(ctx, title)
				if err != nil {
					rep.Errors = append(rep.Errors, fmt.Sprintf("%s: %v", j.ID, err))
					continue
				}
				if !res.Matched {
					rep.Skipped++
					rep.Results = append(rep.Results, fmt.Sprintf("%s: %q -> %s (no match)", j.ID, title, res.Reply))
					continue
				}
				updates = append(updates, model.RecordUpdate{
					ID:     j.ID,
					Fields: map[string]any{"Function": []string{res.Function.ID}},
				})
				rep.Results = append(rep.Results, fmt.Sprintf("%s: %q -> %s", j.ID, title, res.Function.Name))
			}

			// Classified titles are written even past the deadline.
			if !r.flush(ctx, r.tables.Jobs, updates, rep, time.Time{}) {
				return ctx.Err()
			}
			if rep.HasMore {
				return nil
			}
		}
	})
}
