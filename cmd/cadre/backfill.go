package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/cadre/internal/ats"
	"github.com/amishk599/cadre/internal/backfill"
	"github.com/amishk599/cadre/internal/classify"
	"github.com/amishk599/cadre/internal/model"
	"github.com/amishk599/cadre/internal/notifier"
)

var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Maintenance runs that repair or enrich store records",
}

var backfillDatesCmd = &cobra.Command{
	Use:   "dates",
	Short: "Fill First Seen and repair Date Posted from the raw ATS payload",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBackfill(func(ctx context.Context, r *backfill.Runner, _ *runDeps) (model.RunReport, error) {
			return r.Dates(ctx)
		})
	},
}

var backfillFunctionsCmd = &cobra.Command{
	Use:   "functions",
	Short: "Classify job titles into functions with the language model",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBackfill(func(ctx context.Context, r *backfill.Runner, d *runDeps) (model.RunReport, error) {
			provider, err := d.provider()
			if err != nil {
				return model.RunReport{}, err
			}
			return r.Functions(ctx, provider)
		})
	},
}

var backfillATSCmd = &cobra.Command{
	Use:   "ats-urls",
	Short: "Look up and verify job-board API URLs for companies without one",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBackfill(func(ctx context.Context, r *backfill.Runner, d *runDeps) (model.RunReport, error) {
			provider, err := d.provider()
			if err != nil {
				return model.RunReport{}, err
			}
			return r.ATSURLs(ctx, classify.NewURLFinder(provider), ats.NewClient(d.http))
		})
	},
}

func init() {
	rootCmd.AddCommand(backfillCmd)
	backfillCmd.AddCommand(backfillDatesCmd, backfillFunctionsCmd, backfillATSCmd)
}

// runDeps carries what individual backfills build lazily.
type runDeps struct {
	app  *app
	http *http.Client
}

func (d *runDeps) provider() (classify.LLMProvider, error) {
	c := d.app.cfg.Classifier
	if c.APIKey == "" {
		return nil, errors.New("classifier api key missing: set classifier.api_key, PERPLEXITY_API_KEY, or run `cadre secret set classifier`")
	}
	return classify.NewLangChainProvider(c.BaseURL, c.APIKey, c.Model, &http.Client{Timeout: c.Timeout})
}

func runBackfill(fn func(ctx context.Context, r *backfill.Runner, d *runDeps) (model.RunReport, error)) error {
	logger := setupLogger(debug)

	a, err := newApp(logger)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.backend.writer == nil {
		return fmt.Errorf("backfills need a configured airtable backend (backend is %q)", a.cfg.Backend)
	}

	bf := a.cfg.Backfill
	runner := backfill.NewRunner(a.backend.writer, a.cfg.Tables(), backfill.Options{
		BatchSize:    bf.BatchSize,
		Delay:        bf.Delay,
		MaxRuntime:   bf.MaxRuntime,
		ATSBatchSize: bf.ATSBatchSize,
		ATSDelay:     bf.ATSDelay,
		LockPath:     bf.LockPath,
	}, setupNotifier(a.cfg, a.http, logger), logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rep, err := fn(ctx, runner, &runDeps{app: a, http: a.http})
	if errors.Is(err, backfill.ErrLocked) {
		logger.Warn("skipping run", "reason", err)
		return nil
	}
	if err != nil {
		return err
	}
	printReport(rep, logger)
	return nil
}

func printReport(rep model.RunReport, logger *slog.Logger) {
	for _, line := range rep.Results {
		fmt.Println("  " + line)
	}
	fmt.Println(notifier.Summary(rep))
	if len(rep.Errors) > 0 {
		logger.Warn("run finished with errors", "errors", len(rep.Errors))
	}
}
