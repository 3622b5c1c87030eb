package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/amishk599/cadre/internal/backfill"
	"github.com/amishk599/cadre/internal/board"
	"github.com/amishk599/cadre/internal/config"
	"github.com/amishk599/cadre/internal/model"
	"github.com/amishk599/cadre/internal/notifier"
	"github.com/amishk599/cadre/internal/ratelimit"
	"github.com/amishk599/cadre/internal/retry"
	"github.com/amishk599/cadre/internal/source"
	"github.com/amishk599/cadre/internal/store"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "cadre",
	Short: "Startup job board data layer",
	Long:  "Cadre reads a job board out of Airtable or Supabase, normalizes it, and serves, browses, exports and maintains it.",
	// Default to `serve` so that `cadre` with no args runs the API.
	RunE:         runServe,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: CADRE_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig reads .env, resolves the config path and parses it.
// Priority: explicit path arg > CADRE_CONFIG env var > "./config.yaml".
func loadConfig(path string) (*config.Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
	p, explicit := config.ResolvePath(path)
	return config.LoadOrDefault(p, explicit)
}

func setupLogger(dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}

// silentLogger keeps log lines from corrupting a TUI.
func silentLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupNotifier(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) model.Notifier {
	switch cfg.Notification.Type {
	case "slack":
		logger.Info("using slack notifier")
		return notifier.NewSlackNotifier(cfg.Notification.WebhookURL, httpClient, logger)
	default:
		return notifier.NewLogNotifier(logger)
	}
}

// backend holds the views of the configured store that different commands need.
type backend struct {
	source model.RecordSource // retried; nil when unconfigured
	getter model.RecordGetter // nil unless the store supports single-record reads
	writer backfill.Store     // nil unless the store supports updates
}

type writeStore struct {
	model.RecordSource
	model.RecordUpdater
}

func buildBackend(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) (backend, error) {
	var b backend
	switch cfg.Backend {
	case config.BackendAirtable:
		// One limiter per base: Airtable's limit is per base, not per table.
		// Every page, lookup and PATCH takes a token.
		limiter := ratelimit.NewKeyedLimiter(cfg.Airtable.RequestsPerSecond, 1)
		limitedHTTP := &http.Client{
			Timeout:   httpClient.Timeout,
			Transport: ratelimit.NewTransport(httpClient.Transport, limiter, cfg.Airtable.BaseID),
		}
		client, err := source.NewAirtableClient(cfg.Airtable.BaseURL, cfg.Airtable.BaseID, cfg.Airtable.APIKey, limitedHTTP)
		if errors.Is(err, model.ErrNotConfigured) {
			logger.Warn("airtable credentials missing, serving sample data")
			return b, nil
		}
		if err != nil {
			return b, err
		}
		b.source = retry.NewRetrySource(client, 2, time.Second, logger)
		b.getter = client
		b.writer = writeStore{RecordSource: client, RecordUpdater: client}
		logger.Info("using airtable backend", "base", cfg.Airtable.BaseID)

	case config.BackendSupabase:
		src, err := source.NewSupabaseSource(cfg.Supabase.URL, cfg.Supabase.Key)
		if errors.Is(err, model.ErrNotConfigured) {
			logger.Warn("supabase credentials missing, serving sample data")
			return b, nil
		}
		if err != nil {
			return b, err
		}
		b.source = retry.NewRetrySource(src, 2, time.Second, logger)
		logger.Info("using supabase backend", "url", cfg.Supabase.URL)

	default:
		logger.Info("using built-in sample data")
	}
	return b, nil
}

// snapshotStore is the persistence the board and the scheduler share.
type snapshotStore interface {
	model.SnapshotStore
	Prune(olderThan time.Duration) error
	Close() error
}

func openStore(cfg *config.Config) (snapshotStore, error) {
	if cfg.Cache.DBPath == "" {
		return store.NewNopStore(), nil
	}
	st, err := store.NewSQLiteStore(cfg.Cache.DBPath)
	if err != nil {
		return nil, err
	}
	return st, nil
}

func newService(cfg *config.Config, b backend, st model.SnapshotStore, logger *slog.Logger) *board.Service {
	tables := cfg.Tables()
	fetcher := board.NewFetcher(b.source, st, source.NewSampleSource(tables), cfg.Airtable.PageSize, logger)
	return board.NewService(fetcher, b.getter, tables, cfg.Cache.Revalidate, logger)
}

// app bundles what every board-reading command sets up.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	http    *http.Client
	backend backend
	store   snapshotStore
	service *board.Service
}

func newApp(logger *slog.Logger) (*app, error) {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	httpClient := &http.Client{Timeout: 30 * time.Second}

	b, err := buildBackend(cfg, httpClient, logger)
	if err != nil {
		return nil, err
	}
	st, err := openStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return &app{
		cfg:     cfg,
		logger:  logger,
		http:    httpClient,
		backend: b,
		store:   st,
		service: newService(cfg, b, st, logger),
	}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}
