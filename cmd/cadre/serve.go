package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/amishk599/cadre/internal/scheduler"
	"github.com/amishk599/cadre/internal/server"
)

// snapshotRetention is how long an unrefreshed table snapshot is kept.
const snapshotRetention = 30 * 24 * time.Hour

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the job board API",
	Long:  "Loads the board, refreshes it every revalidation window, and serves the JSON API; blocks until SIGINT/SIGTERM.",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default: server.addr from config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	a, err := newApp(logger)
	if err != nil {
		return err
	}
	defer a.Close()

	addr := a.cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}
	logger.Info("config loaded",
		"backend", a.cfg.Backend,
		"configured", a.cfg.Configured(),
		"revalidate", a.cfg.Cache.Revalidate.String(),
		"addr", addr,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sched := scheduler.NewScheduler([]scheduler.Task{
		{
			Name:     "refresh-board",
			Interval: a.cfg.Cache.Revalidate,
			Run: func(ctx context.Context) error {
				_, err := a.service.Refresh(ctx)
				return err
			},
		},
		{
			Name:     "prune-snapshots",
			Interval: 24 * time.Hour,
			Run: func(context.Context) error {
				return a.store.Prune(snapshotRetention)
			},
		},
	}, logger)

	srv := server.New(a.service, server.Options{
		PageSize:    a.cfg.Server.PageSize,
		CORSOrigins: a.cfg.Server.CORSOrigins,
	}, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return sched.Run(gctx) })
	g.Go(func() error { return srv.Run(gctx, addr) })
	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("goodbye")
	return nil
}
