// Package server exposes the job board over a read-only JSON API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/amishk599/cadre/internal/board"
	"github.com/amishk599/cadre/internal/filter"
	"github.com/amishk599/cadre/internal/model"
)

// Board is the read side of the job board that the API serves.
type Board interface {
	Jobs(ctx context.Context, spec filter.Spec, offset, limit int) (board.JobsPage, error)
	Job(ctx context.Context, id string) (model.JobListing, error)
	Search(ctx context.Context, q string) (filter.SearchResults, error)
	Companies(ctx context.Context, q string) ([]model.CompanyListing, error)
	CompanyBySlug(ctx context.Context, slug string) (board.CompanyDetail, error)
	Investors(ctx context.Context, q string) ([]model.InvestorListing, error)
	InvestorBySlug(ctx context.Context, slug string) (board.InvestorDetail, error)
	FilterOptions(ctx context.Context) (filter.Options, error)
	Probe(ctx context.Context) []board.ProbeResult
}

var _ Board = (*board.Service)(nil)

// Options tunes the HTTP surface.
type Options struct {
	// PageSize is the default page length for /api/jobs.
	PageSize int
	// CORSOrigins lists allowed origins; empty allows all.
	CORSOrigins []string
}

// Server wires the board into a gin engine.
type Server struct {
	board    Board
	engine   *gin.Engine
	pageSize int
	logger   *slog.Logger
}

// New builds the router with request ids, access logging, panic recovery and CORS.
func New(b Board, opts Options, logger *slog.Logger) *Server {
	if opts.PageSize <= 0 {
		opts.PageSize = filter.PageSize
	}
	s := &Server{board: b, engine: gin.New(), pageSize: opts.PageSize, logger: logger}

	s.engine.Use(requestID(), accessLog(logger), recovery(logger), cors.New(corsConfig(opts.CORSOrigins)))
	s.engine.NoRoute(func(c *gin.Context) {
		writeError(c, http.StatusNotFound, codeNotFound, "no such route")
	})
	s.routes()
	return s
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	cfg.AllowMethods = []string{http.MethodGet, http.MethodOptions}
	cfg.AllowHeaders = []string{"Origin", "Content-Type", requestIDHeader}
	cfg.ExposeHeaders = []string{requestIDHeader}
	return cfg
}

func (s *Server) routes() {
	s.engine.GET("/healthz", s.health)

	api := s.engine.Group("/api")
	{
		api.GET("/jobs", s.listJobs)
		api.GET("/jobs/:id", s.getJob)
		api.GET("/search", s.search)
		api.GET("/companies", s.listCompanies)
		api.GET("/companies/:slug", s.getCompany)
		api.GET("/investors", s.listInvestors)
		api.GET("/investors/:slug", s.getInvestor)
		api.GET("/filters", s.filterOptions)
		api.GET("/probe", s.probe)
	}
}

// Handler returns the router for embedding or tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
