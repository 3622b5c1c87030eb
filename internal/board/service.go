package board

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/amishk599/cadre/internal/filter"
	"github.com/amishk599/cadre/internal/model"
	"github.com/amishk599/cadre/internal/normalize"
)

// Snapshot is one normalized dataset together with how it was obtained.
type Snapshot struct {
	normalize.Dataset
	Options   filter.Options
	Degraded  bool
	FetchedAt time.Time
	Statuses  map[string]Status

	normalizer *normalize.Normalizer
}

// JobsPage is a page of filtered jobs.
type JobsPage struct {
	filter.Page
	Degraded bool `json:"degraded"`
}

// CompanyDetail is a company with its open roles.
type CompanyDetail struct {
	Company model.CompanyListing `json:"company"`
	Jobs    []model.JobListing   `json:"jobs"`
}

// InvestorDetail is an investor with its portfolio companies and their roles.
type InvestorDetail struct {
	Investor  model.InvestorListing  `json:"investor"`
	Companies []model.CompanyListing `json:"companies"`
	Jobs      []model.JobListing     `json:"jobs"`
}

// Service serves the normalized board from a cache that is refilled from the
// backing store once the revalidation window has passed.
type Service struct {
	fetcher *Fetcher
	getter  model.RecordGetter
	tables  model.TableNames
	ttl     time.Duration
	now     func() time.Time
	logger  *slog.Logger

	group singleflight.Group
	mu    sync.RWMutex
	snap  *Snapshot
}

// NewService creates a Service. getter may be nil; when set, job ids missing
// from the cached snapshot are looked up directly.
func NewService(fetcher *Fetcher, getter model.RecordGetter, tables model.TableNames, ttl time.Duration, logger *slog.Logger) *Service {
	return &Service{
		fetcher: fetcher,
		getter:  getter,
		tables:  tables,
		ttl:     ttl,
		now:     time.Now,
		logger:  logger,
	}
}

// Snapshot returns the cached dataset, loading it when missing or older than
// the revalidation window. Concurrent loads share one fetch.
func (s *Service) Snapshot(ctx context.Context) (*Snapshot, error) {
	s.mu.RLock()
	snap := s.snap
	s.mu.RUnlock()
	if snap != nil && s.now().Sub(snap.FetchedAt) < s.ttl {
		return snap, nil
	}
	return s.Refresh(ctx)
}

// Refresh loads a fresh dataset and replaces the cache.
func (s *Service) Refresh(ctx context.Context) (*Snapshot, error) {
	v, err, _ := s.group.Do("refresh", func() (any, error) {
		snap, err := s.load(ctx)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.snap = snap
		s.mu.Unlock()
		return snap, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Snapshot), nil
}

type tableSpec struct {
	name     string
	optional bool
}

func (s *Service) load(ctx context.Context) (*Snapshot, error) {
	start := s.now()
	specs := []tableSpec{
		{s.tables.Jobs, false},
		{s.tables.Companies, false},
		// Investors only resolve names, so a failure drops the links and
		// keeps the live jobs.
		{s.tables.Investors, true},
		{s.tables.Functions, true},
		{s.tables.Industries, true},
	}
	results := make([]FetchResult, len(specs))

	g, gctx := errgroup.WithContext(ctx)
	for i, spec := range specs {
		g.Go(func() error {
			results[i] = s.fetcher.Fetch(gctx, spec.name, spec.optional)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("loading board: %w", err)
	}

	// Mixing live rows with sample rows would break every link, so one
	// required table on sample data puts the whole board on sample data.
	sampleOnly := false
	for i, spec := range specs {
		if !spec.optional && results[i].Sample {
			sampleOnly = true
		}
	}
	if sampleOnly {
		for i, spec := range specs {
			if !results[i].Sample {
				results[i] = s.fetcher.sampleResult(spec.name, results[i].Err)
			}
		}
	}

	t := normalize.Tables{
		Jobs:       results[0].Records,
		Companies:  results[1].Records,
		Investors:  results[2].Records,
		Functions:  results[3].Records,
		Industries: results[4].Records,
	}
	n := normalize.NewNormalizer(t)
	jobs := n.Jobs(t.Jobs)
	sortByPosted(jobs)
	companies := n.Companies(t.Companies, jobs)
	investors := n.Investors(t.Investors, companies)

	snap := &Snapshot{
		Dataset:    normalize.Dataset{Jobs: jobs, Companies: companies, Investors: investors},
		Options:    filter.OptionsFor(jobs),
		FetchedAt:  s.now(),
		Statuses:   make(map[string]Status, len(specs)),
		normalizer: n,
	}
	for i, spec := range specs {
		snap.Statuses[spec.name] = results[i].Status
		if results[i].Status == StatusFallback {
			snap.Degraded = true
		}
	}
	// Investors are offered even when no job names them.
	snap.Options.Investors = investorNames(investors, snap.Options.Investors)

	s.logger.Info("board loaded",
		"jobs", len(jobs),
		"companies", len(companies),
		"investors", len(investors),
		"degraded", snap.Degraded,
		"elapsed", s.now().Sub(start),
	)
	return snap, nil
}

// sortByPosted orders jobs newest first. Posted dates are ISO-8601 strings, so
// they sort lexically.
func sortByPosted(jobs []model.JobListing) {
	slices.SortStableFunc(jobs, func(a, b model.JobListing) int {
		return cmp.Compare(b.PostedDate, a.PostedDate)
	})
}

func investorNames(investors []model.InvestorListing, fromJobs []string) []string {
	set := make(map[string]struct{}, len(investors)+len(fromJobs))
	for _, inv := range investors {
		if inv.Name != "" {
			set[inv.Name] = struct{}{}
		}
	}
	for _, name := range fromJobs {
		set[name] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

// Jobs filters the board and returns one page of the result.
func (s *Service) Jobs(ctx context.Context, spec filter.Spec, offset, limit int) (JobsPage, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return JobsPage{}, err
	}
	return JobsPage{
		Page:     filter.Apply(snap.Jobs, spec).Page(offset, limit),
		Degraded: snap.Degraded,
	}, nil
}

// Job returns one job by record id. Ids absent from the cached snapshot are
// fetched directly when a getter is configured.
func (s *Service) Job(ctx context.Context, id string) (model.JobListing, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return model.JobListing{}, err
	}
	for _, j := range snap.Jobs {
		if j.ID == id {
			return j, nil
		}
	}
	if s.getter == nil || snap.Degraded || !normalize.IsRecordID(id) {
		return model.JobListing{}, fmt.Errorf("job %s: %w", id, model.ErrNotFound)
	}

	rec, err := s.getter.GetRecord(ctx, s.tables.Jobs, id)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.JobListing{}, fmt.Errorf("job %s: %w", id, model.ErrNotFound)
		}
		return model.JobListing{}, fmt.Errorf("job %s: %w", id, err)
	}
	return snap.normalizer.Job(rec), nil
}

// Companies returns the company directory, narrowed by name when q is set.
func (s *Service) Companies(ctx context.Context, q string) ([]model.CompanyListing, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return filter.Companies(snap.Companies, q), nil
}

// CompanyBySlug returns the company with the given slug and its open roles.
func (s *Service) CompanyBySlug(ctx context.Context, slug string) (CompanyDetail, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return CompanyDetail{}, err
	}
	slug = strings.ToLower(slug)
	for _, c := range snap.Companies {
		if c.Slug != "" && c.Slug == slug {
			return CompanyDetail{Company: c, Jobs: jobsAt(snap.Jobs, map[string]bool{slug: true})}, nil
		}
	}
	return CompanyDetail{}, fmt.Errorf("company %s: %w", slug, model.ErrNotFound)
}

// Investors returns the investor directory, narrowed by name when q is set.
func (s *Service) Investors(ctx context.Context, q string) ([]model.InvestorListing, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return filter.Investors(snap.Investors, q), nil
}

// InvestorBySlug returns the investor with the given slug, the companies that
// list it, and their open roles.
func (s *Service) InvestorBySlug(ctx context.Context, slug string) (InvestorDetail, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return InvestorDetail{}, err
	}
	slug = strings.ToLower(slug)
	for _, inv := range snap.Investors {
		if inv.Slug == "" || inv.Slug != slug {
			continue
		}
		d := InvestorDetail{Investor: inv, Companies: []model.CompanyListing{}}
		slugs := make(map[string]bool)
		for _, c := range snap.Companies {
			if slices.Contains(c.Investors, inv.Name) {
				d.Companies = append(d.Companies, c)
				slugs[c.Slug] = true
			}
		}
		d.Jobs = jobsAt(snap.Jobs, slugs)
		return d, nil
	}
	return InvestorDetail{}, fmt.Errorf("investor %s: %w", slug, model.ErrNotFound)
}

func jobsAt(jobs []model.JobListing, companySlugs map[string]bool) []model.JobListing {
	out := []model.JobListing{}
	for _, j := range jobs {
		if companySlugs[j.CompanySlug] {
			out = append(out, j)
		}
	}
	return out
}

// Search runs a global search across companies, investors and jobs.
func (s *Service) Search(ctx context.Context, q string) (filter.SearchResults, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return filter.SearchResults{}, err
	}
	return filter.SearchAll(q, snap.Jobs, snap.Companies, snap.Investors), nil
}

// FilterOptions returns the values offered by the filter controls.
func (s *Service) FilterOptions(ctx context.Context) (filter.Options, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return filter.Options{}, err
	}
	return snap.Options, nil
}

// Probe checks every table concurrently.
func (s *Service) Probe(ctx context.Context) []ProbeResult {
	tables := []string{s.tables.Jobs, s.tables.Companies, s.tables.Investors, s.tables.Functions, s.tables.Industries}
	results := make([]ProbeResult, len(tables))
	var g errgroup.Group
	for i, table := range tables {
		g.Go(func() error {
			results[i] = s.fetcher.Probe(ctx, table)
			return nil
		})
	}
	g.Wait()
	return results
}
