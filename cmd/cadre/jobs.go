package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amishk599/cadre/internal/filter"
)

var jobsOpts struct {
	saved     string
	search    string
	functions []string
	industry  []string
	locations []string
	remote    string
	offset    int
	limit     int
	asJSON    bool
}

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Print a filtered page of jobs",
	Long:  "Loads the board once and prints one page of jobs matching the given filters.",
	RunE:  runJobs,
}

func init() {
	f := jobsCmd.Flags()
	f.StringVar(&jobsOpts.saved, "saved", "", "saved search query string, e.g. 'functions=Engineering&remote=remote'")
	f.StringVarP(&jobsOpts.search, "search", "s", "", "free-text search")
	f.StringSliceVar(&jobsOpts.functions, "function", nil, "function (department) to include; repeatable")
	f.StringSliceVar(&jobsOpts.industry, "industry", nil, "industry to include; repeatable")
	f.StringSliceVar(&jobsOpts.locations, "location", nil, "city-level location to include; repeatable")
	f.StringVar(&jobsOpts.remote, "remote", "", "remote filter: remote, onsite or empty for any")
	f.IntVar(&jobsOpts.offset, "offset", 0, "number of jobs to skip")
	f.IntVar(&jobsOpts.limit, "limit", filter.PageSize, "page length")
	f.BoolVar(&jobsOpts.asJSON, "json", false, "print the page as JSON")
	rootCmd.AddCommand(jobsCmd)
}

// jobsSpec builds the filter from --saved, with explicit flags layered on top.
func jobsSpec() (filter.Spec, error) {
	spec, err := filter.ParseSaved(jobsOpts.saved)
	if err != nil {
		return filter.Spec{}, fmt.Errorf("invalid --saved: %w", err)
	}
	if jobsOpts.search != "" {
		spec.Search = strings.TrimSpace(jobsOpts.search)
	}
	if len(jobsOpts.functions) > 0 {
		spec.Departments = jobsOpts.functions
	}
	if len(jobsOpts.industry) > 0 {
		spec.Industries = jobsOpts.industry
	}
	if len(jobsOpts.locations) > 0 {
		spec.Locations = jobsOpts.locations
	}
	if jobsOpts.remote != "" {
		spec.Remote = filter.ParseRemote(jobsOpts.remote)
	}
	return spec, nil
}

func runJobs(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	spec, err := jobsSpec()
	if err != nil {
		return err
	}

	a, err := newApp(logger)
	if err != nil {
		return err
	}
	defer a.Close()

	page, err := a.service.Jobs(context.Background(), spec, jobsOpts.offset, jobsOpts.limit)
	if err != nil {
		return err
	}

	if jobsOpts.asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(page)
	}

	fmt.Printf("%-40s %-22s %-22s %-14s %s\n", "Title", "Company", "Location", "Function", "Posted")
	fmt.Println(strings.Repeat("─", 112))
	for _, j := range page.Jobs {
		posted := j.PostedDate
		if len(posted) > 10 {
			posted = posted[:10]
		}
		fmt.Printf("%-40s %-22s %-22s %-14s %s\n",
			truncate(j.Title, 40), truncate(j.Company, 22), truncate(j.Location, 22), truncate(j.Department, 14), posted)
	}

	fmt.Printf("\nShowing %d-%d of %d jobs", min(page.Offset+1, page.Total), page.Offset+len(page.Jobs), page.Total)
	if page.HasMore {
		fmt.Printf(" (next: --offset %d)", page.Offset+len(page.Jobs))
	}
	fmt.Println()
	if page.Degraded {
		fmt.Println("Note: the live store was unreachable; showing cached or sample data.")
	}
	if q := spec.String(); q != "" {
		fmt.Printf("Saved search: %s\n", q)
	}
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
