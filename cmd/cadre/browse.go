package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/amishk599/cadre/internal/board"
	"github.com/amishk599/cadre/internal/browse"
	"github.com/amishk599/cadre/internal/filter"
)

var (
	browseSaved   string
	browseCompany bool
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse jobs interactively (TUI)",
	Long:  "Loads the board, then launches the interactive job board. --company shows a company picker first.",
	RunE:  runBrowse,
}

func init() {
	browseCmd.Flags().StringVar(&browseSaved, "saved", "", "saved search query string to start from")
	browseCmd.Flags().BoolVar(&browseCompany, "company", false, "pick a company first and browse only its jobs")
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, args []string) error {
	spec, err := filter.ParseSaved(browseSaved)
	if err != nil {
		return fmt.Errorf("invalid --saved: %w", err)
	}

	// Log output before the alt screen starts corrupts the display.
	a, err := newApp(silentLogger())
	if err != nil {
		return err
	}
	defer a.Close()

	snap, err := browse.RunLoader("Loading job board", func(ctx context.Context) (*board.Snapshot, error) {
		return a.service.Snapshot(ctx)
	})
	if err != nil {
		return err
	}

	jobs := snap.Jobs
	if browseCompany {
		choice, err := browse.RunCompanyPicker(snap.Companies)
		if err != nil {
			return err
		}
		if choice < 0 {
			return nil
		}
		detail, err := a.service.CompanyBySlug(context.Background(), snap.Companies[choice].Slug)
		if err != nil {
			return err
		}
		jobs = detail.Jobs
	}

	return browse.Run(jobs, snap.Options, spec, snap.Degraded)
}
