package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/amishk599/cadre/internal/board"
)

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Check that every table is reachable",
	Long:  "Reads one record from each table and prints what happened. Exits non-zero when a required table fails.",
	RunE:  runProbe,
}

func init() {
	rootCmd.AddCommand(probeCmd)
}

func runProbe(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	a, err := newApp(logger)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	results := a.service.Probe(ctx)
	tables := a.cfg.Tables()
	optional := map[string]bool{tables.Investors: true, tables.Functions: true, tables.Industries: true}

	fmt.Printf("%-20s %-14s %-8s %-10s %s\n", "Table", "Status", "Sample", "Elapsed", "Error")
	fmt.Println(strings.Repeat("─", 72))
	failed := 0
	for _, r := range results {
		fmt.Printf("%-20s %-14s %-8d %-10s %s\n", r.Table, r.Status, r.Sample, r.Elapsed.Round(time.Millisecond), r.Error)
		if (r.Status == board.ProbeError || r.Status == board.ProbeMissing) && !optional[r.Table] {
			failed++
		}
	}

	if results[0].Status == board.ProbeUnconfigured {
		fmt.Printf("\nBackend %q has no credentials; the board serves sample data.\n", a.cfg.Backend)
		return nil
	}
	if failed > 0 {
		return fmt.Errorf("%d required table(s) unreachable", failed)
	}
	fmt.Println("\nAll required tables reachable.")
	return nil
}
