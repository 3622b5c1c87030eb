package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/amishk599/cadre/internal/export"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Publish the normalized board as JSON",
	Long:  "Loads the board and writes it to export.path, or uploads it to S3 when export.bucket is set.",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "write to this file instead of the configured target")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	a, err := newApp(logger)
	if err != nil {
		return err
	}
	defer a.Close()

	var pub export.Publisher
	switch ec := a.cfg.Export; {
	case exportOut != "":
		pub = export.NewFilePublisher(exportOut)
	case ec.Bucket != "":
		pub, err = export.NewS3Publisher(ec.Region, ec.Bucket, ec.Key,
			os.Getenv("CADRE_S3_ACCESS_KEY_ID"), os.Getenv("CADRE_S3_SECRET_ACCESS_KEY"))
		if err != nil {
			return err
		}
	default:
		pub = export.NewFilePublisher(ec.Path)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	snap, err := a.service.Snapshot(ctx)
	if err != nil {
		return err
	}
	if snap.Degraded {
		logger.Warn("exporting a degraded board", "statuses", snap.Statuses)
	}

	loc, err := pub.Publish(ctx, export.FromSnapshot(snap))
	if err != nil {
		return err
	}
	logger.Info("export published", "location", loc, "jobs", len(snap.Jobs), "companies", len(snap.Companies))
	fmt.Println(loc)
	return nil
}
