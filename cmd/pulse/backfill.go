package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/pulse/internal/analysis"
	"github.com/MikeSquared-Agency/pulse/internal/config"
	"github.com/MikeSquared-Agency/pulse/internal/processor"
)

func newBackfillCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "backfill",
		Short: "Re-run analysis over archived webhook payloads",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBackfill()
		},
	}
}

func runBackfill() error {
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), time.Hour)
	defer cancel()

	db, llm, eventBus, err := connectCore(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	defer eventBus.Close()

	analyzer := analysis.New(llm, analysis.DefaultProfiles(cfg.FlashModel, cfg.ProModel), slog.Default())
	archive := processor.NewArchive(cfg.ArchiveDir)
	proc := processor.New(analyzer, db, eventBus, nil, archive, slog.Default())

	processed, skipped, err := proc.Backfill(ctx)
	if err != nil {
		return err
	}
	slog.Info("backfill complete", "processed", processed, "skipped", skipped)
	return nil
}
