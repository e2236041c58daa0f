package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/pulse/internal/alert"
	"github.com/MikeSquared-Agency/pulse/internal/analysis"
	"github.com/MikeSquared-Agency/pulse/internal/config"
	"github.com/MikeSquared-Agency/pulse/internal/events"
	"github.com/MikeSquared-Agency/pulse/internal/genai"
	"github.com/MikeSquared-Agency/pulse/internal/processor"
	"github.com/MikeSquared-Agency/pulse/internal/store"
	"github.com/MikeSquared-Agency/pulse/internal/webhook"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the webhook ingest and analysis service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func runServe() error {
	cfg := config.Load()
	slog.Info("pulse starting", "port", cfg.Port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, llm, eventBus, err := connectCore(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	defer eventBus.Close()

	analyzer := analysis.New(llm, analysis.DefaultProfiles(cfg.FlashModel, cfg.ProModel), slog.Default())

	// Slack alerting is optional; severe cases still land in the store
	// and on the event bus without it.
	var alerts processor.SevereAlerter
	if cfg.SlackBotToken != "" && cfg.SlackAlertChannel != "" {
		alerts = alert.NewPoster(cfg.SlackBotToken, cfg.SlackAlertChannel, slog.Default())
		slog.Info("slack alerts ready", "channel", cfg.SlackAlertChannel)
	} else {
		slog.Warn("slack not configured, severe cases will not be alerted")
	}

	archive := processor.NewArchive(cfg.ArchiveDir)
	proc := processor.New(analyzer, db, eventBus, alerts, archive, slog.Default())

	// On-demand report generation over the bus, when mail is configured.
	if gen := buildGenerator(cfg, db, llm, eventBus); gen != nil {
		err := eventBus.Subscribe(events.SubjectReportRequested, func(_ string, _ []byte) {
			if err := gen.Run(context.Background(), time.Now()); err != nil {
				slog.Error("requested report failed", "error", err)
			}
		})
		if err != nil {
			return err
		}
	} else {
		slog.Warn("mail not configured, report requests will be ignored")
	}

	srv := webhook.NewServer(cfg.Port, proc, db, slog.Default())
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	slog.Info("pulse ready", "port", cfg.Port)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	slog.Info("shutting down")
	cancel()
	slog.Info("pulse stopped")
	return nil
}

// connectCore wires the dependencies every command needs: the database,
// the generation client, and the event bus.
func connectCore(ctx context.Context, cfg config.Config) (*store.Store, *genai.Client, *events.Client, error) {
	if cfg.DatabaseURL == "" {
		return nil, nil, nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.GeminiAPIKey == "" {
		return nil, nil, nil, fmt.Errorf("GEMINI_API_KEY is required")
	}

	db, err := store.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, nil, nil, err
	}
	slog.Info("database connected")

	llm := genai.NewClient(cfg.GeminiAPIKey)
	slog.Info("generation client ready", "flash_model", cfg.FlashModel, "pro_model", cfg.ProModel)

	eventBus, err := events.NewClient(cfg.NatsURL, cfg.NatsToken, slog.Default())
	if err != nil {
		db.Close()
		return nil, nil, nil, err
	}
	slog.Info("NATS connected", "url", cfg.NatsURL)

	return db, llm, eventBus, nil
}
