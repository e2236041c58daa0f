package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/pulse/internal/config"
	"github.com/MikeSquared-Agency/pulse/internal/events"
	"github.com/MikeSquared-Agency/pulse/internal/genai"
	"github.com/MikeSquared-Agency/pulse/internal/mailer"
	"github.com/MikeSquared-Agency/pulse/internal/reportgen"
	"github.com/MikeSquared-Agency/pulse/internal/store"
)

func newReportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Build and email the daily wellbeing report",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport()
		},
	}
}

func runReport() error {
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	db, llm, eventBus, err := connectCore(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	defer eventBus.Close()

	gen := buildGenerator(cfg, db, llm, eventBus)
	if gen == nil {
		return fmt.Errorf("SMTP_HOST and report recipients are required")
	}

	return gen.Run(ctx, time.Now())
}

// buildGenerator assembles the report pipeline from config, or returns
// nil when mail delivery is not configured. An on-disk report config
// file overrides the env-based recipients and subject.
func buildGenerator(cfg config.Config, db *store.Store, llm *genai.Client, eventBus *events.Client) *reportgen.Generator {
	recipients := cfg.EmailTo
	subject := ""
	if cfg.ReportConfigPath != "" {
		rf, err := config.LoadReportFile(cfg.ReportConfigPath)
		if err != nil {
			slog.Error("failed to load report config", "path", cfg.ReportConfigPath, "error", err)
		} else {
			if len(rf.Recipients) > 0 {
				recipients = rf.Recipients
			}
			subject = rf.Subject
		}
	}

	if cfg.SMTPHost == "" || len(recipients) == 0 {
		return nil
	}

	mail := mailer.New(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.EmailFrom, slog.Default())
	profile := genai.Profile{Model: cfg.ProModel, Temperature: 0.5, MaxOutputTokens: 1024}
	return reportgen.NewGenerator(db, llm, profile, mail, eventBus, recipients, subject, slog.Default())
}
