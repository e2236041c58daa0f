package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/pulse/internal/config"
)

var version = "dev"

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pulse",
		Short: "Pulse - call-center wellbeing analysis service",
		Long: `Pulse ingests call-center webhook payloads, runs concurrent LLM
analysis over each transcript (stress, sentiment, stressors, blockers,
severity), persists the results, and produces daily wellbeing reports.`,
		Version:      version,
		SilenceUsage: true,
	}

	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		setupLogging(config.Load().LogLevel)
	}

	cmd.AddCommand(newServeCommand())
	cmd.AddCommand(newReportCommand())
	cmd.AddCommand(newBackfillCommand())

	return cmd
}

func execute() error {
	return newRootCommand().Execute()
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
