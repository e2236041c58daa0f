package reportgen

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/MikeSquared-Agency/pulse/internal/analysis"
	"github.com/MikeSquared-Agency/pulse/internal/events"
	"github.com/MikeSquared-Agency/pulse/internal/genai"
	"github.com/MikeSquared-Agency/pulse/internal/store"
)

// MetricsStore is the persistence surface the report job needs.
type MetricsStore interface {
	ReportsSince(ctx context.Context, since time.Time) ([]analysis.FlatReport, error)
	UpsertDailyMetrics(ctx context.Context, m store.DailyMetrics) error
	LastDailyMetrics(ctx context.Context, n int) ([]store.DailyMetrics, error)
}

// ReportMailer delivers the finished document.
type ReportMailer interface {
	Send(ctx context.Context, to []string, subject, body string, attachment []byte, filename string) error
}

// Publisher announces the finished report on the event bus.
type Publisher interface {
	Publish(subject string, data any) error
}

// trendDays is how much daily history the charts cover.
const trendDays = 5

type Generator struct {
	store      MetricsStore
	llm        TextGenerator
	profile    genai.Profile
	mail       ReportMailer
	events     Publisher
	recipients []string
	subject    string
	logger     *slog.Logger
}

func NewGenerator(st MetricsStore, llm TextGenerator, profile genai.Profile, mail ReportMailer, ev Publisher, recipients []string, subject string, logger *slog.Logger) *Generator {
	if subject == "" {
		subject = "Daily Call Wellbeing Report"
	}
	return &Generator{
		store:      st,
		llm:        llm,
		profile:    profile,
		mail:       mail,
		events:     ev,
		recipients: recipients,
		subject:    subject,
		logger:     logger,
	}
}

// Run builds and delivers the report for the 24 hours leading up to
// now. Suggestion failures degrade to an empty recommendations section;
// everything else is fatal so the job can be retried.
func (g *Generator) Run(ctx context.Context, now time.Time) error {
	now = now.UTC()
	since := now.Add(-24 * time.Hour)

	reports, err := g.store.ReportsSince(ctx, since)
	if err != nil {
		return fmt.Errorf("load reports: %w", err)
	}
	g.logger.Info("building daily report", "calls", len(reports), "since", since.Format(time.RFC3339))

	date := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	snap, err := Snapshot(date, reports)
	if err != nil {
		return fmt.Errorf("aggregate: %w", err)
	}

	metrics, err := snap.Metrics()
	if err != nil {
		return err
	}
	if err := g.store.UpsertDailyMetrics(ctx, metrics); err != nil {
		return err
	}

	history, err := g.store.LastDailyMetrics(ctx, trendDays)
	if err != nil {
		return fmt.Errorf("load metric history: %w", err)
	}
	charts, err := RenderCharts(ctx, history)
	if err != nil {
		return fmt.Errorf("render charts: %w", err)
	}

	suggestions, err := Suggest(ctx, g.llm, g.profile, snap)
	if err != nil {
		g.logger.Warn("suggestions unavailable, report continues without them", "error", err)
		suggestions = Suggestions{}
	}

	pdf, err := BuildPDF(snap, charts, suggestions)
	if err != nil {
		return err
	}

	filename := fmt.Sprintf("pulse-report-%s.pdf", date.Format("2006-01-02"))
	body := fmt.Sprintf(
		"Attached is the call wellbeing report for %s.\n\nCalls analyzed: %d\nSevere cases: %d\n",
		date.Format("2006-01-02"), snap.CallCount, snap.SevereCases,
	)
	if err := g.mail.Send(ctx, g.recipients, g.subject, body, pdf, filename); err != nil {
		return err
	}

	if g.events != nil {
		if err := g.events.Publish(events.SubjectReportGenerated, events.ReportGeneratedEvent{
			MetricDate:  date.Format("2006-01-02"),
			CallCount:   snap.CallCount,
			SevereCases: snap.SevereCases,
			Recipients:  len(g.recipients),
		}); err != nil {
			g.logger.Error("failed to publish report event", "error", err)
		}
	}

	g.logger.Info("daily report delivered",
		"date", date.Format("2006-01-02"),
		"calls", snap.CallCount,
		"severe", snap.SevereCases,
		"recipients", len(g.recipients),
	)
	return nil
}
