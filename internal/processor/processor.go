package processor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/pulse/internal/analysis"
	"github.com/MikeSquared-Agency/pulse/internal/events"
)

// CallAnalyzer runs the concurrent unit analysis over one transcript.
type CallAnalyzer interface {
	Run(ctx context.Context, callID string, tr analysis.Transcript, durationSeconds float64) (*analysis.CallAnalysisReport, error)
}

// ReportStore persists finished reports.
type ReportStore interface {
	InsertCallReport(ctx context.Context, flat analysis.FlatReport) (uuid.UUID, error)
}

// EventPublisher fans analysis outcomes out to downstream consumers.
type EventPublisher interface {
	Publish(subject string, data any) error
}

// SevereAlerter notifies a human channel about severe cases.
type SevereAlerter interface {
	PostSevereAlert(ctx context.Context, report *analysis.CallAnalysisReport) error
}

// Processor orchestrates the webhook ingest pipeline: archive, extract,
// analyze, persist, notify.
type Processor struct {
	analyzer CallAnalyzer
	store    ReportStore
	events   EventPublisher
	alerts   SevereAlerter
	archive  *Archive
	logger   *slog.Logger
}

func New(analyzer CallAnalyzer, store ReportStore, ev EventPublisher, alerts SevereAlerter, archive *Archive, logger *slog.Logger) *Processor {
	return &Processor{
		analyzer: analyzer,
		store:    store,
		events:   ev,
		alerts:   alerts,
		archive:  archive,
		logger:   logger,
	}
}

// HandleEndOfCall runs the full pipeline for one end-of-call-report
// message. Validation failures are terminal for the message; analysis
// always produces a report (defaults on unit failure), so an error
// after extraction means analysis dispatch or persistence broke and
// the archived payload stays eligible for backfill. Once the call is
// persisted the raw file is marked done so backfill will not ingest
// the same call twice.
func (p *Processor) HandleEndOfCall(ctx context.Context, raw []byte) (*analysis.CallAnalysisReport, error) {
	rawPath, err := p.archive.SaveRaw(EndOfCallType, raw)
	if err != nil {
		p.logger.Error("failed to archive raw payload", "error", err)
	}

	call, err := ExtractEndOfCall(raw)
	if err != nil {
		return nil, err
	}

	report, err := p.analyze(ctx, call)
	if err != nil {
		return nil, err
	}

	if _, err := p.archive.SaveProcessed(EndOfCallType, map[string]any{
		"call":   call,
		"report": report,
	}); err != nil {
		p.logger.Error("failed to archive processed payload", "call_id", call.CallID, "error", err)
	}

	if err := p.persistAndNotify(ctx, report); err != nil {
		return nil, err
	}
	if rawPath != "" {
		if _, err := p.archive.MarkDone(rawPath); err != nil {
			p.logger.Error("failed to mark archive file done", "path", rawPath, "error", err)
		}
	}
	return report, nil
}

// HandleOther archives non-end-of-call message types without further
// processing.
func (p *Processor) HandleOther(msgType string, raw []byte) {
	if _, err := p.archive.SaveRaw(msgType, raw); err != nil {
		p.logger.Error("failed to archive payload", "type", msgType, "error", err)
		return
	}
	p.logger.Info("archived webhook payload", "type", msgType)
}

func (p *Processor) analyze(ctx context.Context, call *ProcessedCall) (*analysis.CallAnalysisReport, error) {
	report, err := p.analyzer.Run(ctx, call.CallID, call.Transcript, call.DurationSeconds)
	if err != nil {
		var orchErr *analysis.OrchestrationError
		if errors.As(err, &orchErr) {
			return nil, fmt.Errorf("analysis orchestration failed for call %s: %w", call.CallID, err)
		}
		return nil, fmt.Errorf("analyze call %s: %w", call.CallID, err)
	}
	return report, nil
}

func (p *Processor) persistAndNotify(ctx context.Context, report *analysis.CallAnalysisReport) error {
	flat, err := report.Flatten()
	if err != nil {
		return fmt.Errorf("flatten report: %w", err)
	}

	id, err := p.store.InsertCallReport(ctx, flat)
	if err != nil {
		return fmt.Errorf("persist report: %w", err)
	}
	p.logger.Info("call report persisted",
		"report_id", id,
		"call_id", report.CallID,
		"severe", report.Analysis.IsSevereCase,
	)

	if err := p.events.Publish(events.SubjectCallAnalyzed, events.CallAnalyzedEvent{
		CallID:            report.CallID,
		DurationSeconds:   report.CallDurationSeconds,
		StressedDetected:  report.Analysis.StressedDetected,
		IsSevereCase:      report.Analysis.IsSevereCase,
		AnalysisTimestamp: report.AnalysisTimestamp,
	}); err != nil {
		p.logger.Error("failed to publish analyzed event", "call_id", report.CallID, "error", err)
	}

	if report.Analysis.IsSevereCase {
		if err := p.events.Publish(events.SubjectCallSevere, events.SevereCallEvent{
			CallID:            report.CallID,
			DurationSeconds:   report.CallDurationSeconds,
			TopStressors:      report.Analysis.TopStressors,
			AnalysisTimestamp: report.AnalysisTimestamp,
		}); err != nil {
			p.logger.Error("failed to publish severe event", "call_id", report.CallID, "error", err)
		}
		if p.alerts != nil {
			if err := p.alerts.PostSevereAlert(ctx, report); err != nil {
				p.logger.Error("failed to post severe alert", "call_id", report.CallID, "error", err)
			}
		}
	}

	return nil
}
