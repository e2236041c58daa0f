package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/MikeSquared-Agency/pulse/internal/genai"
)

// Profiles holds the generation profile each task unit runs with.
// Severity gets the pro model: it is the one decision where a wrong
// answer has real cost.
type Profiles struct {
	Stress    genai.Profile
	Sentiment genai.Profile
	Stressor  genai.Profile
	Blocker   genai.Profile
	Severity  genai.Profile
}

// DefaultProfiles returns the standard per-unit generation settings.
func DefaultProfiles(flashModel, proModel string) Profiles {
	return Profiles{
		Stress:    genai.Profile{Model: flashModel, Temperature: 0.2, MaxOutputTokens: 512},
		Sentiment: genai.Profile{Model: flashModel, Temperature: 0.3, MaxOutputTokens: 512},
		Stressor:  genai.Profile{Model: flashModel, Temperature: 0.4, MaxOutputTokens: 1024},
		Blocker:   genai.Profile{Model: flashModel, Temperature: 0.4, MaxOutputTokens: 1024},
		Severity:  genai.Profile{Model: proModel, Temperature: 0.1, MaxOutputTokens: 512},
	}
}

// Analyzer runs the five task units concurrently over one transcript
// and merges their outcomes into a single report.
type Analyzer struct {
	llm      *genai.Client
	profiles Profiles
	logger   *slog.Logger
}

func New(llm *genai.Client, profiles Profiles, logger *slog.Logger) *Analyzer {
	return &Analyzer{llm: llm, profiles: profiles, logger: logger}
}

// Run dispatches all five units against the transcript, fire-all-then-
// await-all. One unit's failure never cancels the others: each failed
// unit's field falls back to its documented default (stress false,
// counts zero, lists empty, severity false). The returned report always
// has every field populated. The only error Run can return is
// *OrchestrationError, raised when the dispatch itself breaks.
func (a *Analyzer) Run(ctx context.Context, callID string, tr Transcript, durationSeconds float64) (*CallAnalysisReport, error) {
	a.logger.Info("starting call analysis",
		"call_id", callID,
		"messages", len(tr),
		"duration_seconds", durationSeconds,
	)

	var (
		wg sync.WaitGroup

		stressRes    StressResult
		sentimentRes SentimentResult
		stressorRes  StressorResult
		blockerRes   BlockerResult
		severityRes  SeverityResult

		stressErr    error
		sentimentErr error
		stressorErr  error
		blockerErr   error
		severityErr  error

		panicMu  sync.Mutex
		panicked error
	)

	// launch wraps each unit so a panic in one goroutine surfaces as an
	// orchestration failure after all units are observed, instead of
	// crashing the process.
	launch := func(run func()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					panicMu.Lock()
					if panicked == nil {
						panicked = fmt.Errorf("unit panic: %v", r)
					}
					panicMu.Unlock()
				}
			}()
			run()
		}()
	}

	launch(func() { stressRes, stressErr = a.detectStress(ctx, tr) })
	launch(func() { sentimentRes, sentimentErr = a.analyzeSentiment(ctx, tr) })
	launch(func() { stressorRes, stressorErr = a.findStressors(ctx, tr) })
	launch(func() { blockerRes, blockerErr = a.findBlockers(ctx, tr) })
	launch(func() { severityRes, severityErr = a.classifySeverity(ctx, tr, durationSeconds) })

	wg.Wait()

	if panicked != nil {
		return nil, &OrchestrationError{Err: panicked}
	}

	analysis := CallAnalysis{}

	if a.observe(callID, unitStress, stressErr) {
		analysis.StressedDetected = stressRes.StressedDetected
	}
	if a.observe(callID, unitSentiment, sentimentErr) {
		analysis.SentimentCounts = sentimentRes.SentimentCounts
	}
	if a.observe(callID, unitStressor, stressorErr) {
		analysis.TopStressors = stressorRes.TopStressors
	}
	if a.observe(callID, unitBlocker, blockerErr) {
		analysis.CommonBlockers = blockerRes.CommonBlockers
	}
	if a.observe(callID, unitSeverity, severityErr) {
		analysis.IsSevereCase = severityRes.IsSevereCase
	}

	// A blocked severity check defaults to not-severe like any other
	// failure, but that is the one default an operator may want to
	// second-guess, so it gets its own loud signal.
	var taskErr *TaskError
	if errors.As(severityErr, &taskErr) && taskErr.Kind == ContentBlocked {
		a.logger.Warn("severity check blocked by safety filters; defaulting to not severe",
			"call_id", callID,
			"error", severityErr,
		)
	}

	report := NewReport(callID, durationSeconds, analysis)

	a.logger.Info("call analysis complete",
		"call_id", callID,
		"stressed", analysis.StressedDetected,
		"positive", analysis.SentimentCounts.Positive,
		"negative", analysis.SentimentCounts.Negative,
		"severe", analysis.IsSevereCase,
	)

	return report, nil
}

// observe logs the per-unit outcome and reports whether the unit's
// value should be used (true) or its default substituted (false).
func (a *Analyzer) observe(callID, unit string, err error) bool {
	if err == nil {
		a.logger.Info("unit succeeded", "call_id", callID, "unit", unit)
		return true
	}
	kind := FailureKind("unknown")
	var taskErr *TaskError
	if errors.As(err, &taskErr) {
		kind = taskErr.Kind
	}
	a.logger.Warn("unit failed, using default",
		"call_id", callID,
		"unit", unit,
		"kind", string(kind),
		"error", err,
	)
	return false
}
