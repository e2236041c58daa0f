package analysis

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/MikeSquared-Agency/pulse/internal/genai"
)

// Unit names, used in telemetry and TaskError values.
const (
	unitStress    = "stress_detector"
	unitSentiment = "sentiment_analyzer"
	unitStressor  = "stressor_finder"
	unitBlocker   = "blocker_finder"
	unitSeverity  = "severity_classifier"
)

// StressResult is the stress detector's output.
type StressResult struct {
	StressedDetected bool     `json:"stressed_detected"`
	Confidence       *float64 `json:"confidence,omitempty"`
}

// SentimentResult is the sentiment analyzer's output.
type SentimentResult struct {
	SentimentCounts SentimentCounts `json:"sentiment_counts"`
}

// StressorResult is the stressor finder's output.
type StressorResult struct {
	TopStressors string `json:"top_stressors"`
}

// BlockerResult is the blocker finder's output.
type BlockerResult struct {
	CommonBlockers string `json:"common_blockers"`
}

// SeverityResult is the severity classifier's output.
type SeverityResult struct {
	IsSevereCase       bool     `json:"is_severe_case"`
	SeverityIndicators []string `json:"severity_indicators"`
}

// invoke is the shared task-unit body: render prompt, call the
// generation service, strip fences, parse, validate against the unit's
// output schema, decode into the typed result. All failures come back
// as *TaskError.
func (a *Analyzer) invoke(ctx context.Context, unit string, profile genai.Profile, prompt string, schema *jsonschema.Schema, out any) error {
	raw, err := a.llm.Generate(ctx, profile, prompt)
	if err != nil {
		var blocked *genai.BlockedError
		if errors.As(err, &blocked) {
			return &TaskError{Unit: unit, Kind: ContentBlocked, Err: err}
		}
		return &TaskError{Unit: unit, Kind: TransportFailure, Err: err}
	}

	cleaned := genai.StripFences(raw)

	var doc any
	if err := json.Unmarshal([]byte(cleaned), &doc); err != nil {
		return &TaskError{Unit: unit, Kind: MalformedOutput, Err: err}
	}
	if err := schema.Validate(doc); err != nil {
		return &TaskError{Unit: unit, Kind: SchemaViolation, Err: err}
	}
	if err := json.Unmarshal([]byte(cleaned), out); err != nil {
		return &TaskError{Unit: unit, Kind: SchemaViolation, Err: err}
	}
	return nil
}

func (a *Analyzer) detectStress(ctx context.Context, tr Transcript) (StressResult, error) {
	var res StressResult
	prompt := tr.render(0) + "\n\n" + stressInstruction
	err := a.invoke(ctx, unitStress, a.profiles.Stress, prompt, stressSchema, &res)
	return res, err
}

func (a *Analyzer) analyzeSentiment(ctx context.Context, tr Transcript) (SentimentResult, error) {
	var res SentimentResult
	prompt := tr.render(0) + "\n\n" + sentimentInstruction
	err := a.invoke(ctx, unitSentiment, a.profiles.Sentiment, prompt, sentimentSchema, &res)
	return res, err
}

func (a *Analyzer) findStressors(ctx context.Context, tr Transcript) (StressorResult, error) {
	var res StressorResult
	prompt := tr.render(0) + "\n\n" + stressorInstruction
	err := a.invoke(ctx, unitStressor, a.profiles.Stressor, prompt, stressorSchema, &res)
	return res, err
}

func (a *Analyzer) findBlockers(ctx context.Context, tr Transcript) (BlockerResult, error) {
	var res BlockerResult
	prompt := tr.render(0) + "\n\n" + blockerInstruction
	err := a.invoke(ctx, unitBlocker, a.profiles.Blocker, prompt, blockerSchema, &res)
	return res, err
}

// classifySeverity is the only unit that also receives call duration;
// short calls with crisis language weigh differently.
func (a *Analyzer) classifySeverity(ctx context.Context, tr Transcript, duration float64) (SeverityResult, error) {
	var res SeverityResult
	prompt := tr.render(duration) + "\n\n" + severityInstruction
	err := a.invoke(ctx, unitSeverity, a.profiles.Severity, prompt, severitySchema, &res)
	return res, err
}
