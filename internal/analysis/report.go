package analysis

import (
	"encoding/json"
	"fmt"
	"time"
)

// SentimentCounts tallies positive and negative sentiment expressions.
type SentimentCounts struct {
	Positive int `json:"positive"`
	Negative int `json:"negative"`
}

// CallAnalysis is the merged, defaulted result of all task units for
// one transcript. Each field is sourced from exactly one unit.
type CallAnalysis struct {
	StressedDetected bool            `json:"stressed_detected"`
	SentimentCounts  SentimentCounts `json:"sentiment_counts"`
	TopStressors     string          `json:"top_stressors"`
	CommonBlockers   string          `json:"common_blockers"`
	IsSevereCase     bool            `json:"is_severe_case"`
}

// CallAnalysisReport is the final immutable report: analysis plus call
// metadata. This is what gets persisted and returned to callers.
type CallAnalysisReport struct {
	CallID              string       `json:"call_id"`
	CallDurationSeconds float64      `json:"call_duration_seconds"`
	AnalysisTimestamp   string       `json:"analysis_timestamp"`
	Analysis            CallAnalysis `json:"analysis"`
}

// NewReport stamps the current UTC time and wraps the analysis with
// call metadata. Pure construction, no failure modes.
func NewReport(callID string, durationSeconds float64, analysis CallAnalysis) *CallAnalysisReport {
	return &CallAnalysisReport{
		CallID:              callID,
		CallDurationSeconds: durationSeconds,
		AnalysisTimestamp:   time.Now().UTC().Format(time.RFC3339),
		Analysis:            analysis,
	}
}

// FlatReport is the persistence shape of a report: nested sentiment
// counts JSON-encoded, lists kept as comma-joined strings.
type FlatReport struct {
	CallID              string
	CallDurationSeconds float64
	StressedDetected    bool
	SentimentCountsJSON string
	TopStressors        string
	CommonBlockers      string
	IsSevereCase        bool
	AnalysisTimestamp   string
}

// Flatten converts a report to its persistence shape.
func (r *CallAnalysisReport) Flatten() (FlatReport, error) {
	counts, err := json.Marshal(r.Analysis.SentimentCounts)
	if err != nil {
		return FlatReport{}, fmt.Errorf("marshal sentiment counts: %w", err)
	}
	return FlatReport{
		CallID:              r.CallID,
		CallDurationSeconds: r.CallDurationSeconds,
		StressedDetected:    r.Analysis.StressedDetected,
		SentimentCountsJSON: string(counts),
		TopStressors:        r.Analysis.TopStressors,
		CommonBlockers:      r.Analysis.CommonBlockers,
		IsSevereCase:        r.Analysis.IsSevereCase,
		AnalysisTimestamp:   r.AnalysisTimestamp,
	}, nil
}

// Analysis reconstructs the composite analysis view from the flattened
// form. Round-trips all five semantic fields exactly.
func (f FlatReport) Analysis() (CallAnalysis, error) {
	var counts SentimentCounts
	if f.SentimentCountsJSON != "" {
		if err := json.Unmarshal([]byte(f.SentimentCountsJSON), &counts); err != nil {
			return CallAnalysis{}, fmt.Errorf("unmarshal sentiment counts: %w", err)
		}
	}
	return CallAnalysis{
		StressedDetected: f.StressedDetected,
		SentimentCounts:  counts,
		TopStressors:     f.TopStressors,
		CommonBlockers:   f.CommonBlockers,
		IsSevereCase:     f.IsSevereCase,
	}, nil
}
