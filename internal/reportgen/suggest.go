package reportgen

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/MikeSquared-Agency/pulse/internal/genai"
)

// TextGenerator is the slice of the generation client the suggestion
// step needs.
type TextGenerator interface {
	Generate(ctx context.Context, profile genai.Profile, prompt string) (string, error)
}

// Suggestions are the LLM's recommendations for the report.
type Suggestions struct {
	ShortTerm []string `json:"short_term_suggestions"`
	LongTerm  []string `json:"long_term_suggestions"`
}

const suggestionInstruction = `You are an employee wellbeing advisor reviewing aggregated call-center stress metrics.

Based on the metrics above, recommend concrete actions management can take.

Respond ONLY with valid JSON in this exact format:
{
  "short_term_suggestions": ["action for this week", "..."],
  "long_term_suggestions": ["structural change", "..."]
}

Give 2-4 suggestions per list. Keep each suggestion to one sentence.
Do not include any explanation, only the JSON object.`

// Suggest asks the model for short and long-term recommendations based
// on the day's snapshot.
func Suggest(ctx context.Context, llm TextGenerator, profile genai.Profile, snap DailySnapshot) (Suggestions, error) {
	raw, err := llm.Generate(ctx, profile, renderMetricsPrompt(snap)+"\n\n"+suggestionInstruction)
	if err != nil {
		return Suggestions{}, fmt.Errorf("generate suggestions: %w", err)
	}

	var out Suggestions
	if err := json.Unmarshal([]byte(genai.StripFences(raw)), &out); err != nil {
		return Suggestions{}, fmt.Errorf("parse suggestions: %w", err)
	}
	if len(out.ShortTerm) == 0 && len(out.LongTerm) == 0 {
		return Suggestions{}, fmt.Errorf("model returned no suggestions")
	}
	return out, nil
}

func renderMetricsPrompt(snap DailySnapshot) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "DAILY METRICS for %s:\n", snap.Date.Format("2006-01-02"))
	fmt.Fprintf(&sb, "- Calls analyzed: %d\n", snap.CallCount)
	fmt.Fprintf(&sb, "- Positive sentiment: %.1f%%\n", snap.PositivePct)
	fmt.Fprintf(&sb, "- Negative sentiment: %.1f%%\n", snap.NegativePct)
	fmt.Fprintf(&sb, "- Calls with stress detected: %.1f%%\n", snap.StressedPct)
	fmt.Fprintf(&sb, "- Severe cases: %d\n", snap.SevereCases)

	if len(snap.TopStressors) > 0 {
		sb.WriteString("- Top stressors: ")
		sb.WriteString(joinRanked(snap.TopStressors))
		sb.WriteString("\n")
	}
	if len(snap.CommonBlockers) > 0 {
		sb.WriteString("- Common blockers: ")
		sb.WriteString(joinRanked(snap.CommonBlockers))
		sb.WriteString("\n")
	}
	return sb.String()
}

func joinRanked(items []RankedItem) string {
	parts := make([]string, 0, len(items))
	for i, item := range items {
		if i == 5 {
			break
		}
		parts = append(parts, fmt.Sprintf("%s (%d calls)", item.Name, item.Count))
	}
	return strings.Join(parts, ", ")
}
