package processor

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/MikeSquared-Agency/pulse/internal/analysis"
)

// EndOfCallType is the webhook message type that carries a finished
// call's transcript.
const EndOfCallType = "end-of-call-report"

// ValidationError marks a webhook payload that cannot be processed.
// The webhook still acknowledges these; they are archived and logged.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid payload: %s %s", e.Field, e.Reason)
}

// ProcessedCall is the validated, analysis-ready form of an
// end-of-call-report message.
type ProcessedCall struct {
	CallID          string              `json:"call_id"`
	AssistantID     string              `json:"assistant_id"`
	CustomerNumber  string              `json:"customer_number"`
	StartedAt       string              `json:"started_at"`
	EndedAt         string              `json:"ended_at"`
	DurationSeconds float64             `json:"duration_seconds"`
	Transcript      analysis.Transcript `json:"transcript"`
}

type rawMessage struct {
	Role    string `json:"role"`
	Message string `json:"message"`
	Content string `json:"content"`
}

type endOfCallMessage struct {
	Type string `json:"type"`
	Call struct {
		ID   string `json:"id"`
		Type string `json:"type"`
	} `json:"call"`
	Customer struct {
		Number string `json:"number"`
	} `json:"customer"`
	Assistant struct {
		ID string `json:"id"`
	} `json:"assistant"`
	StartedAt       string       `json:"startedAt"`
	EndedAt         string       `json:"endedAt"`
	DurationSeconds float64      `json:"durationSeconds"`
	Messages        []rawMessage `json:"messages"`
	Artifact        struct {
		Messages []rawMessage `json:"messages"`
	} `json:"artifact"`
}

// ExtractEndOfCall validates a raw end-of-call-report message and
// builds the transcript the analyzer runs on.
func ExtractEndOfCall(raw []byte) (*ProcessedCall, error) {
	var msg endOfCallMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, &ValidationError{Field: "message", Reason: "is not valid JSON"}
	}
	if msg.Type != EndOfCallType {
		return nil, &ValidationError{Field: "message.type", Reason: fmt.Sprintf("is %q, want %q", msg.Type, EndOfCallType)}
	}
	if msg.Call.ID == "" {
		return nil, &ValidationError{Field: "message.call.id", Reason: "is missing"}
	}

	duration := msg.DurationSeconds
	if duration <= 0 {
		duration = durationFromStamps(msg.StartedAt, msg.EndedAt)
	}
	if duration <= 0 {
		return nil, &ValidationError{Field: "message.durationSeconds", Reason: "must be positive"}
	}

	// newer payloads carry the transcript under artifact.messages,
	// older ones at the message top level
	source := msg.Artifact.Messages
	if len(source) == 0 {
		source = msg.Messages
	}

	transcript := make(analysis.Transcript, 0, len(source))
	for _, m := range source {
		content := m.Message
		if content == "" {
			content = m.Content
		}
		if strings.TrimSpace(content) == "" {
			continue
		}
		role := m.Role
		if role == "bot" {
			role = "assistant"
		}
		if role == "system" {
			continue
		}
		transcript = append(transcript, analysis.Message{Role: role, Content: content})
	}
	if len(transcript) == 0 {
		return nil, &ValidationError{Field: "message.artifact.messages", Reason: "contain no conversation turns"}
	}

	return &ProcessedCall{
		CallID:          msg.Call.ID,
		AssistantID:     msg.Assistant.ID,
		CustomerNumber:  msg.Customer.Number,
		StartedAt:       msg.StartedAt,
		EndedAt:         msg.EndedAt,
		DurationSeconds: duration,
		Transcript:      transcript,
	}, nil
}

func durationFromStamps(startedAt, endedAt string) float64 {
	start, err := time.Parse(time.RFC3339, startedAt)
	if err != nil {
		return 0
	}
	end, err := time.Parse(time.RFC3339, endedAt)
	if err != nil {
		return 0
	}
	return end.Sub(start).Seconds()
}
