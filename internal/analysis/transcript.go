package analysis

import (
	"fmt"
	"strings"
)

// Message is a single turn in a call transcript.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Transcript is the ordered conversation of one call. It is built once
// by the processor and never mutated afterwards.
type Transcript []Message

// render formats the transcript for inclusion in a prompt. When
// duration is positive it is appended as call context.
func (t Transcript) render(duration float64) string {
	var sb strings.Builder
	sb.WriteString("CALL TRANSCRIPT:")
	for _, msg := range t {
		role := msg.Role
		if role == "" {
			role = "unknown"
		}
		fmt.Fprintf(&sb, "\n%s: %s", strings.ToUpper(role), msg.Content)
	}
	if duration > 0 {
		fmt.Fprintf(&sb, "\n\nCALL DURATION: %g seconds", duration)
	}
	return sb.String()
}
