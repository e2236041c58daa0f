package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/MikeSquared-Agency/pulse/internal/analysis"
)

const defaultPostMessageURL = "https://slack.com/api/chat.postMessage"

// Poster sends severe-case alerts to a Slack channel so a human can
// follow up while the call is still fresh.
type Poster struct {
	token   string
	channel string
	client  *http.Client
	logger  *slog.Logger
	apiURL  string
}

func NewPoster(token, channel string, logger *slog.Logger) *Poster {
	return &Poster{
		token:   token,
		channel: channel,
		client:  &http.Client{Timeout: 10 * time.Second},
		apiURL:  defaultPostMessageURL,
		logger:  logger,
	}
}

// SetAPIURL overrides the Slack endpoint. Used by tests.
func (p *Poster) SetAPIURL(url string) {
	p.apiURL = url
}

// PostSevereAlert posts a formatted alert for a severe call.
func (p *Poster) PostSevereAlert(ctx context.Context, report *analysis.CallAnalysisReport) error {
	text := formatSevereAlert(report)

	body, err := json.Marshal(map[string]any{
		"channel": p.channel,
		"text":    text,
		"blocks": []map[string]any{
			{
				"type": "section",
				"text": map[string]any{
					"type": "mrkdwn",
					"text": text,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Authorization", "Bearer "+p.token)

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("slack post: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var slackResp struct {
		OK    bool   `json:"ok"`
		TS    string `json:"ts"`
		Error string `json:"error,omitempty"`
	}
	if err := json.Unmarshal(respBody, &slackResp); err != nil {
		return fmt.Errorf("parse slack response: %w", err)
	}
	if !slackResp.OK {
		return fmt.Errorf("slack error: %s", slackResp.Error)
	}

	p.logger.Info("posted severe alert to slack", "ts", slackResp.TS, "call_id", report.CallID)
	return nil
}

func formatSevereAlert(report *analysis.CallAnalysisReport) string {
	var sb strings.Builder

	sb.WriteString(":rotating_light: *Severe case detected*\n\n")
	fmt.Fprintf(&sb, "*Call:* %s\n", report.CallID)
	fmt.Fprintf(&sb, "*Duration:* %.0f seconds\n", report.CallDurationSeconds)
	fmt.Fprintf(&sb, "*Analyzed:* %s\n", report.AnalysisTimestamp)

	if report.Analysis.TopStressors != "" {
		fmt.Fprintf(&sb, "*Top stressors:* %s\n", report.Analysis.TopStressors)
	}
	if report.Analysis.CommonBlockers != "" {
		fmt.Fprintf(&sb, "*Blockers:* %s\n", report.Analysis.CommonBlockers)
	}
	fmt.Fprintf(&sb, "*Sentiment:* %d positive / %d negative",
		report.Analysis.SentimentCounts.Positive,
		report.Analysis.SentimentCounts.Negative,
	)

	return sb.String()
}
