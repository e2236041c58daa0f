package alert

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/MikeSquared-Agency/pulse/internal/analysis"
)

func severeReport() *analysis.CallAnalysisReport {
	return analysis.NewReport("call-severe-1", 48, analysis.CallAnalysis{
		StressedDetected: true,
		SentimentCounts:  analysis.SentimentCounts{Positive: 0, Negative: 6},
		TopStressors:     "crisis, isolation",
		IsSevereCase:     true,
	})
}

func TestPostSevereAlert(t *testing.T) {
	var gotAuth string
	var gotPayload map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotPayload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.Write([]byte(`{"ok": true, "ts": "1234.5678"}`))
	}))
	defer server.Close()

	p := NewPoster("xoxb-test", "#alerts", slog.New(slog.NewTextHandler(io.Discard, nil)))
	p.SetAPIURL(server.URL)

	if err := p.PostSevereAlert(context.Background(), severeReport()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotAuth != "Bearer xoxb-test" {
		t.Errorf("auth header = %q", gotAuth)
	}
	if gotPayload["channel"] != "#alerts" {
		t.Errorf("channel = %v", gotPayload["channel"])
	}
	text, _ := gotPayload["text"].(string)
	if !strings.Contains(text, "call-severe-1") {
		t.Errorf("alert text missing call id: %q", text)
	}
	if !strings.Contains(text, "crisis, isolation") {
		t.Errorf("alert text missing stressors: %q", text)
	}
	if !strings.Contains(text, "48 seconds") {
		t.Errorf("alert text missing duration: %q", text)
	}
}

func TestPostSevereAlert_SlackError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		w.Write([]byte(`{"ok": false, "error": "channel_not_found"}`))
	}))
	defer server.Close()

	p := NewPoster("xoxb-test", "#missing", slog.New(slog.NewTextHandler(io.Discard, nil)))
	p.SetAPIURL(server.URL)

	err := p.PostSevereAlert(context.Background(), severeReport())
	if err == nil || !strings.Contains(err.Error(), "channel_not_found") {
		t.Fatalf("expected slack error, got %v", err)
	}
}
