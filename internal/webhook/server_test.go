package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/MikeSquared-Agency/pulse/internal/analysis"
	"github.com/MikeSquared-Agency/pulse/internal/processor"
)

type fakeHandler struct {
	report    *analysis.CallAnalysisReport
	err       error
	endOfCall int
	other     []string
}

func (f *fakeHandler) HandleEndOfCall(_ context.Context, _ []byte) (*analysis.CallAnalysisReport, error) {
	f.endOfCall++
	if f.err != nil {
		return nil, f.err
	}
	return f.report, nil
}

func (f *fakeHandler) HandleOther(msgType string, _ []byte) {
	f.other = append(f.other, msgType)
}

type fakeReader struct {
	reports []analysis.FlatReport
	err     error
}

func (f *fakeReader) RecentReports(_ context.Context, _ int) ([]analysis.FlatReport, error) {
	return f.reports, f.err
}

func newTestServer(handler *fakeHandler, reader *fakeReader) *Server {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(8760, handler, reader, logger)
}

func postWebhook(srv *Server, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/vapi/webhook", strings.NewReader(body))
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	return w
}

func TestWebhook_EndOfCall(t *testing.T) {
	report := analysis.NewReport("call-1", 120, analysis.CallAnalysis{IsSevereCase: true})
	handler := &fakeHandler{report: report}
	srv := newTestServer(handler, &fakeReader{})

	w := postWebhook(srv, `{"message": {"type": "end-of-call-report", "call": {"id": "call-1"}}}`)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if handler.endOfCall != 1 {
		t.Errorf("end-of-call handled %d times", handler.endOfCall)
	}

	var body map[string]any
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["handled"] != "analyzed" {
		t.Errorf("handled = %v", body["handled"])
	}
	if body["call_id"] != "call-1" {
		t.Errorf("call_id = %v", body["call_id"])
	}
	if body["severe"] != true {
		t.Errorf("severe = %v", body["severe"])
	}
}

func TestWebhook_OtherTypeArchived(t *testing.T) {
	handler := &fakeHandler{}
	srv := newTestServer(handler, &fakeReader{})

	w := postWebhook(srv, `{"message": {"type": "status-update", "status": "in-progress"}}`)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if handler.endOfCall != 0 {
		t.Error("status-update must not hit the call pipeline")
	}
	if len(handler.other) != 1 || handler.other[0] != "status-update" {
		t.Errorf("other types = %v", handler.other)
	}
}

func TestWebhook_BadRequests(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"invalid json", `{"message":`},
		{"missing message", `{"other": 1}`},
		{"missing type", `{"message": {"call": {"id": "x"}}}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := newTestServer(&fakeHandler{}, &fakeReader{})
			w := postWebhook(srv, tc.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", w.Code)
			}
		})
	}
}

func TestWebhook_ProcessingFailureStillAcknowledged(t *testing.T) {
	handler := &fakeHandler{err: errors.New("db down")}
	srv := newTestServer(handler, &fakeReader{})

	w := postWebhook(srv, `{"message": {"type": "end-of-call-report"}}`)

	if w.Code != http.StatusOK {
		t.Errorf("processing failures must still ack, got %d", w.Code)
	}

	var body map[string]any
	json.NewDecoder(w.Body).Decode(&body)
	if body["handled"] != "failed" {
		t.Errorf("handled = %v", body["handled"])
	}
}

func TestWebhook_ValidationFailureStillAcknowledged(t *testing.T) {
	handler := &fakeHandler{err: &processor.ValidationError{Field: "message.call.id", Reason: "is missing"}}
	srv := newTestServer(handler, &fakeReader{})

	w := postWebhook(srv, `{"message": {"type": "end-of-call-report"}}`)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(&fakeHandler{}, &fakeReader{})

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %q", body["status"])
	}
}

func TestStatusEndpoint(t *testing.T) {
	srv := newTestServer(&fakeHandler{}, &fakeReader{})

	req := httptest.NewRequest("GET", "/api/v1/pulse/status", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["service"] != "pulse" {
		t.Errorf("expected service pulse, got %q", body["service"])
	}
}

func TestRecentReportsEndpoint(t *testing.T) {
	report := analysis.NewReport("call-r", 60, analysis.CallAnalysis{
		SentimentCounts: analysis.SentimentCounts{Positive: 2, Negative: 1},
		TopStressors:    "deadlines",
	})
	flat, err := report.Flatten()
	if err != nil {
		t.Fatal(err)
	}
	srv := newTestServer(&fakeHandler{}, &fakeReader{reports: []analysis.FlatReport{flat}})

	req := httptest.NewRequest("GET", "/api/v1/reports/recent", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}

	var body struct {
		Count   int `json:"count"`
		Reports []struct {
			CallID   string                `json:"call_id"`
			Analysis analysis.CallAnalysis `json:"analysis"`
		} `json:"reports"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Count != 1 {
		t.Fatalf("count = %d", body.Count)
	}
	if body.Reports[0].CallID != "call-r" {
		t.Errorf("call_id = %q", body.Reports[0].CallID)
	}
	if body.Reports[0].Analysis.TopStressors != "deadlines" {
		t.Errorf("stressors = %q", body.Reports[0].Analysis.TopStressors)
	}
}

func TestRecentReportsEndpoint_QueryFailure(t *testing.T) {
	srv := newTestServer(&fakeHandler{}, &fakeReader{err: errors.New("no db")})

	req := httptest.NewRequest("GET", "/api/v1/reports/recent", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
}

func TestNotFoundEndpoint(t *testing.T) {
	srv := newTestServer(&fakeHandler{}, &fakeReader{})

	req := httptest.NewRequest("GET", "/nonexistent", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}
