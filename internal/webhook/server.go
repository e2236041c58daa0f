package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MikeSquared-Agency/pulse/internal/analysis"
	"github.com/MikeSquared-Agency/pulse/internal/processor"
)

// CallHandler is the pipeline the webhook hands messages to.
type CallHandler interface {
	HandleEndOfCall(ctx context.Context, raw []byte) (*analysis.CallAnalysisReport, error)
	HandleOther(msgType string, raw []byte)
}

// ReportReader serves the recent-reports endpoint.
type ReportReader interface {
	RecentReports(ctx context.Context, limit int) ([]analysis.FlatReport, error)
}

type Server struct {
	router  *chi.Mux
	port    int
	handler CallHandler
	reports ReportReader
	logger  *slog.Logger
}

func NewServer(port int, handler CallHandler, reports ReportReader, logger *slog.Logger) *Server {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router:  router,
		port:    port,
		handler: handler,
		reports: reports,
		logger:  logger,
	}

	router.Post("/vapi/webhook", s.webhook)
	router.Get("/health", s.health)
	router.Get("/api/v1/pulse/status", s.status)
	router.Get("/api/v1/reports/recent", s.recentReports)

	return s
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("webhook server starting", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}

// envelope is the outer webhook shape; everything interesting lives
// under "message".
type envelope struct {
	Message json.RawMessage `json:"message"`
}

// webhook acknowledges every structurally sound payload. Analysis or
// persistence failures are logged and recoverable from the archive via
// backfill; the caller retrying would only duplicate work.
func (s *Server) webhook(w http.ResponseWriter, r *http.Request) {
	var env envelope
	if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	if len(env.Message) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing message"})
		return
	}

	var header struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(env.Message, &header); err != nil || header.Type == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing message.type"})
		return
	}

	if header.Type != processor.EndOfCallType {
		s.handler.HandleOther(header.Type, env.Message)
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "handled": "archived"})
		return
	}

	report, err := s.handler.HandleEndOfCall(r.Context(), env.Message)
	if err != nil {
		var valErr *processor.ValidationError
		if errors.As(err, &valErr) {
			s.logger.Warn("rejected end-of-call payload", "error", err)
		} else {
			s.logger.Error("end-of-call processing failed", "error", err)
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "handled": "failed"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"handled": "analyzed",
		"call_id": report.CallID,
		"severe":  report.Analysis.IsSevereCase,
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"service": "pulse",
		"status":  "running",
	})
}

func (s *Server) recentReports(w http.ResponseWriter, r *http.Request) {
	flats, err := s.reports.RecentReports(r.Context(), 50)
	if err != nil {
		s.logger.Error("failed to load recent reports", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "query failed"})
		return
	}

	out := make([]map[string]any, 0, len(flats))
	for _, f := range flats {
		a, err := f.Analysis()
		if err != nil {
			s.logger.Error("failed to decode stored report", "call_id", f.CallID, "error", err)
			continue
		}
		out = append(out, map[string]any{
			"call_id":               f.CallID,
			"call_duration_seconds": f.CallDurationSeconds,
			"analysis_timestamp":    f.AnalysisTimestamp,
			"analysis":              a,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"reports": out, "count": len(out)})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
