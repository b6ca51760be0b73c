// Package server exposes the analysis orchestrator over HTTP.
//
// Endpoints:
//   - POST /api/analyze       - full analysis of one conversation
//   - POST /api/analyze/quick - pattern-only fast path
//   - POST /api/analyze/batch - batch entity extraction
//   - GET  /api/usage         - cumulative tier usage and estimated cost
//   - POST /api/usage/reset   - explicit usage counter reset
//   - GET  /healthz           - health check
//   - GET  /metrics           - Prometheus metrics
//
// The server only transports results. It never persists analyses, never
// applies stage transitions and never sends notifications; those are
// caller concerns.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/trace"

	apperrors "conversation-intel/internal/common/errors"
	"conversation-intel/internal/common/logger"
	"conversation-intel/internal/common/observability"
	"conversation-intel/internal/models"
	"conversation-intel/internal/orchestrator"
	"conversation-intel/internal/stages/entityextract"
)

// maxRequestBody bounds request size to 1MB.
const maxRequestBody = 1 << 20

type Server struct {
	orch    *orchestrator.Orchestrator
	obs     *observability.Observability
	tracing *observability.Tracing
	logger  logger.Logger
}

// New builds a server. obs and tracing may be nil; recording is then skipped.
func New(orch *orchestrator.Orchestrator, obs *observability.Observability, tracing *observability.Tracing, log logger.Logger) *Server {
	return &Server{
		orch:    orch,
		obs:     obs,
		tracing: tracing,
		logger:  log.With(map[string]interface{}{"component": "server"}),
	}
}

// Handler builds the route mux.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/analyze", s.handleAnalyze)
	mux.HandleFunc("POST /api/analyze/quick", s.handleQuickAnalyze)
	mux.HandleFunc("POST /api/analyze/batch", s.handleBatchExtract)
	mux.HandleFunc("GET /api/usage", s.handleUsage)
	mux.HandleFunc("POST /api/usage/reset", s.handleUsageReset)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())
	return mux
}

// AnalyzeRequest is the full-analysis request body.
type AnalyzeRequest struct {
	Text    string                 `json:"text"`
	Context models.AnalysisContext `json:"context"`
}

// QuickAnalyzeRequest is the fast-path request body.
type QuickAnalyzeRequest struct {
	Text string `json:"text"`
}

// BatchExtractRequest is the batch entity extraction request body.
type BatchExtractRequest struct {
	Items []entityextract.BatchItem `json:"items"`
}

type errorResponse struct {
	Error *apperrors.StandardError `json:"error"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Text == "" {
		s.writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	ctx := r.Context()
	if s.tracing != nil {
		var span trace.Span
		ctx, span = s.tracing.StartAnalysisSpan(ctx, "full", req.Context.ContactID)
		defer span.End()
	}

	result := s.orch.Analyze(ctx, req.Text, req.Context)
	if s.obs != nil {
		s.obs.RecordAnalysis(ctx, "full",
			time.Duration(result.Metadata.ProcessingTimeMs)*time.Millisecond,
			result.Metadata.TotalEstimatedCost)
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleQuickAnalyze(w http.ResponseWriter, r *http.Request) {
	var req QuickAnalyzeRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Text == "" {
		s.writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	result := s.orch.QuickAnalyze(req.Text)
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleBatchExtract(w http.ResponseWriter, r *http.Request) {
	var req BatchExtractRequest
	if !s.decode(w, r, &req) {
		return
	}
	if len(req.Items) == 0 {
		s.writeError(w, http.StatusBadRequest, "items is required")
		return
	}

	results := s.orch.BatchExtract(r.Context(), req.Items)
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"results": results})
}

func (s *Server) handleUsage(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.orch.Usage().Snapshot())
}

func (s *Server) handleUsageReset(w http.ResponseWriter, r *http.Request) {
	s.orch.Usage().Reset()
	s.logger.Info("usage counters reset", nil)
	s.writeJSON(w, http.StatusOK, s.orch.Usage().Snapshot())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorResponse{Error: apperrors.NewInvalidInputError(msg)})
}
