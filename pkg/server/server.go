// Package server exposes the graphing backend over HTTP: analysis with AI
// insights, the chat assistant, comparison export, health, and metrics.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/anhducnguyen2006/mrg-labs-graphing-app/pkg/chat"
	"github.com/anhducnguyen2006/mrg-labs-graphing-app/pkg/insights"
	"github.com/anhducnguyen2006/mrg-labs-graphing-app/pkg/metrics"
	"github.com/anhducnguyen2006/mrg-labs-graphing-app/pkg/similarity"
	"github.com/anhducnguyen2006/mrg-labs-graphing-app/pkg/store"
	"github.com/anhducnguyen2006/mrg-labs-graphing-app/pkg/trace"
)

// maxUploadBytes caps multipart request memory before spilling to disk.
const maxUploadBytes = 64 << 20

// Options wires the server's collaborators. Metrics and Exporter may be nil;
// no-op implementations are substituted.
type Options struct {
	Engine        *similarity.Engine
	Analyzer      *insights.Analyzer
	Chat          *chat.Service
	Store         store.AnalysisStore
	Metrics       metrics.Collector
	Exporter      trace.Exporter
	Logger        *slog.Logger
	LLMConfigured bool
}

// Server handles the backend's HTTP routes.
type Server struct {
	engine        *similarity.Engine
	analyzer      *insights.Analyzer
	chat          *chat.Service
	store         store.AnalysisStore
	metrics       metrics.Collector
	exporter      trace.Exporter
	logger        *slog.Logger
	llmConfigured bool
}

// New creates a server over the given collaborators.
func New(opts Options) *Server {
	if opts.Metrics == nil {
		opts.Metrics = metrics.NewNoopCollector()
	}
	if opts.Exporter == nil {
		opts.Exporter = trace.NewNoopExporter()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &Server{
		engine:        opts.Engine,
		analyzer:      opts.Analyzer,
		chat:          opts.Chat,
		store:         opts.Store,
		metrics:       opts.Metrics,
		exporter:      opts.Exporter,
		logger:        opts.Logger,
		llmConfigured: opts.LLMConfigured,
	}
}

// Handler builds the route table with CORS and request logging applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("POST /analysis/generate_insights", s.handleGenerateInsights)
	mux.HandleFunc("GET /analysis/history", s.handleListAnalyses)
	mux.HandleFunc("GET /analysis/history/{id}", s.handleGetAnalysis)
	mux.HandleFunc("DELETE /analysis/history/{id}", s.handleDeleteAnalysis)
	mux.HandleFunc("GET /analysis/health", s.handleAnalysisHealth)

	mux.HandleFunc("POST /chat/send_message", s.handleSendMessage)
	mux.HandleFunc("POST /chat/quick_question", s.handleQuickQuestion)
	mux.HandleFunc("GET /chat/conversation/{id}", s.handleGetConversation)
	mux.HandleFunc("DELETE /chat/conversation/{id}", s.handleClearConversation)
	mux.HandleFunc("GET /chat/health", s.handleChatHealth)

	mux.HandleFunc("POST /generate_graphs", s.handleGenerateGraphs)

	if mc, ok := s.metrics.(*metrics.MetricsCollector); ok {
		mux.Handle("GET /metrics", promhttp.HandlerFor(mc.Registry(), promhttp.HandlerOpts{}))
	}

	return s.withCORS(s.withLogging(mux))
}

// withCORS applies the permissive development CORS policy the frontend
// expects.
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

// observe starts timing an operation; the returned function records the
// outcome to metrics and the trace exporter.
func (s *Server) observe(ctx context.Context, operation string) func(err error) {
	start := time.Now()
	operationID := uuid.NewString()

	return func(err error) {
		durationMs := time.Since(start).Milliseconds()
		status := "success"
		errType := ""
		if err != nil {
			status = "error"
			errType = classifyError(err)
			s.metrics.RecordError(ctx, operation, errType)
		}
		s.metrics.RecordOperation(ctx, operation, status, durationMs)

		record := &trace.TraceRecord{
			Timestamp:   start,
			OperationID: operationID,
			Operation:   operation,
			DurationMs:  durationMs,
			Status:      status,
			ErrorType:   errType,
		}
		if exportErr := s.exporter.Export(ctx, record); exportErr != nil {
			s.logger.Warn("trace export failed", "error", exportErr)
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps an error to the right status code and a JSON error body.
// Shape/validation errors are client errors; everything else is internal.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	var cmpErr *similarity.ComparisonError
	switch {
	case errors.As(err, &cmpErr):
		status = http.StatusBadRequest
	case errors.Is(err, store.ErrAnalysisNotFound):
		status = http.StatusNotFound
	case classifyError(err) == ErrTypeValidation:
		status = http.StatusBadRequest
	}

	writeJSON(w, status, map[string]string{"error": err.Error()})
}
