// Package api exposes the canvas engine over HTTP. Each session is a
// server-side canvas addressed by id; mutations are plain JSON
// endpoints and state change notifications flow out over SSE.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/prismdocs/atlas/pkg/logging"
	"github.com/prismdocs/atlas/pkg/metrics"
	"github.com/prismdocs/atlas/pkg/session"
)

// Version is reported by the health endpoint
const Version = "1.0.0"

// Server is the HTTP API server
type Server struct {
	cfg       *Config
	manager   *session.Manager
	logger    logging.Logger
	metrics   *metrics.Registry
	validate  *validator.Validate
	startTime time.Time
}

// NewServer creates an API server over a session manager
func NewServer(cfg *Config, manager *session.Manager, logger logging.Logger, reg *metrics.Registry) *Server {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if reg == nil {
		reg = metrics.DefaultRegistry()
	}
	return &Server{
		cfg:       cfg,
		manager:   manager,
		logger:    logger.With(logging.Component("api")),
		metrics:   reg,
		validate:  validator.New(),
		startTime: time.Now(),
	}
}

// Routes builds the full handler with the middleware chain applied
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.HandlerFor(
		s.metrics.GetPrometheusRegistry(),
		promhttp.HandlerOpts{},
	))

	mux.HandleFunc("POST /sessions", s.handleCreateSession)
	mux.HandleFunc("DELETE /sessions/{id}", s.handleCloseSession)
	mux.HandleFunc("GET /sessions/{id}/project", s.handleGetProject)
	mux.HandleFunc("PUT /sessions/{id}/project", s.handlePutProject)
	mux.HandleFunc("GET /sessions/{id}/graph", s.handleGetGraph)
	mux.HandleFunc("GET /sessions/{id}/events", s.handleEvents)

	mux.HandleFunc("POST /sessions/{id}/generate", s.handleGenerate)
	mux.HandleFunc("POST /sessions/{id}/nodes", s.handleCreateNode)
	mux.HandleFunc("POST /sessions/{id}/nodes/{nodeID}/expand", s.handleExpand)
	mux.HandleFunc("GET /sessions/{id}/nodes/{nodeID}/expand/suggestions", s.handleExpandSuggestions)
	mux.HandleFunc("POST /sessions/{id}/nodes/{nodeID}/move", s.handleMoveNode)
	mux.HandleFunc("DELETE /sessions/{id}/nodes/{nodeID}", s.handleDeleteNode)

	mux.HandleFunc("POST /sessions/{id}/merge", s.handleInitiateMerge)
	mux.HandleFunc("POST /sessions/{id}/merge/{nodeID}/resolve", s.handleResolveMerge)

	mux.HandleFunc("POST /sessions/{id}/selection", s.handleSelect)
	mux.HandleFunc("DELETE /sessions/{id}/selection", s.handleClearSelection)
	mux.HandleFunc("DELETE /sessions/{id}/selection/nodes", s.handleDeleteSelected)

	var handler http.Handler = mux
	handler = s.authMiddleware(handler)
	handler = s.bodyLimitMiddleware(handler, s.cfg.MaxBodyBytes)
	handler = s.metricsMiddleware(handler)
	handler = s.corsMiddleware(handler)
	handler = s.loggingMiddleware(handler)
	handler = s.recoveryMiddleware(handler)
	return handler
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.metrics.UpdateSystemMetrics(s.startTime)
	s.respondJSON(w, http.StatusOK, HealthResponse{
		Status:   "healthy",
		Version:  Version,
		Uptime:   time.Since(s.startTime).String(),
		Sessions: s.manager.Len(),
	})
}

// sessionFrom resolves the {id} path segment to a live session,
// writing the 404 itself when there is none
func (s *Server) sessionFrom(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	id := r.PathValue("id")
	sess, ok := s.manager.Get(id)
	if !ok {
		s.respondError(w, http.StatusNotFound, "session not found")
		return nil, false
	}
	return sess, true
}

// decode unmarshals and validates a JSON request body, writing the
// 400 itself on failure
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := s.validate.Struct(v); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("response encoding failed", logging.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	})
}
