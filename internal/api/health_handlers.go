package api

import (
	"net/http"

	"github.com/lexiboost/lexiboost/internal/logger"
)

// handleHealth is a liveness probe: the process is up.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// handleReady is a readiness probe: the database answers.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.DB.PingContext(r.Context()); err != nil {
		logger.FromContext(r.Context()).Warn("readiness check failed: %v", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("Database unavailable"))
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Ready"))
}

// handleConfig echoes the non-secret runtime configuration.
func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{
		"session_length":       s.Config.SessionLength,
		"prefetch_depth":       s.Config.PrefetchDepth,
		"question_ttl":         s.Config.QuestionTTL.String(),
		"session_idle_timeout": s.Config.SessionIdleTimeout.String(),
		"generation_timeout":   s.Config.GenerationTimeout.String(),
		"mock_generator":       s.Config.MockGenerator,
	})
}
