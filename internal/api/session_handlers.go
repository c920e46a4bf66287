package api

import (
	"net/http"

	apperrors "github.com/lexiboost/lexiboost/internal/errors"
	"github.com/lexiboost/lexiboost/internal/logger"
	"github.com/lexiboost/lexiboost/internal/session"
)

type startSessionRequest struct {
	UserID int64 `json:"user_id"`
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var req startSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if req.UserID <= 0 {
		handleError(w, r, apperrors.NewValidationError("user_id", "must be a positive integer"))
		return
	}

	sess, err := s.SessionService.Start(r.Context(), req.UserID)
	if err != nil {
		handleError(w, r, err)
		return
	}

	log.Info("session started: id=%d user_id=%d", sess.ID, sess.UserID)
	writeJSON(w, r, http.StatusCreated, sess)
}

func (s *Server) handleNextQuestion(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	result, err := s.SessionService.NextQuestion(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, result)
}

type submitAnswerRequest struct {
	WordID     int64  `json:"word_id"`
	UserAnswer string `json:"user_answer"`
}

func (s *Server) handleSubmitAnswer(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	var req submitAnswerRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if req.WordID <= 0 {
		handleError(w, r, apperrors.NewValidationError("word_id", "must be a positive integer"))
		return
	}

	result, err := s.SessionService.SubmitAnswer(r.Context(), id, session.AnswerRequest{
		WordID:     req.WordID,
		UserAnswer: req.UserAnswer,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, result)
}

func (s *Server) handleStopSession(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	if err := s.SessionService.Stop(r.Context(), id); err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"stopped": true})
}

// handlePreloadStatus exposes the content cache state for a session, mostly
// for debugging slow generation.
func (s *Server) handlePreloadStatus(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]any{
		"session": s.Preloader.SessionStatus(id),
		"totals":  s.Preloader.Stats(),
	})
}
