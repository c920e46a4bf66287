package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	apperrors "github.com/lexiboost/lexiboost/internal/errors"
	"github.com/lexiboost/lexiboost/internal/logger"
	"github.com/lexiboost/lexiboost/internal/models"
	"github.com/lexiboost/lexiboost/internal/repository/sqlite"
)

type createUserRequest struct {
	Username string `json:"username"`
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var req createUserRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	username := strings.ToLower(strings.TrimSpace(req.Username))
	if username == "" {
		handleError(w, r, apperrors.NewValidationError("username", "must not be empty"))
		return
	}

	user, err := s.Users.Create(r.Context(), username)
	if err != nil {
		if errors.Is(err, sqlite.ErrDuplicateUsername) {
			handleError(w, r, apperrors.NewConflictError("username already exists"))
			return
		}
		handleError(w, r, err)
		return
	}

	log.Info("user created: id=%d username=%s", user.ID, user.Username)
	writeJSON(w, r, http.StatusCreated, user)
}

// handleGetUser looks a user up by numeric ID or, failing that, by username.
func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "id")

	var user *models.User
	if id, err := strconv.ParseInt(key, 10, 64); err == nil && id > 0 {
		user, err = s.Users.Get(r.Context(), id)
		if err != nil {
			handleError(w, r, err)
			return
		}
	} else {
		var lerr error
		user, lerr = s.Users.GetByUsername(r.Context(), strings.ToLower(key))
		if lerr != nil {
			handleError(w, r, lerr)
			return
		}
	}
	if user == nil {
		handleError(w, r, apperrors.NewNotFoundError("user", key))
		return
	}
	writeJSON(w, r, http.StatusOK, user)
}

func (s *Server) handleUserStats(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	stats, err := s.SessionService.UserStats(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, stats)
}
