package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/lexiboost/lexiboost/internal/config"
	"github.com/lexiboost/lexiboost/internal/db"
	"github.com/lexiboost/lexiboost/internal/preloader"
	"github.com/lexiboost/lexiboost/internal/repository"
	"github.com/lexiboost/lexiboost/internal/session"
	"github.com/lexiboost/lexiboost/internal/wrongbook"
)

type Server struct {
	DB             *db.DB
	Users          repository.UserRepository
	SessionService session.Service
	Importer       *wrongbook.Importer
	Preloader      *preloader.Preloader
	Config         *config.Config
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(securityHeadersMiddleware)

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	r.Route("/api", func(r chi.Router) {
		r.Post("/users", s.handleCreateUser)
		r.Get("/users/{id}", s.handleGetUser)
		r.Get("/users/{id}/stats", s.handleUserStats)
		r.Post("/users/{id}/wrongbook/import", s.handleImportWrongbook)

		r.Post("/sessions", s.handleStartSession)
		r.Get("/sessions/{id}/question", s.handleNextQuestion)
		r.Post("/sessions/{id}/answer", s.handleSubmitAnswer)
		r.Post("/sessions/{id}/stop", s.handleStopSession)
		r.Get("/sessions/{id}/preload-status", s.handlePreloadStatus)

		r.Get("/config", s.handleConfig)
	})

	return r
}
