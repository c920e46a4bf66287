package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lexiboost/lexiboost/internal/api"
	"github.com/lexiboost/lexiboost/internal/config"
	"github.com/lexiboost/lexiboost/internal/db"
	"github.com/lexiboost/lexiboost/internal/generator"
	"github.com/lexiboost/lexiboost/internal/logger"
	"github.com/lexiboost/lexiboost/internal/preloader"
	"github.com/lexiboost/lexiboost/internal/repository/sqlite"
	"github.com/lexiboost/lexiboost/internal/selector"
	"github.com/lexiboost/lexiboost/internal/session"
	"github.com/lexiboost/lexiboost/internal/worker"
	"github.com/lexiboost/lexiboost/internal/wrongbook"
)

func main() {
	cfg := config.Load()

	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	log.Info("===========================================")
	log.Info("LexiBoost Server Starting")
	log.Info("===========================================")
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration: %v", err)
		os.Exit(1)
	}
	log.Info("configuration loaded")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("session_length=%d", cfg.SessionLength)
	log.Debug("prefetch_depth=%d", cfg.PrefetchDepth)
	log.Debug("question_ttl=%v", cfg.QuestionTTL)
	log.Debug("session_idle_timeout=%v", cfg.SessionIdleTimeout)
	log.Debug("generation_timeout=%v", cfg.GenerationTimeout)
	log.Debug("generator_concurrency=%d", cfg.GeneratorConcurrency)
	log.Debug("generator_queue_size=%d", cfg.GeneratorQueueSize)
	log.Debug("mock_generator=%v", cfg.MockGenerator)

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	users := sqlite.NewUserRepository(database.DB)
	words := sqlite.NewWordRepository(database.DB)
	progress := sqlite.NewProgressRepository(database.DB)
	sessions := sqlite.NewSessionRepository(database.DB)
	attempts := sqlite.NewAttemptRepository(database.DB)
	stats := sqlite.NewStatsRepository(database.DB)

	var gen generator.Generator
	if cfg.MockGenerator {
		log.Info("using mock content generator")
		gen = generator.NewMockGenerator()
	} else {
		gen, err = generator.NewOpenAIGenerator(generator.OpenAIConfig{
			APIKey:  cfg.OpenAIAPIKey,
			Model:   cfg.OpenAIModel,
			BaseURL: cfg.OpenAIBaseURL,
		})
		if err != nil {
			log.Error("failed to initialize content generator: %v", err)
			os.Exit(1)
		}
		log.Info("using OpenAI content generator: model=%s", cfg.OpenAIModel)
	}

	pool := worker.NewPool(cfg.GeneratorConcurrency, cfg.GeneratorQueueSize)

	pre := preloader.New(gen, pool, preloader.Config{
		Timeout:       cfg.GenerationTimeout,
		TTL:           cfg.QuestionTTL,
		PrefetchDepth: cfg.PrefetchDepth,
	})

	sel := selector.New(words, progress, nil)
	sessionService := session.NewService(users, sessions, attempts, progress, stats, sel, pre, session.Config{
		MaxQuestions: cfg.SessionLength,
		IdleTimeout:  cfg.SessionIdleTimeout,
	})
	importer := wrongbook.NewImporter(words, progress, nil)

	srv := &api.Server{
		DB:             database,
		Users:          users,
		SessionService: sessionService,
		Importer:       importer,
		Preloader:      pre,
		Config:         &cfg,
	}

	ctx, cancel := context.WithCancel(context.Background())
	pool.Start(ctx)
	go sessionService.RunJanitor(ctx)

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	log.Debug("stopping worker pool")
	cancel()
	pool.Stop()

	log.Info("===========================================")
	log.Info("LexiBoost Server Stopped")
	log.Info("===========================================")
}
