package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr     string
	DBPath   string
	LogLevel string

	// Quiz behavior
	SessionLength      int
	PrefetchDepth      int
	QuestionTTL        time.Duration
	SessionIdleTimeout time.Duration

	// Content generation
	GenerationTimeout    time.Duration
	GeneratorConcurrency int
	GeneratorQueueSize   int
	MockGenerator        bool

	// OpenAI client
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying sensible defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:     envOr("ADDR", ":5000"),
		DBPath:   envOr("DB_PATH", "lexiboost.db"),
		LogLevel: envOr("LOG_LEVEL", "INFO"),

		SessionLength:      envIntOr("LEXIBOOST_MAX_QUESTIONS", 50),
		PrefetchDepth:      envIntOr("LEXIBOOST_PRELOAD_AHEAD", 2),
		QuestionTTL:        envDurOr("LEXIBOOST_QUESTION_TTL", 5*time.Minute),
		SessionIdleTimeout: envDurOr("LEXIBOOST_SESSION_IDLE_TIMEOUT", 30*time.Minute),

		GenerationTimeout:    envDurOr("LEXIBOOST_GENERATION_TIMEOUT", 20*time.Second),
		GeneratorConcurrency: envIntOr("LEXIBOOST_GENERATOR_CONCURRENCY", 4),
		GeneratorQueueSize:   envIntOr("LEXIBOOST_GENERATOR_QUEUE_SIZE", 64),
		MockGenerator:        envBoolOr("LEXIBOOST_MOCK_DEFINITIONS", os.Getenv("OPENAI_API_KEY") == ""),

		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:   envOr("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL: os.Getenv("OPENAI_BASE_URL"),
	}
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("addr must not be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("db path must not be empty")
	}
	if c.SessionLength <= 0 {
		return fmt.Errorf("session length must be positive, got %d", c.SessionLength)
	}
	if c.PrefetchDepth < 0 {
		return fmt.Errorf("prefetch depth must not be negative, got %d", c.PrefetchDepth)
	}
	if c.GenerationTimeout <= 0 {
		return fmt.Errorf("generation timeout must be positive, got %v", c.GenerationTimeout)
	}
	if c.GeneratorConcurrency <= 0 {
		return fmt.Errorf("generator concurrency must be positive, got %d", c.GeneratorConcurrency)
	}
	if !c.MockGenerator && c.OpenAIAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required unless LEXIBOOST_MOCK_DEFINITIONS is enabled")
	}
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}

func envDurOr(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		// Plain numbers are treated as seconds, matching older deployments.
		if i, err := strconv.Atoi(v); err == nil {
			return time.Duration(i) * time.Second
		}
		log.Printf("invalid value for %s=%q, using default %v", key, v, def)
	}
	return def
}

func envBoolOr(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return def
}
