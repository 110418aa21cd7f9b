// Package config provides application configuration management.
// It loads settings from environment variables and provides defaults for
// server mode, timeouts, and external service credentials.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// LINE Bot Configuration
	LineChannelToken  string
	LineChannelSecret string

	// NewsAPI Configuration
	NewsAPIKey     string
	NewsAPIBaseURL string // Override for tests; default https://newsapi.org

	// Server Configuration
	Port            string
	LogLevel        string
	ShutdownTimeout time.Duration

	// Data Configuration
	DataDir string // Data directory for the SQLite conversation store

	// Observability (optional)
	SentryToken         string // Better Stack Errors token (empty = disabled)
	SentryHost          string // Better Stack Errors ingesting host
	SentryEnvironment   string
	BetterstackToken    string // Better Stack Telemetry source token (empty = stdout only)
	BetterstackEndpoint string

	// Bot Configuration (embedded)
	Bot BotConfig
}

// BotConfig holds bot-specific configuration
type BotConfig struct {
	// Timeouts
	EventTimeout  time.Duration // Budget for processing one webhook event end to end
	LookupTimeout time.Duration // Budget for one news lookup call (single attempt, no retry)

	// LINE API Constraints
	MaxEventsPerWebhook int // Maximum events accepted per webhook call (default: 100)
	MinReplyTokenLength int // Minimum reply token length (default: 10)
}

// Load reads configuration from environment variables.
// It attempts to load .env file first, then reads from env vars.
func Load() (*Config, error) {
	// Try to load .env file (ignore error if file doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{
		LineChannelToken:  getEnv("LINE_CHANNEL_ACCESS_TOKEN", ""),
		LineChannelSecret: getEnv("LINE_CHANNEL_SECRET", ""),

		NewsAPIKey:     getEnv("NEWS_API_KEY", ""),
		NewsAPIBaseURL: getEnv("NEWS_API_BASE_URL", "https://newsapi.org"),

		Port:            getEnv("PORT", "10000"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		ShutdownTimeout: getDurationEnv("SHUTDOWN_TIMEOUT", 30*time.Second),

		DataDir: getEnv("DATA_DIR", getDefaultDataDir()),

		SentryToken:         getEnv("SENTRY_TOKEN", ""),
		SentryHost:          getEnv("SENTRY_HOST", "errors.betterstack.com"),
		SentryEnvironment:   getEnv("SENTRY_ENVIRONMENT", "production"),
		BetterstackToken:    getEnv("BETTERSTACK_TOKEN", ""),
		BetterstackEndpoint: getEnv("BETTERSTACK_ENDPOINT", ""),

		Bot: BotConfig{
			EventTimeout:        getDurationEnv("EVENT_TIMEOUT", 30*time.Second),
			LookupTimeout:       getDurationEnv("NEWS_LOOKUP_TIMEOUT", 10*time.Second),
			MaxEventsPerWebhook: getIntEnv("MAX_EVENTS_PER_WEBHOOK", 100),
			MinReplyTokenLength: getIntEnv("MIN_REPLY_TOKEN_LENGTH", 10),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if required configuration values are set
func (c *Config) Validate() error {
	var errs []error

	if c.LineChannelToken == "" {
		errs = append(errs, errors.New("LINE_CHANNEL_ACCESS_TOKEN is required"))
	}
	if c.LineChannelSecret == "" {
		errs = append(errs, errors.New("LINE_CHANNEL_SECRET is required"))
	}
	if c.NewsAPIKey == "" {
		errs = append(errs, errors.New("NEWS_API_KEY is required"))
	}
	if c.Port == "" {
		errs = append(errs, errors.New("PORT is required"))
	}
	if c.DataDir == "" {
		errs = append(errs, errors.New("DATA_DIR is required"))
	}
	if err := c.Bot.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("bot config: %w", err))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Validate checks bot configuration bounds
func (c *BotConfig) Validate() error {
	var errs []error

	if c.EventTimeout <= 0 {
		errs = append(errs, fmt.Errorf("EVENT_TIMEOUT must be positive, got %v", c.EventTimeout))
	}
	if c.LookupTimeout <= 0 {
		errs = append(errs, fmt.Errorf("NEWS_LOOKUP_TIMEOUT must be positive, got %v", c.LookupTimeout))
	}
	if c.MaxEventsPerWebhook <= 0 {
		errs = append(errs, fmt.Errorf("MAX_EVENTS_PER_WEBHOOK must be positive, got %d", c.MaxEventsPerWebhook))
	}
	if c.MinReplyTokenLength < 0 {
		errs = append(errs, fmt.Errorf("MIN_REPLY_TOKEN_LENGTH cannot be negative, got %d", c.MinReplyTokenLength))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// SQLitePath returns the full path to the SQLite database file
func (c *Config) SQLitePath() string {
	return filepath.Join(c.DataDir, "answers.db")
}

// getDefaultDataDir returns platform-specific default data directory
func getDefaultDataDir() string {
	if runtime.GOOS == "windows" {
		return "./data"
	}
	return "/data"
}

// getEnv retrieves environment variable with fallback to default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
