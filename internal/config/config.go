// Package config provides application configuration management.
// It loads settings from environment variables and provides defaults for
// server mode, bot mode, timeouts and data paths.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Telegram Bot Configuration
	BotToken     string
	DisableBot   bool
	PollSpec     string // cron spec for the exam poll job (default: every minute)
	FetchTimeout time.Duration

	// Metrics Authentication
	MetricsUsername string // Username for /metrics endpoint Basic Auth (default: "prometheus")
	MetricsPassword string // Password for /metrics endpoint Basic Auth (empty = no auth)

	// Sentry Configuration
	SentryDSN         string
	SentryEnvironment string

	// Server Configuration
	Port            string
	LogLevel        string
	ShutdownTimeout time.Duration

	// Data Configuration
	DataDir string        // Root directory for timetables and mark alert files
	ChatTTL time.Duration // Idle conversation state eviction (default: 1 hour)
}

// Load reads configuration from environment variables.
// It attempts to load a .env file first, then reads from env vars.
func Load() (*Config, error) {
	// Try to load .env file (ignore error if file doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{
		BotToken:     getEnv("BOT_TOKEN", ""),
		DisableBot:   getBoolEnv("DISABLE_BOT", false),
		PollSpec:     getEnv("POLL_SPEC", "* * * * *"),
		FetchTimeout: getDurationEnv("FETCH_TIMEOUT", 30*time.Second),

		MetricsUsername: getEnv("METRICS_USERNAME", "prometheus"),
		MetricsPassword: getEnv("METRICS_PASSWORD", ""),

		SentryDSN:         getEnv("SENTRY_DSN", ""),
		SentryEnvironment: getEnv("SENTRY_ENVIRONMENT", "production"),

		Port:            getEnv("PORT", "3000"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		ShutdownTimeout: getDurationEnv("SHUTDOWN_TIMEOUT", 30*time.Second),

		DataDir: getEnv("DATA_DIR", "./data"),
		ChatTTL: getDurationEnv("CHAT_TTL", time.Hour),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	var errs []error

	if c.Port == "" {
		errs = append(errs, errors.New("PORT is required"))
	}
	if c.DataDir == "" {
		errs = append(errs, errors.New("DATA_DIR is required"))
	}
	if !c.DisableBot && c.BotToken == "" {
		errs = append(errs, errors.New("BOT_TOKEN is required unless DISABLE_BOT is set"))
	}
	if c.FetchTimeout <= 0 {
		errs = append(errs, fmt.Errorf("FETCH_TIMEOUT must be positive, got %v", c.FetchTimeout))
	}
	if c.ChatTTL <= 0 {
		errs = append(errs, fmt.Errorf("CHAT_TTL must be positive, got %v", c.ChatTTL))
	}

	return errors.Join(errs...)
}

// TimetablesDir returns the root directory holding per-group timetable files.
func (c *Config) TimetablesDir() string {
	return filepath.Join(c.DataDir, "timetables")
}

// MarkAlertsDir returns the root directory holding bot subscription data.
func (c *Config) MarkAlertsDir() string {
	return filepath.Join(c.DataDir, "mark_alerts")
}

// getEnv retrieves string environment variable with fallback to default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getBoolEnv retrieves boolean environment variable with fallback to default value
func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getDurationEnv retrieves duration environment variable with fallback to default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
