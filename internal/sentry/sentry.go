// Package sentry wraps Sentry SDK initialization.
// When no DSN is configured the whole integration is a no-op.
package sentry

import (
	"time"

	"github.com/getsentry/sentry-go"
)

// Config holds Sentry configuration.
type Config struct {
	// DSN is the Sentry project DSN. Empty disables error tracking.
	DSN string

	// Environment identifies the deployment environment (e.g. "production").
	Environment string

	// Release identifies the application release version.
	Release string
}

// Initialize sets up the Sentry SDK. With an empty DSN it returns
// immediately and Enabled() reports false.
func Initialize(cfg Config) error {
	if cfg.DSN == "" {
		return nil
	}

	return sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.DSN,
		Environment: cfg.Environment,
		Release:     cfg.Release,
	})
}

// Enabled reports whether a Sentry client is active.
func Enabled() bool {
	return sentry.CurrentHub().Client() != nil
}

// Flush waits for buffered events to be delivered.
func Flush(timeout time.Duration) {
	sentry.Flush(timeout)
}

// CaptureError reports an error to Sentry if enabled.
func CaptureError(err error) {
	if err == nil || !Enabled() {
		return
	}
	sentry.CaptureException(err)
}
