package shared

import (
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
)

// InitTelemetry configures Sentry error reporting. It reports false without error when no DSN is configured.
func InitTelemetry(cfg TelemetryConfig, release string) (bool, error) {
	if cfg.SentryDSN == "" {
		return false, nil
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.SentryDSN,
		Environment:      cfg.Environment,
		Release:          release,
		EnableTracing:    true,
		TracesSampleRate: 1.0,
	})
	if err != nil {
		return false, fmt.Errorf("failed to initialize sentry: %w", err)
	}
	return true, nil
}

// CaptureError reports err to Sentry. It is a no-op when Sentry is not initialized.
func CaptureError(err error) {
	if err == nil {
		return
	}
	sentry.CaptureException(err)
}

// FlushTelemetry waits up to timeout for buffered events to be delivered.
func FlushTelemetry(timeout time.Duration) {
	sentry.Flush(timeout)
}
