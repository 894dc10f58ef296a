// Package observability reports errors and recovered panics to Sentry. Every function
// is a no-op until InitSentry binds a client, so callers never check whether Sentry
// is configured.
package observability

import (
	"context"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/irfndi/statspulse-go/internal/config"
)

// InitSentry configures the Sentry SDK using application config. It does nothing when
// reporting is disabled or no DSN is set.
func InitSentry(cfg config.SentryConfig, fallbackRelease string, fallbackEnv string) error {
	if !cfg.Enabled || cfg.DSN == "" {
		return nil
	}

	release := cfg.Release
	if release == "" {
		release = fallbackRelease
	}

	environment := cfg.Environment
	if environment == "" {
		environment = fallbackEnv
	}

	return sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      environment,
		Release:          release,
		EnableTracing:    cfg.TracesSampleRate > 0,
		TracesSampleRate: cfg.TracesSampleRate,
		AttachStacktrace: true,
	})
}

// Flush drains buffered Sentry events within the provided context deadline.
func Flush(ctx context.Context) {
	timeout := 2 * time.Second
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout < 0 {
			timeout = 0
		}
	}
	sentry.Flush(timeout)
}

// CaptureException sends err to Sentry with tags, using the hub in ctx when there is one.
func CaptureException(ctx context.Context, err error, tags map[string]string) {
	if err == nil {
		return
	}
	hub := hubFrom(ctx)
	if hub.Client() == nil {
		return
	}
	// A request hub may be shared by concurrent loads; tag a private clone.
	local := hub.Clone()
	local.Scope().SetTags(tags)
	local.CaptureException(err)
}

// CapturePanic reports a value recovered from a panic.
func CapturePanic(ctx context.Context, recovered any) {
	hub := hubFrom(ctx)
	if hub.Client() == nil {
		return
	}
	hub.RecoverWithContext(ctx, recovered)
}

// WithHub returns a copy of ctx carrying a clone of the current hub, so scope changes
// made while handling one request stay with that request.
func WithHub(ctx context.Context) (context.Context, *sentry.Hub) {
	hub := hubFrom(ctx).Clone()
	return sentry.SetHubOnContext(ctx, hub), hub
}

func hubFrom(ctx context.Context) *sentry.Hub {
	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		return hub
	}
	return sentry.CurrentHub()
}
