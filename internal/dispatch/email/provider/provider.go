// Package provider implements the email backends behind the escalation
// email channel: Resend as the primary API, AWS SES as the fallback.
package provider

import (
	"context"
	"fmt"
	"log/slog"
	"os"
)

// EmailRequest is one rendered escalation email ready for a backend.
// AlertID and Level identify the escalation in provider-side logs.
type EmailRequest struct {
	From    string
	To      []string
	Subject string
	Text    string
	HTML    string
	AlertID string
	Level   int
}

// Provider is one email backend.
type Provider interface {
	// Name identifies the backend in logs.
	Name() string

	// Send delivers one escalation email.
	Send(ctx context.Context, req *EmailRequest) error

	// IsConfigured reports whether the backend has usable credentials.
	IsConfigured() bool
}

// Failover sends through the primary backend and falls back to the
// secondary when the primary is unconfigured or its send fails. The
// engine runs exactly one such pair, so there is no registry to mutate.
type Failover struct {
	primary  Provider
	fallback Provider
}

// NewFailover creates a failover pair. Both providers must be non-nil;
// an unconfigured provider is simply skipped at send time.
func NewFailover(primary, fallback Provider) *Failover {
	return &Failover{
		primary:  primary,
		fallback: fallback,
	}
}

// Send delivers the email through the first configured backend, trying
// the fallback when the primary fails. The primary's error is returned
// when both fail, since that is the path that should have worked.
func (f *Failover) Send(ctx context.Context, req *EmailRequest) error {
	if !f.primary.IsConfigured() {
		if !f.fallback.IsConfigured() {
			return fmt.Errorf("no configured email provider available")
		}
		slog.Warn("Primary email provider not configured, using fallback",
			"primary", f.primary.Name(),
			"fallback", f.fallback.Name(),
			"alert_id", req.AlertID,
			"level", req.Level,
		)
		return f.fallback.Send(ctx, req)
	}

	err := f.primary.Send(ctx, req)
	if err == nil {
		return nil
	}

	if f.fallback.IsConfigured() {
		slog.Warn("Primary email provider failed, trying fallback",
			"primary", f.primary.Name(),
			"fallback", f.fallback.Name(),
			"alert_id", req.AlertID,
			"level", req.Level,
			"error", err,
		)
		if fallbackErr := f.fallback.Send(ctx, req); fallbackErr == nil {
			return nil
		}
	}

	return err
}

// GetEnvOrDefault returns env var value or default.
func GetEnvOrDefault(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultValue
}
