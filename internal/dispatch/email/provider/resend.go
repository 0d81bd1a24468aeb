package provider

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/resend/resend-go/v2"
)

// ResendProvider sends escalation emails through the Resend API. The key
// comes from RESEND_API_KEY; without it the provider reports itself
// unconfigured and the failover skips it.
type ResendProvider struct {
	client *resend.Client
}

// NewResendProvider creates the Resend backend.
func NewResendProvider() *ResendProvider {
	apiKey := os.Getenv("RESEND_API_KEY")
	if apiKey == "" {
		slog.Warn("RESEND_API_KEY not set, Resend email provider disabled")
		return &ResendProvider{}
	}

	return &ResendProvider{client: resend.NewClient(apiKey)}
}

// Name returns the provider name.
func (p *ResendProvider) Name() string {
	return "resend"
}

// IsConfigured reports whether an API key was present at startup.
func (p *ResendProvider) IsConfigured() bool {
	return p.client != nil
}

// Send delivers one escalation email via Resend. Both text and HTML
// bodies are sent so the recipient's client can pick.
func (p *ResendProvider) Send(ctx context.Context, req *EmailRequest) error {
	if p.client == nil {
		return fmt.Errorf("resend provider not configured")
	}

	params := &resend.SendEmailRequest{
		From:    req.From,
		To:      req.To,
		Subject: req.Subject,
		Text:    req.Text,
		Html:    req.HTML,
	}

	sent, err := p.client.Emails.Send(params)
	if err != nil {
		slog.Error("Resend dispatch failed",
			"alert_id", req.AlertID,
			"level", req.Level,
			"to", req.To,
			"error", err,
		)
		return fmt.Errorf("resend send failed: %w", err)
	}

	slog.Info("Escalation email sent via Resend",
		"email_id", sent.Id,
		"alert_id", req.AlertID,
		"level", req.Level,
		"to", req.To,
	)

	return nil
}
