// Package email provides the email escalation channel (level 1).
package email

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"escalation-engine/internal/dispatch/email/provider"
	"escalation-engine/internal/dispatch/payload"
	"escalation-engine/internal/policy"
)

// Sender implements email escalation sending through the provider failover.
type Sender struct {
	providers *provider.Failover
	from      string
}

// NewSender creates an email sender with the standard backend pair:
// Resend primary, SES fallback. The FROM address comes from EMAIL_FROM.
func NewSender() *Sender {
	return &Sender{
		providers: provider.NewFailover(provider.NewResendProvider(), provider.NewSESProvider()),
		from:      provider.GetEnvOrDefault("EMAIL_FROM", "alerts@escalation-engine.local"),
	}
}

// NewSenderWithProviders creates an email sender with a custom failover pair.
// This is useful for testing or custom provider configurations.
func NewSenderWithProviders(providers *provider.Failover, from string) *Sender {
	return &Sender{
		providers: providers,
		from:      from,
	}
}

// Channel returns the channel this sender handles.
func (s *Sender) Channel() policy.Channel {
	return policy.ChannelEmail
}

// Send sends one escalation email to the given address.
func (s *Sender) Send(ctx context.Context, contact string, msg *payload.Message) error {
	if contact == "" {
		return fmt.Errorf("email recipient is required")
	}
	if !strings.Contains(contact, "@") {
		return fmt.Errorf("invalid email address format: %q (missing @ symbol)", contact)
	}

	emailPayload, err := payload.BuildEmailPayload(msg)
	if err != nil {
		return err
	}

	req := &provider.EmailRequest{
		From:    s.from,
		To:      []string{contact},
		Subject: emailPayload.Subject,
		Text:    emailPayload.Text,
		HTML:    emailPayload.HTML,
		AlertID: msg.Alert.AlertID,
		Level:   msg.Level,
	}

	if err := s.providers.Send(ctx, req); err != nil {
		return fmt.Errorf("failed to send escalation email: %w", err)
	}

	slog.Info("Successfully sent escalation email",
		"to", contact,
		"subject", emailPayload.Subject,
		"alert_id", msg.Alert.AlertID,
		"level", msg.Level,
	)

	return nil
}
