package provider

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// SESProvider is the fallback email backend on AWS SESv2. Credentials
// come from the default AWS chain (env, profile, instance role); when
// the chain yields nothing the provider reports itself unconfigured.
type SESProvider struct {
	client *sesv2.Client
}

// NewSESProvider creates the SES backend. Region defaults to us-east-1
// unless AWS_REGION overrides it.
func NewSESProvider() *SESProvider {
	region := GetEnvOrDefault("AWS_REGION", "us-east-1")

	cfg, err := config.LoadDefaultConfig(context.Background(), config.WithRegion(region))
	if err != nil {
		slog.Warn("AWS config unavailable, SES email provider disabled", "error", err)
		return &SESProvider{}
	}

	return &SESProvider{client: sesv2.NewFromConfig(cfg)}
}

// Name returns the provider name.
func (p *SESProvider) Name() string {
	return "ses"
}

// IsConfigured reports whether the AWS credential chain resolved at startup.
func (p *SESProvider) IsConfigured() bool {
	return p.client != nil
}

// Send delivers one escalation email via SESv2.
func (p *SESProvider) Send(ctx context.Context, req *EmailRequest) error {
	if p.client == nil {
		return fmt.Errorf("ses provider not configured")
	}

	body := types.Body{
		Text: &types.Content{Data: &req.Text},
	}
	if req.HTML != "" {
		body.Html = &types.Content{Data: &req.HTML}
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: &req.From,
		Destination: &types.Destination{
			ToAddresses: req.To,
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: &req.Subject},
				Body:    &body,
			},
		},
	}

	sent, err := p.client.SendEmail(ctx, input)
	if err != nil {
		slog.Error("SES dispatch failed",
			"alert_id", req.AlertID,
			"level", req.Level,
			"to", req.To,
			"error", err,
		)
		return fmt.Errorf("ses send failed: %w", err)
	}

	slog.Info("Escalation email sent via SES",
		"message_id", *sent.MessageId,
		"alert_id", req.AlertID,
		"level", req.Level,
		"to", req.To,
	)

	return nil
}
