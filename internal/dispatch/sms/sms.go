// Package sms provides the SMS escalation channel (level 2) via an HTTP
// gateway API.
package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"escalation-engine/internal/dispatch/payload"
	"escalation-engine/internal/policy"
)

// Config holds SMS gateway configuration.
type Config struct {
	GatewayURL string
	Token      string
}

// Sender implements SMS escalation sending via an HTTP gateway.
type Sender struct {
	httpClient *http.Client
	gatewayURL string
	token      string
}

// NewSender creates an SMS sender configured from SMS_GATEWAY_URL and
// SMS_GATEWAY_TOKEN.
func NewSender() *Sender {
	return NewSenderWithConfig(Config{
		GatewayURL: os.Getenv("SMS_GATEWAY_URL"),
		Token:      os.Getenv("SMS_GATEWAY_TOKEN"),
	})
}

// NewSenderWithConfig creates an SMS sender with custom configuration.
func NewSenderWithConfig(cfg Config) *Sender {
	return &Sender{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		gatewayURL: cfg.GatewayURL,
		token:      cfg.Token,
	}
}

// Channel returns the channel this sender handles.
func (s *Sender) Channel() policy.Channel {
	return policy.ChannelSMS
}

// gatewayRequest is the JSON body the SMS gateway expects.
type gatewayRequest struct {
	To      string `json:"to"`
	Message string `json:"message"`
}

// Send sends one escalation SMS to the given phone number.
func (s *Sender) Send(ctx context.Context, contact string, msg *payload.Message) error {
	if contact == "" {
		return fmt.Errorf("sms recipient is required")
	}
	if s.gatewayURL == "" {
		return fmt.Errorf("SMS gateway not configured (set SMS_GATEWAY_URL)")
	}

	body := gatewayRequest{
		To:      contact,
		Message: payload.BuildSMSBody(msg),
	}
	jsonData, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal SMS payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.gatewayURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		slog.Error("Failed to send SMS",
			"error", err,
			"alert_id", msg.Alert.AlertID,
			"level", msg.Level,
		)
		return fmt.Errorf("failed to send SMS: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		slog.Error("SMS gateway returned error status",
			"status_code", resp.StatusCode,
			"alert_id", msg.Alert.AlertID,
		)
		return fmt.Errorf("sms gateway returned status %d", resp.StatusCode)
	}

	slog.Info("Successfully sent escalation SMS",
		"alert_id", msg.Alert.AlertID,
		"level", msg.Level,
	)

	return nil
}
