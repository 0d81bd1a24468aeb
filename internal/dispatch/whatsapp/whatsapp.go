// Package whatsapp provides the WhatsApp escalation channel (level 3) via
// the WhatsApp Business Cloud API.
package whatsapp

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

// Config holds WhatsApp API configuration.
type Config struct {
	APIURL string // e.g. https://graph.facebook.com/v18.0/<phone-number-id>/messages
	Token  string
}

// Sender implements WhatsApp escalation sending.
type Sender struct {
	httpClient *http.Client
	apiURL     string
	token      string
}

// NewSender creates a WhatsApp sender configured from WHATSAPP_API_URL and
// WHATSAPP_API_TOKEN.
func NewSender() *Sender {
	return NewSenderWithConfig(Config{
		APIURL: os.Getenv("WHATSAPP_API_URL"),
		Token:  os.Getenv("WHATSAPP_API_TOKEN"),
	})
}

// NewSenderWithConfig creates a WhatsApp sender with custom configuration.
func NewSenderWithConfig(cfg Config) *Sender {
	return &Sender{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		apiURL: cfg.APIURL,
		token:  cfg.Token,
	}
}

// Channel returns the channel this sender handles.
func (s *Sender) Channel() policy.Channel {
	return policy.ChannelWhatsApp
}

// apiRequest is the Cloud API message body for a plain text message.
type apiRequest struct {
	MessagingProduct string  `json:"messaging_product"`
	To               string  `json:"to"`
	Type             string  `json:"type"`
	Text             apiText `json:"text"`
}

type apiText struct {
	Body string `json:"body"`
}

// Send sends one escalation WhatsApp message to the given phone number.
func (s *Sender) Send(ctx context.Context, contact string, msg *payload.Message) error {
	if contact == "" {
		return fmt.Errorf("whatsapp recipient is required")
	}
	if s.apiURL == "" {
		return fmt.Errorf("WhatsApp API not configured (set WHATSAPP_API_URL)")
	}

	body := apiRequest{
		MessagingProduct: "whatsapp",
		To:               contact,
		Type:             "text",
		Text:             apiText{Body: payload.BuildWhatsAppBody(msg)},
	}
	jsonData, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal WhatsApp payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		slog.Error("Failed to send WhatsApp message",
			"error", err,
			"alert_id", msg.Alert.AlertID,
			"level", msg.Level,
		)
		return fmt.Errorf("failed to send WhatsApp message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		slog.Error("WhatsApp API returned error status",
			"status_code", resp.StatusCode,
			"alert_id", msg.Alert.AlertID,
		)
		return fmt.Errorf("whatsapp API returned status %d", resp.StatusCode)
	}

	slog.Info("Successfully sent escalation WhatsApp message",
		"alert_id", msg.Alert.AlertID,
		"level", msg.Level,
	)

	return nil
}
