// Package call provides the voice call escalation channel (level 4) via an
// HTTP voice gateway that places a text-to-speech call.
package call

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

// Config holds voice gateway configuration.
type Config struct {
	GatewayURL string
	Token      string
}

// Sender implements voice call escalation via an HTTP gateway.
type Sender struct {
	httpClient *http.Client
	gatewayURL string
	token      string
}

// NewSender creates a call sender configured from VOICE_GATEWAY_URL and
// VOICE_GATEWAY_TOKEN.
func NewSender() *Sender {
	return NewSenderWithConfig(Config{
		GatewayURL: os.Getenv("VOICE_GATEWAY_URL"),
		Token:      os.Getenv("VOICE_GATEWAY_TOKEN"),
	})
}

// NewSenderWithConfig creates a call sender with custom configuration.
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
	return policy.ChannelCall
}

// gatewayRequest is the JSON body the voice gateway expects. The gateway
// reads the message to the callee via text-to-speech.
type gatewayRequest struct {
	To  string `json:"to"`
	Say string `json:"say"`
}

// Send places one escalation call to the given phone number.
func (s *Sender) Send(ctx context.Context, contact string, msg *payload.Message) error {
	if contact == "" {
		return fmt.Errorf("call recipient is required")
	}
	if s.gatewayURL == "" {
		return fmt.Errorf("voice gateway not configured (set VOICE_GATEWAY_URL)")
	}

	body := gatewayRequest{
		To:  contact,
		Say: payload.BuildSpokenMessage(msg),
	}
	jsonData, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal call payload: %w", err)
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
		slog.Error("Failed to place escalation call",
			"error", err,
			"alert_id", msg.Alert.AlertID,
			"level", msg.Level,
		)
		return fmt.Errorf("failed to place escalation call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		slog.Error("Voice gateway returned error status",
			"status_code", resp.StatusCode,
			"alert_id", msg.Alert.AlertID,
		)
		return fmt.Errorf("voice gateway returned status %d", resp.StatusCode)
	}

	slog.Info("Successfully placed escalation call",
		"alert_id", msg.Alert.AlertID,
		"level", msg.Level,
	)

	return nil
}
