package email

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"escalation-engine/internal/database"
	"escalation-engine/internal/dispatch/email/provider"
	"escalation-engine/internal/dispatch/payload"
	"escalation-engine/internal/policy"
)

type mockProvider struct {
	name       string
	configured bool
	sendErr    error
	lastReq    *provider.EmailRequest
	calls      int
}

func (m *mockProvider) Name() string       { return m.name }
func (m *mockProvider) IsConfigured() bool { return m.configured }
func (m *mockProvider) Send(ctx context.Context, req *provider.EmailRequest) error {
	m.calls++
	m.lastReq = req
	return m.sendErr
}

func testMessage() *payload.Message {
	return &payload.Message{
		Alert: &database.Alert{
			AlertID:   "alert-1",
			OrgID:     "org-1",
			AlertType: "missing_training",
			Severity:  "info",
			Message:   "Annual training not scheduled",
			CreatedAt: time.Now().Add(-2 * time.Hour),
		},
		Level:   1,
		OrgName: "Acme Construct SRL",
	}
}

func newTestSender(p *mockProvider) *Sender {
	unconfigured := &mockProvider{name: "none"}
	return NewSenderWithProviders(provider.NewFailover(p, unconfigured), "alerts@test.local")
}

func TestSender_Channel(t *testing.T) {
	s := newTestSender(&mockProvider{name: "mock", configured: true})
	if s.Channel() != policy.ChannelEmail {
		t.Errorf("Channel() = %q, want %q", s.Channel(), policy.ChannelEmail)
	}
}

func TestSend(t *testing.T) {
	p := &mockProvider{name: "mock", configured: true}
	s := newTestSender(p)

	if err := s.Send(context.Background(), "ops@example.com", testMessage()); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	if p.lastReq == nil {
		t.Fatal("provider was not called")
	}
	if p.lastReq.From != "alerts@test.local" {
		t.Errorf("from = %q, want configured sender address", p.lastReq.From)
	}
	if len(p.lastReq.To) != 1 || p.lastReq.To[0] != "ops@example.com" {
		t.Errorf("to = %v, want the single recipient", p.lastReq.To)
	}
	if !strings.Contains(p.lastReq.Subject, "INFO") {
		t.Errorf("subject missing severity: %q", p.lastReq.Subject)
	}
	if p.lastReq.HTML == "" || p.lastReq.Text == "" {
		t.Error("expected both HTML and text bodies")
	}
	if p.lastReq.AlertID != "alert-1" || p.lastReq.Level != 1 {
		t.Errorf("escalation identity missing from request: alert_id %q level %d", p.lastReq.AlertID, p.lastReq.Level)
	}
}

func TestSend_InvalidAddress(t *testing.T) {
	p := &mockProvider{name: "mock", configured: true}
	s := newTestSender(p)

	tests := []struct {
		name    string
		contact string
	}{
		{name: "empty", contact: ""},
		{name: "missing at sign", contact: "not-an-address"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := s.Send(context.Background(), tt.contact, testMessage()); err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
	if p.calls != 0 {
		t.Errorf("provider should not be called for invalid addresses, got %d calls", p.calls)
	}
}

func TestSend_ProviderFailure(t *testing.T) {
	p := &mockProvider{name: "mock", configured: true, sendErr: errors.New("api unavailable")}
	s := newTestSender(p)

	if err := s.Send(context.Background(), "ops@example.com", testMessage()); err == nil {
		t.Fatal("expected error when the provider fails, got nil")
	}
}

func TestSend_FallbackProvider(t *testing.T) {
	primary := &mockProvider{name: "primary", configured: true, sendErr: errors.New("503 service unavailable")}
	fallback := &mockProvider{name: "fallback", configured: true}
	s := NewSenderWithProviders(provider.NewFailover(primary, fallback), "alerts@test.local")

	if err := s.Send(context.Background(), "ops@example.com", testMessage()); err != nil {
		t.Fatalf("Send() error = %v, want fallback to absorb the failure", err)
	}
	if primary.calls == 0 {
		t.Error("primary provider was never tried")
	}
	if fallback.calls == 0 {
		t.Error("fallback provider was never tried")
	}
}
