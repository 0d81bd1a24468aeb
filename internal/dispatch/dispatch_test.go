package dispatch

import (
	"context"
	"errors"
	"testing"
	"time"

	"escalation-engine/internal/database"
	"escalation-engine/internal/dispatch/payload"
	"escalation-engine/internal/dispatch/strategy"
	"escalation-engine/internal/policy"
)

type mockSender struct {
	channel policy.Channel
	err     error
	calls   int
	lastTo  string
}

func (m *mockSender) Send(ctx context.Context, contact string, msg *payload.Message) error {
	m.calls++
	m.lastTo = contact
	return m.err
}

func (m *mockSender) Channel() policy.Channel {
	return m.channel
}

func testMessage() *payload.Message {
	return &payload.Message{
		Alert: &database.Alert{
			AlertID:   "alert-1",
			OrgID:     "org-1",
			AlertType: "missing_training",
			Severity:  "warning",
			Message:   "Training overdue",
			CreatedAt: time.Now().Add(-30 * time.Hour),
		},
		Level:   2,
		OrgName: "Acme Construct SRL",
	}
}

func TestDispatcher_Send(t *testing.T) {
	sender := &mockSender{channel: policy.ChannelSMS}
	registry := strategy.NewRegistry()
	registry.Register(sender)
	d := NewDispatcherWithRegistry(registry)

	if err := d.Send(context.Background(), policy.ChannelSMS, "+40712345678", testMessage()); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if sender.calls != 1 || sender.lastTo != "+40712345678" {
		t.Errorf("sender called %d times with %q", sender.calls, sender.lastTo)
	}
}

func TestDispatcher_Send_UnknownChannel(t *testing.T) {
	d := NewDispatcherWithRegistry(strategy.NewRegistry())

	if err := d.Send(context.Background(), policy.ChannelCall, "+40712345678", testMessage()); err == nil {
		t.Fatal("expected error for unregistered channel, got nil")
	}
}

func TestDispatcher_Send_NonRetryableFailsOnce(t *testing.T) {
	sender := &mockSender{channel: policy.ChannelEmail, err: errors.New("invalid email address")}
	registry := strategy.NewRegistry()
	registry.Register(sender)
	d := NewDispatcherWithRegistry(registry)

	if err := d.Send(context.Background(), policy.ChannelEmail, "broken", testMessage()); err == nil {
		t.Fatal("expected error, got nil")
	}
	if sender.calls != 1 {
		t.Errorf("expected a single attempt for a non-retryable error, got %d", sender.calls)
	}
}

func TestNewDispatcher_RegistersAllChannels(t *testing.T) {
	d := NewDispatcher()

	for _, channel := range policy.Channels {
		if _, ok := d.registry.Get(channel); !ok {
			t.Errorf("channel %q has no registered sender", channel)
		}
	}
}
