// Package dispatch routes escalation notifications to channel senders.
// It uses the strategy pattern so the orchestrator stays channel-agnostic.
package dispatch

import (
	"context"
	"fmt"

	"escalation-engine/internal/dispatch/call"
	"escalation-engine/internal/dispatch/email"
	"escalation-engine/internal/dispatch/payload"
	"escalation-engine/internal/dispatch/retry"
	"escalation-engine/internal/dispatch/sms"
	"escalation-engine/internal/dispatch/strategy"
	"escalation-engine/internal/dispatch/whatsapp"
	"escalation-engine/internal/policy"
)

// Dispatcher coordinates escalation sending across the four channels.
type Dispatcher struct {
	registry *strategy.Registry
}

// NewDispatcher creates a dispatcher with all channel strategies registered.
func NewDispatcher() *Dispatcher {
	registry := strategy.NewRegistry()

	registry.Register(email.NewSender())
	registry.Register(sms.NewSender())
	registry.Register(whatsapp.NewSender())
	registry.Register(call.NewSender())

	return &Dispatcher{
		registry: registry,
	}
}

// NewDispatcherWithRegistry creates a dispatcher with a custom registry.
// This is useful for testing or custom sender configurations.
func NewDispatcherWithRegistry(registry *strategy.Registry) *Dispatcher {
	return &Dispatcher{
		registry: registry,
	}
}

// Send delivers one escalation to one contact over the channel's sender,
// retrying transient failures with backoff. A returned error means the
// attempt must be logged as failed; it never aborts other recipients.
func (d *Dispatcher) Send(ctx context.Context, channel policy.Channel, contact string, msg *payload.Message) error {
	sender, ok := d.registry.Get(channel)
	if !ok {
		return fmt.Errorf("no sender registered for channel %q", channel)
	}

	retryCfg := retry.DefaultConfig()
	operation := fmt.Sprintf("send_%s_%s", channel, msg.Alert.AlertID)

	return retry.WithRetry(ctx, retryCfg, operation, func() error {
		return sender.Send(ctx, contact, msg)
	})
}
