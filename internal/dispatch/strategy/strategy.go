// Package strategy defines the interface for channel sending strategies.
package strategy

import (
	"context"

	"escalation-engine/internal/dispatch/payload"
	"escalation-engine/internal/policy"
)

// ChannelSender is the interface that all channel sending strategies must implement.
type ChannelSender interface {
	// Send delivers the escalation content to one contact. The contact
	// format depends on the channel: an email address for email, a phone
	// number in international format for sms, whatsapp and call.
	Send(ctx context.Context, contact string, msg *payload.Message) error

	// Channel returns the channel this sender handles.
	Channel() policy.Channel
}

// Registry manages channel sender strategies.
type Registry struct {
	senders map[policy.Channel]ChannelSender
}

// NewRegistry creates a new sender registry.
func NewRegistry() *Registry {
	return &Registry{
		senders: make(map[policy.Channel]ChannelSender),
	}
}

// Register registers a sender strategy.
func (r *Registry) Register(sender ChannelSender) {
	r.senders[sender.Channel()] = sender
}

// Get retrieves a sender strategy by channel.
func (r *Registry) Get(channel policy.Channel) (ChannelSender, bool) {
	sender, ok := r.senders[channel]
	return sender, ok
}
