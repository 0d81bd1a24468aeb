// Package recipients resolves who gets notified for an escalation.
package recipients

import (
	"context"
	"fmt"

	"escalation-engine/internal/config"
	"escalation-engine/internal/database"
	"escalation-engine/internal/policy"
)

// ContactStore is the subset of database operations the resolver needs.
type ContactStore interface {
	GetOrgContacts(ctx context.Context, orgID, role, kind string, limit int) ([]database.Contact, error)
}

// Caps bounds the fan-out per channel.
type Caps struct {
	Email    int
	SMS      int
	WhatsApp int
	Call     int
}

// DefaultCaps returns the standard per-channel recipient caps.
func DefaultCaps() Caps {
	return Caps{
		Email:    config.DefaultEmailCap,
		SMS:      config.DefaultSMSCap,
		WhatsApp: config.DefaultWhatsAppCap,
		Call:     config.DefaultCallCap,
	}
}

// Resolver looks up the contact addresses of organization members holding
// the notifying role, picking the contact field the channel needs.
type Resolver struct {
	store ContactStore
	role  string
	caps  Caps
}

// NewResolver creates a resolver for the given notifying role.
func NewResolver(store ContactStore, role string, caps Caps) *Resolver {
	return &Resolver{
		store: store,
		role:  role,
		caps:  caps,
	}
}

// Resolve returns up to the channel's cap of contacts for the organization.
// An empty result is not an error; it just means there is nobody to notify.
func (r *Resolver) Resolve(ctx context.Context, orgID string, channel policy.Channel) ([]database.Contact, error) {
	kind := ContactKind(channel)
	limit := r.cap(channel)
	if limit <= 0 {
		return nil, fmt.Errorf("no recipient cap configured for channel %q", channel)
	}

	contacts, err := r.store.GetOrgContacts(ctx, orgID, r.role, kind, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve recipients for org %s: %w", orgID, err)
	}
	return contacts, nil
}

// ContactKind maps a channel to the membership contact field it dispatches to.
func ContactKind(channel policy.Channel) string {
	if channel == policy.ChannelEmail {
		return database.ContactKindEmail
	}
	return database.ContactKindPhone
}

func (r *Resolver) cap(channel policy.Channel) int {
	switch channel {
	case policy.ChannelEmail:
		return r.caps.Email
	case policy.ChannelSMS:
		return r.caps.SMS
	case policy.ChannelWhatsApp:
		return r.caps.WhatsApp
	case policy.ChannelCall:
		return r.caps.Call
	}
	return 0
}
