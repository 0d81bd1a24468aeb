// Package config provides configuration parsing and validation for the escalation engine.
package config

import (
	"fmt"
)

// Default recipient caps per channel. They bound notification fan-out so a
// large organization never gets blasted on every membership.
const (
	DefaultEmailCap    = 5
	DefaultSMSCap      = 3
	DefaultWhatsAppCap = 3
	DefaultCallCap     = 2
)

// DefaultLookbackDays is how far back a run looks for unconfirmed alerts.
const DefaultLookbackDays = 7

// DefaultNotifyRole is the membership role that receives escalations.
const DefaultNotifyRole = "consultant"

// Config holds all configuration parameters for the escalation engine.
type Config struct {
	Port            string
	PostgresDSN     string
	RedisAddr       string // empty disables the idempotency cache and metrics reporting
	KafkaBrokers    string // empty disables dispatch event publishing
	DispatchedTopic string

	// EscalateSecret guards the /escalate trigger. Empty means the trigger
	// is unauthenticated (local development only).
	EscalateSecret string

	LookbackDays int
	NotifyRole   string

	EmailRecipientCap    int
	SMSRecipientCap      int
	WhatsAppRecipientCap int
	CallRecipientCap     int

	WorkerCount int

	// BackfillMissedLevels controls what happens when a run finds an alert
	// whose earlier escalation bands were never dispatched (e.g. the job was
	// down for a day). False sends only the currently-due level, matching
	// the historical behavior; true sends every missed level in order.
	BackfillMissedLevels bool
}

// Validate checks that all required configuration fields are set and have valid values.
// Returns an error if validation fails, nil otherwise.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("port cannot be empty")
	}
	if c.PostgresDSN == "" {
		return fmt.Errorf("postgres-dsn cannot be empty")
	}
	if c.KafkaBrokers != "" && c.DispatchedTopic == "" {
		return fmt.Errorf("dispatched-topic cannot be empty when kafka-brokers is set")
	}
	if c.LookbackDays <= 0 {
		return fmt.Errorf("lookback-days must be positive")
	}
	if c.NotifyRole == "" {
		return fmt.Errorf("notify-role cannot be empty")
	}
	if c.EmailRecipientCap <= 0 || c.SMSRecipientCap <= 0 || c.WhatsAppRecipientCap <= 0 || c.CallRecipientCap <= 0 {
		return fmt.Errorf("recipient caps must be positive")
	}
	if c.WorkerCount <= 0 {
		return fmt.Errorf("workers must be positive")
	}
	return nil
}
