// Package events defines the event payloads published by the escalation engine.
package events

// EscalationDispatched is published to Kafka after each successful dispatch.
// Downstream consumers (dashboards, analytics) use it to track escalation
// activity without reading the audit table.
type EscalationDispatched struct {
	AlertID      string `json:"alert_id"`
	OrgID        string `json:"org_id"`
	Level        int    `json:"level"`
	Channel      string `json:"channel"`
	Recipient    string `json:"recipient"`
	Severity     string `json:"severity"`
	DispatchedAt int64  `json:"dispatched_at"` // Unix seconds
}
