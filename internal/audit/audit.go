// Package audit records escalation dispatch attempts as immutable rows.
//
// Exactly one record is written per (alert, level, recipient) attempt,
// success or failure, so the trail reflects true attempt history and the
// idempotency guard can make accurate decisions from it.
package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"escalation-engine/internal/database"
	"escalation-engine/internal/policy"
)

// Store is the subset of database operations the logger needs.
type Store interface {
	InsertEscalation(ctx context.Context, esc *database.Escalation) error
}

// Logger appends escalation records to the audit trail.
type Logger struct {
	store Store
	nowFn func() time.Time
}

// NewLogger creates an audit logger backed by the given store.
func NewLogger(store Store) *Logger {
	return &Logger{
		store: store,
		nowFn: time.Now,
	}
}

// Record appends one dispatch-attempt record. sendErr is nil for a
// successful dispatch; otherwise its message is stored with the failed row.
func (l *Logger) Record(ctx context.Context, alert *database.Alert, level int, channel policy.Channel, recipient string, sendErr error) error {
	status := database.StatusSent
	errorMessage := ""
	if sendErr != nil {
		status = database.StatusFailed
		errorMessage = sendErr.Error()
	}

	esc := &database.Escalation{
		AlertID:      alert.AlertID,
		EmployeeID:   alert.EmployeeID,
		OrgID:        alert.OrgID,
		Level:        level,
		Channel:      string(channel),
		Recipient:    recipient,
		SentAt:       l.nowFn().UTC(),
		Status:       status,
		ErrorMessage: errorMessage,
	}

	if err := l.store.InsertEscalation(ctx, esc); err != nil {
		return fmt.Errorf("failed to record escalation attempt: %w", err)
	}

	slog.Debug("Recorded escalation attempt",
		"alert_id", alert.AlertID,
		"level", level,
		"channel", channel,
		"status", status,
	)

	return nil
}
