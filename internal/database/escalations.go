package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

// EscalationStatus is the outcome recorded for one dispatch attempt.
type EscalationStatus string

const (
	// StatusSent means the transport accepted the notification.
	StatusSent EscalationStatus = "sent"
	// StatusFailed means the dispatch attempt failed.
	StatusFailed EscalationStatus = "failed"
	// StatusConfirmed means a human acknowledged the notification.
	// Written by the confirmation flow, never by this engine.
	StatusConfirmed EscalationStatus = "confirmed"
)

// String returns the status as a string.
func (s EscalationStatus) String() string {
	return string(s)
}

// Escalation is one immutable dispatch-attempt record. Rows are only ever
// inserted; the table is the audit trail the idempotency check reads.
type Escalation struct {
	AlertID      string
	EmployeeID   string // empty when the alert has no employee
	OrgID        string
	Level        int
	Channel      string
	Recipient    string
	SentAt       time.Time
	Status       EscalationStatus
	ErrorMessage string
}

// HasSentEscalation reports whether any escalation row exists for the given
// (alert, level) with status sent or confirmed. This is the idempotency
// contract: failed attempts do not count and the level stays eligible for
// the next run.
func (db *DB) HasSentEscalation(ctx context.Context, alertID string, level int) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM escalations
			WHERE alert_id = $1 AND level = $2 AND status IN ('sent', 'confirmed')
		)
	`
	var exists bool
	if err := db.conn.QueryRowContext(ctx, query, alertID, level).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to query escalation status: %w", err)
	}
	return exists, nil
}

// InsertEscalation appends one escalation record.
func (db *DB) InsertEscalation(ctx context.Context, esc *Escalation) error {
	query := `
		INSERT INTO escalations (alert_id, employee_id, org_id, level, channel, recipient, sent_at, status, error_message)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	var employeeID sql.NullString
	if esc.EmployeeID != "" {
		employeeID = sql.NullString{String: esc.EmployeeID, Valid: true}
	}
	var errorMessage sql.NullString
	if esc.ErrorMessage != "" {
		errorMessage = sql.NullString{String: esc.ErrorMessage, Valid: true}
	}

	_, err := db.conn.ExecContext(ctx, query,
		esc.AlertID,
		employeeID,
		esc.OrgID,
		esc.Level,
		esc.Channel,
		esc.Recipient,
		esc.SentAt,
		esc.Status.String(),
		errorMessage,
	)
	if err != nil {
		return fmt.Errorf("failed to insert escalation record: %w", err)
	}

	slog.Debug("Inserted escalation record",
		"alert_id", esc.AlertID,
		"level", esc.Level,
		"channel", esc.Channel,
		"status", esc.Status,
	)

	return nil
}

// ListEscalations retrieves the escalation history for an alert, oldest first.
func (db *DB) ListEscalations(ctx context.Context, alertID string) ([]Escalation, error) {
	query := `
		SELECT alert_id, employee_id, org_id, level, channel, recipient, sent_at, status, error_message
		FROM escalations
		WHERE alert_id = $1
		ORDER BY sent_at ASC
	`
	rows, err := db.conn.QueryContext(ctx, query, alertID)
	if err != nil {
		return nil, fmt.Errorf("failed to query escalations: %w", err)
	}
	defer rows.Close()

	var escalations []Escalation
	for rows.Next() {
		var esc Escalation
		var employeeID, errorMessage sql.NullString
		var status string
		if err := rows.Scan(
			&esc.AlertID,
			&employeeID,
			&esc.OrgID,
			&esc.Level,
			&esc.Channel,
			&esc.Recipient,
			&esc.SentAt,
			&status,
			&errorMessage,
		); err != nil {
			return nil, fmt.Errorf("failed to scan escalation: %w", err)
		}
		esc.EmployeeID = employeeID.String
		esc.ErrorMessage = errorMessage.String
		esc.Status = EscalationStatus(status)
		escalations = append(escalations, esc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating escalations: %w", err)
	}

	return escalations, nil
}
