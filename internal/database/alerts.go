package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"escalation-engine/internal/policy"
)

// Alert represents a compliance alert awaiting human confirmation.
// The engine never writes to this table; confirmation happens elsewhere.
type Alert struct {
	AlertID     string
	OrgID       string
	EmployeeID  string // empty when the alert is not tied to an employee
	AlertType   string
	Severity    string
	Message     string
	CreatedAt   time.Time
	ConfirmedAt *time.Time
}

// GetUnconfirmedAlerts retrieves all alerts with no confirmation timestamp
// created within the lookback window before now, oldest first. The caller
// passes now so one run evaluates the cutoff and the escalation bands
// against the same clock.
//
// Rows that fail boundary validation (missing ids, unknown severity) are
// logged and skipped rather than failing the whole fetch; a single malformed
// record must not abort a run.
func (db *DB) GetUnconfirmedAlerts(ctx context.Context, now time.Time, lookback time.Duration) ([]Alert, error) {
	query := `
		SELECT alert_id, org_id, employee_id, alert_type, severity, message, created_at
		FROM alerts
		WHERE confirmed_at IS NULL AND created_at >= $1
		ORDER BY created_at ASC
	`
	cutoff := now.UTC().Add(-lookback)

	rows, err := db.conn.QueryContext(ctx, query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to query unconfirmed alerts: %w", err)
	}
	defer rows.Close()

	var alerts []Alert
	for rows.Next() {
		var alert Alert
		var employeeID sql.NullString
		if err := rows.Scan(
			&alert.AlertID,
			&alert.OrgID,
			&employeeID,
			&alert.AlertType,
			&alert.Severity,
			&alert.Message,
			&alert.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		alert.EmployeeID = employeeID.String

		if err := validateAlert(&alert); err != nil {
			slog.Warn("Skipping malformed alert row", "alert_id", alert.AlertID, "error", err)
			continue
		}
		alerts = append(alerts, alert)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating alerts: %w", err)
	}

	return alerts, nil
}

// validateAlert checks the fields an alert must carry before it enters the
// escalation pipeline.
func validateAlert(alert *Alert) error {
	if alert.AlertID == "" {
		return fmt.Errorf("alert_id is empty")
	}
	if alert.OrgID == "" {
		return fmt.Errorf("org_id is empty")
	}
	if _, err := policy.ParseSeverity(alert.Severity); err != nil {
		return err
	}
	if alert.CreatedAt.IsZero() {
		return fmt.Errorf("created_at is zero")
	}
	return nil
}
