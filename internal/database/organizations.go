package database

import (
	"context"
	"database/sql"
	"fmt"
)

// GetOrganizationName retrieves the display name of an organization.
func (db *DB) GetOrganizationName(ctx context.Context, orgID string) (string, error) {
	query := `SELECT name FROM organizations WHERE org_id = $1`
	var name string
	err := db.conn.QueryRowContext(ctx, query, orgID).Scan(&name)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("organization not found: %s", orgID)
	}
	if err != nil {
		return "", fmt.Errorf("failed to get organization name: %w", err)
	}
	return name, nil
}
