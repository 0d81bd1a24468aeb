package database

import (
	"context"
	"fmt"
)

// Contact kinds. Email escalations need an address; phone-based channels
// (sms, whatsapp, call) need a number.
const (
	ContactKindEmail = "email"
	ContactKindPhone = "phone"
)

// Contact is a resolved notification target from an active membership.
type Contact struct {
	Kind  string
	Value string
}

// GetOrgContacts retrieves contact values for active memberships of the
// organization holding the given role, capped at limit. Memberships with an
// empty contact field for the requested kind are excluded in the query, so
// the cap applies to usable contacts only.
func (db *DB) GetOrgContacts(ctx context.Context, orgID, role, kind string, limit int) ([]Contact, error) {
	var column string
	switch kind {
	case ContactKindEmail:
		column = "email"
	case ContactKindPhone:
		column = "phone"
	default:
		return nil, fmt.Errorf("unknown contact kind: %q", kind)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM memberships
		WHERE org_id = $1 AND role = $2 AND active = TRUE AND %s <> ''
		ORDER BY created_at ASC
		LIMIT $3
	`, column, column)

	rows, err := db.conn.QueryContext(ctx, query, orgID, role, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query org contacts: %w", err)
	}
	defer rows.Close()

	var contacts []Contact
	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		contacts = append(contacts, Contact{Kind: kind, Value: value})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating contacts: %w", err)
	}

	return contacts, nil
}
