package database

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestHasSentEscalation(t *testing.T) {
	tests := []struct {
		name   string
		exists bool
	}{
		{name: "sent row exists", exists: true},
		{name: "no sent row", exists: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)

			mock.ExpectQuery("SELECT EXISTS").
				WithArgs("alert-1", 2).
				WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(tt.exists))

			got, err := db.HasSentEscalation(context.Background(), "alert-1", 2)
			if err != nil {
				t.Fatalf("HasSentEscalation() error = %v", err)
			}
			if got != tt.exists {
				t.Errorf("HasSentEscalation() = %v, want %v", got, tt.exists)
			}
		})
	}
}

func TestInsertEscalation(t *testing.T) {
	db, mock := newMockDB(t)

	sentAt := time.Now().UTC()
	esc := &Escalation{
		AlertID:   "alert-1",
		OrgID:     "org-1",
		Level:     1,
		Channel:   "email",
		Recipient: "a@example.com",
		SentAt:    sentAt,
		Status:    StatusSent,
	}

	mock.ExpectExec("INSERT INTO escalations").
		WithArgs("alert-1", nil, "org-1", 1, "email", "a@example.com", sentAt, "sent", nil).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := db.InsertEscalation(context.Background(), esc); err != nil {
		t.Fatalf("InsertEscalation() error = %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestInsertEscalation_FailedWithError(t *testing.T) {
	db, mock := newMockDB(t)

	sentAt := time.Now().UTC()
	esc := &Escalation{
		AlertID:      "alert-1",
		EmployeeID:   "emp-1",
		OrgID:        "org-1",
		Level:        2,
		Channel:      "sms",
		Recipient:    "+40712345678",
		SentAt:       sentAt,
		Status:       StatusFailed,
		ErrorMessage: "gateway returned status 503",
	}

	mock.ExpectExec("INSERT INTO escalations").
		WithArgs("alert-1", "emp-1", "org-1", 2, "sms", "+40712345678", sentAt, "failed", "gateway returned status 503").
		WillReturnResult(sqlmock.NewResult(2, 1))

	if err := db.InsertEscalation(context.Background(), esc); err != nil {
		t.Fatalf("InsertEscalation() error = %v", err)
	}
}

func TestListEscalations(t *testing.T) {
	db, mock := newMockDB(t)

	sentAt := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"alert_id", "employee_id", "org_id", "level", "channel", "recipient", "sent_at", "status", "error_message"}).
		AddRow("alert-1", nil, "org-1", 1, "email", "a@example.com", sentAt, "sent", nil).
		AddRow("alert-1", "emp-1", "org-1", 2, "sms", "+40700000000", sentAt.Add(24*time.Hour), "failed", "timeout")

	mock.ExpectQuery("SELECT alert_id, employee_id, org_id, level, channel, recipient, sent_at, status, error_message").
		WithArgs("alert-1").
		WillReturnRows(rows)

	escalations, err := db.ListEscalations(context.Background(), "alert-1")
	if err != nil {
		t.Fatalf("ListEscalations() error = %v", err)
	}
	if len(escalations) != 2 {
		t.Fatalf("expected 2 escalations, got %d", len(escalations))
	}
	if escalations[0].Status != StatusSent || escalations[0].ErrorMessage != "" {
		t.Errorf("unexpected first escalation: %+v", escalations[0])
	}
	if escalations[1].Status != StatusFailed || escalations[1].ErrorMessage != "timeout" {
		t.Errorf("unexpected second escalation: %+v", escalations[1])
	}
}
