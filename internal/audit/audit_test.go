package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"escalation-engine/internal/database"
	"escalation-engine/internal/policy"
)

type fakeStore struct {
	inserted []*database.Escalation
	err      error
}

func (f *fakeStore) InsertEscalation(ctx context.Context, esc *database.Escalation) error {
	if f.err != nil {
		return f.err
	}
	f.inserted = append(f.inserted, esc)
	return nil
}

func testAlert() *database.Alert {
	return &database.Alert{
		AlertID:    "alert-1",
		OrgID:      "org-1",
		EmployeeID: "emp-1",
		AlertType:  "missing_training",
		Severity:   "warning",
		Message:    "Training overdue",
		CreatedAt:  time.Now().Add(-30 * time.Hour),
	}
}

func TestRecord_Success(t *testing.T) {
	store := &fakeStore{}
	l := NewLogger(store)
	fixed := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	l.nowFn = func() time.Time { return fixed }

	if err := l.Record(context.Background(), testAlert(), 2, policy.ChannelSMS, "+40712345678", nil); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	if len(store.inserted) != 1 {
		t.Fatalf("expected 1 inserted row, got %d", len(store.inserted))
	}
	got := store.inserted[0]
	if got.Status != database.StatusSent {
		t.Errorf("status = %q, want sent", got.Status)
	}
	if got.ErrorMessage != "" {
		t.Errorf("error message = %q, want empty", got.ErrorMessage)
	}
	if got.AlertID != "alert-1" || got.Level != 2 || got.Channel != "sms" || got.Recipient != "+40712345678" {
		t.Errorf("unexpected row: %+v", got)
	}
	if !got.SentAt.Equal(fixed) {
		t.Errorf("sent_at = %v, want %v", got.SentAt, fixed)
	}
}

func TestRecord_Failure(t *testing.T) {
	store := &fakeStore{}
	l := NewLogger(store)

	sendErr := errors.New("gateway returned status 503")
	if err := l.Record(context.Background(), testAlert(), 3, policy.ChannelWhatsApp, "+40700000000", sendErr); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	got := store.inserted[0]
	if got.Status != database.StatusFailed {
		t.Errorf("status = %q, want failed", got.Status)
	}
	if got.ErrorMessage != "gateway returned status 503" {
		t.Errorf("error message = %q", got.ErrorMessage)
	}
}

func TestRecord_StoreError(t *testing.T) {
	store := &fakeStore{err: errors.New("insert failed")}
	l := NewLogger(store)

	if err := l.Record(context.Background(), testAlert(), 1, policy.ChannelEmail, "a@example.com", nil); err == nil {
		t.Fatal("expected error when the store fails, got nil")
	}
}
