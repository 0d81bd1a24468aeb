package guard

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeStore struct {
	sent    map[string]bool
	err     error
	queries int
}

func (f *fakeStore) HasSentEscalation(ctx context.Context, alertID string, level int) (bool, error) {
	f.queries++
	if f.err != nil {
		return false, f.err
	}
	return f.sent[cacheKey(alertID, level)], nil
}

func TestAlreadySent_NoRedis(t *testing.T) {
	store := &fakeStore{sent: map[string]bool{
		cacheKey("alert-1", 1): true,
	}}
	g := New(store, nil, time.Hour)

	tests := []struct {
		name    string
		alertID string
		level   int
		want    bool
	}{
		{name: "level already sent", alertID: "alert-1", level: 1, want: true},
		{name: "level not sent", alertID: "alert-1", level: 2, want: false},
		{name: "different alert", alertID: "alert-2", level: 1, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := g.AlreadySent(context.Background(), tt.alertID, tt.level)
			if err != nil {
				t.Fatalf("AlreadySent() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("AlreadySent(%q, %d) = %v, want %v", tt.alertID, tt.level, got, tt.want)
			}
		})
	}
}

func TestAlreadySent_StoreError(t *testing.T) {
	store := &fakeStore{err: errors.New("connection reset")}
	g := New(store, nil, time.Hour)

	_, err := g.AlreadySent(context.Background(), "alert-1", 1)
	if err == nil {
		t.Fatal("expected error when the store fails, got nil")
	}
}

func TestMarkSent_NoRedisIsNoOp(t *testing.T) {
	store := &fakeStore{sent: map[string]bool{}}
	g := New(store, nil, time.Hour)

	// Without Redis the mark has nowhere to go; the next check still hits
	// the store and reflects only what the database holds.
	g.MarkSent(context.Background(), "alert-1", 1)

	got, err := g.AlreadySent(context.Background(), "alert-1", 1)
	if err != nil {
		t.Fatalf("AlreadySent() error = %v", err)
	}
	if got {
		t.Error("AlreadySent() = true, want false when the store has no row")
	}
	if store.queries != 1 {
		t.Errorf("expected 1 store query, got %d", store.queries)
	}
}

func TestCacheKey(t *testing.T) {
	got := cacheKey("alert-9", 3)
	want := "escalation:sent:alert-9:3"
	if got != want {
		t.Errorf("cacheKey() = %q, want %q", got, want)
	}
}
