// Package guard enforces the duplicate-suppression contract: at most one
// successful dispatch per (alert, level) across runs.
//
// The check is a plain read followed later by an insert, so two overlapping
// runs can both pass it before either writes its record. The engine accepts
// these at-least-once semantics; the audit trail still records every attempt.
package guard

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// EscalationStore is the subset of database operations the guard needs.
type EscalationStore interface {
	HasSentEscalation(ctx context.Context, alertID string, level int) (bool, error)
}

// Guard answers whether a given (alert, level) has already been dispatched.
// Postgres is authoritative; an optional Redis cache short-circuits repeat
// lookups across runs. Cache failures degrade silently to the database.
type Guard struct {
	store    EscalationStore
	redis    *redis.Client // nil disables the cache
	cacheTTL time.Duration
}

// New creates a guard backed by the given store. redisClient may be nil, in
// which case every check hits the database. cacheTTL should cover the
// lookback window; after that the alert is no longer a candidate anyway.
func New(store EscalationStore, redisClient *redis.Client, cacheTTL time.Duration) *Guard {
	return &Guard{
		store:    store,
		redis:    redisClient,
		cacheTTL: cacheTTL,
	}
}

// AlreadySent reports whether a sent or confirmed escalation record exists
// for the (alert, level) pair.
func (g *Guard) AlreadySent(ctx context.Context, alertID string, level int) (bool, error) {
	if g.redis != nil {
		val, err := g.redis.Get(ctx, cacheKey(alertID, level)).Result()
		if err == nil && val == "1" {
			return true, nil
		}
		if err != nil && err != redis.Nil {
			slog.Warn("Idempotency cache read failed, falling back to database",
				"alert_id", alertID,
				"level", level,
				"error", err,
			)
		}
	}

	sent, err := g.store.HasSentEscalation(ctx, alertID, level)
	if err != nil {
		return false, fmt.Errorf("idempotency check failed: %w", err)
	}

	if sent {
		g.markCache(ctx, alertID, level)
	}

	return sent, nil
}

// MarkSent records in the cache that the level has been dispatched. Called
// after a successful dispatch so the next run can skip the database lookup.
// Best effort: the database row is the source of truth.
func (g *Guard) MarkSent(ctx context.Context, alertID string, level int) {
	g.markCache(ctx, alertID, level)
}

func (g *Guard) markCache(ctx context.Context, alertID string, level int) {
	if g.redis == nil {
		return
	}
	if err := g.redis.Set(ctx, cacheKey(alertID, level), "1", g.cacheTTL).Err(); err != nil {
		slog.Warn("Failed to write idempotency cache",
			"alert_id", alertID,
			"level", level,
			"error", err,
		)
	}
}

func cacheKey(alertID string, level int) string {
	return fmt.Sprintf("escalation:sent:%s:%d", alertID, level)
}
