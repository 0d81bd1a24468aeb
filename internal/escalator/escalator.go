// Package escalator implements the escalation batch run.
//
// One run fetches every unconfirmed alert inside the lookback window and,
// per alert: decides the due level from age and severity, checks the
// idempotency guard, resolves recipients, dispatches per recipient and
// records every attempt. Alerts are independent: a failure in one is
// collected into the run summary and never aborts the batch.
package escalator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"escalation-engine/internal/database"
	"escalation-engine/internal/dispatch/payload"
	"escalation-engine/internal/events"
	"escalation-engine/internal/metrics"
	"escalation-engine/internal/policy"
)

const defaultWorkerCount = 4

// AlertStore is the subset of database operations used to fetch candidates.
type AlertStore interface {
	GetUnconfirmedAlerts(ctx context.Context, now time.Time, lookback time.Duration) ([]database.Alert, error)
}

// OrgStore resolves organization display names for rendered payloads.
type OrgStore interface {
	GetOrganizationName(ctx context.Context, orgID string) (string, error)
}

// Guard answers whether a (alert, level) pair was already dispatched.
type Guard interface {
	AlreadySent(ctx context.Context, alertID string, level int) (bool, error)
	MarkSent(ctx context.Context, alertID string, level int)
}

// Resolver returns the contacts to notify for an organization and channel.
type Resolver interface {
	Resolve(ctx context.Context, orgID string, channel policy.Channel) ([]database.Contact, error)
}

// Dispatcher delivers one escalation to one contact.
type Dispatcher interface {
	Send(ctx context.Context, channel policy.Channel, contact string, msg *payload.Message) error
}

// AuditLogger records one row per dispatch attempt.
type AuditLogger interface {
	Record(ctx context.Context, alert *database.Alert, level int, channel policy.Channel, recipient string, sendErr error) error
}

// EventPublisher publishes dispatch events downstream. May be nil.
type EventPublisher interface {
	Publish(ctx context.Context, dispatched *events.EscalationDispatched) error
}

// ChannelCounts holds per-channel successful dispatch counts for one run.
type ChannelCounts struct {
	Email    int `json:"email"`
	SMS      int `json:"sms"`
	WhatsApp int `json:"whatsapp"`
	Call     int `json:"call"`
}

// add increments the counter for a channel by n.
func (c *ChannelCounts) add(channel policy.Channel, n int) {
	switch channel {
	case policy.ChannelEmail:
		c.Email += n
	case policy.ChannelSMS:
		c.SMS += n
	case policy.ChannelWhatsApp:
		c.WhatsApp += n
	case policy.ChannelCall:
		c.Call += n
	}
}

// Summary is the result of one orchestrator run.
type Summary struct {
	Processed int           `json:"processed"`
	Escalated ChannelCounts `json:"escalated"`
	Errors    []string      `json:"errors"`
}

// Deps holds everything the escalator needs. Publisher and Metrics are
// optional; missing values get null-object defaults.
type Deps struct {
	Alerts     AlertStore
	Orgs       OrgStore
	Guard      Guard
	Resolver   Resolver
	Dispatcher Dispatcher
	Audit      AuditLogger
	Publisher  EventPublisher
	Metrics    metrics.Recorder

	Lookback time.Duration
	Backfill bool
	Workers  int

	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Escalator runs escalation batches.
type Escalator struct {
	deps Deps
}

// New creates an escalator, applying defaults for optional dependencies.
func New(deps Deps) *Escalator {
	if deps.Metrics == nil {
		deps.Metrics = metrics.NewNoOp()
	}
	if deps.Workers <= 0 {
		deps.Workers = defaultWorkerCount
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Escalator{deps: deps}
}

// alertResult carries one alert's outcome back to the aggregator.
type alertResult struct {
	counts map[policy.Channel]int
	err    error
	alert  string
}

// Run executes one escalation pass. Only a failure to fetch the candidate
// set is fatal; everything else lands in the summary's error list.
func (e *Escalator) Run(ctx context.Context) (*Summary, error) {
	start := e.deps.Now()
	now := start.UTC()

	alerts, err := e.deps.Alerts.GetUnconfirmedAlerts(ctx, now, e.deps.Lookback)
	if err != nil {
		e.deps.Metrics.RecordError()
		return nil, fmt.Errorf("failed to fetch unconfirmed alerts: %w", err)
	}

	slog.Info("Starting escalation run",
		"candidates", len(alerts),
		"lookback", e.deps.Lookback,
		"workers", e.deps.Workers,
		"backfill", e.deps.Backfill,
	)

	summary := &Summary{Processed: len(alerts)}

	jobs := make(chan database.Alert, e.deps.Workers)
	results := make(chan alertResult, len(alerts))
	var wg sync.WaitGroup

	for i := 0; i < e.deps.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for alert := range jobs {
				counts, err := e.processAlert(ctx, now, &alert)
				results <- alertResult{counts: counts, err: err, alert: alert.AlertID}
			}
		}()
	}

	// Alerts are enqueued oldest first (the fetch is ordered). Cross-alert
	// parallelism is safe because each alert's escalation is independent.
	for _, alert := range alerts {
		jobs <- alert
	}
	close(jobs)
	wg.Wait()
	close(results)

	for res := range results {
		e.deps.Metrics.RecordProcessed()
		for channel, n := range res.counts {
			summary.Escalated.add(channel, n)
			for i := 0; i < n; i++ {
				e.deps.Metrics.RecordEscalated(string(channel))
			}
		}
		if res.err != nil {
			e.deps.Metrics.RecordError()
			summary.Errors = append(summary.Errors, fmt.Sprintf("alert %s: %v", res.alert, res.err))
		}
	}

	e.deps.Metrics.RecordRun(e.deps.Now().Sub(start))

	slog.Info("Escalation run finished",
		"processed", summary.Processed,
		"email", summary.Escalated.Email,
		"sms", summary.Escalated.SMS,
		"whatsapp", summary.Escalated.WhatsApp,
		"call", summary.Escalated.Call,
		"errors", len(summary.Errors),
	)

	return summary, nil
}

// processAlert runs policy, guard, resolution, dispatch and logging for one
// alert. Returned counts hold successful dispatches per channel; the error,
// if any, is the first per-alert failure encountered.
func (e *Escalator) processAlert(ctx context.Context, now time.Time, alert *database.Alert) (map[policy.Channel]int, error) {
	counts := make(map[policy.Channel]int)

	severity, err := policy.ParseSeverity(alert.Severity)
	if err != nil {
		return counts, err
	}

	hoursElapsed := now.Sub(alert.CreatedAt).Hours()
	decisions := policy.DueLevels(hoursElapsed, severity, e.deps.Backfill)
	if len(decisions) == 0 {
		slog.Debug("No escalation due",
			"alert_id", alert.AlertID,
			"hours_elapsed", hoursElapsed,
			"severity", severity,
		)
		return counts, nil
	}

	for _, decision := range decisions {
		sent, err := e.processLevel(ctx, alert, decision)
		if err != nil {
			return counts, err
		}
		counts[decision.Channel] += sent
	}

	return counts, nil
}

// processLevel handles one due (alert, level): idempotency check, recipient
// resolution, per-recipient dispatch and logging. Returns the number of
// successful dispatches.
func (e *Escalator) processLevel(ctx context.Context, alert *database.Alert, decision policy.Decision) (int, error) {
	alreadySent, err := e.deps.Guard.AlreadySent(ctx, alert.AlertID, decision.Level)
	if err != nil {
		return 0, err
	}
	if alreadySent {
		slog.Debug("Escalation level already dispatched, skipping",
			"alert_id", alert.AlertID,
			"level", decision.Level,
		)
		e.deps.Metrics.RecordSkipped()
		return 0, nil
	}

	contacts, err := e.deps.Resolver.Resolve(ctx, alert.OrgID, decision.Channel)
	if err != nil {
		return 0, err
	}
	if len(contacts) == 0 {
		// Nobody to notify is a no-op, not an error: no record is written
		// and the level stays eligible for later runs.
		slog.Debug("No recipients for escalation, skipping",
			"alert_id", alert.AlertID,
			"org_id", alert.OrgID,
			"level", decision.Level,
			"channel", decision.Channel,
		)
		return 0, nil
	}

	msg := &payload.Message{
		Alert:   alert,
		Level:   decision.Level,
		OrgName: e.orgName(ctx, alert.OrgID),
	}

	// Recipients are dispatched sequentially so the audit rows for one
	// level keep a stable order. A failure for one recipient never stops
	// the rest.
	successes := 0
	var firstErr error
	for _, contact := range contacts {
		sendErr := e.deps.Dispatcher.Send(ctx, decision.Channel, contact.Value, msg)
		if sendErr != nil {
			slog.Warn("Escalation dispatch failed",
				"alert_id", alert.AlertID,
				"level", decision.Level,
				"channel", decision.Channel,
				"error", sendErr,
			)
		}

		if recordErr := e.deps.Audit.Record(ctx, alert, decision.Level, decision.Channel, contact.Value, sendErr); recordErr != nil {
			if firstErr == nil {
				firstErr = recordErr
			}
			continue
		}

		if sendErr == nil {
			successes++
			e.publishDispatched(ctx, alert, decision, contact.Value)
		}
	}

	if successes > 0 {
		// Mark the level attempted so the next run's guard check can skip
		// the database lookup.
		e.deps.Guard.MarkSent(ctx, alert.AlertID, decision.Level)
	}

	return successes, firstErr
}

// orgName resolves the organization display name, falling back to the id
// when the lookup fails; a missing name must not block an escalation.
func (e *Escalator) orgName(ctx context.Context, orgID string) string {
	if e.deps.Orgs == nil {
		return orgID
	}
	name, err := e.deps.Orgs.GetOrganizationName(ctx, orgID)
	if err != nil {
		slog.Warn("Failed to resolve organization name", "org_id", orgID, "error", err)
		return orgID
	}
	return name
}

// publishDispatched emits the dispatch event. Best effort: a publish failure
// is logged and never fails the dispatch it describes.
func (e *Escalator) publishDispatched(ctx context.Context, alert *database.Alert, decision policy.Decision, recipient string) {
	if e.deps.Publisher == nil {
		return
	}
	event := &events.EscalationDispatched{
		AlertID:      alert.AlertID,
		OrgID:        alert.OrgID,
		Level:        decision.Level,
		Channel:      string(decision.Channel),
		Recipient:    recipient,
		Severity:     alert.Severity,
		DispatchedAt: e.deps.Now().UTC().Unix(),
	}
	if err := e.deps.Publisher.Publish(ctx, event); err != nil {
		slog.Warn("Failed to publish escalation dispatched event",
			"alert_id", alert.AlertID,
			"level", decision.Level,
			"error", err,
		)
	}
}
