// Package policy implements the escalation level decision.
//
// The decision is a pure function of alert age and severity. It carries no
// persisted state: every run re-evaluates the currently-due level from
// scratch, so an alert that sat unprocessed through several bands receives
// only the level matching its age at run time unless backfill is enabled.
package policy

import (
	"fmt"
	"strings"
)

// Severity classifies how urgent an alert is.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// ParseSeverity validates and normalizes a severity string coming from the
// database boundary.
func ParseSeverity(s string) (Severity, error) {
	switch Severity(strings.ToLower(strings.TrimSpace(s))) {
	case SeverityInfo:
		return SeverityInfo, nil
	case SeverityWarning:
		return SeverityWarning, nil
	case SeverityCritical:
		return SeverityCritical, nil
	}
	return "", fmt.Errorf("invalid severity: %q (must be one of: info, warning, critical)", s)
}

// Channel is a notification transport.
type Channel string

const (
	ChannelEmail    Channel = "email"
	ChannelSMS      Channel = "sms"
	ChannelWhatsApp Channel = "whatsapp"
	ChannelCall     Channel = "call"
)

// Channels lists all transports in escalation order.
var Channels = []Channel{ChannelEmail, ChannelSMS, ChannelWhatsApp, ChannelCall}

// Band upper bounds in hours since alert creation. Bands are half-open with
// an inclusive lower bound: [0,24] email, (24,48] sms, (48,72] whatsapp,
// (72,inf) call.
const (
	level1MaxHours = 24.0
	level2MaxHours = 48.0
	level3MaxHours = 72.0
)

// Decision is one due escalation: the ordinal level and the channel it
// must go out on.
type Decision struct {
	Level   int
	Channel Channel
}

// DecideLevel maps hours elapsed since alert creation and severity to the
// single currently-due escalation level. Level 4 (voice call) applies only to
// critical alerts; an aged non-critical alert gets no escalation at all.
// Returns false when no escalation is due.
func DecideLevel(hoursElapsed float64, severity Severity) (Decision, bool) {
	switch {
	case hoursElapsed < 0:
		return Decision{}, false
	case hoursElapsed <= level1MaxHours:
		return Decision{Level: 1, Channel: ChannelEmail}, true
	case hoursElapsed <= level2MaxHours:
		return Decision{Level: 2, Channel: ChannelSMS}, true
	case hoursElapsed <= level3MaxHours:
		return Decision{Level: 3, Channel: ChannelWhatsApp}, true
	case severity == SeverityCritical:
		return Decision{Level: 4, Channel: ChannelCall}, true
	}
	return Decision{}, false
}

// DueLevels returns the escalation levels due at the given alert age, in
// ascending order.
//
// With backfill disabled this is DecideLevel in slice form: at most the one
// currently-due level. With backfill enabled it returns every level whose
// band has already opened, so a run delayed past one or more bands can send
// the levels it missed. The idempotency guard filters levels already sent.
func DueLevels(hoursElapsed float64, severity Severity, backfill bool) []Decision {
	if !backfill {
		d, ok := DecideLevel(hoursElapsed, severity)
		if !ok {
			return nil
		}
		return []Decision{d}
	}

	var due []Decision
	if hoursElapsed >= 0 {
		due = append(due, Decision{Level: 1, Channel: ChannelEmail})
	}
	if hoursElapsed > level1MaxHours {
		due = append(due, Decision{Level: 2, Channel: ChannelSMS})
	}
	if hoursElapsed > level2MaxHours {
		due = append(due, Decision{Level: 3, Channel: ChannelWhatsApp})
	}
	if hoursElapsed > level3MaxHours && severity == SeverityCritical {
		due = append(due, Decision{Level: 4, Channel: ChannelCall})
	}
	return due
}
