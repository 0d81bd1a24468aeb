// Package metrics provides metrics recording for the escalation engine.
// It uses the null object pattern to avoid nil checks throughout the codebase.
package metrics

import "time"

// Recorder defines the interface for recording escalation run metrics.
type Recorder interface {
	// RecordRun records one completed orchestrator run with its duration.
	RecordRun(duration time.Duration)

	// RecordProcessed increments the count of alerts evaluated.
	RecordProcessed()

	// RecordEscalated increments the dispatch counter for a channel.
	RecordEscalated(channel string)

	// RecordSkipped increments the count of levels skipped by the
	// idempotency guard.
	RecordSkipped()

	// RecordError increments the error counter.
	RecordError()
}

// NoOp is a no-op implementation of Recorder that discards all metrics.
// Use this when metrics collection is not configured.
type NoOp struct{}

// NewNoOp creates a new no-op metrics recorder.
func NewNoOp() *NoOp {
	return &NoOp{}
}

func (n *NoOp) RecordRun(_ time.Duration)   {}
func (n *NoOp) RecordProcessed()            {}
func (n *NoOp) RecordEscalated(_ string)    {}
func (n *NoOp) RecordSkipped()              {}
func (n *NoOp) RecordError()                {}

// Ensure NoOp implements Recorder
var _ Recorder = (*NoOp)(nil)
