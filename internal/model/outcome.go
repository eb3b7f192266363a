package model

import (
	"time"
)

const (
	// StatusSuccess marks an evaluation with at least one scored repetition.
	StatusSuccess = "success"
	// StatusCompileFailed marks an evaluation whose compile step failed; no
	// tests were run.
	StatusCompileFailed = "compile_failed"
	// StatusTestFailed marks an evaluation where every repetition failed for
	// a reason other than a timeout.
	StatusTestFailed = "test_failed"
	// StatusTimeout marks an evaluation where every repetition timed out.
	StatusTimeout = "timeout"
)

// Outcome is the complete, immutable record of evaluating one assignment.
// Interrupted outcomes carry whatever was gathered before cancellation and
// are never persisted.
type Outcome struct {
	Ordinal      int64
	Assignment   Assignment
	Measurements []Measurement
	Score        *float64
	Status       string
	Duration     time.Duration
	Timestamp    time.Time
	Interrupted  bool
}

// HasScore reports whether aggregation produced a usable score.
func (o *Outcome) HasScore() bool {
	return o != nil && o.Score != nil
}

// Failed reports whether the evaluation produced no usable score.
func (o *Outcome) Failed() bool {
	return o != nil && o.Score == nil
}
