package model

import (
	"time"
)

// FailureReason classifies why a single test repetition produced no score.
type FailureReason string

const (
	// ReasonNonZeroExit indicates the test process exited with a nonzero code.
	ReasonNonZeroExit FailureReason = "non_zero_exit"
	// ReasonCrashed indicates the test process was killed by a signal.
	ReasonCrashed FailureReason = "crashed"
	// ReasonTimedOut indicates the test exceeded its per-repetition timeout.
	ReasonTimedOut FailureReason = "timed_out"
	// ReasonMalformedOutput indicates the test exited cleanly but its output
	// did not contain a parseable score.
	ReasonMalformedOutput FailureReason = "malformed_output"
)

// IsValid reports whether the reason is one of the defined classifications.
func (r FailureReason) IsValid() bool {
	switch r {
	case ReasonNonZeroExit, ReasonCrashed, ReasonTimedOut, ReasonMalformedOutput:
		return true
	}
	return false
}

// Measurement captures one test repetition. Either Success is true and Score
// holds the measured value, or Success is false and Reason explains why.
type Measurement struct {
	Score    float64
	Success  bool
	Reason   FailureReason
	Duration time.Duration
}
