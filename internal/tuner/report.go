package tuner

import (
	"time"

	"github.com/tunesmith/tunesmith/internal/gitinfo"
	"github.com/tunesmith/tunesmith/internal/model"
	"github.com/tunesmith/tunesmith/internal/store"
)

// Report summarizes a finished run.
type Report struct {
	RunID    string
	Git      *gitinfo.Info
	Strategy string
	Workers  int

	Combinations int64
	// Skipped counts assignments already in the log when the run started.
	Skipped int64
	// Evaluated counts evaluations completed by this run.
	Evaluated int64
	// Failed counts completed evaluations without a usable score.
	Failed int64

	Interrupted bool
	BudgetSpent bool
	Exhausted   bool

	Best     *store.Best
	Failures []FailureDigest

	ImportanceTests int64
	ImportancePath  string

	LogPath  string
	Duration time.Duration
}

// FailureDigest is one failed evaluation in the final summary.
type FailureDigest struct {
	Ordinal    int64
	Assignment string
	Status     string
	Reason     string
}

func newFailureDigest(out *model.Outcome) FailureDigest {
	reason := ""
	for _, m := range out.Measurements {
		if m.Reason != "" {
			reason = string(m.Reason)
			break
		}
	}
	return FailureDigest{
		Ordinal:    out.Ordinal,
		Assignment: out.Assignment.String(),
		Status:     out.Status,
		Reason:     reason,
	}
}
