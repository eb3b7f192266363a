package tuner

import (
	"github.com/tunesmith/tunesmith/internal/gitinfo"
	"github.com/tunesmith/tunesmith/internal/model"
	"github.com/tunesmith/tunesmith/internal/store"
)

// Progress events are delivered synchronously from the run's control loop
// to the configured callback, in the order things happened. Handlers must
// not block; the terminal UI forwards them to its own message loop.

// RunStarted opens a run.
type RunStarted struct {
	RunID        string
	Combinations int64
	Skipped      int64
	Budget       int64
	Workers      int
	Strategy     string
	Git          *gitinfo.Info
}

// EvaluationStarted marks one assignment entering an execution slot.
type EvaluationStarted struct {
	Ordinal    int64
	Assignment model.Assignment
	Slot       string
}

// EvaluationFinished carries a completed outcome and the run's counters.
type EvaluationFinished struct {
	Outcome   *model.Outcome
	Evaluated int64
	Failed    int64
}

// BestImproved fires whenever the log's winning row changes.
type BestImproved struct {
	Best store.Best
}

// ImportanceStarted opens the post-search importance sweep.
type ImportanceStarted struct {
	Planned int64
}

// RunFinished closes a run; the report is final.
type RunFinished struct {
	Report *Report
}
