package components

import (
	"fmt"
	"strings"
	"time"
)

// maxFailureLines bounds the failure digest in the summary.
const maxFailureLines = 5

// FailureLine is one failed evaluation for summary rendering.
type FailureLine struct {
	Ordinal    int64
	Assignment string
	Status     string
	Reason     string
}

// SummaryData aggregates the final run counts for rendering.
type SummaryData struct {
	Evaluated int64
	Failed    int64
	Skipped   int64

	Cancelled   bool
	BudgetSpent bool
	Exhausted   bool

	BestAssignment string
	BestOrdinal    int64
	BestScore      *float64

	ImportanceTests int64
	LogPath         string
	Duration        time.Duration

	Failures []FailureLine
}

// Summary renders the end-of-run report.
type Summary struct {
	data SummaryData
}

// NewSummary creates a new Summary component.
func NewSummary(data SummaryData) Summary {
	return Summary{data: data}
}

// View renders the summary.
func (s Summary) View() string {
	var lines []string

	counts := fmt.Sprintf("Evaluations: %d completed, %d without a score", s.data.Evaluated, s.data.Failed)
	if s.data.Skipped > 0 {
		counts = fmt.Sprintf("%s, %d resumed from an earlier run", counts, s.data.Skipped)
	}
	lines = append(lines, counts)

	switch {
	case s.data.Cancelled:
		lines = append(lines, "Run interrupted, completed evaluations were kept")
	case s.data.BudgetSpent:
		lines = append(lines, "Evaluation budget spent")
	case s.data.Exhausted:
		lines = append(lines, "Configuration space fully explored")
	}

	if s.data.BestScore != nil {
		lines = append(lines, fmt.Sprintf("Best: %s scored %s (evaluation #%d)",
			s.data.BestAssignment, FormatScore(*s.data.BestScore), s.data.BestOrdinal))
	} else {
		lines = append(lines, "No evaluation produced a usable score")
	}

	if s.data.ImportanceTests > 0 {
		lines = append(lines, fmt.Sprintf("Importance sweep: %d extra evaluations", s.data.ImportanceTests))
	}

	if len(s.data.Failures) > 0 {
		lines = append(lines, "Failures:")
		shown := s.data.Failures
		if len(shown) > maxFailureLines {
			shown = shown[:maxFailureLines]
		}
		for _, f := range shown {
			line := fmt.Sprintf("  ✗ #%d %s: %s", f.Ordinal, f.Assignment, f.Status)
			if f.Reason != "" {
				line = fmt.Sprintf("%s (%s)", line, f.Reason)
			}
			lines = append(lines, line)
		}
		if hidden := len(s.data.Failures) - len(shown); hidden > 0 {
			lines = append(lines, fmt.Sprintf("  and %d more", hidden))
		}
	}

	if s.data.LogPath != "" {
		lines = append(lines, fmt.Sprintf("Results: %s", s.data.LogPath))
	}
	if s.data.Duration > 0 {
		lines = append(lines, fmt.Sprintf("Elapsed: %s", s.data.Duration.Truncate(10*time.Millisecond)))
	}

	return strings.Join(lines, "\n")
}
