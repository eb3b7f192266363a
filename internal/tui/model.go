package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tunesmith/tunesmith/internal/model"
	"github.com/tunesmith/tunesmith/internal/store"
	"github.com/tunesmith/tunesmith/internal/tuner"
	"github.com/tunesmith/tunesmith/internal/tui/components"
)

// recentKept bounds the list of finished evaluations shown in the frame.
const recentKept = 5

// maxRunningRows bounds the in-flight list so wide worker pools stay
// readable.
const maxRunningRows = 8

// finishedEval is one completed evaluation kept for the recent list.
type finishedEval struct {
	ordinal    int64
	assignment string
	status     string
	score      *float64
	duration   string
}

// Model contains the Bubbletea state for a live tuning run. Progress events
// arrive as messages, either through a running program's Send or by applying
// Update directly when no terminal is attached.
type Model struct {
	name   string
	cancel func()

	spinner spinner.Model

	strategy string
	workers  int
	skipped  int64
	total    int64

	evaluated int64
	failed    int64

	running []components.RunEntry
	recent  []finishedEval
	best    *store.Best

	sweeping   bool
	sweepTotal int64
	sweepDone  int64

	report    *tuner.Report
	finished  bool
	cancelled bool
}

// NewModel constructs the run view. cancel, when non-nil, is invoked on the
// first ctrl+c so the run can drain before the program exits.
func NewModel(name string, cancel func()) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = runningStyle
	return Model{
		name:    name,
		cancel:  cancel,
		spinner: s,
	}
}

// Init starts the spinner.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// PlannedEvaluations returns how many evaluations the run expects to launch,
// 0 while unknown.
func (m Model) PlannedEvaluations() int64 {
	return m.total
}

// Evaluated returns the number of completed evaluations observed so far.
func (m Model) Evaluated() int64 {
	return m.evaluated
}

// IsFinished reports whether the run has delivered its final report.
func (m Model) IsFinished() bool {
	return m.finished
}

func (m *Model) startEvaluation(ordinal int64, assignment, slot string) {
	for _, e := range m.running {
		if e.Ordinal == ordinal {
			return
		}
	}
	m.running = append(m.running, components.RunEntry{
		Ordinal:    ordinal,
		Assignment: assignment,
		Slot:       slot,
	})
}

func (m *Model) finishEvaluation(out *model.Outcome) {
	if out == nil {
		return
	}
	for i, e := range m.running {
		if e.Ordinal == out.Ordinal {
			m.running = append(m.running[:i], m.running[i+1:]...)
			break
		}
	}
	m.recent = append(m.recent, finishedEval{
		ordinal:    out.Ordinal,
		assignment: out.Assignment.String(),
		status:     out.Status,
		score:      out.Score,
		duration:   formatDuration(out.Duration),
	})
	if len(m.recent) > recentKept {
		m.recent = m.recent[len(m.recent)-recentKept:]
	}
}
