package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tunesmith/tunesmith/internal/tuner"
)

// Update handles Bubbletea messages and updates model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if m.finished {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tuner.RunStarted:
		m.strategy = msg.Strategy
		m.workers = msg.Workers
		m.skipped = msg.Skipped
		m.total = plannedTotal(msg)
		return m, nil
	case tuner.EvaluationStarted:
		m.startEvaluation(msg.Ordinal, msg.Assignment.String(), msg.Slot)
		return m, nil
	case tuner.EvaluationFinished:
		if m.sweeping {
			m.sweepDone = msg.Evaluated
		} else {
			m.evaluated = msg.Evaluated
			m.failed = msg.Failed
		}
		m.finishEvaluation(msg.Outcome)
		return m, nil
	case tuner.BestImproved:
		best := msg.Best
		m.best = &best
		return m, nil
	case tuner.ImportanceStarted:
		m.sweeping = true
		m.sweepTotal = msg.Planned
		m.sweepDone = 0
		return m, nil
	case tuner.RunFinished:
		m.report = msg.Report
		m.finished = true
		m.running = nil
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			// Second ctrl+c abandons the drain and exits immediately.
			if m.cancelled {
				return m, tea.Quit
			}
			m.cancelled = true
			if m.cancel != nil {
				m.cancel()
			}
		}
		return m, nil
	case tea.QuitMsg:
		m.finished = true
		return m, nil
	}

	return m, nil
}

// plannedTotal is the number of evaluations the run can launch: the space
// minus what the log already covers, clamped by the budget when one is set.
func plannedTotal(msg tuner.RunStarted) int64 {
	remaining := msg.Combinations - msg.Skipped
	if remaining < 0 {
		remaining = 0
	}
	if msg.Budget > 0 && msg.Budget < remaining {
		remaining = msg.Budget
	}
	return remaining
}
