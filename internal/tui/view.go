package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/tunesmith/tunesmith/internal/model"
	"github.com/tunesmith/tunesmith/internal/tuner"
	"github.com/tunesmith/tunesmith/internal/tui/components"
)

// View renders the current state of the model.
func (m Model) View() string {
	var sections []string

	title := titleStyle.Render(fmt.Sprintf("Tunesmith • %s", m.title()))
	sections = append(sections, title)

	if m.strategy != "" {
		meta := fmt.Sprintf("strategy %s, %d workers", m.strategy, m.workers)
		if m.skipped > 0 {
			meta = fmt.Sprintf("%s, %d resumed from log", meta, m.skipped)
		}
		sections = append(sections, dimStyle.Render(meta))
	}

	progress := components.NewProgress(m.total).View(m.evaluated)
	sections = append(sections, sectionStyle.Render("Progress"), progress)
	if m.failed > 0 {
		sections = append(sections, failureStyle.Render(fmt.Sprintf(" %d without a score", m.failed)))
	}
	if m.best != nil && !m.finished {
		best := fmt.Sprintf(" Best: %s scored %s (evaluation #%d)",
			m.best.Assignment, components.FormatScore(m.best.Score), m.best.Ordinal)
		sections = append(sections, bestStyle.Render(best))
	}

	if !m.finished && len(m.running) > 0 {
		list := components.NewRunList(m.running, maxRunningRows)
		sections = append(sections, sectionStyle.Render("Running"), list.View(m.spinner.View()))
	}

	if !m.finished && len(m.recent) > 0 {
		sections = append(sections, sectionStyle.Render("Recent"), renderRecentEntries(m.recent))
	}

	if m.sweeping && !m.finished {
		sweep := components.NewProgress(m.sweepTotal).View(m.sweepDone)
		sections = append(sections, sectionStyle.Render("Importance"), sweep)
	}

	if m.cancelled && !m.finished {
		notice := "Interrupt received, waiting for running evaluations (ctrl+c again to force quit)"
		sections = append(sections, skippedStyle.Render(notice))
	}

	if m.report != nil {
		summary := components.NewSummary(summaryData(m.report)).View()
		if strings.TrimSpace(summary) != "" {
			sections = append(sections, sectionStyle.Render("Summary"), summaryStyle.Render(summary))
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func renderRecentEntries(entries []finishedEval) string {
	var lines []string
	for _, e := range entries {
		icon := StatusIcon(e.status)
		line := fmt.Sprintf(" %s #%d %s", icon, e.ordinal, e.assignment)
		if e.score != nil {
			line = fmt.Sprintf("%s scored %s", line, components.FormatScore(*e.score))
		} else {
			line = fmt.Sprintf("%s %s", line, e.status)
		}
		if e.duration != "" {
			line = fmt.Sprintf("%s (%s)", line, e.duration)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func summaryData(report *tuner.Report) components.SummaryData {
	data := components.SummaryData{
		Evaluated:       report.Evaluated,
		Failed:          report.Failed,
		Skipped:         report.Skipped,
		Cancelled:       report.Interrupted,
		BudgetSpent:     report.BudgetSpent,
		Exhausted:       report.Exhausted,
		ImportanceTests: report.ImportanceTests,
		LogPath:         report.LogPath,
		Duration:        report.Duration,
	}
	if report.Best != nil {
		data.BestAssignment = report.Best.Assignment.String()
		data.BestOrdinal = report.Best.Ordinal
		score := report.Best.Score
		data.BestScore = &score
	}
	for _, f := range report.Failures {
		data.Failures = append(data.Failures, components.FailureLine{
			Ordinal:    f.Ordinal,
			Assignment: f.Assignment,
			Status:     f.Status,
			Reason:     f.Reason,
		})
	}
	return data
}

func (m Model) title() string {
	if strings.TrimSpace(m.name) != "" {
		return m.name
	}
	return "Tuning run"
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return ""
	}
	return d.Truncate(10 * time.Millisecond).String()
}

// StatusIcon returns the glyph representing an evaluation status.
func StatusIcon(status string) string {
	switch status {
	case model.StatusSuccess:
		return successStyle.Render("✓")
	case model.StatusCompileFailed, model.StatusTestFailed:
		return failureStyle.Render("✗")
	case model.StatusTimeout:
		return failureStyle.Render("⏱")
	default:
		return pendingStyle.Render("…")
	}
}
