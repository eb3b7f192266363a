package components

import (
	"fmt"
	"math"
	"strconv"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// Progress renders completion of a known number of evaluations. A zero
// total marks an open-ended run, where only the count is meaningful.
type Progress struct {
	bar   progress.Model
	total int64
}

// NewProgress creates a progress component for the given total.
func NewProgress(total int64) Progress {
	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 40
	return Progress{bar: bar, total: total}
}

// View renders the progress bar for the provided completion count.
func (p Progress) View(completed int64) string {
	if p.total <= 0 {
		return lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("%d evaluations", completed))
	}
	ratio := math.Min(1.0, float64(completed)/float64(p.total))
	label := lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("%d/%d", completed, p.total))
	return lipgloss.JoinHorizontal(lipgloss.Left, label, " ", p.bar.ViewAs(ratio))
}

// FormatScore renders a score the way the result log records it.
func FormatScore(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
