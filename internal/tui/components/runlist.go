package components

import (
	"fmt"
	"strings"
)

// RunEntry is one in-flight evaluation for rendering.
type RunEntry struct {
	Ordinal    int64
	Assignment string
	Slot       string
}

// RunList renders the evaluations currently occupying execution slots.
type RunList struct {
	entries []RunEntry
	limit   int
}

// NewRunList constructs a run list capped at limit visible rows. A limit
// of zero shows every entry.
func NewRunList(entries []RunEntry, limit int) RunList {
	return RunList{entries: entries, limit: limit}
}

// Entries returns a copy of the tracked entries.
func (l RunList) Entries() []RunEntry {
	clone := make([]RunEntry, len(l.entries))
	copy(clone, l.entries)
	return clone
}

// View renders one line per entry prefixed with glyph, folding overflow
// beyond the limit into a single trailing line.
func (l RunList) View(glyph string) string {
	shown := l.entries
	overflow := 0
	if l.limit > 0 && len(shown) > l.limit {
		overflow = len(shown) - l.limit
		shown = shown[:l.limit]
	}
	lines := make([]string, 0, len(shown)+1)
	for _, e := range shown {
		line := fmt.Sprintf(" %s #%d %s", glyph, e.Ordinal, e.Assignment)
		if e.Slot != "" {
			line = fmt.Sprintf("%s [slot %s]", line, e.Slot)
		}
		lines = append(lines, line)
	}
	if overflow > 0 {
		lines = append(lines, fmt.Sprintf("   and %d more", overflow))
	}
	return strings.Join(lines, "\n")
}
