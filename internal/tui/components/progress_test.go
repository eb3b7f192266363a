package components

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewProgress(t *testing.T) {
	t.Parallel()

	t.Run("creates progress with specified total", func(t *testing.T) {
		t.Parallel()
		p := NewProgress(10)
		require.NotNil(t, p.bar)
		require.Equal(t, int64(10), p.total)
	})

	t.Run("creates progress with zero total", func(t *testing.T) {
		t.Parallel()
		p := NewProgress(0)
		require.NotNil(t, p.bar)
		require.Equal(t, int64(0), p.total)
	})
}

func TestProgressView(t *testing.T) {
	t.Parallel()

	t.Run("open-ended runs show only the count", func(t *testing.T) {
		t.Parallel()
		p := NewProgress(0)
		view := p.View(37)
		require.Contains(t, view, "37 evaluations")
		require.NotContains(t, view, "/")
	})

	t.Run("renders with partial completion", func(t *testing.T) {
		t.Parallel()
		p := NewProgress(10)
		view := p.View(5)
		require.Contains(t, view, "5/10")
		require.NotEmpty(t, view)
	})

	t.Run("renders with full completion", func(t *testing.T) {
		t.Parallel()
		p := NewProgress(10)
		view := p.View(10)
		require.Contains(t, view, "10/10")
	})

	t.Run("caps the ratio when completion exceeds the total", func(t *testing.T) {
		t.Parallel()
		p := NewProgress(10)
		view := p.View(15)
		require.Contains(t, view, "15/10")
		require.NotEmpty(t, view)
	})

	t.Run("view contains both label and bar", func(t *testing.T) {
		t.Parallel()
		p := NewProgress(100)
		view := p.View(50)
		label := "50/100"
		require.Contains(t, view, label)
		require.True(t, len(strings.TrimSpace(view)) > len(label),
			"expected view to contain a bar in addition to the label")
	})
}

func TestFormatScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		value    float64
		expected string
	}{
		{"integral scores drop the point", 42, "42"},
		{"fractions keep precision", 0.042, "0.042"},
		{"large values use exponent form", 1e21, "1e+21"},
		{"negative values keep the sign", -3.5, "-3.5"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.expected, FormatScore(tt.value))
		})
	}
}
