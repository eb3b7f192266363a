package evaluator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAggregateApply(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		agg    Aggregate
		values []float64
		want   float64
	}{
		{"average of three", AggregateAverage, []float64{1, 2, 3}, 2},
		{"minimum of three", AggregateMinimum, []float64{3, 1, 2}, 1},
		{"maximum of three", AggregateMaximum, []float64{3, 1, 2}, 3},
		{"median of odd count", AggregateMedian, []float64{3, 1, 2}, 2},
		{"median of even count", AggregateMedian, []float64{4, 1, 3, 2}, 2.5},
		{"single value average", AggregateAverage, []float64{7}, 7},
		{"single value median", AggregateMedian, []float64{7}, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.InDelta(t, tt.want, tt.agg.Apply(tt.values), 1e-9)
		})
	}
}

func TestAggregateApplyDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	values := []float64{3, 1, 2}
	AggregateMedian.Apply(values)
	require.Equal(t, []float64{3, 1, 2}, values)
}

func TestAggregateIsValid(t *testing.T) {
	t.Parallel()

	require.True(t, AggregateAverage.IsValid())
	require.True(t, AggregateMinimum.IsValid())
	require.True(t, AggregateMaximum.IsValid())
	require.True(t, AggregateMedian.IsValid())
	require.False(t, Aggregate("mode").IsValid())
	require.False(t, Aggregate("").IsValid())
}
