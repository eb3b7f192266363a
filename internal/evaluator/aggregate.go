package evaluator

import (
	"sort"
)

// Aggregate reduces the scores of repeated test runs to one value.
type Aggregate string

const (
	// AggregateAverage takes the arithmetic mean.
	AggregateAverage Aggregate = "average"
	// AggregateMinimum takes the lowest score.
	AggregateMinimum Aggregate = "minimum"
	// AggregateMaximum takes the highest score.
	AggregateMaximum Aggregate = "maximum"
	// AggregateMedian takes the median; for an even count, the mean of the
	// two middle values.
	AggregateMedian Aggregate = "median"
)

// IsValid reports whether the aggregation method is defined.
func (a Aggregate) IsValid() bool {
	switch a {
	case AggregateAverage, AggregateMinimum, AggregateMaximum, AggregateMedian:
		return true
	}
	return false
}

// Apply reduces values. The slice must be non-empty; failed repetitions are
// excluded before aggregation.
func (a Aggregate) Apply(values []float64) float64 {
	switch a {
	case AggregateMinimum:
		min := values[0]
		for _, v := range values[1:] {
			if v < min {
				min = v
			}
		}
		return min
	case AggregateMaximum:
		max := values[0]
		for _, v := range values[1:] {
			if v > max {
				max = v
			}
		}
		return max
	case AggregateMedian:
		sorted := append([]float64(nil), values...)
		sort.Float64s(sorted)
		mid := len(sorted) / 2
		if len(sorted)%2 == 1 {
			return sorted[mid]
		}
		return (sorted[mid-1] + sorted[mid]) / 2
	default:
		sum := 0.0
		for _, v := range values {
			sum += v
		}
		return sum / float64(len(values))
	}
}
