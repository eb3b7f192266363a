package model

// Objective is the optimization direction for aggregated scores.
type Objective string

const (
	// ObjectiveMinimize searches for the lowest score.
	ObjectiveMinimize Objective = "min"
	// ObjectiveMaximize searches for the highest score.
	ObjectiveMaximize Objective = "max"
)

// IsValid reports whether the objective is a defined direction.
func (o Objective) IsValid() bool {
	return o == ObjectiveMinimize || o == ObjectiveMaximize
}

// Better reports whether candidate strictly improves on incumbent under the
// objective. Equal scores are not an improvement, so the first candidate to
// reach a score wins ties.
func (o Objective) Better(candidate, incumbent float64) bool {
	if o == ObjectiveMaximize {
		return candidate > incumbent
	}
	return candidate < incumbent
}
