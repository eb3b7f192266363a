package space

import (
	"github.com/tunesmith/tunesmith/internal/model"
)

// Enumerator walks every assignment of a space exactly once, in the
// deterministic order that At exposes. It is lazy, restartable, and safe to
// abandon at any point. Not safe for concurrent use.
type Enumerator struct {
	space  *Space
	cursor int64
}

// Enumerate returns a fresh enumerator positioned at the first assignment.
func (s *Space) Enumerate() *Enumerator {
	return &Enumerator{space: s}
}

// Next returns the next assignment and its enumeration index, or ok=false
// when the space is exhausted.
func (e *Enumerator) Next() (model.Assignment, int64, bool) {
	if e.cursor >= e.space.Count() {
		return nil, 0, false
	}
	a, err := e.space.At(e.cursor)
	if err != nil {
		return nil, 0, false
	}
	index := e.cursor
	e.cursor++
	return a, index, true
}

// Reset rewinds the enumerator to the first assignment.
func (e *Enumerator) Reset() {
	e.cursor = 0
}

// Remaining returns how many assignments have not been produced yet.
func (e *Enumerator) Remaining() int64 {
	return e.space.Count() - e.cursor
}
