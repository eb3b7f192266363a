package strategy

import (
	"fmt"

	"github.com/tunesmith/tunesmith/internal/model"
	"github.com/tunesmith/tunesmith/internal/space"
	tunesmitherrors "github.com/tunesmith/tunesmith/pkg/errors"
)

// exhaustive walks the whole space in enumeration order, skipping anything
// already recorded. It is the baseline every other strategy is measured
// against: with no budget it visits every assignment exactly once.
type exhaustive struct {
	enum     *space.Enumerator
	seen     SeenFunc
	proposed map[string]bool
}

// NewExhaustive builds the brute-force strategy. The seed is ignored.
func NewExhaustive(_ int64) Strategy {
	return &exhaustive{}
}

func (s *exhaustive) Name() string {
	return "exhaustive"
}

func (s *exhaustive) Init(sp *space.Space, seen SeenFunc) error {
	if sp == nil {
		return tunesmitherrors.NewStrategyError(s.Name(), fmt.Errorf("no space"))
	}
	s.enum = sp.Enumerate()
	s.seen = seen
	s.proposed = make(map[string]bool)
	return nil
}

func (s *exhaustive) Next() (model.Assignment, int64, bool) {
	for {
		a, index, ok := s.enum.Next()
		if !ok {
			return nil, 0, false
		}
		key := a.Key()
		// Alternative branches may describe the same assignment twice;
		// evaluate it once.
		if s.seen(key) || s.proposed[key] {
			continue
		}
		s.proposed[key] = true
		return a, index, true
	}
}

func (s *exhaustive) Observe(*model.Outcome) {}
