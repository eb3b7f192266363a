package strategy

import (
	"fmt"
	"math/rand"

	"github.com/tunesmith/tunesmith/internal/model"
	"github.com/tunesmith/tunesmith/internal/space"
	tunesmitherrors "github.com/tunesmith/tunesmith/pkg/errors"
)

// maxMaterialize bounds the space size for which a full shuffled index
// permutation is built up front. Larger spaces are sampled by rejection.
const maxMaterialize = 1 << 20

// sampleAttempts bounds rejection sampling per proposal. A space so densely
// covered that this many draws all collide is exhausted for any practical
// random search.
const sampleAttempts = 4096

// random proposes uniformly sampled assignments without replacement,
// reproducible under a fixed seed.
type random struct {
	sp       *space.Space
	rng      *rand.Rand
	seen     SeenFunc
	order    []int64
	pos      int
	tried    map[int64]bool
	proposed map[string]bool
}

// NewRandom builds the seeded random-sampling strategy.
func NewRandom(seed int64) Strategy {
	return &random{rng: rand.New(rand.NewSource(seed))}
}

func (s *random) Name() string {
	return "random"
}

func (s *random) Init(sp *space.Space, seen SeenFunc) error {
	if sp == nil {
		return tunesmitherrors.NewStrategyError(s.Name(), fmt.Errorf("no space"))
	}
	s.sp = sp
	s.seen = seen
	s.tried = make(map[int64]bool)
	s.proposed = make(map[string]bool)

	if count := sp.Count(); count <= maxMaterialize {
		s.order = make([]int64, count)
		for i, v := range s.rng.Perm(int(count)) {
			s.order[i] = int64(v)
		}
	}
	return nil
}

func (s *random) Next() (model.Assignment, int64, bool) {
	if s.order != nil {
		return s.nextFromOrder()
	}
	return s.nextBySampling()
}

func (s *random) nextFromOrder() (model.Assignment, int64, bool) {
	for s.pos < len(s.order) {
		index := s.order[s.pos]
		s.pos++
		a, err := s.sp.At(index)
		if err != nil {
			continue
		}
		key := a.Key()
		if s.seen(key) || s.proposed[key] {
			continue
		}
		s.proposed[key] = true
		return a, index, true
	}
	return nil, 0, false
}

func (s *random) nextBySampling() (model.Assignment, int64, bool) {
	count := s.sp.Count()
	for attempt := 0; attempt < sampleAttempts; attempt++ {
		index := s.rng.Int63n(count)
		if s.tried[index] {
			continue
		}
		s.tried[index] = true

		a, err := s.sp.At(index)
		if err != nil {
			continue
		}
		key := a.Key()
		if s.seen(key) || s.proposed[key] {
			continue
		}
		s.proposed[key] = true
		return a, index, true
	}
	return nil, 0, false
}

func (s *random) Observe(*model.Outcome) {}
