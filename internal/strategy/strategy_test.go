package strategy

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tunesmith/tunesmith/internal/model"
	"github.com/tunesmith/tunesmith/internal/space"
	tunesmitherrors "github.com/tunesmith/tunesmith/pkg/errors"
)

func neverSeen(string) bool { return false }

func buildSpace(t *testing.T, expr string) *space.Space {
	t.Helper()
	sp, err := space.Parse(expr, nil)
	require.NoError(t, err)
	return sp
}

func collectKeys(t *testing.T, s Strategy, limit int) []string {
	t.Helper()
	var keys []string
	for i := 0; i < limit; i++ {
		a, _, ok := s.Next()
		if !ok {
			return keys
		}
		keys = append(keys, a.Key())
	}
	return keys
}

func TestRegistryLifecycle(t *testing.T) {
	defer ResetRegistry()
	ResetRegistry()

	require.NoError(t, Register("toy", func(int64) Strategy { return NewExhaustive(0) }))

	s, err := New("toy", 0)
	require.NoError(t, err)
	require.Equal(t, "exhaustive", s.Name())

	_, err = New("missing", 0)
	var strategyErr *tunesmitherrors.StrategyError
	require.ErrorAs(t, err, &strategyErr)
	require.Equal(t, "missing", strategyErr.Strategy)
}

func TestRegisterRejectsDuplicatesAndNil(t *testing.T) {
	defer ResetRegistry()
	ResetRegistry()

	require.NoError(t, Register("toy", func(int64) Strategy { return NewExhaustive(0) }))

	err := Register("toy", func(int64) Strategy { return NewExhaustive(0) })
	var strategyErr *tunesmitherrors.StrategyError
	require.ErrorAs(t, err, &strategyErr)

	err = Register("niladic", nil)
	require.ErrorAs(t, err, &strategyErr)
}

func TestRegisterBuiltins(t *testing.T) {
	defer ResetRegistry()
	ResetRegistry()

	require.NoError(t, RegisterBuiltins())
	require.Equal(t, []string{"exhaustive", "random"}, Names())

	s, err := New("random", 7)
	require.NoError(t, err)
	require.Equal(t, "random", s.Name())
}

func TestExhaustiveVisitsWholeSpaceInOrder(t *testing.T) {
	t.Parallel()

	sp := buildSpace(t, "a{1,2} * b{3,4}")
	s := NewExhaustive(0)
	require.NoError(t, s.Init(sp, neverSeen))

	var keys []string
	var indices []int64
	for {
		a, index, ok := s.Next()
		if !ok {
			break
		}
		keys = append(keys, a.Key())
		indices = append(indices, index)
	}

	require.Equal(t, []string{"a=1,b=3", "a=1,b=4", "a=2,b=3", "a=2,b=4"}, keys)
	require.Equal(t, []int64{0, 1, 2, 3}, indices)
}

func TestExhaustiveSkipsRecordedAssignments(t *testing.T) {
	t.Parallel()

	sp := buildSpace(t, "a{1,2} * b{3,4}")
	recorded := map[string]bool{"a=1,b=4": true, "a=2,b=3": true}

	s := NewExhaustive(0)
	require.NoError(t, s.Init(sp, func(key string) bool { return recorded[key] }))

	keys := collectKeys(t, s, 10)
	require.Equal(t, []string{"a=1,b=3", "a=2,b=4"}, keys)
}

func TestExhaustiveProposesDuplicateBranchKeyOnce(t *testing.T) {
	t.Parallel()

	// Both branches describe the same single assignment.
	sp := buildSpace(t, "a{1} + a{1}")
	require.Equal(t, int64(2), sp.Count())

	s := NewExhaustive(0)
	require.NoError(t, s.Init(sp, neverSeen))

	keys := collectKeys(t, s, 10)
	require.Equal(t, []string{"a=1"}, keys)
}

func TestRandomCoversSpaceWithoutReplacement(t *testing.T) {
	t.Parallel()

	sp := buildSpace(t, "a{1,2} * b{3,4}")
	s := NewRandom(1)
	require.NoError(t, s.Init(sp, neverSeen))

	keys := collectKeys(t, s, 100)
	require.Len(t, keys, 4)

	unique := map[string]bool{}
	for _, k := range keys {
		unique[k] = true
	}
	require.Len(t, unique, 4)
	require.Contains(t, unique, "a=1,b=3")
	require.Contains(t, unique, "a=2,b=4")
}

func TestRandomIsReproducibleUnderSeed(t *testing.T) {
	t.Parallel()

	sp := buildSpace(t, "a{1,2,3} * b{1,2,3} * c{1,2}")

	first := NewRandom(42)
	require.NoError(t, first.Init(sp, neverSeen))
	second := NewRandom(42)
	require.NoError(t, second.Init(sp, neverSeen))

	require.Equal(t, collectKeys(t, first, 50), collectKeys(t, second, 50))
}

func TestRandomSkipsRecordedAssignments(t *testing.T) {
	t.Parallel()

	sp := buildSpace(t, "a{1,2}")
	s := NewRandom(3)
	require.NoError(t, s.Init(sp, func(key string) bool { return key == "a=1" }))

	keys := collectKeys(t, s, 10)
	require.Equal(t, []string{"a=2"}, keys)
}

func TestObserveIsSafeNoOp(t *testing.T) {
	t.Parallel()

	sp := buildSpace(t, "a{1,2}")
	for _, s := range []Strategy{NewExhaustive(0), NewRandom(0)} {
		require.NoError(t, s.Init(sp, neverSeen))
		s.Observe(&model.Outcome{Ordinal: 1})
		_, _, ok := s.Next()
		require.True(t, ok)
	}
}
