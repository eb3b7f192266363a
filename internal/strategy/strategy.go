package strategy

import (
	"fmt"
	"sort"
	"sync"

	"github.com/tunesmith/tunesmith/internal/model"
	"github.com/tunesmith/tunesmith/internal/space"
	tunesmitherrors "github.com/tunesmith/tunesmith/pkg/errors"
)

// SeenFunc reports whether an assignment key already has a recorded result.
// Strategies consult it at proposal time so resumed runs skip finished work.
type SeenFunc func(key string) bool

// Strategy proposes assignments to evaluate. Implementations own only their
// traversal state; scoring, best tracking and the budget live in the caller.
// Next and Observe are always called from a single goroutine.
type Strategy interface {
	// Name identifies the strategy in configuration and logs.
	Name() string

	// Init binds the strategy to a space before the first proposal.
	Init(sp *space.Space, seen SeenFunc) error

	// Next returns the next assignment together with its position in the
	// space's enumeration order, or ok=false when the strategy has nothing
	// further to propose. A proposal is never outside the space and never
	// repeats a key that seen reported or that this run already proposed.
	Next() (model.Assignment, int64, bool)

	// Observe feeds a completed outcome back to the strategy. Outcomes can
	// arrive in any order relative to proposals.
	Observe(out *model.Outcome)
}

// Factory builds a strategy instance. The seed is meaningful only to
// randomized strategies.
type Factory func(seed int64) Strategy

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// Register adds a strategy factory under the given name.
func Register(name string, f Factory) error {
	if f == nil {
		return tunesmitherrors.NewStrategyError(name, fmt.Errorf("factory is nil"))
	}

	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[name]; exists {
		return tunesmitherrors.NewStrategyError(name, fmt.Errorf("strategy already registered"))
	}

	registry[name] = f
	return nil
}

// New instantiates a registered strategy by name.
func New(name string, seed int64) (Strategy, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	f, ok := registry[name]
	if !ok {
		return nil, tunesmitherrors.NewStrategyError(name, fmt.Errorf("no strategy registered"))
	}

	return f(seed), nil
}

// Names lists the registered strategies in sorted order.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ResetRegistry clears strategy registrations (for tests).
func ResetRegistry() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[string]Factory)
}

// RegisterBuiltins registers the strategies that ship with the binary.
func RegisterBuiltins() error {
	if err := Register("exhaustive", NewExhaustive); err != nil {
		return err
	}
	return Register("random", NewRandom)
}
