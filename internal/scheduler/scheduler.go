package scheduler

import (
	"context"
	"fmt"
	"strconv"

	"github.com/tunesmith/tunesmith/internal/logger"
	"github.com/tunesmith/tunesmith/internal/model"
	tunesmitherrors "github.com/tunesmith/tunesmith/pkg/errors"
)

// Evaluator runs one assignment to completion. The production implementation
// spends its time blocked in process waits, which is what makes a goroutine
// per in-flight unit the right shape here.
type Evaluator interface {
	Evaluate(ctx context.Context, ordinal int64, a model.Assignment, slot string) (*model.Outcome, error)
}

// ProposeFunc hands out the next assignment, or ok=false when the search is
// exhausted. Called only from the scheduler's control loop.
type ProposeFunc func() (model.Assignment, bool)

// HandleFunc receives every completed outcome in completion order, one at a
// time from the control loop. Returning an error aborts the run; the result
// log being unwritable is the canonical case.
type HandleFunc func(out *model.Outcome) error

// Options configures a run.
type Options struct {
	Workers int
	// Slots names the execution slots handed to evaluations, one per
	// worker. Empty means "0".."N-1".
	Slots []string
	// Budget caps evaluations launched this run; 0 means unlimited.
	Budget int64
	// FirstOrdinal numbers the first evaluation, continuing the log's
	// sequence across resumed runs.
	FirstOrdinal int64
	// OnAdmit, when set, observes each admission from the control loop.
	OnAdmit func(ordinal int64, a model.Assignment, slot string)
	Logger  *logger.Logger
}

// Stats summarizes how a run ended.
type Stats struct {
	Launched    int64
	Completed   int64
	Interrupted int64
	// Exhausted is set when the strategy ran out of proposals.
	Exhausted bool
	// BudgetSpent is set when the evaluation budget stopped admissions.
	BudgetSpent bool
	// Cancelled is set when the caller's context ended the run early.
	Cancelled bool
}

// Scheduler runs evaluations with bounded concurrency. One control
// goroutine owns all shared state; each admitted unit is a goroutine that
// runs the full compile/test/clean sequence for one assignment and reports
// on a completion channel. Slot tokens are exclusive: no two concurrent
// units ever share one.
type Scheduler struct {
	workers int
	slots   []string
	budget  int64
	next    int64
	onAdmit func(ordinal int64, a model.Assignment, slot string)
	log     *logger.Logger
}

// New validates the options and builds a Scheduler.
func New(opts Options) (*Scheduler, error) {
	if opts.Workers < 1 {
		return nil, tunesmitherrors.NewConfigurationError("parallel.workers", "at least one worker is required", nil)
	}
	slots := opts.Slots
	if len(slots) == 0 {
		slots = make([]string, opts.Workers)
		for i := range slots {
			slots[i] = strconv.Itoa(i)
		}
	}
	if len(slots) != opts.Workers {
		return nil, tunesmitherrors.NewConfigurationError("parallel.slots", fmt.Sprintf("%d slots for %d workers", len(slots), opts.Workers), nil)
	}
	first := opts.FirstOrdinal
	if first < 1 {
		first = 1
	}
	return &Scheduler{
		workers: opts.Workers,
		slots:   slots,
		budget:  opts.Budget,
		next:    first,
		onAdmit: opts.OnAdmit,
		log:     opts.Logger,
	}, nil
}

// completion is one unit reporting back to the control loop.
type completion struct {
	out  *model.Outcome
	err  error
	slot string
}

// Run drives proposals through the evaluator until the strategy is
// exhausted, the budget is spent, or ctx is cancelled. Cancellation is a
// graceful stop: no new admissions, in-flight units are interrupted and
// drained, and everything already completed has been handled. The error
// return is reserved for fatal conditions (a setup defect reported by the
// evaluator, or handle failing); an exhausted or cancelled run is not an
// error.
func (s *Scheduler) Run(ctx context.Context, propose ProposeFunc, evaluate Evaluator, handle HandleFunc) (Stats, error) {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	slots := make(chan string, s.workers)
	for _, slot := range s.slots {
		slots <- slot
	}

	// Unbuffered: units park until the loop is ready, so outcomes are
	// handled strictly in arrival order.
	results := make(chan completion)

	var stats Stats
	var fatal error
	exhausted := false
	inFlight := 0

	admit := func() bool {
		if fatal != nil || exhausted || runCtx.Err() != nil {
			return false
		}
		if s.budget > 0 && stats.Launched >= s.budget {
			stats.BudgetSpent = true
			return false
		}

		var slot string
		select {
		case slot = <-slots:
		default:
			return false
		}

		a, ok := propose()
		if !ok {
			exhausted = true
			stats.Exhausted = true
			slots <- slot
			return false
		}

		ordinal := s.next
		s.next++
		stats.Launched++
		inFlight++

		s.log.WithFields(map[string]any{
			"evaluation": ordinal,
			"assignment": a.String(),
			"slot":       slot,
		}).Debug("evaluation admitted")
		if s.onAdmit != nil {
			s.onAdmit(ordinal, a, slot)
		}

		go func() {
			out, err := evaluate.Evaluate(runCtx, ordinal, a, slot)
			results <- completion{out: out, err: err, slot: slot}
		}()
		return true
	}

	done := runCtx.Done()
	for {
		for admit() {
		}
		if inFlight == 0 {
			break
		}

		select {
		case c := <-results:
			inFlight--
			slots <- c.slot

			switch {
			case c.err != nil:
				if fatal == nil {
					fatal = c.err
					cancel()
				}
			case c.out.Interrupted:
				stats.Interrupted++
			default:
				stats.Completed++
				// A run that already failed stops feeding the handler;
				// the drained units still count as completed.
				if fatal == nil {
					if err := handle(c.out); err != nil {
						fatal = err
						cancel()
					}
				}
			}

		case <-done:
			// Stop admitting and drain; disarm so the loop blocks on
			// results from here on.
			done = nil
		}
	}

	if ctx.Err() != nil && fatal == nil {
		stats.Cancelled = true
	}
	return stats, fatal
}
