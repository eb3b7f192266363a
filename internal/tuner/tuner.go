// Package tuner drives a complete tuning run: it builds the configuration
// space, resumes from the result log, and pushes strategy proposals through
// the bounded scheduler into the evaluator.
package tuner

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/tunesmith/tunesmith/internal/config"
	"github.com/tunesmith/tunesmith/internal/evaluator"
	"github.com/tunesmith/tunesmith/internal/gitinfo"
	"github.com/tunesmith/tunesmith/internal/logger"
	"github.com/tunesmith/tunesmith/internal/model"
	"github.com/tunesmith/tunesmith/internal/scheduler"
	"github.com/tunesmith/tunesmith/internal/space"
	"github.com/tunesmith/tunesmith/internal/store"
	"github.com/tunesmith/tunesmith/internal/strategy"
	tunesmitherrors "github.com/tunesmith/tunesmith/pkg/errors"
)

// Options configures a Tuner.
type Options struct {
	Config *config.Config
	Logger *logger.Logger
	// Progress, when set, receives the events of events.go.
	Progress func(event any)
	// Fresh discards an existing result log instead of resuming from it.
	Fresh bool
}

// Tuner owns one validated configuration and the space and evaluator built
// from it. A Tuner is cheap to construct and performs no I/O until Run.
type Tuner struct {
	cfg      *config.Config
	log      *logger.Logger
	progress func(event any)
	fresh    bool

	sp   *space.Space
	eval *evaluator.Evaluator
}

// New builds the configuration space and evaluator. Setup defects (a
// malformed space expression, a variable with no values, invalid scoring
// parameters) surface here rather than mid-run.
func New(opts Options) (*Tuner, error) {
	if opts.Config == nil {
		return nil, tunesmitherrors.NewConfigurationError("config", "configuration is required", nil)
	}
	cfg := opts.Config

	values := make(map[string][]string, len(cfg.Space.Values))
	for name, list := range cfg.Space.Values {
		values[name] = list
	}

	sp, err := space.Parse(cfg.Space.Variables, values)
	if err != nil {
		return nil, err
	}

	eval, err := evaluator.New(evaluator.Options{
		Compile:   cfg.Commands.Compile,
		Test:      cfg.Commands.Test,
		Clean:     cfg.Commands.Clean,
		WorkDir:   cfg.WorkDir(),
		Shell:     cfg.Commands.Shell,
		Env:       cfg.Commands.Env,
		Timeout:   time.Duration(cfg.Commands.Timeout) * time.Second,
		Repeat:    cfg.Scoring.Repeat,
		Aggregate: evaluator.Aggregate(cfg.Scoring.Aggregate),
		Source:    evaluator.Source(cfg.Scoring.Source),
		Logger:    opts.Logger,
	})
	if err != nil {
		return nil, err
	}

	progress := opts.Progress
	if progress == nil {
		progress = func(any) {}
	}

	return &Tuner{
		cfg:      cfg,
		log:      opts.Logger,
		progress: progress,
		fresh:    opts.Fresh,
		sp:       sp,
		eval:     eval,
	}, nil
}

// Space exposes the built configuration space.
func (t *Tuner) Space() *space.Space {
	return t.sp
}

// Validation describes a dry inspection of the configured space and
// commands: the space shape, the work a full run would do, and the command
// tokens that were cross-checked against the space.
type Validation struct {
	Combinations int64
	PlannedTests int64
	Variables    []space.Variable
	Tokens       []string
}

// Validate cross-checks the command templates against the space without
// spawning anything.
func (t *Tuner) Validate() (*Validation, error) {
	tokens, err := t.checkTokens()
	if err != nil {
		return nil, err
	}

	planned := t.sp.Count()
	if repeat := int64(t.eval.Repeat()); planned <= math.MaxInt64/repeat {
		planned *= repeat
	} else {
		planned = math.MaxInt64
	}

	return &Validation{
		Combinations: t.sp.Count(),
		PlannedTests: planned,
		Variables:    t.sp.Variables(),
		Tokens:       tokens,
	}, nil
}

// checkTokens verifies that every %name% token in the command templates and
// environment values names a space variable. Returns the distinct variable
// tokens in first-appearance order.
func (t *Tuner) checkTokens() ([]string, error) {
	var tokens []string
	seen := make(map[string]bool)

	check := func(field, command string) error {
		for _, name := range evaluator.Tokens(command) {
			if !t.sp.HasVariable(name) {
				return tunesmitherrors.NewConfigurationError(field, fmt.Sprintf("token %%%s%% does not name a space variable", name), nil)
			}
			if !seen[name] {
				seen[name] = true
				tokens = append(tokens, name)
			}
		}
		return nil
	}

	if err := check("commands.compile", t.cfg.Commands.Compile); err != nil {
		return nil, err
	}
	if err := check("commands.test", t.cfg.Commands.Test); err != nil {
		return nil, err
	}
	if err := check("commands.clean", t.cfg.Commands.Clean); err != nil {
		return nil, err
	}
	for _, value := range t.cfg.Commands.Env {
		if err := check("commands.env", value); err != nil {
			return nil, err
		}
	}

	return tokens, nil
}

// Run executes the search until the strategy is exhausted, the budget is
// spent, or ctx is cancelled. Cancellation is a graceful stop: everything
// completed is already in the log and the report covers it. The error
// return is reserved for setup defects and result log failures.
func (t *Tuner) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	runID := uuid.NewString()
	log := t.log.WithFields(map[string]any{"run_id": runID})

	if _, err := t.checkTokens(); err != nil {
		return nil, err
	}

	var git *gitinfo.Info
	if info, err := gitinfo.Describe(t.cfg.WorkDir()); err == nil {
		git = &info
		log.WithFields(map[string]any{
			"commit": info.ShortCommit(),
			"branch": info.Branch,
			"dirty":  info.Dirty,
		}).Debug("resolved project revision")
	}

	st, err := store.Open(store.Options{
		Path:      t.cfg.LogPath(),
		Variables: t.variableNames(),
		Repeat:    t.eval.Repeat(),
		Objective: model.Objective(t.cfg.Scoring.Objective),
		Logger:    log,
		Fresh:     t.fresh,
	})
	if err != nil {
		return nil, err
	}
	defer func() { _ = st.Close() }()

	strat, err := strategy.New(t.cfg.Strategy.Name, t.cfg.Strategy.Seed)
	if err != nil {
		return nil, err
	}
	if err := strat.Init(t.sp, st.Contains); err != nil {
		return nil, err
	}

	report := &Report{
		RunID:        runID,
		Git:          git,
		Strategy:     strat.Name(),
		Workers:      t.cfg.Parallel.Workers,
		Combinations: t.sp.Count(),
		Skipped:      st.Count(),
		LogPath:      st.Path(),
	}

	log.WithFields(map[string]any{
		"combinations": report.Combinations,
		"skipped":      report.Skipped,
		"strategy":     report.Strategy,
		"workers":      report.Workers,
		"budget":       t.cfg.Budget,
		"log":          report.LogPath,
	}).Info("run started")
	t.progress(RunStarted{
		RunID:        runID,
		Combinations: report.Combinations,
		Skipped:      report.Skipped,
		Budget:       t.cfg.Budget,
		Workers:      report.Workers,
		Strategy:     report.Strategy,
		Git:          git,
	})

	sched, err := scheduler.New(scheduler.Options{
		Workers:      t.cfg.Parallel.Workers,
		Slots:        t.cfg.Parallel.Slots,
		Budget:       t.cfg.Budget,
		FirstOrdinal: st.NextOrdinal(),
		Logger:       log,
		OnAdmit: func(ordinal int64, a model.Assignment, slot string) {
			t.progress(EvaluationStarted{Ordinal: ordinal, Assignment: a, Slot: slot})
		},
	})
	if err != nil {
		return nil, err
	}

	propose := func() (model.Assignment, bool) {
		a, _, ok := strat.Next()
		return a, ok
	}

	handle := func(out *model.Outcome) error {
		prev, hadBest := st.Best()
		if err := st.Append(out); err != nil {
			return err
		}

		report.Evaluated++
		if out.Failed() {
			report.Failed++
			report.Failures = append(report.Failures, newFailureDigest(out))
		}
		strat.Observe(out)

		if best, ok := st.Best(); ok && (!hadBest || best.Ordinal != prev.Ordinal) {
			t.progress(BestImproved{Best: best})
		}
		t.progress(EvaluationFinished{Outcome: out, Evaluated: report.Evaluated, Failed: report.Failed})
		return nil
	}

	stats, err := sched.Run(ctx, propose, t.eval, handle)
	if err != nil {
		return nil, err
	}

	report.Interrupted = stats.Cancelled
	report.BudgetSpent = stats.BudgetSpent
	report.Exhausted = stats.Exhausted
	if best, ok := st.Best(); ok {
		report.Best = &best
	}

	if t.cfg.ImportancePath() != "" && report.Best != nil && ctx.Err() == nil {
		evaluated, err := t.runImportance(ctx, log, st, report.Best.Assignment)
		if err != nil {
			return nil, err
		}
		report.ImportanceTests = evaluated
		report.ImportancePath = t.cfg.ImportancePath()
		if ctx.Err() != nil {
			report.Interrupted = true
		}
	}

	report.Duration = time.Since(start)
	log.WithFields(map[string]any{
		"evaluated":   report.Evaluated,
		"failed":      report.Failed,
		"interrupted": report.Interrupted,
		"duration":    report.Duration.String(),
	}).Info("run finished")
	t.progress(RunFinished{Report: report})

	return report, nil
}

// runImportance re-evaluates the best assignment with each alternative
// value of every variable on its path, one variable at a time, appending to
// the importance log. Assignments already covered by either log are
// skipped.
func (t *Tuner) runImportance(ctx context.Context, log *logger.Logger, main *store.Store, best model.Assignment) (int64, error) {
	imp, err := store.Open(store.Options{
		Path:      t.cfg.ImportancePath(),
		Variables: t.variableNames(),
		Repeat:    t.eval.Repeat(),
		Objective: model.Objective(t.cfg.Scoring.Objective),
		Logger:    log,
		Fresh:     t.fresh,
	})
	if err != nil {
		return 0, err
	}
	defer func() { _ = imp.Close() }()

	var candidates []model.Assignment
	proposed := make(map[string]bool)
	for _, v := range t.sp.Variables() {
		if _, onPath := best[v.Name]; !onPath {
			continue
		}
		for _, value := range v.Values {
			candidate := best.Clone()
			candidate[v.Name] = value
			key := candidate.Key()
			if proposed[key] || main.Contains(key) || imp.Contains(key) {
				continue
			}
			proposed[key] = true
			candidates = append(candidates, candidate)
		}
	}
	if len(candidates) == 0 {
		return 0, nil
	}

	log.WithFields(map[string]any{"planned": len(candidates), "log": imp.Path()}).Info("importance sweep started")
	t.progress(ImportanceStarted{Planned: int64(len(candidates))})

	sched, err := scheduler.New(scheduler.Options{
		Workers:      t.cfg.Parallel.Workers,
		Slots:        t.cfg.Parallel.Slots,
		FirstOrdinal: imp.NextOrdinal(),
		Logger:       log,
		OnAdmit: func(ordinal int64, a model.Assignment, slot string) {
			t.progress(EvaluationStarted{Ordinal: ordinal, Assignment: a, Slot: slot})
		},
	})
	if err != nil {
		return 0, err
	}

	next := 0
	propose := func() (model.Assignment, bool) {
		if next >= len(candidates) {
			return nil, false
		}
		a := candidates[next]
		next++
		return a, true
	}

	var evaluated int64
	handle := func(out *model.Outcome) error {
		if err := imp.Append(out); err != nil {
			return err
		}
		evaluated++
		t.progress(EvaluationFinished{Outcome: out, Evaluated: evaluated})
		return nil
	}

	if _, err := sched.Run(ctx, propose, t.eval, handle); err != nil {
		return evaluated, err
	}
	return evaluated, nil
}

func (t *Tuner) variableNames() []string {
	vars := t.sp.Variables()
	names := make([]string, len(vars))
	for i, v := range vars {
		names[i] = v.Name
	}
	return names
}
