package evaluator

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/tunesmith/tunesmith/internal/logger"
	"github.com/tunesmith/tunesmith/internal/model"
	tunesmitherrors "github.com/tunesmith/tunesmith/pkg/errors"
)

// Source selects where a repetition's score comes from.
type Source string

const (
	// SourceTime scores a repetition by its wall-clock duration in seconds.
	SourceTime Source = "time"
	// SourceOutput scores a repetition by the last numeric token on the
	// last non-empty line the test writes to stdout.
	SourceOutput Source = "output"
)

// IsValid reports whether the score source is defined.
func (s Source) IsValid() bool {
	return s == SourceTime || s == SourceOutput
}

// Options configures an Evaluator. Test is the only required command.
type Options struct {
	Compile   string
	Test      string
	Clean     string
	WorkDir   string
	Shell     string
	Env       map[string]string
	Timeout   time.Duration
	Repeat    int
	Aggregate Aggregate
	Source    Source
	Logger    *logger.Logger
}

// Evaluator turns one assignment into one Outcome: substitute the command
// templates, compile once, run the test the configured number of times,
// aggregate, and always clean up afterwards. Safe for concurrent use; all
// per-evaluation state is local to Evaluate.
type Evaluator struct {
	compile   string
	test      string
	clean     string
	workDir   string
	shell     string
	env       map[string]string
	timeout   time.Duration
	repeat    int
	aggregate Aggregate
	source    Source
	log       *logger.Logger
}

// New validates the options and builds an Evaluator.
func New(opts Options) (*Evaluator, error) {
	if strings.TrimSpace(opts.Test) == "" {
		return nil, tunesmitherrors.NewConfigurationError("commands.test", "test command is required", nil)
	}
	if opts.Repeat < 1 {
		return nil, tunesmitherrors.NewConfigurationError("scoring.repeat", "repeat count must be at least 1", nil)
	}
	if !opts.Aggregate.IsValid() {
		return nil, tunesmitherrors.NewConfigurationError("scoring.aggregate", "unknown aggregation "+string(opts.Aggregate), nil)
	}
	if !opts.Source.IsValid() {
		return nil, tunesmitherrors.NewConfigurationError("scoring.source", "unknown score source "+string(opts.Source), nil)
	}

	return &Evaluator{
		compile:   opts.Compile,
		test:      opts.Test,
		clean:     opts.Clean,
		workDir:   opts.WorkDir,
		shell:     opts.Shell,
		env:       opts.Env,
		timeout:   opts.Timeout,
		repeat:    opts.Repeat,
		aggregate: opts.Aggregate,
		source:    opts.Source,
		log:       opts.Logger,
	}, nil
}

// Repeat returns the configured number of test repetitions.
func (e *Evaluator) Repeat() int {
	return e.repeat
}

// Evaluate runs the full compile/test/clean sequence for one assignment.
// Runtime failures are encoded in the returned Outcome; the error return is
// reserved for setup defects (unresolved template tokens, no usable shell)
// that make every future evaluation pointless. Cancellation marks the
// Outcome interrupted and is not an error.
func (e *Evaluator) Evaluate(ctx context.Context, ordinal int64, a model.Assignment, slot string) (*model.Outcome, error) {
	start := time.Now()

	compileCmd, err := Substitute(e.compile, ordinal, slot, a)
	if err != nil {
		return nil, err
	}
	testCmd, err := Substitute(e.test, ordinal, slot, a)
	if err != nil {
		return nil, err
	}
	cleanCmd, err := Substitute(e.clean, ordinal, slot, a)
	if err != nil {
		return nil, err
	}
	env, err := e.buildEnvironment(ordinal, slot, a)
	if err != nil {
		return nil, err
	}
	shell, shellArgs, err := determineShell(e.shell)
	if err != nil {
		return nil, tunesmitherrors.NewEvaluationError(a.String(), "setup", err)
	}

	log := e.log.WithFields(map[string]any{
		"evaluation": ordinal,
		"assignment": a.String(),
		"slot":       slot,
	})

	out := &model.Outcome{Ordinal: ordinal, Assignment: a}

	if compileCmd != "" {
		res, _, interrupted, runErr := e.runCommand(ctx, shell, shellArgs, compileCmd, env)
		switch {
		case interrupted:
			out.Interrupted = true
		case runErr != nil:
			log.WithFields(map[string]any{"exit_code": res.exitCode, "stderr": tail(res.stderr)}).Debug("compile failed")
			out.Status = model.StatusCompileFailed
			e.runClean(shell, shellArgs, cleanCmd, env, log)
			out.Duration = time.Since(start)
			out.Timestamp = time.Now()
			return out, nil
		default:
			log.Debug("compile succeeded")
		}
	}

	for i := 0; i < e.repeat && !out.Interrupted; i++ {
		if ctx.Err() != nil {
			out.Interrupted = true
			break
		}

		res, reason, interrupted, runErr := e.runCommand(ctx, shell, shellArgs, testCmd, env)
		if interrupted {
			out.Interrupted = true
			break
		}

		m := model.Measurement{Duration: res.duration}
		if runErr != nil {
			m.Reason = reason
			log.WithFields(map[string]any{"repetition": i + 1, "reason": string(reason)}).Debug("test repetition failed")
		} else if score, ok := e.extractScore(res); ok {
			m.Success = true
			m.Score = score
		} else {
			m.Reason = model.ReasonMalformedOutput
			log.WithFields(map[string]any{"repetition": i + 1, "stdout": tail(res.stdout)}).Debug("test output held no score")
		}
		out.Measurements = append(out.Measurements, m)
	}

	e.runClean(shell, shellArgs, cleanCmd, env, log)

	if !out.Interrupted {
		e.finalize(out)
	}
	out.Duration = time.Since(start)
	out.Timestamp = time.Now()
	return out, nil
}

// finalize aggregates the measurements into a score and status.
func (e *Evaluator) finalize(out *model.Outcome) {
	var scores []float64
	timeouts := 0
	for _, m := range out.Measurements {
		if m.Success {
			scores = append(scores, m.Score)
		} else if m.Reason == model.ReasonTimedOut {
			timeouts++
		}
	}

	switch {
	case len(scores) > 0:
		agg := e.aggregate.Apply(scores)
		out.Score = &agg
		out.Status = model.StatusSuccess
	case timeouts == len(out.Measurements) && timeouts > 0:
		out.Status = model.StatusTimeout
	default:
		out.Status = model.StatusTestFailed
	}
}

// buildEnvironment substitutes tokens in the custom environment values and
// layers them over the parent environment.
func (e *Evaluator) buildEnvironment(ordinal int64, slot string, a model.Assignment) ([]string, error) {
	if len(e.env) == 0 {
		return buildEnv(nil), nil
	}
	custom := make(map[string]string, len(e.env))
	for k, v := range e.env {
		expanded, err := Substitute(v, ordinal, slot, a)
		if err != nil {
			return nil, err
		}
		custom[k] = expanded
	}
	return buildEnv(custom), nil
}

// runClean runs the clean command on a fresh context so cleanup still
// happens after cancellation. Clean failures never change the outcome.
func (e *Evaluator) runClean(shell string, shellArgs []string, cleanCmd string, env []string, log *logger.Logger) {
	if cleanCmd == "" {
		return
	}
	_, _, _, err := e.runCommand(context.Background(), shell, shellArgs, cleanCmd, env)
	if err != nil {
		log.Warn("clean command failed")
	}
}

// extractScore pulls the repetition score out of a finished test process.
func (e *Evaluator) extractScore(res execResult) (float64, bool) {
	if e.source == SourceTime {
		return res.duration.Seconds(), true
	}
	return parseScore(res.stdout)
}

// parseScore finds the last numeric token on the last non-empty stdout line.
func parseScore(stdout string) (float64, bool) {
	if stdout == "" {
		return 0, false
	}
	lines := strings.Split(stdout, "\n")
	last := strings.TrimSpace(lines[len(lines)-1])
	fields := strings.Fields(last)
	for i := len(fields) - 1; i >= 0; i-- {
		if v, err := strconv.ParseFloat(fields[i], 64); err == nil {
			return v, true
		}
	}
	return 0, false
}

// tail truncates captured output for log fields.
func tail(s string) string {
	const max = 300
	if len(s) <= max {
		return s
	}
	return "..." + s[len(s)-max:]
}
