package evaluator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/tunesmith/tunesmith/internal/model"
)

// execResult captures one finished child process. Output is always collected
// into buffers, never inherited, so concurrent evaluations cannot interleave
// on the terminal.
type execResult struct {
	stdout   string
	stderr   string
	exitCode int
	duration time.Duration
}

// runCommand executes command through shell and classifies the failure
// mode. interrupted is true when the parent context was cancelled, as
// opposed to the per-repetition deadline expiring.
func (e *Evaluator) runCommand(ctx context.Context, shell string, shellArgs []string, command string, env []string) (res execResult, reason model.FailureReason, interrupted bool, err error) {
	runCtx := ctx
	cancel := func() {}
	if e.timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, e.timeout)
	}
	defer cancel()

	var stdoutBuf, stderrBuf bytes.Buffer
	args := append(shellArgs, command)
	cmd := exec.CommandContext(runCtx, shell, args...)
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf
	cmd.Env = env
	if e.workDir != "" {
		cmd.Dir = e.workDir
	}

	start := time.Now()
	runErr := cmd.Run()
	res = execResult{
		stdout:   strings.TrimSpace(stdoutBuf.String()),
		stderr:   strings.TrimSpace(stderrBuf.String()),
		duration: time.Since(start),
	}

	if runErr == nil {
		return res, "", false, nil
	}

	if ctx.Err() != nil {
		// The run itself was cancelled; the child was killed on our behalf.
		return res, "", true, runErr
	}
	if runCtx.Err() == context.DeadlineExceeded {
		res.exitCode = -1
		return res, model.ReasonTimedOut, false, runErr
	}

	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		res.exitCode = exitErr.ExitCode()
		if res.exitCode == -1 {
			// Killed by a signal rather than exiting.
			return res, model.ReasonCrashed, false, runErr
		}
		return res, model.ReasonNonZeroExit, false, runErr
	}

	// Spawn failures (missing shell binary, bad workdir) never produced a
	// process.
	res.exitCode = -1
	return res, model.ReasonCrashed, false, runErr
}

// determineShell resolves the shell used for command templates. An explicit
// shell wins; otherwise bash is preferred with sh as fallback.
func determineShell(explicit string) (string, []string, error) {
	if explicit != "" {
		return explicit, []string{"-c"}, nil
	}

	if runtime.GOOS == "windows" {
		return "cmd", []string{"/C"}, nil
	}

	if path, err := exec.LookPath("bash"); err == nil {
		return path, []string{"-c"}, nil
	}

	if path, err := exec.LookPath("sh"); err == nil {
		return path, []string{"-c"}, nil
	}

	return "", nil, fmt.Errorf("no suitable shell found")
}

// buildEnv appends the custom environment on top of the parent environment.
func buildEnv(custom map[string]string) []string {
	env := os.Environ()
	for k, v := range custom {
		env = append(env, fmt.Sprintf("%s=%s", k, v))
	}
	return env
}
