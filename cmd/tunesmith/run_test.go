package main

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/tunesmith/tunesmith/internal/strategy"
	"github.com/tunesmith/tunesmith/internal/tui"
	"github.com/tunesmith/tunesmith/internal/tuner"
)

func TestMain(m *testing.M) {
	if err := strategy.RegisterBuiltins(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("POSIX shell assumptions do not hold on Windows")
	}
}

func executeCommand(cmd *cobra.Command, args ...string) (string, error) {
	cmd.SetArgs(args)
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	err := cmd.Execute()
	return buf.String(), err
}

const testRunConfig = `version: "1.0"
name: cli-test
space:
  variables: "A * B"
  values:
    A: [1, 2]
    B: [3, 4]
commands:
  test: "echo $((%A% + %B%))"
scoring:
  objective: max
  source: output
  repeat: 1
  aggregate: average
parallel:
  workers: 2
output:
  log: results.csv
`

func writeRunConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tune.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testRunConfig), 0o644))
	return path
}

func TestRunCommandExecutesATuningRun(t *testing.T) {
	skipOnWindows(t)

	cfgPath := writeRunConfig(t)

	root := newRootCmd()
	_, err := executeCommand(root, "run", cfgPath, "--plain")
	require.NoError(t, err)

	require.FileExists(t, filepath.Join(filepath.Dir(cfgPath), "results.csv"))
}

func TestRunCommandHonoursBudgetFlag(t *testing.T) {
	skipOnWindows(t)

	cfgPath := writeRunConfig(t)

	root := newRootCmd()
	_, err := executeCommand(root, "run", cfgPath, "--plain", "--budget", "2")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(filepath.Dir(cfgPath), "results.csv"))
	require.NoError(t, err)
	lines := bytes.Count(data, []byte("\n"))
	// Header plus the two budgeted evaluations.
	require.Equal(t, 3, lines)
}

func TestRunCommandRejectsMissingConfig(t *testing.T) {
	root := newRootCmd()
	_, err := executeCommand(root, "run", "/path/does/not/exist")
	require.Error(t, err)
	require.Contains(t, err.Error(), "does not exist")
}

func TestRunCommandRejectsUnknownStrategy(t *testing.T) {
	skipOnWindows(t)

	cfgPath := writeRunConfig(t)

	root := newRootCmd()
	_, err := executeCommand(root, "run", cfgPath, "--plain", "--strategy", "walrus")
	require.Error(t, err)
	require.Contains(t, err.Error(), "walrus")
}

func TestRunTuningRejectsMalformedConfig(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("space: [not: a: mapping"), 0o644))

	err := runTuning(runOptions{ConfigPath: cfgPath, Budget: -1, Plain: true})
	require.Error(t, err)
}

func TestDispatchEvent(t *testing.T) {
	started := tuner.RunStarted{Combinations: 4, Workers: 1, Strategy: "exhaustive"}

	t.Run("non-interactive mode applies updates in place", func(t *testing.T) {
		modelState := tui.NewModel("dispatch-test", nil)
		dispatchEvent(false, nil, &modelState, started)
		require.Equal(t, int64(4), modelState.PlannedEvaluations())
	})

	t.Run("interactive mode with nil program does nothing", func(t *testing.T) {
		modelState := tui.NewModel("dispatch-test", nil)
		dispatchEvent(true, nil, &modelState, started)
		require.Zero(t, modelState.PlannedEvaluations())
	})
}
