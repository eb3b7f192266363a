package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tunesmith/tunesmith/internal/config"
	"github.com/tunesmith/tunesmith/internal/logger"
	"github.com/tunesmith/tunesmith/internal/tui"
	"github.com/tunesmith/tunesmith/internal/tuner"
)

type runOptions struct {
	ConfigPath string
	Budget     int64
	Workers    int
	Strategy   string
	Fresh      bool
	Verbose    bool
	Plain      bool
}

var runCmdRunner = runTuning

func newRunCmd(root *rootFlags) *cobra.Command {
	opts := runOptions{}

	cmd := &cobra.Command{
		Use:   "run <config-file>",
		Short: "Search the configuration space described by a config file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.ConfigPath = args[0]
			opts.Verbose = root.verbose
			opts.Plain = root.plain

			if err := validateConfigPath(opts.ConfigPath); err != nil {
				return err
			}

			return runCmdRunner(opts)
		},
	}

	cmd.Flags().Int64Var(&opts.Budget, "budget", -1, "Maximum evaluations this run, 0 for unlimited")
	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "Number of parallel evaluations")
	cmd.Flags().StringVar(&opts.Strategy, "strategy", "", "Search strategy to use")
	cmd.Flags().BoolVar(&opts.Fresh, "fresh", false, "Discard an existing result log instead of resuming")

	return cmd
}

func runTuning(opts runOptions) error {
	cfg, err := config.ParseConfig(opts.ConfigPath)
	if err != nil {
		return err
	}
	applyOverrides(cfg, opts)
	if err := config.ValidateConfig(cfg); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	interactive := !opts.Plain && term.IsTerminal(int(os.Stdout.Fd()))

	level := "info"
	if opts.Verbose {
		level = "debug"
	}
	logOpts := logger.Options{Level: level, HumanReadable: true, TranscriptPath: cfg.ScriptPath()}
	if interactive {
		// Console output would tear the TUI frame; the transcript still
		// records every entry.
		logOpts.Writer = io.Discard
	}
	log, err := logger.New(logOpts)
	if err != nil {
		return err
	}
	defer log.Close()

	modelState := tui.NewModel(cfg.Name, cancel)
	var program *tea.Program
	var programErr error
	done := make(chan struct{})

	progress := func(event any) {
		dispatchEvent(interactive, program, &modelState, event)
	}

	t, err := tuner.New(tuner.Options{Config: cfg, Logger: log, Progress: progress, Fresh: opts.Fresh})
	if err != nil {
		return err
	}

	if interactive {
		program = tea.NewProgram(modelState)
		go func() {
			_, programErr = program.Run()
			close(done)
		}()
	}

	_, runErr := t.Run(ctx)

	if interactive {
		program.Send(tea.QuitMsg{})
		<-done
		if runErr == nil {
			runErr = programErr
		}
	} else {
		fmt.Fprintln(os.Stdout, modelState.View())
	}

	return runErr
}

func dispatchEvent(interactive bool, program *tea.Program, state *tui.Model, event any) {
	if interactive {
		if program != nil {
			program.Send(event)
		}
		return
	}

	updated, _ := state.Update(event)
	if m, ok := updated.(tui.Model); ok {
		*state = m
	}
}
