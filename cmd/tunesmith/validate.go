package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tunesmith/tunesmith/internal/config"
	"github.com/tunesmith/tunesmith/internal/tuner"
)

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <config-file>",
		Short: "Check a config file and report the size of its search space",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateConfigPath(args[0]); err != nil {
				return err
			}

			cfg, err := config.ParseConfig(args[0])
			if err != nil {
				return err
			}

			t, err := tuner.New(tuner.Options{Config: cfg})
			if err != nil {
				return err
			}

			v, err := t.Validate()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Configuration: %s\n", cfg.Name)
			fmt.Fprintf(out, "Space: %s\n", cfg.Space.Variables)
			for _, variable := range v.Variables {
				fmt.Fprintf(out, "  %s: %s\n", variable.Name, strings.Join(variable.Values, ", "))
			}
			fmt.Fprintf(out, "Combinations: %d\n", v.Combinations)
			fmt.Fprintf(out, "Planned tests: %d (repeat %d, %s)\n", v.PlannedTests, cfg.Scoring.Repeat, cfg.Scoring.Aggregate)
			if len(v.Tokens) > 0 {
				fmt.Fprintf(out, "Command tokens: %s\n", strings.Join(v.Tokens, ", "))
			}
			fmt.Fprintf(out, "Result log: %s\n", cfg.LogPath())
			fmt.Fprintln(out, "Configuration OK")
			return nil
		},
	}

	return cmd
}
