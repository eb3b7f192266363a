package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

const demoConfig = `version: "1.0"
name: demo
space:
  variables: "BLOCK * UNROLL"
  values:
    BLOCK: [8, 16, 32]
    UNROLL: [1, 2, 4]
commands:
  test: "./workload.sh %BLOCK% %UNROLL%"
scoring:
  objective: min
  source: output
  repeat: 1
  aggregate: minimum
parallel:
  workers: 2
output:
  log: results.csv
  importance: importance.csv
`

const demoWorkload = `#!/bin/sh
# Stands in for a kernel whose cost depends on its launch parameters.
BLOCK=$1
UNROLL=$2
awk "BEGIN { print ($BLOCK - 20) * ($BLOCK - 20) / 10 + ($UNROLL - 3) * ($UNROLL - 3) }"
`

func newDemoCmd(root *rootFlags) *cobra.Command {
	var writeOnly bool

	cmd := &cobra.Command{
		Use:   "demo [dir]",
		Short: "Write a runnable sample project and tune it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "tunesmith-demo"
			if len(args) == 1 {
				dir = args[0]
			}

			cfgPath, err := writeDemo(dir)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Demo project written to %s\n", dir)

			if writeOnly {
				return nil
			}

			// A partial budget leaves the importance sweep something to probe.
			return runCmdRunner(runOptions{
				ConfigPath: cfgPath,
				Budget:     6,
				Verbose:    root.verbose,
				Plain:      root.plain,
			})
		},
	}

	cmd.Flags().BoolVar(&writeOnly, "no-run", false, "Only write the sample files")

	return cmd
}

func writeDemo(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	cfgPath := filepath.Join(dir, "demo.yaml")
	if err := os.WriteFile(cfgPath, []byte(demoConfig), 0o644); err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(dir, "workload.sh"), []byte(demoWorkload), 0o755); err != nil {
		return "", err
	}

	return cfgPath, nil
}
