package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tunesmith/tunesmith/internal/config"
)

func newMigrateCmd() *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "migrate <legacy-config>",
		Short: "Convert a legacy INI configuration to the YAML format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateConfigPath(args[0]); err != nil {
				return err
			}

			cfg, err := config.ParseConfig(args[0])
			if err != nil {
				return err
			}

			data, err := config.EncodeYAML(cfg)
			if err != nil {
				return err
			}

			target := outPath
			if target == "" {
				target = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + ".yaml"
			}

			if err := os.WriteFile(target, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", target, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", target)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "output", "o", "", "Destination path for the YAML config")

	return cmd
}
