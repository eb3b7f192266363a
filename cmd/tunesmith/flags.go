package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tunesmith/tunesmith/internal/config"
)

func validateConfigPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("config file is required")
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve config path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("config file does not exist: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("config path %s is a directory", abs)
	}

	return nil
}

// applyOverrides folds run flags into the parsed configuration. A negative
// budget means the flag was not given.
func applyOverrides(cfg *config.Config, opts runOptions) {
	if opts.Budget >= 0 {
		cfg.Budget = opts.Budget
	}
	if opts.Workers > 0 {
		cfg.Parallel.Workers = opts.Workers
	}
	if opts.Strategy != "" {
		cfg.Strategy.Name = opts.Strategy
	}
}
