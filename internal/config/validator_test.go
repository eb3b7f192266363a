package config

import (
	"testing"

	"github.com/stretchr/testify/require"

	tunesmitherrors "github.com/tunesmith/tunesmith/pkg/errors"
)

func baseConfig() *Config {
	return &Config{
		Version: "1.0",
		Name:    "unit",
		Space: SpaceConfig{
			Variables: "A * B",
			Values: map[string]ValueList{
				"A": {"1", "2"},
				"B": {"x", "y"},
			},
		},
		Commands: CommandsConfig{Test: "./bench %A% %B%"},
		Scoring: ScoringConfig{
			Objective: "min",
			Source:    "time",
			Repeat:    1,
			Aggregate: "average",
		},
		Parallel: ParallelConfig{Workers: 2, Slots: []string{"0", "1"}},
		Strategy: StrategyConfig{Name: "exhaustive"},
		Output:   OutputConfig{Log: "results.csv"},
		BaseDir:  "/tmp/unit",
	}
}

func TestValidateConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		mutate    func(cfg *Config)
		wantField string
	}{
		{
			name:   "valid config passes",
			mutate: func(cfg *Config) {},
		},
		{
			name:      "missing variable expression",
			mutate:    func(cfg *Config) { cfg.Space.Variables = "" },
			wantField: "config.space.variables",
		},
		{
			name:      "missing test command",
			mutate:    func(cfg *Config) { cfg.Commands.Test = "" },
			wantField: "config.commands.test",
		},
		{
			name:      "negative timeout",
			mutate:    func(cfg *Config) { cfg.Commands.Timeout = -1 },
			wantField: "config.commands.timeout",
		},
		{
			name:      "unknown source",
			mutate:    func(cfg *Config) { cfg.Scoring.Source = "energy" },
			wantField: "config.scoring.source",
		},
		{
			name:      "zero repeat",
			mutate:    func(cfg *Config) { cfg.Scoring.Repeat = 0 },
			wantField: "config.scoring.repeat",
		},
		{
			name:      "unknown aggregate",
			mutate:    func(cfg *Config) { cfg.Scoring.Aggregate = "geomean" },
			wantField: "config.scoring.aggregate",
		},
		{
			name:      "too many workers",
			mutate:    func(cfg *Config) { cfg.Parallel.Workers = 65 },
			wantField: "config.parallel.workers",
		},
		{
			name:      "negative budget",
			mutate:    func(cfg *Config) { cfg.Budget = -1 },
			wantField: "config.budget",
		},
		{
			name:      "bad version",
			mutate:    func(cfg *Config) { cfg.Version = "one" },
			wantField: "config.version",
		},
		{
			name:      "bad strategy name",
			mutate:    func(cfg *Config) { cfg.Strategy.Name = "Not A Name" },
			wantField: "config.strategy.name",
		},
		{
			name:      "slot count mismatch",
			mutate:    func(cfg *Config) { cfg.Parallel.Slots = []string{"0"} },
			wantField: "parallel.slots",
		},
		{
			name:      "duplicate slot names",
			mutate:    func(cfg *Config) { cfg.Parallel.Slots = []string{"gpu", "gpu"} },
			wantField: "parallel.slots",
		},
		{
			name:      "empty slot name",
			mutate:    func(cfg *Config) { cfg.Parallel.Slots = []string{"0", ""} },
			wantField: "parallel.slots",
		},
		{
			name:      "invalid variable name",
			mutate:    func(cfg *Config) { cfg.Space.Values["1bad"] = ValueList{"1"} },
			wantField: "space.values",
		},
		{
			name:      "empty value list",
			mutate:    func(cfg *Config) { cfg.Space.Values["A"] = ValueList{} },
			wantField: "space.values.A",
		},
		{
			name:      "empty value entry",
			mutate:    func(cfg *Config) { cfg.Space.Values["B"] = ValueList{"x", ""} },
			wantField: "space.values.B",
		},
		{
			name:      "empty env name",
			mutate:    func(cfg *Config) { cfg.Commands.Env = map[string]string{" ": "1"} },
			wantField: "commands.env",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := baseConfig()
			tt.mutate(cfg)

			err := ValidateConfig(cfg)
			if tt.wantField == "" {
				require.NoError(t, err)
				return
			}

			require.Error(t, err)
			var cfgErr *tunesmitherrors.ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			require.Contains(t, cfgErr.Field, tt.wantField)
		})
	}
}

func TestValidateConfigNil(t *testing.T) {
	t.Parallel()

	err := ValidateConfig(nil)
	require.Error(t, err)

	var cfgErr *tunesmitherrors.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
}
