package config

import (
	"testing"

	"github.com/stretchr/testify/require"

	tunesmitherrors "github.com/tunesmith/tunesmith/pkg/errors"
)

const legacyConf = `[variables]
variables = BLOCK * UNROLL

[values]
BLOCK = 8, 16, 32
UNROLL = 1, 2

[testing]
compile = gcc -DBLOCK=%BLOCK% -DUNROLL=%UNROLL% -o gemm_%%ID%% gemm.c
test = ./gemm_%%ID%%
clean = rm -f gemm_%%ID%%

[scoring]
optimal = min_time
repeat = 3,avg

[output]
log = results.csv
script = run.log
importance = importance.csv
`

func TestParseConfigDispatchesLegacyExtensions(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"tune.conf", "tune.ini"} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			cfg, err := ParseConfig(writeConfig(t, name, legacyConf))
			require.NoError(t, err)

			require.Equal(t, "BLOCK * UNROLL", cfg.Space.Variables)
			require.Equal(t, ValueList{"8", "16", "32"}, cfg.Space.Values["BLOCK"])
			require.Equal(t, ValueList{"1", "2"}, cfg.Space.Values["UNROLL"])

			require.Equal(t, "./gemm_%%ID%%", cfg.Commands.Test)
			require.Equal(t, "rm -f gemm_%%ID%%", cfg.Commands.Clean)

			require.Equal(t, "min", cfg.Scoring.Objective)
			require.Equal(t, "time", cfg.Scoring.Source)
			require.Equal(t, 3, cfg.Scoring.Repeat)
			require.Equal(t, "average", cfg.Scoring.Aggregate)

			require.Equal(t, "results.csv", cfg.Output.Log)
			require.Equal(t, "run.log", cfg.Output.Script)
			require.Equal(t, "importance.csv", cfg.Output.Importance)

			// The legacy dialect predates these; defaults apply.
			require.Equal(t, 1, cfg.Parallel.Workers)
			require.Equal(t, "exhaustive", cfg.Strategy.Name)
			require.Zero(t, cfg.Budget)
		})
	}
}

func TestMapLegacyScoring(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		scoring       string
		wantObjective string
		wantSource    string
		wantRepeat    int
		wantAggregate string
		wantErr       bool
	}{
		{
			name:          "empty section keeps defaults",
			scoring:       "",
			wantObjective: "min",
			wantSource:    "time",
			wantRepeat:    1,
			wantAggregate: "minimum",
		},
		{
			name:          "bare min reads score from output",
			scoring:       "optimal = min",
			wantObjective: "min",
			wantSource:    "output",
			wantRepeat:    1,
			wantAggregate: "minimum",
		},
		{
			name:          "bare max reads score from output",
			scoring:       "optimal = max",
			wantObjective: "max",
			wantSource:    "output",
			wantRepeat:    1,
			wantAggregate: "minimum",
		},
		{
			name:          "max_time times the run",
			scoring:       "optimal = max_time",
			wantObjective: "max",
			wantSource:    "time",
			wantRepeat:    1,
			wantAggregate: "minimum",
		},
		{
			name:          "repeat without aggregation keeps minimum",
			scoring:       "repeat = 5",
			wantObjective: "min",
			wantSource:    "time",
			wantRepeat:    5,
			wantAggregate: "minimum",
		},
		{
			name:          "repeat with med",
			scoring:       "repeat = 7, med",
			wantObjective: "min",
			wantSource:    "time",
			wantRepeat:    7,
			wantAggregate: "median",
		},
		{
			name:    "invalid optimal",
			scoring: "optimal = fastest",
			wantErr: true,
		},
		{
			name:    "zero repeat",
			scoring: "repeat = 0",
			wantErr: true,
		},
		{
			name:    "non-numeric repeat",
			scoring: "repeat = many",
			wantErr: true,
		},
		{
			name:    "unknown aggregation",
			scoring: "repeat = 3, geomean",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			doc := "[variables]\nvariables = N\n\n[values]\nN = 1, 2\n\n[testing]\ntest = ./bench\n\n[scoring]\n" +
				tt.scoring + "\n\n[output]\nlog = out.csv\n"

			cfg, err := ParseLegacy(writeConfig(t, "tune.conf", doc))
			if tt.wantErr {
				require.Error(t, err)
				var cfgErr *tunesmitherrors.ConfigurationError
				require.ErrorAs(t, err, &cfgErr)
				return
			}
			require.NoError(t, err)

			require.Equal(t, tt.wantObjective, cfg.Scoring.Objective)
			require.Equal(t, tt.wantSource, cfg.Scoring.Source)
			require.Equal(t, tt.wantRepeat, cfg.Scoring.Repeat)
			require.Equal(t, tt.wantAggregate, cfg.Scoring.Aggregate)
		})
	}
}

func TestParseLegacyMissingSection(t *testing.T) {
	t.Parallel()

	doc := "[variables]\nvariables = N\n\n[values]\nN = 1\n\n[testing]\ntest = ./bench\n\n[scoring]\n"

	_, err := ParseLegacy(writeConfig(t, "tune.conf", doc))
	require.Error(t, err)

	var cfgErr *tunesmitherrors.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	require.Contains(t, err.Error(), "output")
}

func TestParseLegacyMissingTestCommand(t *testing.T) {
	t.Parallel()

	doc := "[variables]\nvariables = N\n\n[values]\nN = 1\n\n[testing]\ncompile = make\n\n[scoring]\n\n[output]\n"

	_, err := ParseLegacy(writeConfig(t, "tune.conf", doc))
	require.Error(t, err)

	var cfgErr *tunesmitherrors.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	require.Equal(t, "testing.test", cfgErr.Field)
}

func TestParseLegacyMissingVariableExpression(t *testing.T) {
	t.Parallel()

	doc := "[variables]\n\n[values]\nN = 1\n\n[testing]\ntest = ./bench\n\n[scoring]\n\n[output]\n"

	_, err := ParseLegacy(writeConfig(t, "tune.conf", doc))
	require.Error(t, err)

	var cfgErr *tunesmitherrors.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	require.Equal(t, "variables.variables", cfgErr.Field)
}

func TestMigrateLegacyRoundTrip(t *testing.T) {
	t.Parallel()

	cfg, err := ParseConfig(writeConfig(t, "tune.conf", legacyConf))
	require.NoError(t, err)

	data, err := EncodeYAML(cfg)
	require.NoError(t, err)

	migrated, err := ParseConfig(writeConfig(t, "tune.yaml", string(data)))
	require.NoError(t, err)

	require.Equal(t, cfg.Space.Variables, migrated.Space.Variables)
	require.Equal(t, cfg.Space.Values, migrated.Space.Values)
	require.Equal(t, cfg.Commands.Compile, migrated.Commands.Compile)
	require.Equal(t, cfg.Commands.Test, migrated.Commands.Test)
	require.Equal(t, cfg.Commands.Clean, migrated.Commands.Clean)
	require.Equal(t, cfg.Scoring, migrated.Scoring)
	require.Equal(t, cfg.Output, migrated.Output)
}
