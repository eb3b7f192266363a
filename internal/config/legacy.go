package config

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/ini.v1"

	tunesmitherrors "github.com/tunesmith/tunesmith/pkg/errors"
)

// legacySections are the five sections every legacy INI configuration must
// carry.
var legacySections = []string{"variables", "values", "testing", "scoring", "output"}

// ParseLegacy reads a legacy INI configuration and maps it onto the YAML
// document model. The legacy dialect predates parallel execution and
// strategies, so those keep their defaults.
//
// The scoring mapping follows the legacy `optimal` key: `min_time` and
// `max_time` time the test run, while bare `min` and `max` read the score
// from the test's output. `repeat = N,agg` accepts avg, min, max and med;
// a bare count aggregates by minimum.
func ParseLegacy(path string) (*Config, error) {
	f, err := ini.Load(path)
	if err != nil {
		return nil, tunesmitherrors.NewParseError(path, 0, err)
	}

	for _, name := range legacySections {
		if _, err := f.GetSection(name); err != nil {
			return nil, tunesmitherrors.NewConfigurationError(name, fmt.Sprintf("legacy configuration is missing the [%s] section", name), nil)
		}
	}

	cfg := &Config{}

	vars := f.Section("variables")
	if !vars.HasKey("variables") {
		return nil, tunesmitherrors.NewConfigurationError("variables.variables", "legacy configuration does not declare its variable expression", nil)
	}
	cfg.Space.Variables = vars.Key("variables").String()

	cfg.Space.Values = make(map[string]ValueList)
	for _, key := range f.Section("values").Keys() {
		parts := strings.Split(key.Value(), ",")
		list := make(ValueList, 0, len(parts))
		for _, part := range parts {
			list = append(list, strings.TrimSpace(part))
		}
		cfg.Space.Values[key.Name()] = list
	}

	testing := f.Section("testing")
	if !testing.HasKey("test") {
		return nil, tunesmitherrors.NewConfigurationError("testing.test", "legacy configuration does not declare a test command", nil)
	}
	cfg.Commands.Compile = testing.Key("compile").String()
	cfg.Commands.Test = testing.Key("test").String()
	cfg.Commands.Clean = testing.Key("clean").String()

	if err := mapLegacyScoring(f.Section("scoring"), &cfg.Scoring); err != nil {
		return nil, err
	}

	output := f.Section("output")
	cfg.Output.Log = output.Key("log").String()
	cfg.Output.Script = output.Key("script").String()
	cfg.Output.Importance = output.Key("importance").String()

	return cfg, nil
}

func mapLegacyScoring(sec *ini.Section, scoring *ScoringConfig) error {
	scoring.Objective = "min"
	scoring.Source = "time"
	scoring.Repeat = 1
	scoring.Aggregate = "minimum"

	if sec.HasKey("optimal") {
		optimal := strings.ToLower(strings.TrimSpace(sec.Key("optimal").String()))
		switch optimal {
		case "min":
			scoring.Objective, scoring.Source = "min", "output"
		case "max":
			scoring.Objective, scoring.Source = "max", "output"
		case "min_time":
			scoring.Objective, scoring.Source = "min", "time"
		case "max_time":
			scoring.Objective, scoring.Source = "max", "time"
		default:
			return tunesmitherrors.NewConfigurationError("scoring.optimal", fmt.Sprintf("invalid value %q, expected min, max, min_time or max_time", optimal), nil)
		}
	}

	if sec.HasKey("repeat") {
		raw := sec.Key("repeat").String()
		count, agg, hasAgg := strings.Cut(raw, ",")

		n, err := strconv.Atoi(strings.TrimSpace(count))
		if err != nil || n < 1 {
			return tunesmitherrors.NewConfigurationError("scoring.repeat", fmt.Sprintf("invalid repetition count %q", strings.TrimSpace(count)), nil)
		}
		scoring.Repeat = n

		if hasAgg {
			switch strings.ToLower(strings.TrimSpace(agg)) {
			case "avg":
				scoring.Aggregate = "average"
			case "min":
				scoring.Aggregate = "minimum"
			case "max":
				scoring.Aggregate = "maximum"
			case "med":
				scoring.Aggregate = "median"
			default:
				return tunesmitherrors.NewConfigurationError("scoring.repeat", fmt.Sprintf("invalid aggregation %q, expected avg, min, max or med", strings.TrimSpace(agg)), nil)
			}
		}
	}

	return nil
}
