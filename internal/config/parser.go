package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	tunesmitherrors "github.com/tunesmith/tunesmith/pkg/errors"
)

var yamlLineRegex = regexp.MustCompile(`line (\d+)`)

// ParseConfig loads a tuning configuration from disk, applies defaults, and
// validates it. Files ending in .conf or .ini are read as legacy INI
// documents; everything else is YAML.
func ParseConfig(path string) (*Config, error) {
	var cfg *Config
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".conf", ".ini":
		cfg, err = ParseLegacy(path)
	default:
		cfg, err = parseYAML(path)
	}
	if err != nil {
		return nil, err
	}

	if err := normalize(cfg, path); err != nil {
		return nil, err
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func parseYAML(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, tunesmitherrors.NewParseError(path, 0, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, tunesmitherrors.NewParseError(path, extractLine(err), err)
	}

	return &cfg, nil
}

// normalize fills the documented defaults so the rest of the program never
// re-derives them, and records where the file lives.
func normalize(cfg *Config, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return tunesmitherrors.NewParseError(path, 0, err)
	}
	cfg.BaseDir = filepath.Dir(abs)

	if cfg.Parallel.Workers == 0 {
		cfg.Parallel.Workers = 1
	}
	if cfg.Strategy.Name == "" {
		cfg.Strategy.Name = "exhaustive"
	}
	if cfg.Output.Log == "" {
		cfg.Output.Log = "results.csv"
	}

	return nil
}

// EncodeYAML renders a configuration as a YAML document, used by the
// migrate command to rewrite legacy files.
func EncodeYAML(cfg *Config) ([]byte, error) {
	if cfg == nil {
		return nil, tunesmitherrors.NewConfigurationError("config", "configuration is nil", nil)
	}
	return yaml.Marshal(cfg)
}

func extractLine(err error) int {
	if err == nil {
		return 0
	}

	matches := yamlLineRegex.FindStringSubmatch(err.Error())
	if len(matches) != 2 {
		return 0
	}

	var line int
	_, scanErr := fmt.Sscanf(matches[1], "%d", &line)
	if scanErr != nil {
		return 0
	}

	return line
}
