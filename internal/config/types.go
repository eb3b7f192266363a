package config

import (
	"fmt"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents a full tuning configuration document.
type Config struct {
	Version string `yaml:"version,omitempty" validate:"omitempty,config_version"`
	Name    string `yaml:"name,omitempty" validate:"omitempty,min=1,max=100"`

	Space    SpaceConfig    `yaml:"space"`
	Commands CommandsConfig `yaml:"commands"`
	Scoring  ScoringConfig  `yaml:"scoring"`
	Parallel ParallelConfig `yaml:"parallel,omitempty"`
	Strategy StrategyConfig `yaml:"strategy,omitempty"`
	Budget   int64          `yaml:"budget,omitempty" validate:"omitempty,min=0"`
	Output   OutputConfig   `yaml:"output,omitempty"`

	// BaseDir is the directory holding the config file. Relative paths in
	// the document resolve against it, never against the process cwd.
	BaseDir string `yaml:"-"`
}

// SpaceConfig declares the configuration space: a variable expression plus
// the value table backing its bare names.
type SpaceConfig struct {
	Variables string               `yaml:"variables" validate:"required"`
	Values    map[string]ValueList `yaml:"values,omitempty"`
}

// ValueList is an ordered list of candidate values for one variable.
// Entries keep their literal YAML spelling, so 08, 0.50 and ON survive
// exactly as written into command lines.
type ValueList []string

// UnmarshalYAML decodes a value list without coercing scalars.
func (v *ValueList) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.SequenceNode {
		return fmt.Errorf("variable values must be a list")
	}
	out := make([]string, 0, len(value.Content))
	for _, item := range value.Content {
		if item.Kind != yaml.ScalarNode {
			return fmt.Errorf("variable values must be scalars")
		}
		out = append(out, item.Value)
	}
	*v = out
	return nil
}

// CommandsConfig holds the shell command templates run per evaluation.
type CommandsConfig struct {
	Compile string            `yaml:"compile,omitempty"`
	Test    string            `yaml:"test" validate:"required,min=1"`
	Clean   string            `yaml:"clean,omitempty"`
	Shell   string            `yaml:"shell,omitempty"`
	WorkDir string            `yaml:"workdir,omitempty"`
	Env     map[string]string `yaml:"env,omitempty"`
	// Timeout bounds each test repetition, in seconds. Zero means none.
	Timeout int `yaml:"timeout,omitempty" validate:"omitempty,min=0,max=360000"`
}

// ScoringConfig controls how repetitions are scored and aggregated.
type ScoringConfig struct {
	Objective string `yaml:"objective" validate:"required,oneof=min max"`
	Source    string `yaml:"source" validate:"required,oneof=time output"`
	Repeat    int    `yaml:"repeat" validate:"required,min=1,max=1000"`
	Aggregate string `yaml:"aggregate" validate:"required,oneof=average minimum maximum median"`
}

// ParallelConfig bounds concurrent evaluations.
type ParallelConfig struct {
	Workers int `yaml:"workers,omitempty" validate:"omitempty,min=1,max=64"`
	// Slots names the execution slots handed to evaluations (device IDs,
	// typically). Length must equal Workers when given.
	Slots []string `yaml:"slots,omitempty"`
}

// StrategyConfig selects and seeds the search strategy.
type StrategyConfig struct {
	Name string `yaml:"name,omitempty" validate:"omitempty,strategy_name"`
	Seed int64  `yaml:"seed,omitempty"`
}

// OutputConfig names the files a run writes.
type OutputConfig struct {
	Log        string `yaml:"log,omitempty"`
	Importance string `yaml:"importance,omitempty"`
	Script     string `yaml:"script,omitempty"`
}

// ResolvePath resolves a config-relative path against the config file's
// directory. Absolute paths and the empty string pass through.
func (c *Config) ResolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.BaseDir, p)
}

// WorkDir returns the absolute working directory for spawned commands.
func (c *Config) WorkDir() string {
	if c.Commands.WorkDir == "" {
		return c.BaseDir
	}
	return c.ResolvePath(c.Commands.WorkDir)
}

// LogPath returns the absolute path of the result log.
func (c *Config) LogPath() string {
	return c.ResolvePath(c.Output.Log)
}

// ImportancePath returns the absolute path of the importance sweep log, or
// empty when the sweep is disabled.
func (c *Config) ImportancePath() string {
	return c.ResolvePath(c.Output.Importance)
}

// ScriptPath returns the absolute path of the console transcript, or empty
// when none is configured.
func (c *Config) ScriptPath() string {
	return c.ResolvePath(c.Output.Script)
}
