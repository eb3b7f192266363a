package errors

import (
	"fmt"
)

// ParseError represents a config file parsing failure with optional line metadata.
type ParseError struct {
	Path    string
	Line    int
	Message string
	Err     error
}

// NewParseError constructs a ParseError.
func NewParseError(path string, line int, err error) error {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &ParseError{Path: path, Line: line, Message: message, Err: err}
}

func (e *ParseError) Error() string {
	if e == nil {
		return ""
	}

	if e.Line > 0 {
		return fmt.Sprintf("parse error: %s:%d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error: %s: %s", e.Path, e.Message)
}

// Unwrap exposes the underlying error.
func (e *ParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ConfigurationError captures semantic problems in the tuning setup: a
// malformed space expression, a variable with no values, an unresolved
// command template token. These are always fatal before any process spawns.
type ConfigurationError struct {
	Field   string
	Message string
	Err     error
}

// NewConfigurationError constructs a ConfigurationError.
func NewConfigurationError(field, message string, err error) error {
	return &ConfigurationError{Field: field, Message: message, Err: err}
}

func (e *ConfigurationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Field != "" {
		return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap exposes the underlying error.
func (e *ConfigurationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// EvaluationError represents a runtime failure while evaluating one assignment.
type EvaluationError struct {
	Assignment string
	Stage      string
	Err        error
}

// NewEvaluationError constructs an EvaluationError for the given stage.
func NewEvaluationError(assignment, stage string, err error) error {
	return &EvaluationError{Assignment: assignment, Stage: stage, Err: err}
}

func (e *EvaluationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Assignment != "" {
		return fmt.Sprintf("evaluation error [%s] during %s: %v", e.Assignment, e.Stage, e.Err)
	}
	return fmt.Sprintf("evaluation error during %s: %v", e.Stage, e.Err)
}

// Unwrap exposes the root error.
func (e *EvaluationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// StrategyError indicates issues within strategy registration or lookup.
type StrategyError struct {
	Strategy string
	Message  string
	Err      error
}

// NewStrategyError constructs a StrategyError for the given strategy name.
func NewStrategyError(strategy string, err error) error {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &StrategyError{Strategy: strategy, Message: message, Err: err}
}

func (e *StrategyError) Error() string {
	if e == nil {
		return ""
	}
	if e.Strategy != "" {
		return fmt.Sprintf("strategy error [%s]: %s", e.Strategy, e.Message)
	}
	return fmt.Sprintf("strategy error: %s", e.Message)
}

// Unwrap exposes the underlying error.
func (e *StrategyError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// StoreError represents a result log I/O failure. The log is the sole record
// of completed work, so a failed append aborts the run.
type StoreError struct {
	Path string
	Err  error
}

// NewStoreError constructs a StoreError.
func NewStoreError(path string, err error) error {
	return &StoreError{Path: path, Err: err}
}

func (e *StoreError) Error() string {
	if e == nil {
		return ""
	}
	if e.Path != "" {
		return fmt.Sprintf("result store error: %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("result store error: %v", e.Err)
}

// Unwrap exposes the underlying error.
func (e *StoreError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
