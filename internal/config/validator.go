package config

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	tunesmitherrors "github.com/tunesmith/tunesmith/pkg/errors"
)

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate

	versionPattern      = regexp.MustCompile(`^\d+(?:\.\d+){0,2}$`)
	strategyNamePattern = regexp.MustCompile(`^[a-z0-9_-]+$`)
	variableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()

		_ = v.RegisterValidation("config_version", func(fl validator.FieldLevel) bool {
			return versionPattern.MatchString(fl.Field().String())
		})

		_ = v.RegisterValidation("strategy_name", func(fl validator.FieldLevel) bool {
			return strategyNamePattern.MatchString(fl.Field().String())
		})

		validateInst = v
	})

	return validateInst
}

// ValidateConfig performs schema and cross-field validation on the
// configuration.
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return tunesmitherrors.NewConfigurationError("config", "configuration is nil", nil)
	}

	v := validatorInstance()
	if err := v.Struct(cfg); err != nil {
		return convertValidationError(err)
	}

	for name, values := range cfg.Space.Values {
		if !variableNamePattern.MatchString(name) {
			return tunesmitherrors.NewConfigurationError("space.values", fmt.Sprintf("invalid variable name %q", name), nil)
		}
		if len(values) == 0 {
			return tunesmitherrors.NewConfigurationError("space.values."+name, "at least one value is required", nil)
		}
		for _, value := range values {
			if value == "" {
				return tunesmitherrors.NewConfigurationError("space.values."+name, "values must not be empty", nil)
			}
		}
	}

	for key := range cfg.Commands.Env {
		if strings.TrimSpace(key) == "" {
			return tunesmitherrors.NewConfigurationError("commands.env", "environment variable names must not be empty", nil)
		}
	}

	if len(cfg.Parallel.Slots) > 0 {
		if len(cfg.Parallel.Slots) != cfg.Parallel.Workers {
			return tunesmitherrors.NewConfigurationError("parallel.slots", fmt.Sprintf("%d slots declared for %d workers", len(cfg.Parallel.Slots), cfg.Parallel.Workers), nil)
		}
		seen := make(map[string]bool, len(cfg.Parallel.Slots))
		for _, slot := range cfg.Parallel.Slots {
			if slot == "" {
				return tunesmitherrors.NewConfigurationError("parallel.slots", "slot names must not be empty", nil)
			}
			if seen[slot] {
				return tunesmitherrors.NewConfigurationError("parallel.slots", fmt.Sprintf("duplicate slot name %q", slot), nil)
			}
			seen[slot] = true
		}
	}

	return nil
}

func convertValidationError(err error) error {
	if err == nil {
		return nil
	}

	if ves, ok := err.(validator.ValidationErrors); ok {
		ve := ves[0]
		field := yamlishFieldName(ve)
		msg := fmt.Sprintf("%s failed validation for tag '%s'", field, ve.Tag())
		return tunesmitherrors.NewConfigurationError(field, msg, err)
	}

	return tunesmitherrors.NewConfigurationError("config", err.Error(), err)
}

func yamlishFieldName(fe validator.FieldError) string {
	ns := fe.StructNamespace()
	parts := strings.Split(ns, ".")
	var lowered []string
	for _, part := range parts {
		lowered = append(lowered, strings.ToLower(part))
	}
	return strings.Join(lowered, ".")
}
