package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/jsamuelsen/resonance-bot/internal/domain"
)

// validate is the package-level validator instance. Field names are reported
// by their koanf keys so messages match the configuration files.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("koanf"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}

		return name
	})

	_ = v.RegisterValidation("notblank", validators.NotBlank)

	return v
}

// Validate checks the configuration. Every failure wraps domain.ErrConfig;
// the job must not start with an invalid configuration.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return formatValidationErrors(err)
	}

	if _, err := domain.ComputePeriod(c.Schedule.UpdateHours); err != nil {
		return err
	}

	if _, err := domain.LoadZone(c.Schedule.ReferenceZone); err != nil {
		return fmt.Errorf("%w: schedule.reference_zone: %w", domain.ErrConfig, err)
	}

	if _, err := domain.ParseConversionPolicy(c.Schedule.OnZoneError); err != nil {
		return err
	}

	return nil
}

// formatValidationErrors converts validator errors to a single ConfigError.
func formatValidationErrors(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return domain.NewConfigError("", err.Error())
	}

	errs := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		errs = append(errs, formatFieldError(e))
	}

	return domain.NewConfigError("", "validation failed:\n  "+strings.Join(errs, "\n  "))
}

// formatFieldError formats a single field validation error.
func formatFieldError(e validator.FieldError) string {
	field := formatFieldPath(e.Namespace())

	switch e.Tag() {
	case "required", "notblank":
		return field + " is required"
	case "required_if":
		return fmt.Sprintf("%s is required when %s", field, e.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "url":
		return field + " must be a valid URL"
	case "contains":
		return fmt.Sprintf("%s must contain %q", field, e.Param())
	default:
		return fmt.Sprintf("%s failed validation: %s", field, e.Tag())
	}
}

// formatFieldPath converts "Config.schedule.display_zones[0].id" to
// "schedule.display_zones[0].id".
func formatFieldPath(namespace string) string {
	_, rest, found := strings.Cut(namespace, ".")
	if !found {
		return strings.ToLower(namespace)
	}

	return rest
}
