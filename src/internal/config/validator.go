package config

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ValidateConfig validates the entire configuration and returns all validation errors
func (c *Config) ValidateConfig() error {
	var validationErrors ValidationErrors

	sections := []struct {
		name  string
		value any
		isNil bool
	}{
		{"general", c.General, c.General == nil},
		{"zerotier", c.ZeroTier, c.ZeroTier == nil},
		{"api", c.API, c.API == nil},
	}
	for _, s := range sections {
		if s.isNil {
			validationErrors = append(validationErrors, ValidationError{
				FieldPath: s.name,
				Message:   fmt.Sprintf("configuration must contain '%s' section", s.name),
			})
			continue
		}
		if err := validate.Struct(s.value); err != nil {
			validationErrors = append(validationErrors, convertValidatorErrors(err, s.name, "")...)
		}
	}

	if c.General != nil && c.General.ProposedConfig != "" && c.General.ProposedConfig == c.General.EffectiveConfig {
		validationErrors = append(validationErrors, ValidationError{
			FieldPath: "general.proposed_config",
			Message:   "must differ from effective_config",
		})
	}

	if len(validationErrors) > 0 {
		return validationErrors
	}

	return nil
}

// ValidateStruct checks s against its validate tags. itemName labels the
// errors, e.g. with the interface being configured.
func ValidateStruct(s any, itemName string) ValidationErrors {
	if err := validate.Struct(s); err != nil {
		return convertValidatorErrors(err, "", itemName)
	}
	return nil
}

// convertValidatorErrors converts go-playground/validator errors to our ValidationError format
func convertValidatorErrors(err error, fieldPrefix string, itemName string) ValidationErrors {
	var validationErrors ValidationErrors

	var validatorErrs validator.ValidationErrors
	if errors.As(err, &validatorErrs) {
		for _, e := range validatorErrs {
			fieldPath := fieldPrefix
			if e.Field() != "" {
				// e.Field() returns the TOML tag name because we registered TagNameFunc
				fieldName := e.Field()

				if fieldPrefix != "" {
					fieldPath = fieldPrefix + "." + fieldName
				} else {
					fieldPath = fieldName
				}
			}

			validationErrors = append(validationErrors, ValidationError{
				ItemName:  itemName,
				FieldPath: fieldPath,
				Message:   getValidationMessage(e),
			})
		}
	}

	return validationErrors
}
