package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a validation error with context
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (ve ValidationError) Error() string {
	if ve.Field == "" {
		return ve.Message
	}
	return fmt.Sprintf("field '%s': %s", ve.Field, ve.Message)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for multiple validation errors
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "no validation errors"
	}
	if len(ve) == 1 {
		return ve[0].Error()
	}

	var messages []string
	for _, err := range ve {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(messages, "; "))
}

// HasErrors returns true if there are any validation errors
func (ve ValidationErrors) HasErrors() bool {
	return len(ve) > 0
}

// Add adds a new validation error
func (ve *ValidationErrors) Add(field, message string, value ...interface{}) {
	var val interface{}
	if len(value) > 0 {
		val = value[0]
	}
	*ve = append(*ve, ValidationError{
		Field:   field,
		Value:   val,
		Message: message,
	})
}

// ValidateRequired checks if a required string field is not empty
func ValidateRequired(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return ValidationError{
			Field:   field,
			Value:   value,
			Message: "is required",
		}
	}
	return nil
}

// ValidateOneOf checks if a value is in a list of allowed values
func ValidateOneOf(field, value string, allowed []string) error {
	for _, allowedValue := range allowed {
		if value == allowedValue {
			return nil
		}
	}
	return ValidationError{
		Field:   field,
		Value:   value,
		Message: fmt.Sprintf("must be one of: %s", strings.Join(allowed, ", ")),
	}
}

// Validate checks the loaded configuration.
func (c DashtrackConfig) Validate() error {
	var errs ValidationErrors

	add := func(err error) {
		if ve, ok := err.(ValidationError); ok {
			errs = append(errs, ve)
		}
	}

	add(ValidateOneOf("runtime", c.Runtime, []string{"docker", "podman"}))
	add(ValidateRequired("store.containerName", c.Store.ContainerName))
	add(ValidateRequired("store.image", c.Store.Image))
	add(ValidateRequired("store.host", c.Store.Host))

	if c.Store.Port < 0 || c.Store.Port > 65535 {
		errs.Add("store.port", "must be between 0 and 65535", c.Store.Port)
	}
	if c.Store.HealthTimeout <= 0 {
		errs.Add("store.healthTimeout", "must be positive", c.Store.HealthTimeout)
	}
	if c.Store.DialTimeout <= 0 {
		errs.Add("store.dialTimeout", "must be positive", c.Store.DialTimeout)
	}

	if c.Workers.MaxWorkers <= 0 {
		errs.Add("workers.maxWorkers", "must be positive", c.Workers.MaxWorkers)
	}
	if c.Workers.Workers < 0 {
		errs.Add("workers.workers", "must not be negative", c.Workers.Workers)
	}
	if c.Workers.Workers > c.Workers.MaxWorkers {
		errs.Add("workers.workers", fmt.Sprintf("must not exceed workers.maxWorkers (%d)", c.Workers.MaxWorkers), c.Workers.Workers)
	}

	if c.Logging.Level != "" {
		add(ValidateOneOf("logging.level", strings.ToLower(c.Logging.Level), []string{"debug", "info", "warn", "warning", "error"}))
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}
