package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ConfigurationError represents a structured error that occurs during configuration loading
type ConfigurationError struct {
	FilePath    string   // Full path to the file that caused the error
	FileName    string   // Base name of the file
	ErrorType   string   // Type of error (parse, validation, io)
	Message     string   // Human-readable error message
	Suggestions []string // Actionable suggestions to fix the error
	Err         error
}

// Error implements the error interface
func (ce *ConfigurationError) Error() string {
	if ce.Err != nil {
		return fmt.Sprintf("[%s] %s: %s: %v", ce.ErrorType, ce.FileName, ce.Message, ce.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", ce.ErrorType, ce.FileName, ce.Message)
}

func (ce *ConfigurationError) Unwrap() error {
	return ce.Err
}

// DetailedError returns a detailed error message with all context
func (ce *ConfigurationError) DetailedError() string {
	var parts []string

	parts = append(parts, fmt.Sprintf("Configuration Error in %s", ce.FileName))
	parts = append(parts, fmt.Sprintf("  File: %s", ce.FilePath))
	parts = append(parts, fmt.Sprintf("  Type: %s", ce.ErrorType))
	parts = append(parts, fmt.Sprintf("  Error: %s", ce.Message))

	if ce.Err != nil {
		parts = append(parts, fmt.Sprintf("  Details: %v", ce.Err))
	}

	if len(ce.Suggestions) > 0 {
		parts = append(parts, "  Suggestions:")
		for _, suggestion := range ce.Suggestions {
			parts = append(parts, fmt.Sprintf("    - %s", suggestion))
		}
	}

	return strings.Join(parts, "\n")
}

// NewConfigurationError creates a new configuration error
func NewConfigurationError(filePath, errorType, message string, err error) *ConfigurationError {
	ce := &ConfigurationError{
		FilePath:  filePath,
		FileName:  filepath.Base(filePath),
		ErrorType: errorType,
		Message:   message,
		Err:       err,
	}

	switch errorType {
	case "parse":
		ce.Suggestions = []string{"Check the YAML syntax and indentation", "Durations use Go syntax, for example 30s or 1m"}
	case "validation":
		ce.Suggestions = []string{"Remove the offending keys to fall back to the defaults"}
	}
	return ce
}

// IsConfigurationError checks if an error is or wraps a ConfigurationError.
func IsConfigurationError(err error) bool {
	var target *ConfigurationError
	return errors.As(err, &target)
}
