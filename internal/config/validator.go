package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/beiklive/mytoolmodule/internal/i18n"
	"github.com/beiklive/mytoolmodule/internal/logging"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "logging.level")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ValidColorModes returns the accepted logging.color values
func ValidColorModes() []string {
	return []string{"always", "auto", "never"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError
	errors = append(errors, c.validateLogging()...)
	errors = append(errors, c.validateI18n()...)
	return errors
}

// validateLogging validates the LoggingConfig
func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(logging.ValidLevels(), ", ")),
		})
	}

	if _, err := logging.ParseOutputMode(c.Logging.Output); err != nil {
		errors = append(errors, ValidationError{
			Field:   "logging.output",
			Value:   c.Logging.Output,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(logging.ValidOutputModes(), ", ")),
		})
	}

	if strings.TrimSpace(c.Logging.Dir) == "" {
		errors = append(errors, ValidationError{
			Field:   "logging.dir",
			Value:   c.Logging.Dir,
			Message: "must not be empty",
		})
	}

	if c.Logging.MaxSizeMB < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: "must be non-negative",
		})
	}

	// Reasonable upper bound for log file size
	const maxLogSizeMB = 1000
	if c.Logging.MaxSizeMB > maxLogSizeMB {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: fmt.Sprintf("exceeds maximum of %dMB", maxLogSizeMB),
		})
	}

	if c.Logging.MaxSizeBytes < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_bytes",
			Value:   c.Logging.MaxSizeBytes,
			Message: "must be non-negative",
		})
	}

	if c.Logging.Color != "" && !slices.Contains(ValidColorModes(), strings.ToLower(c.Logging.Color)) {
		errors = append(errors, ValidationError{
			Field:   "logging.color",
			Value:   c.Logging.Color,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidColorModes(), ", ")),
		})
	}

	return errors
}

// validateI18n validates the I18nConfig
func (c *Config) validateI18n() []ValidationError {
	var errors []ValidationError

	if c.I18n.Language != "" && !i18n.IsSupported(c.I18n.Language) {
		var codes []string
		for _, lang := range i18n.Languages() {
			codes = append(codes, lang.String())
		}
		errors = append(errors, ValidationError{
			Field:   "i18n.language",
			Value:   c.I18n.Language,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(codes, ", ")),
		})
	}

	return errors
}
