package config

import (
	"fmt"
	"strings"
	"time"
)

// ValidationError represents a single configuration violation with context.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface.
func (ve ValidationError) Error() string {
	if ve.Field == "" {
		return ve.Message
	}
	return fmt.Sprintf("field '%s': %s", ve.Field, ve.Message)
}

// ValidationErrors is the aggregated collection of configuration violations.
// Validation always inspects the whole configuration and reports every
// violation found, not just the first.
type ValidationErrors []ValidationError

// Error implements the error interface for multiple validation errors.
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
	return fmt.Sprintf("configuration validation failed: %s", strings.Join(messages, "; "))
}

// HasErrors returns true if there are any validation errors.
func (ve ValidationErrors) HasErrors() bool {
	return len(ve) > 0
}

// Messages returns the individual violation messages.
func (ve ValidationErrors) Messages() []string {
	msgs := make([]string, 0, len(ve))
	for _, err := range ve {
		msgs = append(msgs, err.Error())
	}
	return msgs
}

// Add appends a new validation error.
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

// ValidateConfig checks the merged configuration for required presence and
// well-typed values. It returns every violation found as one aggregated
// error, or nil when the configuration is valid.
func ValidateConfig(cfg *Config) error {
	var errs ValidationErrors

	if strings.TrimSpace(cfg.Version) == "" {
		errs.Add("version", "is required")
	}

	if !oneOf(cfg.DefaultMode, ValidDefaultModes) {
		errs.Add("defaultMode", fmt.Sprintf("must be one of: %s", strings.Join(ValidDefaultModes, ", ")), cfg.DefaultMode)
	}

	if strings.TrimSpace(cfg.Paths.StateDir) == "" {
		errs.Add("paths.stateDir", "is required")
	}
	if strings.TrimSpace(cfg.Paths.ModesDir) == "" {
		errs.Add("paths.modesDir", "is required")
	}
	if strings.TrimSpace(cfg.Paths.BackupDir) == "" {
		errs.Add("paths.backupDir", "is required")
	}
	if strings.TrimSpace(cfg.Paths.ArtifactFile) == "" {
		errs.Add("paths.artifactFile", "is required")
	}

	if !oneOf(cfg.Logging.Level, ValidLogLevels) {
		errs.Add("logging.level", fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels, ", ")), cfg.Logging.Level)
	}
	if !oneOf(cfg.Logging.Target, ValidLogTargets) {
		errs.Add("logging.target", fmt.Sprintf("must be one of: %s", strings.Join(ValidLogTargets, ", ")), cfg.Logging.Target)
	}

	if cfg.Security.MaxFileSizeBytes <= 0 {
		errs.Add("security.maxFileSizeBytes", "must be a positive integer", cfg.Security.MaxFileSizeBytes)
	}

	if _, err := time.Parse(time.RFC3339, cfg.CreatedAt); err != nil {
		errs.Add("createdAt", "must be an ISO-8601 timestamp", cfg.CreatedAt)
	}
	if _, err := time.Parse(time.RFC3339, cfg.UpdatedAt); err != nil {
		errs.Add("updatedAt", "must be an ISO-8601 timestamp", cfg.UpdatedAt)
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}

func oneOf(value string, allowed []string) bool {
	for _, v := range allowed {
		if value == v {
			return true
		}
	}
	return false
}
