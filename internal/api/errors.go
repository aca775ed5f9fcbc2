package api

import (
	"errors"
	"fmt"
	"strings"
)

// NotFoundError represents a resource not found error with contextual
// information. The error includes resource type and name for precise
// reporting and supports a custom message for specific use cases.
type NotFoundError struct {
	// ResourceType categorizes the type of resource that was not found
	// (e.g., "file", "state", "mode", "prompt").
	ResourceType string

	// ResourceName is the specific identifier of the resource.
	ResourceName string

	// Message provides a custom error message if the default format is
	// insufficient.
	Message string
}

// Error implements the error interface for NotFoundError.
func (e *NotFoundError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s %s not found", e.ResourceType, e.ResourceName)
}

// IsNotFound checks if an error is a NotFoundError using error unwrapping.
func IsNotFound(err error) bool {
	var notFoundErr *NotFoundError
	return errors.As(err, &notFoundErr)
}

// NewNotFoundError creates a new NotFoundError with the specified resource
// type and name.
func NewNotFoundError(resourceType, resourceName string) *NotFoundError {
	return &NotFoundError{
		ResourceType: resourceType,
		ResourceName: resourceName,
	}
}

// Specific NotFoundError constructors for each resource type.
var (
	// NewFileNotFoundError creates a file not found error.
	NewFileNotFoundError = func(path string) *NotFoundError {
		return NewNotFoundError("file", path)
	}

	// NewStateNotFoundError creates a state record not found error.
	NewStateNotFoundError = func(id string) *NotFoundError {
		return NewNotFoundError("state", id)
	}

	// NewModeNotFoundError creates a mode not found error.
	NewModeNotFoundError = func(id string) *NotFoundError {
		return NewNotFoundError("mode", id)
	}

	// NewPromptNotFoundError creates a prompt template not found error.
	NewPromptNotFoundError = func(name string) *NotFoundError {
		return NewNotFoundError("prompt", name)
	}
)

// PermissionError represents an operating-system level access denial on a
// path. It wraps the underlying error so callers can still inspect it.
type PermissionError struct {
	// Path is the file or directory that could not be accessed.
	Path string

	// Operation is the attempted operation ("read", "write", "delete", ...).
	Operation string

	// Err is the underlying error returned by the operating system.
	Err error
}

// Error implements the error interface for PermissionError.
func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: cannot %s %s: %v", e.Operation, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *PermissionError) Unwrap() error {
	return e.Err
}

// IsPermission checks if an error is a PermissionError using error unwrapping.
func IsPermission(err error) bool {
	var permErr *PermissionError
	return errors.As(err, &permErr)
}

// NewPermissionError creates a new PermissionError for the given operation
// and path.
func NewPermissionError(operation, path string, err error) *PermissionError {
	return &PermissionError{Path: path, Operation: operation, Err: err}
}

// ValidationError represents a violated content, size, or schema constraint.
// It is used by the file primitives (oversized or binary content) and by the
// state store (malformed record fields).
type ValidationError struct {
	// Subject identifies what was being validated (a path, a state id, ...).
	Subject string

	// Message describes the violated constraint.
	Message string
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	if e.Subject == "" {
		return fmt.Sprintf("validation failed: %s", e.Message)
	}
	return fmt.Sprintf("validation failed for %s: %s", e.Subject, e.Message)
}

// IsValidation checks if an error is a ValidationError using error unwrapping.
func IsValidation(err error) bool {
	var valErr *ValidationError
	return errors.As(err, &valErr)
}

// NewValidationError creates a new ValidationError for the given subject.
func NewValidationError(subject, messageFmt string, args ...interface{}) *ValidationError {
	return &ValidationError{
		Subject: subject,
		Message: fmt.Sprintf(messageFmt, args...),
	}
}

// DependencyMissingError indicates that a mode declares dependencies on other
// modes that are not registered. All missing identifiers are reported in one
// error.
type DependencyMissingError struct {
	// ModeID is the mode whose dependencies were checked.
	ModeID string

	// Missing lists the dependency identifiers that are not registered.
	Missing []string
}

// Error implements the error interface for DependencyMissingError.
func (e *DependencyMissingError) Error() string {
	return fmt.Sprintf("mode %s has missing dependencies: %s", e.ModeID, strings.Join(e.Missing, ", "))
}

// IsDependencyMissing checks if an error is a DependencyMissingError using
// error unwrapping.
func IsDependencyMissing(err error) bool {
	var depErr *DependencyMissingError
	return errors.As(err, &depErr)
}

// NewDependencyMissingError creates a new DependencyMissingError.
func NewDependencyMissingError(modeID string, missing []string) *DependencyMissingError {
	return &DependencyMissingError{ModeID: modeID, Missing: missing}
}

// ModeDisabledError indicates that a mode exists but is administratively
// disabled in its registry descriptor.
type ModeDisabledError struct {
	// ModeID is the disabled mode.
	ModeID string
}

// Error implements the error interface for ModeDisabledError.
func (e *ModeDisabledError) Error() string {
	return fmt.Sprintf("mode %s is disabled", e.ModeID)
}

// IsModeDisabled checks if an error is a ModeDisabledError using error
// unwrapping.
func IsModeDisabled(err error) bool {
	var disErr *ModeDisabledError
	return errors.As(err, &disErr)
}

// NewModeDisabledError creates a new ModeDisabledError.
func NewModeDisabledError(modeID string) *ModeDisabledError {
	return &ModeDisabledError{ModeID: modeID}
}

// Common sentinel errors for registry composition failures.
var (
	// ErrDirectoryDelete indicates a delete was attempted on a directory.
	ErrDirectoryDelete = errors.New("target is a directory, not a file")

	// ErrRegistryFrozen indicates a registration was attempted after the
	// registry was sealed at the end of startup composition.
	ErrRegistryFrozen = errors.New("mode registry is frozen")
)
