// Package errors provides consistent error types for indexlog.
// It defines two main categories: UserError (fixable by the user) and
// SystemError (storage, network, or filesystem problems).
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors for common conditions.
var (
	ErrNoStructure        = errors.New("no indicator structure loaded")
	ErrPillarNotFound     = errors.New("pillar not found")
	ErrCategoryNotFound   = errors.New("category not found")
	ErrIndicatorNotFound  = errors.New("indicator not found")
	ErrDatasetNotFound    = errors.New("dataset not found")
	ErrDuplicateCode      = errors.New("code already in use")
	ErrInvalidCode        = errors.New("invalid code")
	ErrInvalidName        = errors.New("invalid name")
	ErrInvalidScript      = errors.New("invalid edit script")
	ErrInvalidTimestamp   = errors.New("invalid timestamp")
	ErrInvalidFilter      = errors.New("invalid filter")
	ErrExportNotFound     = errors.New("export not found")
	ErrDiskFull           = errors.New("disk full")
	ErrDatabaseLocked     = errors.New("export archive is locked by another process")
	ErrScoringUnavailable = errors.New("scoring endpoint unavailable")
	ErrNoScoringURL       = errors.New("no scoring endpoint configured")
)

// UserError represents an error that the user can fix.
// Examples: unknown codes, malformed scripts, invalid names.
type UserError struct {
	Message    string // What happened
	Suggestion string // How to fix it
	Field      string // The field/input that caused the error (optional)
	Value      string // The invalid value (optional)
	Err        error  // Sentinel the error matches with errors.Is (optional)
}

func (e *UserError) Error() string {
	msg := e.Message
	if e.Field != "" && e.Value != "" {
		msg = fmt.Sprintf("%s: '%s'", e.Message, e.Value)
	}
	return msg
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new UserError.
func NewUserError(message, suggestion string) *UserError {
	return &UserError{
		Message:    message,
		Suggestion: suggestion,
	}
}

// NewUserErrorWithField creates a new UserError with field context.
func NewUserErrorWithField(field, value, message, suggestion string) *UserError {
	return &UserError{
		Message:    message,
		Field:      field,
		Value:      value,
		Suggestion: suggestion,
	}
}

// NotFound creates a UserError for a missing entity that matches sentinel.
func NotFound(sentinel error, field, value string) *UserError {
	return &UserError{
		Message: sentinel.Error(),
		Field:   field,
		Value:   value,
		Err:     sentinel,
	}
}

// SystemError represents a system-level error that the user cannot directly fix.
// Examples: database failure, unreachable scoring endpoint.
type SystemError struct {
	Message string // What happened
	Cause   error  // The underlying error
	Op      string // The operation that failed (optional)
}

func (e *SystemError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s during %s", e.Message, e.Op)
	}
	return e.Message
}

func (e *SystemError) Unwrap() error {
	return e.Cause
}

// NewSystemError creates a new SystemError.
func NewSystemError(message string, cause error) *SystemError {
	return &SystemError{
		Message: message,
		Cause:   cause,
	}
}

// NewSystemErrorWithOp creates a new SystemError with operation context.
func NewSystemErrorWithOp(op, message string, cause error) *SystemError {
	return &SystemError{
		Message: message,
		Cause:   cause,
		Op:      op,
	}
}

// IsUserError checks if an error is a UserError.
func IsUserError(err error) bool {
	var ue *UserError
	return errors.As(err, &ue)
}

// IsSystemError checks if an error is a SystemError.
func IsSystemError(err error) bool {
	var se *SystemError
	return errors.As(err, &se)
}

// AsUserError extracts a UserError from an error chain.
func AsUserError(err error) (*UserError, bool) {
	var ue *UserError
	ok := errors.As(err, &ue)
	return ue, ok
}

// AsSystemError extracts a SystemError from an error chain.
func AsSystemError(err error) (*SystemError, bool) {
	var se *SystemError
	ok := errors.As(err, &se)
	return se, ok
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted additional context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
