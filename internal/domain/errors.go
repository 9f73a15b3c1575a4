// Package domain defines the core business entities and errors.
package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity or argument fails validation.
	// Every invalid-argument condition in the application wraps this error.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidDate is returned when a date string cannot be parsed as YYYY-MM-DD.
	ErrInvalidDate = fmt.Errorf("%w: invalid date", ErrValidation)

	// ErrInvalidFrequency is returned when a recurrence frequency is not daily, weekly or monthly.
	ErrInvalidFrequency = fmt.Errorf("%w: invalid frequency", ErrValidation)

	// ErrInvalidPriority is returned when a task priority is not one of the known values.
	ErrInvalidPriority = fmt.Errorf("%w: invalid priority", ErrValidation)

	// ErrInvalidTaskStatus is returned when a task status is not one of the known values.
	ErrInvalidTaskStatus = fmt.Errorf("%w: invalid task status", ErrValidation)

	// ErrInvalidPermission is returned when a permission id is not in the permission catalog.
	ErrInvalidPermission = fmt.Errorf("%w: unknown permission", ErrValidation)

	// ErrInvalidTransition is returned when a task status change is not allowed.
	ErrInvalidTransition = fmt.Errorf("%w: invalid status transition", ErrValidation)

	// ErrForbidden is returned when the acting user lacks a required permission.
	ErrForbidden = errors.New("forbidden")

	// ErrInactiveEmployee is returned when an operation targets an inactive employee.
	// Inactive employees are treated as absent, so callers map this to not found.
	ErrInactiveEmployee = errors.New("employee is inactive")
)

// ValidationError describes a single invalid field.
// It wraps a sentinel so callers can match it with errors.Is.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// Unwrap returns the wrapped sentinel.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a ValidationError for the given field.
// If err is nil, ErrValidation is wrapped.
func NewValidationError(field, message string, err error) *ValidationError {
	if err == nil {
		err = ErrValidation
	}
	return &ValidationError{Field: field, Message: message, Err: err}
}

// IsValidationError reports whether err is any kind of invalid-argument error.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}
