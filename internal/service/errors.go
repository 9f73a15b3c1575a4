package service

import (
	"errors"
	"fmt"

	"github.com/phrazzld/rota-api/internal/domain"
	"github.com/phrazzld/rota-api/internal/store"
)

// ServiceError wraps an unexpected failure with the service and operation
// in which it happened. Callers unwrap it with errors.Is/errors.As.
type ServiceError struct {
	Service string
	Op      string
	Err     error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s service %s operation failed: %v", e.Service, e.Op, e.Err)
	}
	return fmt.Sprintf("%s service %s operation failed", e.Service, e.Op)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError.
func NewServiceError(service, op string, err error) *ServiceError {
	return &ServiceError{Service: service, Op: op, Err: err}
}

// isCallerError reports errors that describe the request rather than a
// fault. They are returned to the caller unwrapped.
func isCallerError(err error) bool {
	return store.IsNotFoundError(err) ||
		store.IsDuplicateError(err) ||
		errors.Is(err, domain.ErrInactiveEmployee) ||
		domain.IsValidationError(err) ||
		errors.Is(err, domain.ErrForbidden)
}

// wrap returns caller errors as they are and wraps everything else.
func wrap(service, op string, err error) error {
	if err == nil || isCallerError(err) {
		return err
	}
	return NewServiceError(service, op, err)
}
