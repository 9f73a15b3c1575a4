package conflict

import "fmt"

// ServiceError wraps unexpected failures of the conflict queue with the
// operation that failed. Expected conditions (not found, forbidden,
// validation) are returned unwrapped.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "list_pending", "resolve")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewListPendingError returns a new ServiceError for the list_pending operation.
func NewListPendingError(message string, err error) *ServiceError {
	return &ServiceError{Operation: "list_pending", Message: message, Err: err}
}

// NewResolveError returns a new ServiceError for the resolve operation.
func NewResolveError(message string, err error) *ServiceError {
	return &ServiceError{Operation: "resolve", Message: message, Err: err}
}
