package domain

import (
	"fmt"
	"strings"
	"time"
)

// Employee validation errors
var (
	ErrEmployeeNameEmpty = fmt.Errorf("%w: employee name cannot be empty", ErrValidation)
	ErrEmployeeRoleEmpty = fmt.Errorf("%w: employee role cannot be empty", ErrValidation)
)

// Employee is a member of staff who can be scheduled and assigned tasks.
// Employees are owned by the employee store; everything else references them by ID.
type Employee struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// Validate checks if the Employee has valid data.
func (e *Employee) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return ErrEmployeeNameEmpty
	}
	if strings.TrimSpace(e.Role) == "" {
		return ErrEmployeeRoleEmpty
	}
	return nil
}

// Assignable reports whether tasks and shifts may be given to the employee.
func (e *Employee) Assignable() bool {
	return e != nil && e.Active
}
