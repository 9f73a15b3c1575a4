package store

import (
	"context"

	"github.com/phrazzld/rota-api/internal/domain"
)

// EmployeeStore defines read and write access to employees.
// The scheduling core only looks employees up; the employee service writes them.
type EmployeeStore interface {
	// GetByID retrieves an employee by ID.
	// Returns ErrEmployeeNotFound if the employee does not exist.
	// Inactive employees are returned; callers decide what inactivity means.
	GetByID(ctx context.Context, id int64) (*domain.Employee, error)

	// List returns all employees ordered by ID.
	List(ctx context.Context) ([]*domain.Employee, error)

	// Create saves a new employee and assigns its ID.
	Create(ctx context.Context, employee *domain.Employee) error

	// Update replaces the name, email, role and active flag of an employee.
	// Returns ErrEmployeeNotFound if the employee does not exist.
	Update(ctx context.Context, employee *domain.Employee) error
}

// RoleStore maps role identifiers to permission sets.
type RoleStore interface {
	// GetByID retrieves a role by identifier.
	// Returns ErrRoleNotFound if the role does not exist.
	GetByID(ctx context.Context, id string) (*domain.Role, error)

	// List returns all roles ordered by identifier.
	List(ctx context.Context) ([]*domain.Role, error)

	// UpdatePermissions replaces the permission set of a role.
	// Permission ids must already be validated by the caller.
	// Returns ErrRoleNotFound if the role does not exist.
	UpdatePermissions(ctx context.Context, id string, permissions []string) error
}
