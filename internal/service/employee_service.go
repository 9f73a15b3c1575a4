package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/phrazzld/rota-api/internal/authz"
	"github.com/phrazzld/rota-api/internal/domain"
	"github.com/phrazzld/rota-api/internal/platform/logger"
	"github.com/phrazzld/rota-api/internal/store"
)

const employeeServiceName = "employee"

// CreateEmployeeRequest adds an active employee with the given role.
type CreateEmployeeRequest struct {
	Name  string
	Email string
	Role  string
}

// UpdateEmployeeRequest changes an employee. Nil fields are left as they are.
type UpdateEmployeeRequest struct {
	Name   *string
	Email  *string
	Role   *string
	Active *bool
}

// EmployeeService manages the employee directory that tasks, shifts and
// conflict resolutions point at.
type EmployeeService interface {
	// ListEmployees returns employees ordered by ID, only active ones when
	// activeOnly is set. Requires employees.view or employees.manage.
	ListEmployees(ctx context.Context, actor *domain.Employee, activeOnly bool) ([]*domain.Employee, error)

	// CreateEmployee adds an active employee. The role must exist.
	// Requires employees.manage.
	CreateEmployee(ctx context.Context, actor *domain.Employee, req CreateEmployeeRequest) (*domain.Employee, error)

	// UpdateEmployee changes name, email, role or active flag. Actors cannot
	// deactivate themselves. Requires employees.manage.
	UpdateEmployee(ctx context.Context, actor *domain.Employee, id int64, req UpdateEmployeeRequest) (*domain.Employee, error)
}

// employeeServiceImpl implements the EmployeeService interface
type employeeServiceImpl struct {
	employees store.EmployeeStore
	roles     store.RoleStore
	guard     authz.Guard
	logger    *slog.Logger
}

var _ EmployeeService = (*employeeServiceImpl)(nil)

// NewEmployeeService creates a new EmployeeService.
// It returns an error if any of the required dependencies are nil.
func NewEmployeeService(
	employees store.EmployeeStore,
	roles store.RoleStore,
	guard authz.Guard,
	logger *slog.Logger,
) (EmployeeService, error) {
	if employees == nil {
		return nil, domain.NewValidationError("employees", "cannot be nil", domain.ErrValidation)
	}
	if roles == nil {
		return nil, domain.NewValidationError("roles", "cannot be nil", domain.ErrValidation)
	}
	if guard == nil {
		return nil, domain.NewValidationError("guard", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &employeeServiceImpl{
		employees: employees,
		roles:     roles,
		guard:     guard,
		logger:    logger.With(slog.String("component", "employee_service")),
	}, nil
}

// ListEmployees implements EmployeeService.ListEmployees
func (s *employeeServiceImpl) ListEmployees(
	ctx context.Context,
	actor *domain.Employee,
	activeOnly bool,
) ([]*domain.Employee, error) {
	if err := s.guard.RequireAny(ctx, actor, authz.EmployeesView, authz.EmployeesManage); err != nil {
		return nil, err
	}
	all, err := s.employees.List(ctx)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list employees",
			slog.String("error", err.Error()))
		return nil, wrap(employeeServiceName, "list_employees", err)
	}
	if !activeOnly {
		return all, nil
	}
	active := make([]*domain.Employee, 0, len(all))
	for _, e := range all {
		if e.Active {
			active = append(active, e)
		}
	}
	return active, nil
}

// CreateEmployee implements EmployeeService.CreateEmployee
func (s *employeeServiceImpl) CreateEmployee(
	ctx context.Context,
	actor *domain.Employee,
	req CreateEmployeeRequest,
) (*domain.Employee, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.guard.RequireOne(ctx, actor, authz.EmployeesManage); err != nil {
		return nil, err
	}
	emp := &domain.Employee{
		Name:   strings.TrimSpace(req.Name),
		Email:  strings.TrimSpace(req.Email),
		Role:   strings.TrimSpace(req.Role),
		Active: true,
	}
	if err := emp.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkRole(ctx, emp.Role); err != nil {
		return nil, err
	}

	if err := s.employees.Create(ctx, emp); err != nil {
		if !isCallerError(err) {
			log.Error("failed to create employee", slog.String("error", err.Error()))
		}
		return nil, wrap(employeeServiceName, "create_employee", err)
	}
	log.Info("employee added",
		slog.Int64("actor_id", actor.ID),
		slog.Int64("employee_id", emp.ID),
		slog.String("role", emp.Role))
	return emp, nil
}

// UpdateEmployee implements EmployeeService.UpdateEmployee
func (s *employeeServiceImpl) UpdateEmployee(
	ctx context.Context,
	actor *domain.Employee,
	id int64,
	req UpdateEmployeeRequest,
) (*domain.Employee, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.Int64("employee_id", id))

	if err := s.guard.RequireOne(ctx, actor, authz.EmployeesManage); err != nil {
		return nil, err
	}
	emp, err := s.employees.GetByID(ctx, id)
	if err != nil {
		return nil, wrap(employeeServiceName, "update_employee", err)
	}

	if req.Name != nil {
		emp.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		emp.Email = strings.TrimSpace(*req.Email)
	}
	if req.Role != nil {
		emp.Role = strings.TrimSpace(*req.Role)
	}
	if req.Active != nil {
		if !*req.Active && id == actor.ID {
			return nil, domain.NewValidationError("active", "cannot deactivate yourself", domain.ErrValidation)
		}
		emp.Active = *req.Active
	}
	if err := emp.Validate(); err != nil {
		return nil, err
	}
	if req.Role != nil {
		if err := s.checkRole(ctx, emp.Role); err != nil {
			return nil, err
		}
	}

	if err := s.employees.Update(ctx, emp); err != nil {
		if !isCallerError(err) {
			log.Error("failed to update employee", slog.String("error", err.Error()))
		}
		return nil, wrap(employeeServiceName, "update_employee", err)
	}
	log.Info("employee updated",
		slog.Int64("actor_id", actor.ID),
		slog.String("role", emp.Role),
		slog.Bool("active", emp.Active))
	return emp, nil
}

// checkRole rejects role ids that do not exist as a validation error.
func (s *employeeServiceImpl) checkRole(ctx context.Context, role string) error {
	if _, err := s.roles.GetByID(ctx, role); err != nil {
		if store.IsNotFoundError(err) {
			return domain.NewValidationError("role", "does not exist", domain.ErrValidation)
		}
		return wrap(employeeServiceName, "check_role", err)
	}
	return nil
}
