package mocks

import (
	"context"

	"github.com/phrazzld/rota-api/internal/domain"
	"github.com/phrazzld/rota-api/internal/service"
)

// MockEmployeeService implements service.EmployeeService for testing.
type MockEmployeeService struct {
	ListEmployeesFn  func(ctx context.Context, actor *domain.Employee, activeOnly bool) ([]*domain.Employee, error)
	CreateEmployeeFn func(ctx context.Context, actor *domain.Employee,
		req service.CreateEmployeeRequest) (*domain.Employee, error)
	UpdateEmployeeFn func(ctx context.Context, actor *domain.Employee, id int64,
		req service.UpdateEmployeeRequest) (*domain.Employee, error)
}

var _ service.EmployeeService = (*MockEmployeeService)(nil)

// ListEmployees implements service.EmployeeService.
func (m *MockEmployeeService) ListEmployees(
	ctx context.Context,
	actor *domain.Employee,
	activeOnly bool,
) ([]*domain.Employee, error) {
	if m.ListEmployeesFn == nil {
		return nil, ErrNotConfigured
	}
	return m.ListEmployeesFn(ctx, actor, activeOnly)
}

// CreateEmployee implements service.EmployeeService.
func (m *MockEmployeeService) CreateEmployee(
	ctx context.Context,
	actor *domain.Employee,
	req service.CreateEmployeeRequest,
) (*domain.Employee, error) {
	if m.CreateEmployeeFn == nil {
		return nil, ErrNotConfigured
	}
	return m.CreateEmployeeFn(ctx, actor, req)
}

// UpdateEmployee implements service.EmployeeService.
func (m *MockEmployeeService) UpdateEmployee(
	ctx context.Context,
	actor *domain.Employee,
	id int64,
	req service.UpdateEmployeeRequest,
) (*domain.Employee, error) {
	if m.UpdateEmployeeFn == nil {
		return nil, ErrNotConfigured
	}
	return m.UpdateEmployeeFn(ctx, actor, id, req)
}
