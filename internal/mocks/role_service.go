package mocks

import (
	"context"

	"github.com/phrazzld/rota-api/internal/authz"
	"github.com/phrazzld/rota-api/internal/domain"
	"github.com/phrazzld/rota-api/internal/service"
)

// MockRoleService implements service.RoleService for testing.
type MockRoleService struct {
	ListRolesFn         func(ctx context.Context, actor *domain.Employee) ([]*domain.Role, error)
	GetRoleFn           func(ctx context.Context, actor *domain.Employee, id string) (*domain.Role, error)
	UpdatePermissionsFn func(ctx context.Context, actor *domain.Employee, id string, permissions []string) (*domain.Role, error)
	CatalogFn           func(ctx context.Context, actor *domain.Employee) ([]authz.Permission, error)
	MyPermissionsFn     func(ctx context.Context, actor *domain.Employee) ([]string, error)
}

var _ service.RoleService = (*MockRoleService)(nil)

// ListRoles implements service.RoleService.
func (m *MockRoleService) ListRoles(ctx context.Context, actor *domain.Employee) ([]*domain.Role, error) {
	if m.ListRolesFn == nil {
		return nil, ErrNotConfigured
	}
	return m.ListRolesFn(ctx, actor)
}

// GetRole implements service.RoleService.
func (m *MockRoleService) GetRole(ctx context.Context, actor *domain.Employee, id string) (*domain.Role, error) {
	if m.GetRoleFn == nil {
		return nil, ErrNotConfigured
	}
	return m.GetRoleFn(ctx, actor, id)
}

// UpdatePermissions implements service.RoleService.
func (m *MockRoleService) UpdatePermissions(
	ctx context.Context,
	actor *domain.Employee,
	id string,
	permissions []string,
) (*domain.Role, error) {
	if m.UpdatePermissionsFn == nil {
		return nil, ErrNotConfigured
	}
	return m.UpdatePermissionsFn(ctx, actor, id, permissions)
}

// Catalog implements service.RoleService.
func (m *MockRoleService) Catalog(ctx context.Context, actor *domain.Employee) ([]authz.Permission, error) {
	if m.CatalogFn == nil {
		return nil, ErrNotConfigured
	}
	return m.CatalogFn(ctx, actor)
}

// MyPermissions implements service.RoleService.
func (m *MockRoleService) MyPermissions(ctx context.Context, actor *domain.Employee) ([]string, error) {
	if m.MyPermissionsFn == nil {
		return nil, ErrNotConfigured
	}
	return m.MyPermissionsFn(ctx, actor)
}
