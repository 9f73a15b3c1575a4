package service

import (
	"context"
	"log/slog"
	"sort"

	"github.com/phrazzld/rota-api/internal/authz"
	"github.com/phrazzld/rota-api/internal/domain"
	"github.com/phrazzld/rota-api/internal/platform/logger"
	"github.com/phrazzld/rota-api/internal/store"
)

const roleServiceName = "role"

// RoleService exposes roles, their permission sets and the permission catalog.
type RoleService interface {
	// ListRoles returns all roles. Requires roles.view.
	ListRoles(ctx context.Context, actor *domain.Employee) ([]*domain.Role, error)

	// GetRole returns one role with its permissions. Requires roles.view.
	GetRole(ctx context.Context, actor *domain.Employee, id string) (*domain.Role, error)

	// UpdatePermissions replaces a role's permission set after validating it
	// against the catalog. Requires roles.manage.
	UpdatePermissions(ctx context.Context, actor *domain.Employee, id string, permissions []string) (*domain.Role, error)

	// Catalog returns every known permission. Requires roles.view.
	Catalog(ctx context.Context, actor *domain.Employee) ([]authz.Permission, error)

	// MyPermissions returns the actor's effective permissions, sorted.
	// Any authenticated employee may ask.
	MyPermissions(ctx context.Context, actor *domain.Employee) ([]string, error)
}

// roleServiceImpl implements the RoleService interface
type roleServiceImpl struct {
	roles  store.RoleStore
	guard  authz.Guard
	logger *slog.Logger
}

var _ RoleService = (*roleServiceImpl)(nil)

// NewRoleService creates a new RoleService.
// It returns an error if any of the required dependencies are nil.
func NewRoleService(roles store.RoleStore, guard authz.Guard, logger *slog.Logger) (RoleService, error) {
	if roles == nil {
		return nil, domain.NewValidationError("roles", "cannot be nil", domain.ErrValidation)
	}
	if guard == nil {
		return nil, domain.NewValidationError("guard", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &roleServiceImpl{
		roles:  roles,
		guard:  guard,
		logger: logger.With(slog.String("component", "role_service")),
	}, nil
}

// ListRoles implements RoleService.ListRoles
func (s *roleServiceImpl) ListRoles(ctx context.Context, actor *domain.Employee) ([]*domain.Role, error) {
	if err := s.guard.RequireOne(ctx, actor, authz.RolesView); err != nil {
		return nil, err
	}
	roles, err := s.roles.List(ctx)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list roles",
			slog.String("error", err.Error()))
		return nil, wrap(roleServiceName, "list_roles", err)
	}
	return roles, nil
}

// GetRole implements RoleService.GetRole
func (s *roleServiceImpl) GetRole(ctx context.Context, actor *domain.Employee, id string) (*domain.Role, error) {
	if err := s.guard.RequireOne(ctx, actor, authz.RolesView); err != nil {
		return nil, err
	}
	role, err := s.roles.GetByID(ctx, id)
	if err != nil {
		return nil, wrap(roleServiceName, "get_role", err)
	}
	return role, nil
}

// UpdatePermissions implements RoleService.UpdatePermissions
func (s *roleServiceImpl) UpdatePermissions(
	ctx context.Context,
	actor *domain.Employee,
	id string,
	permissions []string,
) (*domain.Role, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("role", id))

	if err := s.guard.RequireOne(ctx, actor, authz.RolesManage); err != nil {
		return nil, err
	}
	valid, err := authz.ValidatePermissions(permissions)
	if err != nil {
		return nil, err
	}

	if err := s.roles.UpdatePermissions(ctx, id, valid); err != nil {
		if !isCallerError(err) {
			log.Error("failed to update role permissions", slog.String("error", err.Error()))
		}
		return nil, wrap(roleServiceName, "update_permissions", err)
	}
	log.Info("role permissions updated",
		slog.Int64("actor_id", actor.ID),
		slog.Int("permission_count", len(valid)))

	role, err := s.roles.GetByID(ctx, id)
	if err != nil {
		return nil, wrap(roleServiceName, "update_permissions", err)
	}
	return role, nil
}

// Catalog implements RoleService.Catalog
func (s *roleServiceImpl) Catalog(ctx context.Context, actor *domain.Employee) ([]authz.Permission, error) {
	if err := s.guard.RequireOne(ctx, actor, authz.RolesView); err != nil {
		return nil, err
	}
	return authz.Catalog(), nil
}

// MyPermissions implements RoleService.MyPermissions
func (s *roleServiceImpl) MyPermissions(ctx context.Context, actor *domain.Employee) ([]string, error) {
	set, err := s.guard.Permissions(ctx, actor)
	if err != nil {
		return nil, NewServiceError(roleServiceName, "my_permissions", err)
	}
	out := make([]string, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	sort.Strings(out)
	return out, nil
}
