// Package authz maps roles to permission sets and evaluates permission
// requirements for an acting employee. Checks are plain set membership:
// roles do not inherit from each other and permissions imply nothing.
package authz

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/rota-api/internal/domain"
	"github.com/phrazzld/rota-api/internal/platform/logger"
	"github.com/phrazzld/rota-api/internal/store"
)

// Guard is the permission check consumed by services and HTTP middleware.
type Guard interface {
	// HasPermission reports whether actor holds permission.
	HasPermission(ctx context.Context, actor *domain.Employee, permission string) (bool, error)

	// RequireOne fails with *ForbiddenError unless actor holds permission.
	RequireOne(ctx context.Context, actor *domain.Employee, permission string) error

	// RequireAny fails with *ForbiddenError unless actor holds at least one of permissions.
	RequireAny(ctx context.Context, actor *domain.Employee, permissions ...string) error

	// Permissions returns the actor's effective permission set.
	Permissions(ctx context.Context, actor *domain.Employee) (map[string]struct{}, error)
}

// Authorizer implements Guard over a RoleStore.
type Authorizer struct {
	roles  store.RoleStore
	logger *slog.Logger
}

var _ Guard = (*Authorizer)(nil)

// NewAuthorizer creates an Authorizer. It returns an error if roles is nil.
func NewAuthorizer(roles store.RoleStore, logger *slog.Logger) (*Authorizer, error) {
	if roles == nil {
		return nil, domain.NewValidationError("roles", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Authorizer{
		roles:  roles,
		logger: logger.With(slog.String("component", "authorizer")),
	}, nil
}

// RoleHasPermission is the pure membership check. A nil role has no permissions.
func RoleHasPermission(role *domain.Role, permission string) bool {
	_, ok := role.PermissionSet()[permission]
	return ok
}

// Permissions implements Guard. Missing or inactive actors and unknown roles
// yield an empty set; only store failures return an error.
func (a *Authorizer) Permissions(ctx context.Context, actor *domain.Employee) (map[string]struct{}, error) {
	if !actor.Assignable() {
		return map[string]struct{}{}, nil
	}
	role, err := a.roles.GetByID(ctx, actor.Role)
	if err != nil {
		if store.IsNotFoundError(err) {
			logger.FromContextOrDefault(ctx, a.logger).Warn("actor has unknown role",
				slog.Int64("employee_id", actor.ID),
				slog.String("role", actor.Role))
			return map[string]struct{}{}, nil
		}
		return nil, fmt.Errorf("failed to load role %q: %w", actor.Role, err)
	}
	return role.PermissionSet(), nil
}

// HasPermission implements Guard.
func (a *Authorizer) HasPermission(ctx context.Context, actor *domain.Employee, permission string) (bool, error) {
	set, err := a.Permissions(ctx, actor)
	if err != nil {
		return false, err
	}
	_, ok := set[permission]
	return ok, nil
}

// RequireOne implements Guard.
func (a *Authorizer) RequireOne(ctx context.Context, actor *domain.Employee, permission string) error {
	ok, err := a.HasPermission(ctx, actor, permission)
	if err != nil {
		return err
	}
	if !ok {
		return a.forbidden(ctx, actor, []string{permission}, false)
	}
	return nil
}

// RequireAny implements Guard. An empty permission list is never satisfied.
func (a *Authorizer) RequireAny(ctx context.Context, actor *domain.Employee, permissions ...string) error {
	set, err := a.Permissions(ctx, actor)
	if err != nil {
		return err
	}
	for _, p := range permissions {
		if _, ok := set[p]; ok {
			return nil
		}
	}
	return a.forbidden(ctx, actor, permissions, true)
}

func (a *Authorizer) forbidden(ctx context.Context, actor *domain.Employee, required []string, anyOf bool) error {
	fe := &ForbiddenError{Required: append([]string(nil), required...), AnyOf: anyOf}
	if actor != nil {
		fe.EmployeeID = actor.ID
		fe.Role = actor.Role
	}
	logger.FromContextOrDefault(ctx, a.logger).Debug("permission denied",
		slog.Int64("employee_id", fe.EmployeeID),
		slog.String("role", fe.Role),
		slog.Any("required", fe.Required))
	return fe
}
