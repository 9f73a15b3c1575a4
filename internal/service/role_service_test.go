package service

import (
	"context"
	"testing"

	"github.com/phrazzld/rota-api/internal/authz"
	"github.com/phrazzld/rota-api/internal/domain"
	"github.com/phrazzld/rota-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleService_ListAndGet(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	roles, err := e.roles.ListRoles(ctx, manager)
	require.NoError(t, err)
	ids := make([]string, 0, len(roles))
	for _, r := range roles {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{authz.RoleAdmin, authz.RoleManager, authz.RoleWorker}, ids)

	worker, err := e.roles.GetRole(ctx, manager, authz.RoleWorker)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{authz.TasksView, authz.TasksUpdate, authz.SchedulesView}, worker.Permissions)

	_, err = e.roles.GetRole(ctx, manager, "owner")
	assert.ErrorIs(t, err, store.ErrRoleNotFound)

	_, err = e.roles.ListRoles(ctx, ana)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestRoleService_UpdatePermissions(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	_, err := e.roles.UpdatePermissions(ctx, manager, authz.RoleWorker, []string{authz.TasksView})
	assert.ErrorIs(t, err, domain.ErrForbidden, "managers view roles but cannot change them")

	_, err = e.roles.UpdatePermissions(ctx, admin, authz.RoleWorker, []string{authz.TasksView, "tasks.delete"})
	assert.ErrorIs(t, err, domain.ErrInvalidPermission)

	_, err = e.roles.UpdatePermissions(ctx, admin, "owner", []string{authz.TasksView})
	assert.ErrorIs(t, err, store.ErrRoleNotFound)

	updated, err := e.roles.UpdatePermissions(ctx, admin, authz.RoleWorker,
		[]string{authz.TasksView, authz.TasksViewAll, authz.TasksView})
	require.NoError(t, err)
	assert.Equal(t, []string{authz.TasksView, authz.TasksViewAll}, updated.Permissions)

	// The change takes effect on the next check.
	ok, err := e.guard.HasPermission(ctx, ana, authz.TasksViewAll)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = e.guard.HasPermission(ctx, ana, authz.TasksUpdate)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRoleService_CatalogAndMyPermissions(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	catalog, err := e.roles.Catalog(ctx, manager)
	require.NoError(t, err)
	assert.Len(t, catalog, len(authz.Catalog()))

	_, err = e.roles.Catalog(ctx, ana)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	mine, err := e.roles.MyPermissions(ctx, ana)
	require.NoError(t, err)
	assert.Equal(t, []string{authz.SchedulesView, authz.TasksUpdate, authz.TasksView}, mine)

	none, err := e.roles.MyPermissions(ctx, carla)
	require.NoError(t, err)
	assert.Empty(t, none)
}
