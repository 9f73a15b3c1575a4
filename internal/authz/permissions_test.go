package authz

import (
	"testing"

	"github.com/phrazzld/rota-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePermissions(t *testing.T) {
	got, err := ValidatePermissions([]string{TasksView, RolesManage, TasksView})
	require.NoError(t, err)
	assert.Equal(t, []string{RolesManage, TasksView}, got)

	got, err = ValidatePermissions(nil)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = ValidatePermissions([]string{TasksView, "tasks.delete", "pdf.export"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidPermission)
	assert.True(t, domain.IsValidationError(err))
	assert.Contains(t, err.Error(), "tasks.delete")
}

func TestCatalog(t *testing.T) {
	cat := Catalog()
	require.NotEmpty(t, cat)

	seen := map[string]bool{}
	for _, p := range cat {
		assert.False(t, seen[p.ID], "duplicate permission %s", p.ID)
		seen[p.ID] = true
		assert.True(t, IsKnown(p.ID))
		assert.NotEmpty(t, p.Category)
	}

	grouped := CatalogByCategory()
	assert.Len(t, grouped["conflicts"], 2)
	assert.Len(t, grouped["employees"], 2)
	assert.False(t, IsKnown("reports.export"))
}

func TestDefaultRoles(t *testing.T) {
	roles := DefaultRoles()
	byID := map[string]*domain.Role{}
	for _, r := range roles {
		_, err := ValidatePermissions(r.Permissions)
		require.NoError(t, err, "role %s", r.ID)
		byID[r.ID] = r
	}

	require.Contains(t, byID, RoleAdmin)
	require.Contains(t, byID, RoleManager)
	require.Contains(t, byID, RoleWorker)

	assert.Len(t, byID[RoleAdmin].Permissions, len(Catalog()))
	assert.True(t, RoleHasPermission(byID[RoleManager], ConflictsResolve))
	assert.False(t, RoleHasPermission(byID[RoleManager], RolesManage))
	assert.True(t, RoleHasPermission(byID[RoleManager], EmployeesView))
	assert.False(t, RoleHasPermission(byID[RoleManager], EmployeesManage))
	assert.True(t, RoleHasPermission(byID[RoleWorker], TasksView))
	assert.False(t, RoleHasPermission(byID[RoleWorker], TasksCreate))
}
