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

func ptr[T any](v T) *T { return &v }

func TestEmployeeService_ListEmployees(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	all, err := e.employees.ListEmployees(ctx, manager, false)
	require.NoError(t, err)
	require.Len(t, all, 5)
	assert.Equal(t, ana.ID, all[0].ID, "ordered by id")

	active, err := e.employees.ListEmployees(ctx, manager, true)
	require.NoError(t, err)
	assert.Len(t, active, 4)
	for _, emp := range active {
		assert.NotEqual(t, carla.ID, emp.ID)
	}

	_, err = e.employees.ListEmployees(ctx, ana, false)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestEmployeeService_CreateEmployee(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	emp, err := e.employees.CreateEmployee(ctx, admin, CreateEmployeeRequest{
		Name: " Dora ", Email: "dora@example.com", Role: authz.RoleWorker,
	})
	require.NoError(t, err)
	assert.NotZero(t, emp.ID)
	assert.Equal(t, "Dora", emp.Name)
	assert.True(t, emp.Active)

	stored, err := e.mem.Employees().GetByID(ctx, emp.ID)
	require.NoError(t, err)
	assert.Equal(t, authz.RoleWorker, stored.Role)

	_, err = e.employees.CreateEmployee(ctx, admin, CreateEmployeeRequest{Name: "Eli", Role: "owner"})
	assert.True(t, domain.IsValidationError(err))

	_, err = e.employees.CreateEmployee(ctx, admin, CreateEmployeeRequest{Name: " ", Role: authz.RoleWorker})
	assert.ErrorIs(t, err, domain.ErrEmployeeNameEmpty)

	_, err = e.employees.CreateEmployee(ctx, manager, CreateEmployeeRequest{Name: "Eli", Role: authz.RoleWorker})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestEmployeeService_UpdateEmployee(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	emp, err := e.employees.UpdateEmployee(ctx, admin, carla.ID, UpdateEmployeeRequest{
		Active: ptr(true), Role: ptr(authz.RoleManager),
	})
	require.NoError(t, err)
	assert.True(t, emp.Active)
	assert.Equal(t, authz.RoleManager, emp.Role)
	assert.Equal(t, carla.Name, emp.Name, "unset fields are kept")

	emp, err = e.employees.UpdateEmployee(ctx, admin, ana.ID, UpdateEmployeeRequest{Active: ptr(false)})
	require.NoError(t, err)
	assert.False(t, emp.Active)
	stored, err := e.mem.Employees().GetByID(ctx, ana.ID)
	require.NoError(t, err)
	assert.False(t, stored.Assignable())

	_, err = e.employees.UpdateEmployee(ctx, admin, admin.ID, UpdateEmployeeRequest{Active: ptr(false)})
	assert.True(t, domain.IsValidationError(err), "self-deactivation is rejected")

	_, err = e.employees.UpdateEmployee(ctx, admin, bruno.ID, UpdateEmployeeRequest{Role: ptr("owner")})
	assert.True(t, domain.IsValidationError(err))

	_, err = e.employees.UpdateEmployee(ctx, admin, 42, UpdateEmployeeRequest{Name: ptr("x")})
	assert.ErrorIs(t, err, store.ErrEmployeeNotFound)

	_, err = e.employees.UpdateEmployee(ctx, manager, bruno.ID, UpdateEmployeeRequest{Name: ptr("x")})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestEmployeeService_DeactivatedEmployeeCannotBeAssigned(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.shift(t, bruno.ID, sept(8))

	_, err := e.employees.UpdateEmployee(ctx, admin, bruno.ID, UpdateEmployeeRequest{Active: ptr(false)})
	require.NoError(t, err)

	_, err = e.tasks.CreateTask(ctx, manager, CreateTaskRequest{Title: "a", EmployeeID: bruno.ID, Date: sept(8)})
	assert.ErrorIs(t, err, domain.ErrInactiveEmployee)
}
