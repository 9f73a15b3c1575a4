//go:build integration

package postgres_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/phrazzld/rota-api/internal/authz"
	"github.com/phrazzld/rota-api/internal/domain"
	"github.com/phrazzld/rota-api/internal/platform/postgres"
	"github.com/phrazzld/rota-api/internal/store"
	"github.com/phrazzld/rota-api/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2025, time.September, d, 0, 0, 0, 0, time.UTC)
}

func createEmployee(t *testing.T, repos store.Repos, name string) *domain.Employee {
	t.Helper()
	emp := &domain.Employee{Name: name, Role: authz.RoleWorker, Active: true}
	require.NoError(t, repos.Employees.Create(context.Background(), emp))
	require.NotZero(t, emp.ID)
	return emp
}

func TestIntegration_SeededRoles(t *testing.T) {
	db := testdb.GetTestDBWithT(t)
	roles := postgres.NewPostgresRoleStore(db, nil)

	worker, err := roles.GetByID(context.Background(), authz.RoleWorker)
	require.NoError(t, err)
	assert.Contains(t, worker.Permissions, authz.TasksView)
}

func TestIntegration_ShiftsAndStaffing(t *testing.T) {
	db := testdb.GetTestDBWithT(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		ctx := context.Background()
		repos := postgres.NewRepos(tx, nil)
		emp := createEmployee(t, repos, "Ana")

		shift, err := domain.NewShiftAssignment(emp.ID, day(15), "morning")
		require.NoError(t, err)
		require.NoError(t, repos.Shifts.Create(ctx, shift))

		working, err := repos.Shifts.ExistsForEmployeeOn(ctx, emp.ID, day(15))
		require.NoError(t, err)
		assert.True(t, working)

		working, err = repos.Shifts.ExistsForEmployeeOn(ctx, emp.ID, day(16))
		require.NoError(t, err)
		assert.False(t, working)

		listed, err := repos.Shifts.List(ctx, store.ShiftFilter{EmployeeID: emp.ID, From: day(1), To: day(30)})
		require.NoError(t, err)
		assert.Len(t, listed, 1)

		// A unique violation aborts the transaction, so this goes last.
		dup, err := domain.NewShiftAssignment(emp.ID, day(15), "morning")
		require.NoError(t, err)
		assert.ErrorIs(t, repos.Shifts.Create(ctx, dup), store.ErrShiftExists)
	})
}

func TestIntegration_RecurringOccurrencesAreUnique(t *testing.T) {
	db := testdb.GetTestDBWithT(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		ctx := context.Background()
		repos := postgres.NewRepos(tx, nil)
		emp := createEmployee(t, repos, "Ben")

		tmpl, err := domain.NewRecurrenceTemplate("Clean fridge", "", emp.ID,
			domain.FrequencyWeekly, domain.PriorityLow, day(1))
		require.NoError(t, err)
		require.NoError(t, repos.Templates.Create(ctx, tmpl))

		due, err := repos.Templates.ListDueIDs(ctx, day(1))
		require.NoError(t, err)
		assert.Contains(t, due, tmpl.ID)

		payload := domain.TaskPayload{
			Title:      tmpl.Title,
			EmployeeID: emp.ID,
			Date:       day(1),
			Priority:   tmpl.Priority,
			TemplateID: &tmpl.ID,
		}
		first, err := domain.NewTaskInstance(payload)
		require.NoError(t, err)
		require.NoError(t, repos.Tasks.Create(ctx, first))

		second, err := domain.NewTaskInstance(payload)
		require.NoError(t, err)
		assert.ErrorIs(t, repos.Tasks.Create(ctx, second), store.ErrOccurrenceExists)

		require.NoError(t, repos.Templates.UpdateNextDueDate(ctx, tmpl.ID, day(8)))
		due, err = repos.Templates.ListDueIDs(ctx, day(7))
		require.NoError(t, err)
		assert.NotContains(t, due, tmpl.ID)
	})
}

func TestIntegration_NotificationLifecycle(t *testing.T) {
	db := testdb.GetTestDBWithT(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		ctx := context.Background()
		repos := postgres.NewRepos(tx, nil)
		emp := createEmployee(t, repos, "Cleo")

		n := domain.NewConflictNotification(domain.NotificationAssignmentConflict,
			"Cleo is not working", "", domain.TaskPayload{
				Title:      "Restock",
				EmployeeID: emp.ID,
				Date:       day(20),
				Priority:   domain.PriorityHigh,
			}, time.Now())
		require.NoError(t, repos.Notifications.Create(ctx, n))

		pending, err := repos.Notifications.ListPending(ctx)
		require.NoError(t, err)
		require.NotEmpty(t, pending)

		task, err := domain.NewTaskInstance(n.Task)
		require.NoError(t, err)
		require.NoError(t, repos.Tasks.Create(ctx, task))

		locked, err := repos.Notifications.GetForUpdate(ctx, n.ID)
		require.NoError(t, err)
		require.NoError(t, locked.Resolve(task.ID, "reassigned", time.Now()))
		require.NoError(t, repos.Notifications.MarkResolved(ctx, locked))

		pending, err = repos.Notifications.ListPending(ctx)
		require.NoError(t, err)
		for _, p := range pending {
			assert.NotEqual(t, n.ID, p.ID)
		}
	})
}
