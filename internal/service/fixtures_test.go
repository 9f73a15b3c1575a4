package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/phrazzld/rota-api/internal/authz"
	"github.com/phrazzld/rota-api/internal/domain"
	"github.com/phrazzld/rota-api/internal/platform/memory"
	"github.com/phrazzld/rota-api/internal/service/recurrence"
	"github.com/phrazzld/rota-api/internal/staffing"
	"github.com/stretchr/testify/require"
)

func sept(d int) time.Time {
	return time.Date(2025, time.September, d, 0, 0, 0, 0, time.UTC)
}

var (
	admin   = &domain.Employee{ID: 100, Name: "Ada", Role: authz.RoleAdmin, Active: true}
	manager = &domain.Employee{ID: 10, Name: "Marta", Role: authz.RoleManager, Active: true}
	ana     = &domain.Employee{ID: 1, Name: "Ana", Role: authz.RoleWorker, Active: true}
	bruno   = &domain.Employee{ID: 2, Name: "Bruno", Role: authz.RoleWorker, Active: true}
	carla   = &domain.Employee{ID: 3, Name: "Carla", Role: authz.RoleWorker, Active: false}
)

// env wires the services over one in-memory store with the default roles
// and a clock fixed on 2025-09-08.
type env struct {
	mem       *memory.Store
	guard     *authz.Authorizer
	engine    *recurrence.Engine
	tasks     TaskService
	roles     RoleService
	schedules ScheduleService
	employees EmployeeService
	now       time.Time
}

func newEnv(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()

	e := &env{mem: memory.NewStore(), now: sept(8).Add(9 * time.Hour)}
	for _, r := range authz.DefaultRoles() {
		e.mem.Roles().Put(ctx, r)
	}
	for _, emp := range []*domain.Employee{admin, manager, ana, bruno, carla} {
		clone := *emp
		require.NoError(t, e.mem.Employees().Create(ctx, &clone))
	}

	var err error
	e.guard, err = authz.NewAuthorizer(e.mem.Roles(), nil)
	require.NoError(t, err)
	oracle, err := staffing.NewOracle(e.mem.Shifts())
	require.NoError(t, err)

	clock := func() time.Time { return e.now }
	e.engine, err = recurrence.NewEngine(e.mem, e.mem.Templates(), oracle, nil, recurrence.WithClock(clock))
	require.NoError(t, err)

	e.tasks, err = NewTaskService(e.mem, e.mem.Repos(), oracle, e.guard, nil,
		WithTicker(e.engine), WithClock(clock))
	require.NoError(t, err)
	e.roles, err = NewRoleService(e.mem.Roles(), e.guard, nil)
	require.NoError(t, err)
	e.schedules, err = NewScheduleService(e.mem.Employees(), e.mem.Shifts(), e.guard, nil)
	require.NoError(t, err)
	e.employees, err = NewEmployeeService(e.mem.Employees(), e.mem.Roles(), e.guard, nil)
	require.NoError(t, err)
	return e
}

func (e *env) shift(t *testing.T, employeeID int64, date time.Time) {
	t.Helper()
	s, err := domain.NewShiftAssignment(employeeID, date, "morning")
	require.NoError(t, err)
	require.NoError(t, e.mem.Shifts().Create(context.Background(), s))
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
