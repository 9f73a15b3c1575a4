package conflict

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/rota-api/internal/authz"
	"github.com/phrazzld/rota-api/internal/domain"
	"github.com/phrazzld/rota-api/internal/platform/memory"
	"github.com/phrazzld/rota-api/internal/service/recurrence"
	"github.com/phrazzld/rota-api/internal/staffing"
	"github.com/phrazzld/rota-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sept(d int) time.Time {
	return time.Date(2025, time.September, d, 0, 0, 0, 0, time.UTC)
}

var (
	manager = &domain.Employee{ID: 10, Name: "Marta", Role: authz.RoleManager, Active: true}
	worker  = &domain.Employee{ID: 1, Name: "Ana", Role: authz.RoleWorker, Active: true}
	other   = &domain.Employee{ID: 2, Name: "Bruno", Role: authz.RoleWorker, Active: true}
	retired = &domain.Employee{ID: 3, Name: "Carla", Role: authz.RoleWorker, Active: false}
)

type fixture struct {
	mem   *memory.Store
	queue Queue
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	ctx := context.Background()
	mem := memory.NewStore()
	for _, r := range authz.DefaultRoles() {
		mem.Roles().Put(ctx, r)
	}
	for _, e := range []*domain.Employee{manager, worker, other, retired} {
		clone := *e
		require.NoError(t, mem.Employees().Create(ctx, &clone))
	}

	guard, err := authz.NewAuthorizer(mem.Roles(), nil)
	require.NoError(t, err)
	oracle, err := staffing.NewOracle(mem.Shifts())
	require.NoError(t, err)

	q, err := NewQueue(mem, mem.Notifications(), oracle, guard, nil, opts...)
	require.NoError(t, err)
	return &fixture{mem: mem, queue: q}
}

func (f *fixture) shift(t *testing.T, employeeID int64, date time.Time) {
	t.Helper()
	s, err := domain.NewShiftAssignment(employeeID, date, "morning")
	require.NoError(t, err)
	require.NoError(t, f.mem.Shifts().Create(context.Background(), s))
}

func (f *fixture) conflict(t *testing.T, employeeID int64, date time.Time) *domain.ConflictNotification {
	t.Helper()
	n := domain.NewConflictNotification(domain.NotificationAssignmentConflict, "Count till", "not working",
		domain.TaskPayload{Title: "Count till", EmployeeID: employeeID, Date: date, Priority: domain.PriorityHigh},
		time.Now())
	require.NoError(t, f.mem.Notifications().Create(context.Background(), n))
	return n
}

func (f *fixture) tasks(t *testing.T) []*domain.TaskInstance {
	t.Helper()
	tasks, err := f.mem.Tasks().List(context.Background(), domain.TaskFilter{})
	require.NoError(t, err)
	return tasks
}

func TestResolve_Reassign(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.shift(t, other.ID, sept(8))
	n := f.conflict(t, worker.ID, sept(8))

	outcome, err := f.queue.Resolve(ctx, manager, n.ID, Reassign{EmployeeID: other.ID})
	require.NoError(t, err)
	require.Nil(t, outcome.Conflict)
	require.NotNil(t, outcome.Task)

	assert.Equal(t, other.ID, outcome.Task.EmployeeID)
	assert.Equal(t, sept(8), outcome.Task.Date)
	assert.Equal(t, "Count till", outcome.Task.Title)
	assert.Equal(t, domain.PriorityHigh, outcome.Task.Priority)
	assert.Equal(t, domain.TaskStatusPending, outcome.Task.Status)

	resolved := outcome.Notification
	assert.Equal(t, domain.NotificationResolved, resolved.Status)
	require.NotNil(t, resolved.ResolvedTaskID)
	assert.Equal(t, outcome.Task.ID, *resolved.ResolvedTaskID)
	assert.NotNil(t, resolved.ResolvedAt)
	assert.Contains(t, resolved.Resolution, "Bruno")

	pending, err := f.queue.ListPending(ctx, manager)
	require.NoError(t, err)
	assert.Empty(t, pending)
	assert.Len(t, f.tasks(t), 1)
}

func TestResolve_Reschedule(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.shift(t, worker.ID, sept(9))
	n := f.conflict(t, worker.ID, sept(8))

	outcome, err := f.queue.Resolve(ctx, manager, n.ID, Reschedule{Date: sept(9).Add(10 * time.Hour)})
	require.NoError(t, err)
	require.NotNil(t, outcome.Task)
	assert.Equal(t, worker.ID, outcome.Task.EmployeeID)
	assert.Equal(t, sept(9), outcome.Task.Date)
	assert.Contains(t, outcome.Notification.Resolution, "2025-09-08")
	assert.Contains(t, outcome.Notification.Resolution, "2025-09-09")
}

func TestResolve_RescheduleDropsRecurrenceLink(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.shift(t, worker.ID, sept(9))

	templateID := uuid.New()
	n := domain.NewConflictNotification(domain.NotificationRecurringConflict, "Open", "",
		domain.TaskPayload{Title: "Open", EmployeeID: worker.ID, Date: sept(8), TemplateID: &templateID},
		time.Now())
	require.NoError(t, f.mem.Notifications().Create(ctx, n))

	outcome, err := f.queue.Resolve(ctx, manager, n.ID, Reschedule{Date: sept(9)})
	require.NoError(t, err)
	require.NotNil(t, outcome.Task)
	assert.Nil(t, outcome.Task.ParentTemplateID)
}

func TestResolve_ReConflictLeavesNotificationPending(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	n := f.conflict(t, worker.ID, sept(8))

	outcome, err := f.queue.Resolve(ctx, manager, n.ID, Reassign{EmployeeID: other.ID})
	require.NoError(t, err)
	require.NotNil(t, outcome.Conflict)
	assert.Nil(t, outcome.Task)
	assert.Equal(t, n.ID, outcome.Conflict.NotificationID)
	assert.Equal(t, other.ID, outcome.Conflict.EmployeeID)
	assert.Equal(t, sept(8), outcome.Conflict.Date)
	assert.Contains(t, outcome.Conflict.Message, "Bruno")
	assert.Contains(t, outcome.Conflict.Message, "2025-09-08")

	pending, err := f.queue.ListPending(ctx, manager)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, n.ID, pending[0].ID)
	assert.Empty(t, f.tasks(t))

	f.shift(t, worker.ID, sept(10))
	outcome, err = f.queue.Resolve(ctx, manager, n.ID, Reschedule{Date: sept(10)})
	require.NoError(t, err)
	assert.NotNil(t, outcome.Task, "a rejected attempt does not block a later one")
}

func TestResolve_SecondResolveIsNotFound(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.shift(t, other.ID, sept(8))
	n := f.conflict(t, worker.ID, sept(8))

	_, err := f.queue.Resolve(ctx, manager, n.ID, Reassign{EmployeeID: other.ID})
	require.NoError(t, err)

	_, err = f.queue.Resolve(ctx, manager, n.ID, Reassign{EmployeeID: other.ID})
	assert.ErrorIs(t, err, store.ErrNotificationNotFound)
	assert.Len(t, f.tasks(t), 1)
}

func TestResolve_ConcurrentResolversProduceOneTask(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.shift(t, other.ID, sept(8))
	n := f.conflict(t, worker.ID, sept(8))

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		wins     int
		notFound int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.queue.Resolve(ctx, manager, n.ID, Reassign{EmployeeID: other.ID})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case errors.Is(err, store.ErrNotificationNotFound):
				notFound++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	assert.Equal(t, 7, notFound)
	assert.Len(t, f.tasks(t), 1)
}

func TestResolve_Errors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.shift(t, retired.ID, sept(8))
	n := f.conflict(t, worker.ID, sept(8))

	_, err := f.queue.Resolve(ctx, manager, uuid.New(), Reassign{EmployeeID: other.ID})
	assert.ErrorIs(t, err, store.ErrNotificationNotFound, "unknown notification")

	_, err = f.queue.Resolve(ctx, manager, n.ID, Reassign{EmployeeID: 99})
	assert.ErrorIs(t, err, store.ErrEmployeeNotFound, "unknown employee")

	_, err = f.queue.Resolve(ctx, manager, n.ID, Reassign{EmployeeID: retired.ID})
	assert.ErrorIs(t, err, domain.ErrInactiveEmployee, "inactive employee even with a shift")

	_, err = f.queue.Resolve(ctx, manager, n.ID, Reassign{})
	assert.True(t, domain.IsValidationError(err))

	_, err = f.queue.Resolve(ctx, manager, n.ID, Reschedule{})
	assert.ErrorIs(t, err, domain.ErrInvalidDate)

	_, err = f.queue.Resolve(ctx, manager, n.ID, nil)
	assert.True(t, domain.IsValidationError(err))

	_, err = f.queue.Resolve(ctx, worker, n.ID, Reassign{EmployeeID: other.ID})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.queue.ListPending(ctx, worker)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	pending, err := f.queue.ListPending(ctx, manager)
	require.NoError(t, err)
	assert.Len(t, pending, 1, "failed attempts leave the notification pending")
}

func TestListPending_RunsTickFirst(t *testing.T) {
	ctx := context.Background()
	mem := memory.NewStore()
	for _, r := range authz.DefaultRoles() {
		mem.Roles().Put(ctx, r)
	}
	require.NoError(t, mem.Employees().Create(ctx, &domain.Employee{ID: 1, Name: "Ana", Role: authz.RoleWorker, Active: true}))

	tmpl, err := domain.NewRecurrenceTemplate("Open", "", 1, domain.FrequencyWeekly, "", sept(8))
	require.NoError(t, err)
	require.NoError(t, mem.Templates().Create(ctx, tmpl))

	guard, err := authz.NewAuthorizer(mem.Roles(), nil)
	require.NoError(t, err)
	oracle, err := staffing.NewOracle(mem.Shifts())
	require.NoError(t, err)
	engine, err := recurrence.NewEngine(mem, mem.Templates(), oracle, nil,
		recurrence.WithClock(func() time.Time { return sept(8) }))
	require.NoError(t, err)

	q, err := NewQueue(mem, mem.Notifications(), oracle, guard, nil, WithTicker(engine))
	require.NoError(t, err)

	pending, err := q.ListPending(ctx, manager)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, domain.NotificationRecurringConflict, pending[0].Type)
}

func TestNewQueue_ValidatesDependencies(t *testing.T) {
	mem := memory.NewStore()
	guard, err := authz.NewAuthorizer(mem.Roles(), nil)
	require.NoError(t, err)
	oracle, err := staffing.NewOracle(mem.Shifts())
	require.NoError(t, err)

	_, err = NewQueue(nil, mem.Notifications(), oracle, guard, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = NewQueue(mem, nil, oracle, guard, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = NewQueue(mem, mem.Notifications(), nil, guard, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = NewQueue(mem, mem.Notifications(), oracle, nil, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
}
