package service

import (
	"context"
	"testing"
	"time"

	"github.com/phrazzld/rota-api/internal/domain"
	"github.com/phrazzld/rota-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduleService_CreateShift(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	shift, err := e.schedules.CreateShift(ctx, manager, CreateShiftRequest{
		EmployeeID: ana.ID, Date: sept(8).Add(7 * time.Hour), Label: " morning ",
	})
	require.NoError(t, err)
	assert.NotZero(t, shift.ID)
	assert.Equal(t, sept(8), shift.Date)
	assert.Equal(t, "morning", shift.Label)

	_, err = e.schedules.CreateShift(ctx, manager, CreateShiftRequest{EmployeeID: ana.ID, Date: sept(8), Label: "evening"})
	require.NoError(t, err, "several shifts per day are allowed")

	_, err = e.schedules.CreateShift(ctx, manager, CreateShiftRequest{EmployeeID: ana.ID, Date: sept(8), Label: "morning"})
	assert.ErrorIs(t, err, store.ErrShiftExists)
	assert.True(t, store.IsDuplicateError(err))

	_, err = e.schedules.CreateShift(ctx, manager, CreateShiftRequest{EmployeeID: carla.ID, Date: sept(8), Label: "morning"})
	assert.ErrorIs(t, err, domain.ErrInactiveEmployee)

	_, err = e.schedules.CreateShift(ctx, manager, CreateShiftRequest{EmployeeID: 42, Date: sept(8), Label: "morning"})
	assert.ErrorIs(t, err, store.ErrEmployeeNotFound)

	_, err = e.schedules.CreateShift(ctx, manager, CreateShiftRequest{EmployeeID: ana.ID, Label: "morning"})
	assert.ErrorIs(t, err, domain.ErrInvalidDate)

	_, err = e.schedules.CreateShift(ctx, ana, CreateShiftRequest{EmployeeID: ana.ID, Date: sept(9), Label: "morning"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestScheduleService_ShiftMakesEmployeeAssignable(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	res, err := e.tasks.CreateTask(ctx, manager, CreateTaskRequest{Title: "a", EmployeeID: ana.ID, Date: sept(8)})
	require.NoError(t, err)
	require.NotNil(t, res.Conflict)

	_, err = e.schedules.CreateShift(ctx, manager, CreateShiftRequest{EmployeeID: ana.ID, Date: sept(8), Label: "morning"})
	require.NoError(t, err)

	res, err = e.tasks.CreateTask(ctx, manager, CreateTaskRequest{Title: "a", EmployeeID: ana.ID, Date: sept(8)})
	require.NoError(t, err)
	assert.NotNil(t, res.Task)
}

func TestScheduleService_ListShifts(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.shift(t, ana.ID, sept(8))
	e.shift(t, bruno.ID, sept(8))
	e.shift(t, bruno.ID, sept(10))

	all, err := e.schedules.ListShifts(ctx, manager, store.ShiftFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	own, err := e.schedules.ListShifts(ctx, bruno, store.ShiftFilter{})
	require.NoError(t, err)
	assert.Len(t, own, 2)
	for _, s := range own {
		assert.Equal(t, bruno.ID, s.EmployeeID)
	}

	_, err = e.schedules.ListShifts(ctx, bruno, store.ShiftFilter{EmployeeID: ana.ID})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	ranged, err := e.schedules.ListShifts(ctx, manager, store.ShiftFilter{From: sept(9), To: sept(30)})
	require.NoError(t, err)
	require.Len(t, ranged, 1)
	assert.Equal(t, sept(10), ranged[0].Date)
}
