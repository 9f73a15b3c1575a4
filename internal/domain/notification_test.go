package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConflictNotification_Resolve(t *testing.T) {
	n := NewConflictNotification(NotificationAssignmentConflict, "Conflict", "", TaskPayload{
		Title:      "Restock",
		EmployeeID: 2,
		Date:       time.Date(2025, time.September, 8, 10, 0, 0, 0, time.UTC),
	}, time.Date(2025, time.September, 8, 11, 30, 0, 0, time.FixedZone("CEST", 2*3600)))

	assert.True(t, n.IsPending())
	assert.Equal(t, time.Date(2025, time.September, 8, 0, 0, 0, 0, time.UTC), n.Task.Date)
	assert.Equal(t, time.Date(2025, time.September, 8, 9, 30, 0, 0, time.UTC), n.CreatedAt)

	taskID := uuid.New()
	at := time.Date(2025, time.September, 9, 8, 0, 0, 0, time.UTC)
	require.NoError(t, n.Resolve(taskID, "reassigned", at))

	assert.Equal(t, NotificationResolved, n.Status)
	assert.Equal(t, "reassigned", n.Resolution)
	require.NotNil(t, n.ResolvedTaskID)
	assert.Equal(t, taskID, *n.ResolvedTaskID)
	require.NotNil(t, n.ResolvedAt)
	assert.Equal(t, at, *n.ResolvedAt)

	err := n.Resolve(uuid.New(), "again", at)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, taskID, *n.ResolvedTaskID, "first resolution is kept")
}

func TestRole_PermissionSet(t *testing.T) {
	r := &Role{ID: "worker", Permissions: []string{"tasks.view", "tasks.view"}}
	set := r.PermissionSet()
	assert.Len(t, set, 1)
	_, ok := set["tasks.view"]
	assert.True(t, ok)

	var nilRole *Role
	assert.Empty(t, nilRole.PermissionSet())
}
