package domain

import (
	"time"

	"github.com/google/uuid"
)

// NotificationType distinguishes where a conflict came from.
type NotificationType string

// Notification types
const (
	NotificationAssignmentConflict NotificationType = "assignment_conflict"
	NotificationRecurringConflict  NotificationType = "recurring_conflict"
)

// NotificationStatus tracks whether a conflict still needs attention.
type NotificationStatus string

// Notification statuses
const (
	NotificationPending  NotificationStatus = "pending"
	NotificationResolved NotificationStatus = "resolved"
)

// ConflictNotification is a manager-queue entry for a task that could not be
// placed because its employee is not staffed on its date. It moves from pending
// to resolved exactly once, and a resolved notification always references the
// task its resolution produced.
type ConflictNotification struct {
	ID             uuid.UUID          `json:"id"`
	Type           NotificationType   `json:"type"`
	Title          string             `json:"title"`
	Description    string             `json:"description"`
	Task           TaskPayload        `json:"task"`
	Status         NotificationStatus `json:"status"`
	CreatedAt      time.Time          `json:"created_at"`
	Resolution     string             `json:"resolution,omitempty"`
	ResolvedAt     *time.Time         `json:"resolved_at,omitempty"`
	ResolvedTaskID *uuid.UUID         `json:"resolved_task_id,omitempty"`
}

// NewConflictNotification creates a pending notification for the given payload,
// raised at createdAt.
func NewConflictNotification(
	kind NotificationType,
	title, description string,
	task TaskPayload,
	createdAt time.Time,
) *ConflictNotification {
	task.Date = DateOnly(task.Date)
	return &ConflictNotification{
		ID:          uuid.New(),
		Type:        kind,
		Title:       title,
		Description: description,
		Task:        task,
		Status:      NotificationPending,
		CreatedAt:   createdAt.UTC(),
	}
}

// IsPending reports whether the notification is still awaiting resolution.
func (n *ConflictNotification) IsPending() bool {
	return n.Status == NotificationPending
}

// Resolve marks the notification resolved by the given task.
func (n *ConflictNotification) Resolve(taskID uuid.UUID, note string, at time.Time) error {
	if !n.IsPending() {
		return NewValidationError("status", "notification is already resolved", ErrInvalidTransition)
	}
	resolvedAt := at.UTC()
	n.Status = NotificationResolved
	n.Resolution = note
	n.ResolvedAt = &resolvedAt
	n.ResolvedTaskID = &taskID
	return nil
}
