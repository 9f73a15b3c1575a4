package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents where a task is in its lifecycle.
type TaskStatus string

// Possible task status values
const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
)

// Priority ranks how urgent a task is.
type Priority string

// Possible priority values
const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Task validation errors
var (
	ErrTaskIDEmpty    = fmt.Errorf("%w: task ID cannot be empty", ErrValidation)
	ErrTaskTitleEmpty = fmt.Errorf("%w: task title cannot be empty", ErrValidation)
)

// IsValid reports whether s is a known task status.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusDone:
		return true
	}
	return false
}

// IsValid reports whether p is a known priority.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// ParsePriority converts a raw priority, defaulting empty input to medium.
func ParsePriority(raw string) (Priority, error) {
	if raw == "" {
		return PriorityMedium, nil
	}
	p := Priority(strings.ToLower(raw))
	if !p.IsValid() {
		return "", ErrInvalidPriority
	}
	return p, nil
}

// TaskInstance is a concrete piece of work assigned to one employee on one date.
// It is created directly, materialized from a RecurrenceTemplate, or produced by
// resolving a conflict. Tasks are never deleted by the scheduling core.
type TaskInstance struct {
	ID               uuid.UUID  `json:"id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	EmployeeID       int64      `json:"employee_id"`
	Date             time.Time  `json:"date"`
	Status           TaskStatus `json:"status"`
	Priority         Priority   `json:"priority"`
	ParentTemplateID *uuid.UUID `json:"parent_template_id,omitempty"`
	StartedAt        *time.Time `json:"started_at,omitempty"`
	FinishedAt       *time.Time `json:"finished_at,omitempty"`
	DurationMinutes  *int       `json:"duration_minutes,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// NewTaskInstance creates a pending task from a payload.
func NewTaskInstance(p TaskPayload) (*TaskInstance, error) {
	now := time.Now().UTC()
	t := &TaskInstance{
		ID:               uuid.New(),
		Title:            strings.TrimSpace(p.Title),
		Description:      p.Description,
		EmployeeID:       p.EmployeeID,
		Date:             DateOnly(p.Date),
		Status:           TaskStatusPending,
		Priority:         p.Priority,
		ParentTemplateID: p.TemplateID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate checks if the TaskInstance has valid data.
func (t *TaskInstance) Validate() error {
	if t.ID == uuid.Nil {
		return ErrTaskIDEmpty
	}
	if t.Title == "" {
		return NewValidationError("title", "cannot be empty", ErrTaskTitleEmpty)
	}
	if t.EmployeeID <= 0 {
		return NewValidationError("employee_id", "must be positive", ErrValidation)
	}
	if t.Date.IsZero() {
		return NewValidationError("date", "is required", ErrInvalidDate)
	}
	if !t.Status.IsValid() {
		return ErrInvalidTaskStatus
	}
	if !t.Priority.IsValid() {
		return ErrInvalidPriority
	}
	return nil
}

// Start moves a pending task to in_progress and records when work began.
func (t *TaskInstance) Start(now time.Time) error {
	if t.Status != TaskStatusPending {
		return NewValidationError("status", "only pending tasks can be started", ErrInvalidTransition)
	}
	started := now.UTC()
	t.Status = TaskStatusInProgress
	t.StartedAt = &started
	t.UpdatedAt = started
	return nil
}

// Finish marks a task done. When the task was started, the elapsed time is
// recorded in whole minutes.
func (t *TaskInstance) Finish(now time.Time) error {
	if t.Status == TaskStatusDone {
		return NewValidationError("status", "task is already done", ErrInvalidTransition)
	}
	finished := now.UTC()
	t.Status = TaskStatusDone
	t.FinishedAt = &finished
	t.UpdatedAt = finished
	if t.StartedAt != nil {
		minutes := int(finished.Sub(*t.StartedAt).Minutes())
		if minutes < 0 {
			minutes = 0
		}
		t.DurationMinutes = &minutes
	}
	return nil
}

// TaskPayload carries the fields needed to create a TaskInstance.
// It is stored verbatim on conflict notifications so a conflict can later be
// turned into a task with a different employee or date.
type TaskPayload struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	EmployeeID  int64      `json:"employee_id"`
	Date        time.Time  `json:"date"`
	Priority    Priority   `json:"priority"`
	TemplateID  *uuid.UUID `json:"template_id,omitempty"`
	Frequency   Frequency  `json:"frequency,omitempty"`
}

// TaskFilter narrows task listings. Zero values mean "no constraint".
type TaskFilter struct {
	EmployeeID int64
	From       time.Time
	To         time.Time
	Status     TaskStatus
}

// Matches reports whether the task satisfies the filter.
func (f TaskFilter) Matches(t *TaskInstance) bool {
	if f.EmployeeID != 0 && t.EmployeeID != f.EmployeeID {
		return false
	}
	if !f.From.IsZero() && t.Date.Before(DateOnly(f.From)) {
		return false
	}
	if !f.To.IsZero() && t.Date.After(DateOnly(f.To)) {
		return false
	}
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	return true
}
