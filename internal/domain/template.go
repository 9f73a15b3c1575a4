package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Frequency is how often a recurrence template produces a task.
type Frequency string

// Supported frequencies
const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

// IsValid reports whether f is a supported frequency.
func (f Frequency) IsValid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
		return true
	}
	return false
}

// Template validation errors
var (
	ErrTemplateIDEmpty    = fmt.Errorf("%w: template ID cannot be empty", ErrValidation)
	ErrTemplateTitleEmpty = fmt.Errorf("%w: template title cannot be empty", ErrValidation)
)

// RecurrenceTemplate periodically spawns TaskInstances for one employee.
// NextDueDate is the only field the recurrence engine mutates.
type RecurrenceTemplate struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	EmployeeID  int64     `json:"employee_id"`
	Frequency   Frequency `json:"frequency"`
	Priority    Priority  `json:"priority"`
	NextDueDate time.Time `json:"next_due_date"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewRecurrenceTemplate creates an active template whose first occurrence is firstDue.
func NewRecurrenceTemplate(
	title, description string,
	employeeID int64,
	frequency Frequency,
	priority Priority,
	firstDue time.Time,
) (*RecurrenceTemplate, error) {
	now := time.Now().UTC()
	t := &RecurrenceTemplate{
		ID:          uuid.New(),
		Title:       strings.TrimSpace(title),
		Description: description,
		EmployeeID:  employeeID,
		Frequency:   frequency,
		Priority:    priority,
		NextDueDate: DateOnly(firstDue),
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate checks if the RecurrenceTemplate has valid data.
func (t *RecurrenceTemplate) Validate() error {
	if t.ID == uuid.Nil {
		return ErrTemplateIDEmpty
	}
	if t.Title == "" {
		return NewValidationError("title", "cannot be empty", ErrTemplateTitleEmpty)
	}
	if t.EmployeeID <= 0 {
		return NewValidationError("employee_id", "must be positive", ErrValidation)
	}
	if !t.Frequency.IsValid() {
		return ErrInvalidFrequency
	}
	if !t.Priority.IsValid() {
		return ErrInvalidPriority
	}
	if t.NextDueDate.IsZero() {
		return NewValidationError("next_due_date", "is required", ErrInvalidDate)
	}
	return nil
}

// IsDue reports whether the template has an occurrence on or before today.
func (t *RecurrenceTemplate) IsDue(today time.Time) bool {
	return t.Active && !t.NextDueDate.After(DateOnly(today))
}

// Occurrence returns the payload of the task due on NextDueDate.
func (t *RecurrenceTemplate) Occurrence() TaskPayload {
	id := t.ID
	return TaskPayload{
		Title:       t.Title,
		Description: t.Description,
		EmployeeID:  t.EmployeeID,
		Date:        t.NextDueDate,
		Priority:    t.Priority,
		TemplateID:  &id,
		Frequency:   t.Frequency,
	}
}
