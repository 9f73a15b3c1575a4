package conflict

import (
	"fmt"
	"time"

	"github.com/phrazzld/rota-api/internal/domain"
	"github.com/phrazzld/rota-api/internal/domain/calendar"
)

// Action is a resolution strategy: Reassign or Reschedule.
type Action interface {
	// Name identifies the action in metrics and logs.
	Name() string

	validate() error
	apply(p domain.TaskPayload) domain.TaskPayload
	note(original domain.TaskPayload, assignee *domain.Employee) string
}

// Reassign gives the task to another employee on the original date.
type Reassign struct {
	EmployeeID int64
}

// Name implements Action.
func (Reassign) Name() string { return "reassign" }

func (a Reassign) validate() error {
	if a.EmployeeID <= 0 {
		return domain.NewValidationError("employee_id", "must be positive", domain.ErrValidation)
	}
	return nil
}

// apply keeps the recurrence link: the date is unchanged, so the task is
// still that template's occurrence.
func (a Reassign) apply(p domain.TaskPayload) domain.TaskPayload {
	p.EmployeeID = a.EmployeeID
	return p
}

func (a Reassign) note(original domain.TaskPayload, assignee *domain.Employee) string {
	return fmt.Sprintf("Reassigned from employee %d to %s (employee %d) on %s",
		original.EmployeeID, assignee.Name, assignee.ID, calendar.FormatDate(original.Date))
}

// Reschedule moves the task to another date for the original employee.
type Reschedule struct {
	Date time.Time
}

// Name implements Action.
func (Reschedule) Name() string { return "reschedule" }

func (a Reschedule) validate() error {
	if a.Date.IsZero() {
		return domain.NewValidationError("date", "is required", domain.ErrInvalidDate)
	}
	return nil
}

// apply drops the recurrence link: the template owns its own dates, and a
// moved occurrence must not collide with the one it materializes there.
func (a Reschedule) apply(p domain.TaskPayload) domain.TaskPayload {
	p.Date = domain.DateOnly(a.Date)
	p.TemplateID = nil
	return p
}

func (a Reschedule) note(original domain.TaskPayload, assignee *domain.Employee) string {
	return fmt.Sprintf("Rescheduled for %s from %s to %s",
		assignee.Name, calendar.FormatDate(original.Date), calendar.FormatDate(a.Date))
}
