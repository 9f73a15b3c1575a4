package memory

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/rota-api/internal/domain"
)

type shiftDay struct {
	employeeID int64
	date       time.Time
}

type shiftKey struct {
	shiftDay
	label string
}

type occurrenceKey struct {
	templateID uuid.UUID
	date       time.Time
}

type dataset struct {
	employees      map[int64]*domain.Employee
	nextEmployeeID int64

	roles map[string]*domain.Role

	shifts      map[int64]*domain.ShiftAssignment
	shiftLabels map[shiftKey]int64
	shiftDays   map[shiftDay]int
	nextShiftID int64

	tasks       map[uuid.UUID]*domain.TaskInstance
	occurrences map[occurrenceKey]uuid.UUID

	templates     map[uuid.UUID]*domain.RecurrenceTemplate
	notifications map[uuid.UUID]*domain.ConflictNotification
}

func newDataset() *dataset {
	return &dataset{
		employees:     make(map[int64]*domain.Employee),
		roles:         make(map[string]*domain.Role),
		shifts:        make(map[int64]*domain.ShiftAssignment),
		shiftLabels:   make(map[shiftKey]int64),
		shiftDays:     make(map[shiftDay]int),
		tasks:         make(map[uuid.UUID]*domain.TaskInstance),
		occurrences:   make(map[occurrenceKey]uuid.UUID),
		templates:     make(map[uuid.UUID]*domain.RecurrenceTemplate),
		notifications: make(map[uuid.UUID]*domain.ConflictNotification),
	}
}

func (d *dataset) removeShift(id int64) {
	sh, ok := d.shifts[id]
	if !ok {
		return
	}
	day := shiftDay{employeeID: sh.EmployeeID, date: sh.Date}
	delete(d.shifts, id)
	delete(d.shiftLabels, shiftKey{shiftDay: day, label: sh.Label})
	if d.shiftDays[day] <= 1 {
		delete(d.shiftDays, day)
	} else {
		d.shiftDays[day]--
	}
}

func (d *dataset) removeTask(id uuid.UUID) {
	t, ok := d.tasks[id]
	if !ok {
		return
	}
	if t.ParentTemplateID != nil {
		delete(d.occurrences, occurrenceKey{templateID: *t.ParentTemplateID, date: t.Date})
	}
	delete(d.tasks, id)
}

func cloneEmployee(e *domain.Employee) *domain.Employee {
	c := *e
	return &c
}

func cloneRole(r *domain.Role) *domain.Role {
	c := *r
	c.Permissions = append([]string(nil), r.Permissions...)
	return &c
}

func cloneShift(s *domain.ShiftAssignment) *domain.ShiftAssignment {
	c := *s
	return &c
}

func cloneTask(t *domain.TaskInstance) *domain.TaskInstance {
	c := *t
	c.ParentTemplateID = clonePtr(t.ParentTemplateID)
	c.StartedAt = clonePtr(t.StartedAt)
	c.FinishedAt = clonePtr(t.FinishedAt)
	c.DurationMinutes = clonePtr(t.DurationMinutes)
	return &c
}

func cloneTemplate(t *domain.RecurrenceTemplate) *domain.RecurrenceTemplate {
	c := *t
	return &c
}

func cloneNotification(n *domain.ConflictNotification) *domain.ConflictNotification {
	c := *n
	c.Task.TemplateID = clonePtr(n.Task.TemplateID)
	c.ResolvedAt = clonePtr(n.ResolvedAt)
	c.ResolvedTaskID = clonePtr(n.ResolvedTaskID)
	return &c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
