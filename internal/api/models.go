package api

import (
	"time"

	"github.com/phrazzld/rota-api/internal/authz"
	"github.com/phrazzld/rota-api/internal/domain"
	"github.com/phrazzld/rota-api/internal/domain/calendar"
	"github.com/phrazzld/rota-api/internal/service"
	"github.com/phrazzld/rota-api/internal/service/conflict"
)

// Request bodies. Dates are calendar dates in YYYY-MM-DD form.

// CreateTaskRequest is the body of POST /tasks.
type CreateTaskRequest struct {
	Title       string `json:"title"       validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
	EmployeeID  int64  `json:"employee_id" validate:"required,gt=0"`
	Date        string `json:"date"        validate:"required,datetime=2006-01-02"`
	Priority    string `json:"priority"    validate:"omitempty,oneof=low medium high"`
}

// CreateRecurringTaskRequest is the body of POST /recurring-tasks.
type CreateRecurringTaskRequest struct {
	Title       string `json:"title"       validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
	EmployeeID  int64  `json:"employee_id" validate:"required,gt=0"`
	Frequency   string `json:"frequency"   validate:"required,oneof=daily weekly monthly"`
	Priority    string `json:"priority"    validate:"omitempty,oneof=low medium high"`
	StartDate   string `json:"start_date"  validate:"omitempty,datetime=2006-01-02"`
}

// ResolveConflictRequest is the body of POST /conflicts/{id}/resolve.
// Reassign uses EmployeeID, reschedule uses Date.
type ResolveConflictRequest struct {
	Action     string `json:"action"      validate:"required,oneof=reassign reschedule"`
	EmployeeID int64  `json:"employee_id" validate:"gte=0"`
	Date       string `json:"date"        validate:"omitempty,datetime=2006-01-02"`
}

// CreateShiftRequest is the body of POST /schedules.
type CreateShiftRequest struct {
	EmployeeID int64  `json:"employee_id" validate:"required,gt=0"`
	Date       string `json:"date"        validate:"required,datetime=2006-01-02"`
	Label      string `json:"label"       validate:"max=100"`
}

// UpdatePermissionsRequest is the body of PUT /roles/{id}/permissions.
// An empty list removes every permission from the role.
type UpdatePermissionsRequest struct {
	Permissions []string `json:"permissions" validate:"required,dive,required"`
}

// CreateEmployeeRequest is the body of POST /employees.
type CreateEmployeeRequest struct {
	Name  string `json:"name"  validate:"required,max=200"`
	Email string `json:"email" validate:"omitempty,email,max=254"`
	Role  string `json:"role"  validate:"required,max=64"`
}

// UpdateEmployeeRequest is the body of PUT /employees/{id}. Omitted fields
// are left unchanged.
type UpdateEmployeeRequest struct {
	Name   *string `json:"name"   validate:"omitempty,min=1,max=200"`
	Email  *string `json:"email"  validate:"omitempty,max=254"`
	Role   *string `json:"role"   validate:"omitempty,min=1,max=64"`
	Active *bool   `json:"active"`
}

// Responses.

// TaskResponse is the wire form of a task instance.
type TaskResponse struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	EmployeeID       int64      `json:"employee_id"`
	Date             string     `json:"date"`
	Status           string     `json:"status"`
	Priority         string     `json:"priority"`
	ParentTemplateID string     `json:"parent_template_id,omitempty"`
	StartedAt        *time.Time `json:"started_at,omitempty"`
	FinishedAt       *time.Time `json:"finished_at,omitempty"`
	DurationMinutes  *int       `json:"duration_minutes,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// TemplateResponse is the wire form of a recurrence template.
type TemplateResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	EmployeeID  int64     `json:"employee_id"`
	Frequency   string    `json:"frequency"`
	Priority    string    `json:"priority"`
	NextDueDate string    `json:"next_due_date"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
}

// ConflictResponse is the 409 body returned when a task cannot be placed
// because its employee is not working on the requested date.
type ConflictResponse struct {
	Error          string `json:"error"`
	NotificationID string `json:"notification_id,omitempty"`
	EmployeeID     int64  `json:"employee_id"`
	Date           string `json:"date"`
	Hint           string `json:"hint,omitempty"`
}

// PayloadResponse is the task a pending notification would create.
type PayloadResponse struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	EmployeeID  int64  `json:"employee_id"`
	Date        string `json:"date"`
	Priority    string `json:"priority"`
	TemplateID  string `json:"template_id,omitempty"`
}

// NotificationResponse is the wire form of a conflict notification.
type NotificationResponse struct {
	ID             string          `json:"id"`
	Type           string          `json:"type"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Task           PayloadResponse `json:"task"`
	Status         string          `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
	Resolution     string          `json:"resolution,omitempty"`
	ResolvedAt     *time.Time      `json:"resolved_at,omitempty"`
	ResolvedTaskID string          `json:"resolved_task_id,omitempty"`
}

// ResolveResponse is the 200 body of a successful resolution.
type ResolveResponse struct {
	Task         TaskResponse         `json:"task"`
	Notification NotificationResponse `json:"notification"`
}

// ShiftResponse is the wire form of a shift assignment.
type ShiftResponse struct {
	ID         int64  `json:"id"`
	EmployeeID int64  `json:"employee_id"`
	Date       string `json:"date"`
	Label      string `json:"label"`
}

// EmployeeResponse is the wire form of an employee.
type EmployeeResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// RoleResponse is the wire form of a role.
type RoleResponse struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Permissions []string `json:"permissions"`
}

// PermissionCatalogResponse lists known permissions grouped by category.
type PermissionCatalogResponse struct {
	Permissions []authz.Permission            `json:"permissions"`
	ByCategory  map[string][]authz.Permission `json:"by_category"`
}

// MyPermissionsResponse lists the caller's effective permissions.
type MyPermissionsResponse struct {
	EmployeeID  int64    `json:"employee_id"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

func taskToResponse(t *domain.TaskInstance) TaskResponse {
	resp := TaskResponse{
		ID:              t.ID.String(),
		Title:           t.Title,
		Description:     t.Description,
		EmployeeID:      t.EmployeeID,
		Date:            calendar.FormatDate(t.Date),
		Status:          string(t.Status),
		Priority:        string(t.Priority),
		StartedAt:       t.StartedAt,
		FinishedAt:      t.FinishedAt,
		DurationMinutes: t.DurationMinutes,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
	if t.ParentTemplateID != nil {
		resp.ParentTemplateID = t.ParentTemplateID.String()
	}
	return resp
}

func tasksToResponse(tasks []*domain.TaskInstance) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, taskToResponse(t))
	}
	return out
}

func templateToResponse(t *domain.RecurrenceTemplate) TemplateResponse {
	return TemplateResponse{
		ID:          t.ID.String(),
		Title:       t.Title,
		Description: t.Description,
		EmployeeID:  t.EmployeeID,
		Frequency:   string(t.Frequency),
		Priority:    string(t.Priority),
		NextDueDate: calendar.FormatDate(t.NextDueDate),
		Active:      t.Active,
		CreatedAt:   t.CreatedAt,
	}
}

func conflictResultToResponse(c *service.ConflictResult) ConflictResponse {
	return ConflictResponse{
		Error:          c.Message,
		NotificationID: c.NotificationID.String(),
		EmployeeID:     c.EmployeeID,
		Date:           calendar.FormatDate(c.Date),
		Hint:           c.Hint,
	}
}

func reConflictToResponse(c *conflict.ReConflict) ConflictResponse {
	return ConflictResponse{
		Error:          c.Message,
		NotificationID: c.NotificationID.String(),
		EmployeeID:     c.EmployeeID,
		Date:           calendar.FormatDate(c.Date),
		Hint:           "Pick an employee who works on that date, or another date.",
	}
}

func notificationToResponse(n *domain.ConflictNotification) NotificationResponse {
	resp := NotificationResponse{
		ID:          n.ID.String(),
		Type:        string(n.Type),
		Title:       n.Title,
		Description: n.Description,
		Task: PayloadResponse{
			Title:       n.Task.Title,
			Description: n.Task.Description,
			EmployeeID:  n.Task.EmployeeID,
			Date:        calendar.FormatDate(n.Task.Date),
			Priority:    string(n.Task.Priority),
		},
		Status:     string(n.Status),
		CreatedAt:  n.CreatedAt,
		Resolution: n.Resolution,
		ResolvedAt: n.ResolvedAt,
	}
	if n.Task.TemplateID != nil {
		resp.Task.TemplateID = n.Task.TemplateID.String()
	}
	if n.ResolvedTaskID != nil {
		resp.ResolvedTaskID = n.ResolvedTaskID.String()
	}
	return resp
}

func notificationsToResponse(ns []*domain.ConflictNotification) []NotificationResponse {
	out := make([]NotificationResponse, 0, len(ns))
	for _, n := range ns {
		out = append(out, notificationToResponse(n))
	}
	return out
}

func shiftToResponse(s *domain.ShiftAssignment) ShiftResponse {
	return ShiftResponse{
		ID:         s.ID,
		EmployeeID: s.EmployeeID,
		Date:       calendar.FormatDate(s.Date),
		Label:      s.Label,
	}
}

func roleToResponse(r *domain.Role) RoleResponse {
	perms := r.Permissions
	if perms == nil {
		perms = []string{}
	}
	return RoleResponse{ID: r.ID, Name: r.Name, Description: r.Description, Permissions: perms}
}

func employeeToResponse(e *domain.Employee) EmployeeResponse {
	return EmployeeResponse{
		ID:        e.ID,
		Name:      e.Name,
		Email:     e.Email,
		Role:      e.Role,
		Active:    e.Active,
		CreatedAt: e.CreatedAt,
	}
}
