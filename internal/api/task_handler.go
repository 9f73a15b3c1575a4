package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/rota-api/internal/api/shared"
	"github.com/phrazzld/rota-api/internal/domain"
	"github.com/phrazzld/rota-api/internal/platform/logger"
	"github.com/phrazzld/rota-api/internal/service"
)

// TaskHandler serves task and recurring-task endpoints.
type TaskHandler struct {
	tasks  service.TaskService
	logger *slog.Logger
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(tasks service.TaskService, logger *slog.Logger) *TaskHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for TaskHandler")
	}
	return &TaskHandler{
		tasks:  tasks,
		logger: logger.With(slog.String("component", "task_handler")),
	}
}

// ListTasks handles GET /tasks.
// Query parameters: employee_id, from, to (YYYY-MM-DD) and status.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	emp, ok := requireEmployee(w, r)
	if !ok {
		return
	}

	filter, err := taskFilterFromQuery(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	tasks, err := h.tasks.ListTasks(r.Context(), emp, filter)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list tasks")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, tasksToResponse(tasks))
}

func taskFilterFromQuery(r *http.Request) (domain.TaskFilter, error) {
	var f domain.TaskFilter
	var err error
	q := r.URL.Query()

	if f.EmployeeID, err = parseEmployeeIDQuery(r); err != nil {
		return f, err
	}
	if f.From, err = parseDate("from", q.Get("from")); err != nil {
		return f, err
	}
	if f.To, err = parseDate("to", q.Get("to")); err != nil {
		return f, err
	}
	if raw := q.Get("status"); raw != "" {
		f.Status = domain.TaskStatus(raw)
		if !f.Status.IsValid() {
			return f, domain.NewValidationError("status", "must be pending, in_progress or done",
				domain.ErrInvalidTaskStatus)
		}
	}
	return f, nil
}

// CreateTask handles POST /tasks. It answers 201 with the task, or 409 with
// the queued conflict when the employee is not working on the date.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	emp, ok := requireEmployee(w, r)
	if !ok {
		return
	}

	var req CreateTaskRequest
	if !parseAndValidateRequest(w, r, &req) {
		return
	}
	date, err := parseDate("date", req.Date)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	priority, err := domain.ParsePriority(req.Priority)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	result, err := h.tasks.CreateTask(r.Context(), emp, service.CreateTaskRequest{
		Title:       req.Title,
		Description: req.Description,
		EmployeeID:  req.EmployeeID,
		Date:        date,
		Priority:    priority,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create task")
		return
	}

	if result.Conflict != nil {
		log.Debug("task creation queued as conflict",
			slog.String("notification_id", result.Conflict.NotificationID.String()))
		shared.RespondWithJSON(w, r, http.StatusConflict, conflictResultToResponse(result.Conflict))
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, taskToResponse(result.Task))
}

// CreateRecurringTask handles POST /recurring-tasks.
func (h *TaskHandler) CreateRecurringTask(w http.ResponseWriter, r *http.Request) {
	emp, ok := requireEmployee(w, r)
	if !ok {
		return
	}

	var req CreateRecurringTaskRequest
	if !parseAndValidateRequest(w, r, &req) {
		return
	}
	start, err := parseDate("start_date", req.StartDate)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	priority, err := domain.ParsePriority(req.Priority)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	tmpl, err := h.tasks.CreateRecurringTask(r.Context(), emp, service.CreateRecurringTaskRequest{
		Title:       req.Title,
		Description: req.Description,
		EmployeeID:  req.EmployeeID,
		Frequency:   domain.Frequency(req.Frequency),
		Priority:    priority,
		StartDate:   start,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create recurring task")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, templateToResponse(tmpl))
}

// GetTask handles GET /tasks/{id}.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	emp, id, ok := handleEmployeeAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	task, err := h.tasks.GetTask(r.Context(), emp, id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get task")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// StartTask handles POST /tasks/{id}/start.
func (h *TaskHandler) StartTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	emp, id, ok := handleEmployeeAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	task, err := h.tasks.StartTask(r.Context(), emp, id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to start task")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// FinishTask handles POST /tasks/{id}/finish.
func (h *TaskHandler) FinishTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	emp, id, ok := handleEmployeeAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	task, err := h.tasks.FinishTask(r.Context(), emp, id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to finish task")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}
