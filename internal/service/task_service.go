package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/rota-api/internal/authz"
	"github.com/phrazzld/rota-api/internal/domain"
	"github.com/phrazzld/rota-api/internal/domain/calendar"
	"github.com/phrazzld/rota-api/internal/events"
	"github.com/phrazzld/rota-api/internal/platform/logger"
	"github.com/phrazzld/rota-api/internal/platform/metrics"
	"github.com/phrazzld/rota-api/internal/staffing"
	"github.com/phrazzld/rota-api/internal/store"
)

const taskServiceName = "task"

// CreateTaskRequest describes a one-off task for one employee on one date.
type CreateTaskRequest struct {
	Title       string
	Description string
	EmployeeID  int64
	Date        time.Time
	Priority    domain.Priority
}

// CreateRecurringTaskRequest describes a recurrence template. A zero
// StartDate means today.
type CreateRecurringTaskRequest struct {
	Title       string
	Description string
	EmployeeID  int64
	Frequency   domain.Frequency
	Priority    domain.Priority
	StartDate   time.Time
}

// ConflictResult reports that a task was not created because its employee is
// not staffed on its date. The task was queued as a conflict notification.
type ConflictResult struct {
	NotificationID uuid.UUID `json:"notification_id"`
	EmployeeID     int64     `json:"employee_id"`
	Date           time.Time `json:"date"`
	Message        string    `json:"message"`
	Hint           string    `json:"hint"`
}

// CreateTaskResult is the result of CreateTask. Exactly one field is set.
type CreateTaskResult struct {
	Task     *domain.TaskInstance `json:"task,omitempty"`
	Conflict *ConflictResult      `json:"conflict,omitempty"`
}

// TaskService creates, lists and progresses task instances.
type TaskService interface {
	// CreateTask creates a pending task when the employee works on the date,
	// and otherwise queues an assignment conflict. Requires tasks.create.
	//
	// Returns store.ErrEmployeeNotFound or domain.ErrInactiveEmployee when
	// the employee cannot take tasks. A staffing conflict is reported in the
	// result, not as an error.
	CreateTask(ctx context.Context, actor *domain.Employee, req CreateTaskRequest) (*CreateTaskResult, error)

	// CreateRecurringTask stores a recurrence template and materializes any
	// occurrence already due. Requires tasks.create.
	CreateRecurringTask(
		ctx context.Context,
		actor *domain.Employee,
		req CreateRecurringTaskRequest,
	) (*domain.RecurrenceTemplate, error)

	// ListTasks returns tasks matching filter. Actors without tasks.view_all
	// only see their own tasks. Requires tasks.view.
	ListTasks(ctx context.Context, actor *domain.Employee, filter domain.TaskFilter) ([]*domain.TaskInstance, error)

	// GetTask returns one task. Requires tasks.view, plus tasks.view_all for
	// tasks of other employees.
	GetTask(ctx context.Context, actor *domain.Employee, id uuid.UUID) (*domain.TaskInstance, error)

	// StartTask moves a pending task to in_progress. Requires tasks.update on
	// own tasks and tasks.update_any on others.
	StartTask(ctx context.Context, actor *domain.Employee, id uuid.UUID) (*domain.TaskInstance, error)

	// FinishTask marks a task done and records its duration. Same permissions
	// as StartTask.
	FinishTask(ctx context.Context, actor *domain.Employee, id uuid.UUID) (*domain.TaskInstance, error)
}

// taskServiceImpl implements the TaskService interface
type taskServiceImpl struct {
	tx       store.Transactor
	repos    store.Repos
	staffing staffing.Checker
	guard    authz.Guard
	opts     options
	logger   *slog.Logger
}

var _ TaskService = (*taskServiceImpl)(nil)

// NewTaskService creates a new TaskService. repos are the non-transactional
// stores used for reads and single-row writes.
// It returns an error if any of the required dependencies are nil.
func NewTaskService(
	tx store.Transactor,
	repos store.Repos,
	checker staffing.Checker,
	guard authz.Guard,
	logger *slog.Logger,
	opts ...Option,
) (TaskService, error) {
	if tx == nil {
		return nil, domain.NewValidationError("tx", "cannot be nil", domain.ErrValidation)
	}
	if repos.Employees == nil || repos.Tasks == nil || repos.Templates == nil || repos.Notifications == nil {
		return nil, domain.NewValidationError("repos", "missing task stores", domain.ErrValidation)
	}
	if checker == nil {
		return nil, domain.NewValidationError("checker", "cannot be nil", domain.ErrValidation)
	}
	if guard == nil {
		return nil, domain.NewValidationError("guard", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &taskServiceImpl{
		tx:       tx,
		repos:    repos,
		staffing: checker,
		guard:    guard,
		opts:     newOptions(opts),
		logger:   logger.With(slog.String("component", "task_service")),
	}, nil
}

// assignee loads an employee that may receive tasks.
func (s *taskServiceImpl) assignee(ctx context.Context, id int64) (*domain.Employee, error) {
	emp, err := s.repos.Employees.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !emp.Assignable() {
		return nil, fmt.Errorf("%w: employee %d", domain.ErrInactiveEmployee, id)
	}
	return emp, nil
}

// CreateTask implements TaskService.CreateTask
func (s *taskServiceImpl) CreateTask(
	ctx context.Context,
	actor *domain.Employee,
	req CreateTaskRequest,
) (*CreateTaskResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.Int64("employee_id", req.EmployeeID),
		slog.String("date", calendar.FormatDate(req.Date)))

	if err := s.guard.RequireOne(ctx, actor, authz.TasksCreate); err != nil {
		return nil, err
	}

	payload := domain.TaskPayload{
		Title:       req.Title,
		Description: req.Description,
		EmployeeID:  req.EmployeeID,
		Date:        req.Date,
		Priority:    req.Priority,
	}
	task, err := domain.NewTaskInstance(payload)
	if err != nil {
		return nil, err
	}

	emp, err := s.assignee(ctx, req.EmployeeID)
	if err != nil {
		return nil, err
	}
	if err := s.opts.tick(ctx); err != nil {
		return nil, NewServiceError(taskServiceName, "create_task", err)
	}

	working, err := s.staffing.IsWorking(ctx, task.EmployeeID, task.Date)
	if err != nil {
		log.Error("staffing check failed", slog.String("error", err.Error()))
		return nil, NewServiceError(taskServiceName, "create_task", err)
	}

	if !working {
		date := calendar.FormatDate(task.Date)
		message := fmt.Sprintf("%s is not working on %s", emp.Name, date)
		payload.Title = task.Title
		payload.Priority = task.Priority
		n := domain.NewConflictNotification(domain.NotificationAssignmentConflict, task.Title, message, payload, s.opts.now())
		if err := s.repos.Notifications.Create(ctx, n); err != nil {
			log.Error("failed to queue assignment conflict", slog.String("error", err.Error()))
			return nil, wrap(taskServiceName, "create_task", err)
		}

		metrics.RecordConflictRaised(ctx, string(n.Type))
		events.Emit(ctx, s.opts.emitter, log, events.TypeConflictRaised, n)
		log.Info("assignment conflict queued", slog.String("notification_id", n.ID.String()))

		return &CreateTaskResult{Conflict: &ConflictResult{
			NotificationID: n.ID,
			EmployeeID:     emp.ID,
			Date:           task.Date,
			Message:        message,
			Hint: fmt.Sprintf("Assign the task to an employee with a shift on %s, or reschedule it to a day %s works.",
				date, emp.Name),
		}}, nil
	}

	if err := s.repos.Tasks.Create(ctx, task); err != nil {
		log.Error("failed to create task", slog.String("error", err.Error()))
		return nil, wrap(taskServiceName, "create_task", err)
	}

	metrics.RecordTaskCreated(ctx, metrics.SourceDirect)
	events.Emit(ctx, s.opts.emitter, log, events.TypeTaskCreated, task)
	log.Info("task created", slog.String("task_id", task.ID.String()))
	return &CreateTaskResult{Task: task}, nil
}

// CreateRecurringTask implements TaskService.CreateRecurringTask
func (s *taskServiceImpl) CreateRecurringTask(
	ctx context.Context,
	actor *domain.Employee,
	req CreateRecurringTaskRequest,
) (*domain.RecurrenceTemplate, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.guard.RequireOne(ctx, actor, authz.TasksCreate); err != nil {
		return nil, err
	}

	start := req.StartDate
	if start.IsZero() {
		start = calendar.Today(s.opts.now(), s.opts.loc)
	}
	tmpl, err := domain.NewRecurrenceTemplate(req.Title, req.Description, req.EmployeeID,
		req.Frequency, req.Priority, start)
	if err != nil {
		return nil, err
	}
	if _, err := s.assignee(ctx, req.EmployeeID); err != nil {
		return nil, err
	}

	if err := s.repos.Templates.Create(ctx, tmpl); err != nil {
		log.Error("failed to create recurrence template", slog.String("error", err.Error()))
		return nil, wrap(taskServiceName, "create_recurring_task", err)
	}
	log.Info("recurrence template created",
		slog.String("template_id", tmpl.ID.String()),
		slog.String("frequency", string(tmpl.Frequency)),
		slog.String("first_due", calendar.FormatDate(tmpl.NextDueDate)))

	if err := s.opts.tick(ctx); err != nil {
		// The template is stored; the next tick picks it up.
		log.Warn("recurrence tick after template creation failed", slog.String("error", err.Error()))
		return tmpl, nil
	}
	current, err := s.repos.Templates.GetByID(ctx, tmpl.ID)
	if err != nil {
		return nil, wrap(taskServiceName, "create_recurring_task", err)
	}
	return current, nil
}

// ListTasks implements TaskService.ListTasks
func (s *taskServiceImpl) ListTasks(
	ctx context.Context,
	actor *domain.Employee,
	filter domain.TaskFilter,
) ([]*domain.TaskInstance, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.guard.RequireOne(ctx, actor, authz.TasksView); err != nil {
		return nil, err
	}
	all, err := s.guard.HasPermission(ctx, actor, authz.TasksViewAll)
	if err != nil {
		return nil, NewServiceError(taskServiceName, "list_tasks", err)
	}
	if !all {
		if filter.EmployeeID != 0 && filter.EmployeeID != actor.ID {
			return nil, s.guard.RequireOne(ctx, actor, authz.TasksViewAll)
		}
		filter.EmployeeID = actor.ID
	}
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, domain.ErrInvalidTaskStatus
	}

	if err := s.opts.tick(ctx); err != nil {
		return nil, NewServiceError(taskServiceName, "list_tasks", err)
	}

	tasks, err := s.repos.Tasks.List(ctx, filter)
	if err != nil {
		log.Error("failed to list tasks", slog.String("error", err.Error()))
		return nil, wrap(taskServiceName, "list_tasks", err)
	}
	return tasks, nil
}

// GetTask implements TaskService.GetTask
func (s *taskServiceImpl) GetTask(ctx context.Context, actor *domain.Employee, id uuid.UUID) (*domain.TaskInstance, error) {
	if err := s.guard.RequireOne(ctx, actor, authz.TasksView); err != nil {
		return nil, err
	}
	if err := s.opts.tick(ctx); err != nil {
		return nil, NewServiceError(taskServiceName, "get_task", err)
	}

	task, err := s.repos.Tasks.GetByID(ctx, id)
	if err != nil {
		return nil, wrap(taskServiceName, "get_task", err)
	}
	if task.EmployeeID != actor.ID {
		if err := s.guard.RequireOne(ctx, actor, authz.TasksViewAll); err != nil {
			return nil, err
		}
	}
	return task, nil
}

// StartTask implements TaskService.StartTask
func (s *taskServiceImpl) StartTask(ctx context.Context, actor *domain.Employee, id uuid.UUID) (*domain.TaskInstance, error) {
	return s.transition(ctx, actor, id, "start_task", (*domain.TaskInstance).Start)
}

// FinishTask implements TaskService.FinishTask
func (s *taskServiceImpl) FinishTask(ctx context.Context, actor *domain.Employee, id uuid.UUID) (*domain.TaskInstance, error) {
	return s.transition(ctx, actor, id, "finish_task", (*domain.TaskInstance).Finish)
}

// transition applies a lifecycle change to a locked task.
func (s *taskServiceImpl) transition(
	ctx context.Context,
	actor *domain.Employee,
	id uuid.UUID,
	op string,
	change func(*domain.TaskInstance, time.Time) error,
) (*domain.TaskInstance, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("task_id", id.String()))

	if err := s.guard.RequireAny(ctx, actor, authz.TasksUpdate, authz.TasksUpdateAny); err != nil {
		return nil, err
	}
	if err := s.opts.tick(ctx); err != nil {
		return nil, NewServiceError(taskServiceName, op, err)
	}

	// Ownership never changes, so it is checked before locking.
	current, err := s.repos.Tasks.GetByID(ctx, id)
	if err != nil {
		return nil, wrap(taskServiceName, op, err)
	}
	required := authz.TasksUpdateAny
	if current.EmployeeID == actor.ID {
		required = authz.TasksUpdate
	}
	if err := s.guard.RequireAny(ctx, actor, required, authz.TasksUpdateAny); err != nil {
		return nil, err
	}

	var task *domain.TaskInstance
	err = s.tx.RunInTx(ctx, func(ctx context.Context, r store.Repos) error {
		t, err := r.Tasks.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := change(t, s.opts.now()); err != nil {
			return err
		}
		if err := r.Tasks.Update(ctx, t); err != nil {
			return err
		}
		task = t
		return nil
	})
	if err != nil {
		if !isCallerError(err) {
			log.Error("task transition failed", slog.String("op", op), slog.String("error", err.Error()))
		}
		return nil, wrap(taskServiceName, op, err)
	}

	log.Info("task updated", slog.String("status", string(task.Status)))
	return task, nil
}
