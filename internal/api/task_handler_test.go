package api

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/rota-api/internal/api/shared"
	"github.com/phrazzld/rota-api/internal/authz"
	"github.com/phrazzld/rota-api/internal/domain"
	"github.com/phrazzld/rota-api/internal/mocks"
	"github.com/phrazzld/rota-api/internal/service"
	"github.com/phrazzld/rota-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func taskRouter(svc service.TaskService) chi.Router {
	h := NewTaskHandler(svc, testLogger())
	r := chi.NewRouter()
	r.Get("/tasks", h.ListTasks)
	r.Post("/tasks", h.CreateTask)
	r.Get("/tasks/{id}", h.GetTask)
	r.Post("/tasks/{id}/start", h.StartTask)
	r.Post("/tasks/{id}/finish", h.FinishTask)
	r.Post("/recurring-tasks", h.CreateRecurringTask)
	return r
}

func sampleTask(employeeID int64) *domain.TaskInstance {
	t, err := domain.NewTaskInstance(domain.TaskPayload{
		Title:      "Count stock",
		EmployeeID: employeeID,
		Date:       sept(8),
	})
	if err != nil {
		panic(err)
	}
	return t
}

func TestCreateTask_Created(t *testing.T) {
	var got service.CreateTaskRequest
	svc := &mocks.MockTaskService{
		CreateTaskFn: func(ctx context.Context, actor *domain.Employee,
			req service.CreateTaskRequest) (*service.CreateTaskResult, error) {
			assert.Equal(t, manager.ID, actor.ID)
			got = req
			return &service.CreateTaskResult{Task: sampleTask(req.EmployeeID)}, nil
		},
	}

	rec := do(t, taskRouter(svc), manager, http.MethodPost, "/tasks",
		`{"title":"Count stock","employee_id":1,"date":"2025-09-08"}`)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, sept(8), got.Date)
	assert.Equal(t, domain.PriorityMedium, got.Priority)

	resp := decode[TaskResponse](t, rec)
	assert.Equal(t, "2025-09-08", resp.Date)
	assert.Equal(t, "pending", resp.Status)
	assert.Equal(t, int64(1), resp.EmployeeID)
}

func TestCreateTask_ConflictIs409(t *testing.T) {
	notificationID := uuid.New()
	svc := &mocks.MockTaskService{
		CreateTaskFn: func(ctx context.Context, actor *domain.Employee,
			req service.CreateTaskRequest) (*service.CreateTaskResult, error) {
			return &service.CreateTaskResult{Conflict: &service.ConflictResult{
				NotificationID: notificationID,
				EmployeeID:     2,
				Date:           sept(8),
				Message:        "Bruno is not working on 2025-09-08",
				Hint:           "A manager can reassign or reschedule it.",
			}}, nil
		},
	}

	rec := do(t, taskRouter(svc), manager, http.MethodPost, "/tasks",
		`{"title":"Count stock","employee_id":2,"date":"2025-09-08","priority":"high"}`)

	require.Equal(t, http.StatusConflict, rec.Code)
	resp := decode[ConflictResponse](t, rec)
	assert.Equal(t, notificationID.String(), resp.NotificationID)
	assert.Equal(t, "Bruno is not working on 2025-09-08", resp.Error)
	assert.Equal(t, "2025-09-08", resp.Date)
	assert.NotEmpty(t, resp.Hint)
}

func TestCreateTask_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		serviceErr error
		wantStatus int
		wantError  string
	}{
		{"malformed json", `{"title":`, nil, http.StatusBadRequest, "Invalid request format"},
		{"missing title", `{"employee_id":1,"date":"2025-09-08"}`, nil, http.StatusBadRequest, "Invalid title: required field"},
		{"bad date", `{"title":"x","employee_id":1,"date":"08/09/2025"}`, nil, http.StatusBadRequest, "Invalid date"},
		{"bad priority", `{"title":"x","employee_id":1,"date":"2025-09-08","priority":"urgent"}`, nil,
			http.StatusBadRequest, "Invalid priority: invalid value"},
		{"unknown employee", `{"title":"x","employee_id":9,"date":"2025-09-08"}`, store.ErrEmployeeNotFound,
			http.StatusNotFound, "Employee not found"},
		{"inactive employee", `{"title":"x","employee_id":3,"date":"2025-09-08"}`,
			domain.ErrInactiveEmployee, http.StatusNotFound, "Employee not found"},
		{"forbidden", `{"title":"x","employee_id":1,"date":"2025-09-08"}`,
			&authz.ForbiddenError{EmployeeID: 1, Role: "worker", Required: []string{authz.TasksCreate}},
			http.StatusForbidden, "You do not have permission to perform this action"},
		{"internal", `{"title":"x","employee_id":1,"date":"2025-09-08"}`,
			service.NewServiceError("task", "CreateTask", errors.New("disk on fire")),
			http.StatusInternalServerError, "Failed to create task"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mocks.MockTaskService{
				CreateTaskFn: func(ctx context.Context, actor *domain.Employee,
					req service.CreateTaskRequest) (*service.CreateTaskResult, error) {
					if tc.serviceErr == nil {
						t.Fatal("service should not be called")
					}
					return nil, tc.serviceErr
				},
			}
			rec := do(t, taskRouter(svc), manager, http.MethodPost, "/tasks", tc.body)
			assert.Equal(t, tc.wantStatus, rec.Code)
			resp := decode[shared.ErrorResponse](t, rec)
			assert.Contains(t, resp.Error, tc.wantError)
			assert.NotContains(t, resp.Error, "disk on fire")
		})
	}
}

func TestCreateTask_Unauthenticated(t *testing.T) {
	rec := do(t, taskRouter(&mocks.MockTaskService{}), nil, http.MethodPost, "/tasks", `{}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListTasks_ParsesFilter(t *testing.T) {
	var got domain.TaskFilter
	svc := &mocks.MockTaskService{
		ListTasksFn: func(ctx context.Context, actor *domain.Employee, f domain.TaskFilter) ([]*domain.TaskInstance, error) {
			got = f
			return []*domain.TaskInstance{sampleTask(1)}, nil
		},
	}

	rec := do(t, taskRouter(svc), manager, http.MethodGet,
		"/tasks?employee_id=1&from=2025-09-01&to=2025-09-30&status=pending", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.TaskFilter{
		EmployeeID: 1,
		From:       sept(1),
		To:         sept(30),
		Status:     domain.TaskStatusPending,
	}, got)
	assert.Len(t, decode[[]TaskResponse](t, rec), 1)
}

func TestListTasks_EmptyIsArray(t *testing.T) {
	svc := &mocks.MockTaskService{
		ListTasksFn: func(ctx context.Context, actor *domain.Employee, f domain.TaskFilter) ([]*domain.TaskInstance, error) {
			return nil, nil
		},
	}
	rec := do(t, taskRouter(svc), worker, http.MethodGet, "/tasks", "")
	assert.Equal(t, "[]\n", rec.Body.String())
}

func TestListTasks_BadQuery(t *testing.T) {
	for _, q := range []string{"employee_id=abc", "employee_id=-1", "from=yesterday", "status=archived"} {
		rec := do(t, taskRouter(&mocks.MockTaskService{}), manager, http.MethodGet, "/tasks?"+q, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}
}

func TestGetStartFinishTask(t *testing.T) {
	task := sampleTask(1)
	calls := map[string]uuid.UUID{}
	svc := &mocks.MockTaskService{
		GetTaskFn: func(ctx context.Context, actor *domain.Employee, id uuid.UUID) (*domain.TaskInstance, error) {
			calls["get"] = id
			return task, nil
		},
		StartTaskFn: func(ctx context.Context, actor *domain.Employee, id uuid.UUID) (*domain.TaskInstance, error) {
			calls["start"] = id
			return task, nil
		},
		FinishTaskFn: func(ctx context.Context, actor *domain.Employee, id uuid.UUID) (*domain.TaskInstance, error) {
			calls["finish"] = id
			return nil, store.ErrTaskNotFound
		},
	}
	r := taskRouter(svc)
	path := "/tasks/" + task.ID.String()

	assert.Equal(t, http.StatusOK, do(t, r, worker, http.MethodGet, path, "").Code)
	assert.Equal(t, http.StatusOK, do(t, r, worker, http.MethodPost, path+"/start", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, r, worker, http.MethodPost, path+"/finish", "").Code)

	for _, op := range []string{"get", "start", "finish"} {
		assert.Equal(t, task.ID, calls[op], op)
	}
}

func TestGetTask_InvalidID(t *testing.T) {
	rec := do(t, taskRouter(&mocks.MockTaskService{}), worker, http.MethodGet, "/tasks/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStartTask_InvalidTransitionIs400(t *testing.T) {
	svc := &mocks.MockTaskService{
		StartTaskFn: func(ctx context.Context, actor *domain.Employee, id uuid.UUID) (*domain.TaskInstance, error) {
			return nil, domain.ErrInvalidTransition
		},
	}
	rec := do(t, taskRouter(svc), worker, http.MethodPost, "/tasks/"+uuid.NewString()+"/start", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Task cannot move to that status")
}

func TestCreateRecurringTask(t *testing.T) {
	var got service.CreateRecurringTaskRequest
	svc := &mocks.MockTaskService{
		CreateRecurringTaskFn: func(ctx context.Context, actor *domain.Employee,
			req service.CreateRecurringTaskRequest) (*domain.RecurrenceTemplate, error) {
			got = req
			return &domain.RecurrenceTemplate{
				ID:          uuid.New(),
				Title:       req.Title,
				EmployeeID:  req.EmployeeID,
				Frequency:   req.Frequency,
				Priority:    req.Priority,
				NextDueDate: sept(15),
				Active:      true,
			}, nil
		},
	}

	rec := do(t, taskRouter(svc), manager, http.MethodPost, "/recurring-tasks",
		`{"title":"Clean fridge","employee_id":1,"frequency":"weekly","start_date":"2025-09-08"}`)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, domain.FrequencyWeekly, got.Frequency)
	assert.Equal(t, sept(8), got.StartDate)
	resp := decode[TemplateResponse](t, rec)
	assert.Equal(t, "2025-09-15", resp.NextDueDate)
	assert.True(t, resp.Active)
}

func TestCreateRecurringTask_Validation(t *testing.T) {
	r := taskRouter(&mocks.MockTaskService{})
	for _, body := range []string{
		`{"title":"x","employee_id":1,"frequency":"yearly"}`,
		`{"title":"x","employee_id":1}`,
		`{"title":"x","employee_id":1,"frequency":"daily","start_date":"tomorrow"}`,
	} {
		rec := do(t, r, manager, http.MethodPost, "/recurring-tasks", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

func TestNewTaskHandler_PanicsWithoutLogger(t *testing.T) {
	assert.Panics(t, func() { NewTaskHandler(&mocks.MockTaskService{}, nil) })
}
