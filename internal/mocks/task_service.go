package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/rota-api/internal/domain"
	"github.com/phrazzld/rota-api/internal/service"
)

// MockTaskService implements service.TaskService for testing.
type MockTaskService struct {
	CreateTaskFn func(ctx context.Context, actor *domain.Employee,
		req service.CreateTaskRequest) (*service.CreateTaskResult, error)
	CreateRecurringTaskFn func(ctx context.Context, actor *domain.Employee,
		req service.CreateRecurringTaskRequest) (*domain.RecurrenceTemplate, error)
	ListTasksFn  func(ctx context.Context, actor *domain.Employee, filter domain.TaskFilter) ([]*domain.TaskInstance, error)
	GetTaskFn    func(ctx context.Context, actor *domain.Employee, id uuid.UUID) (*domain.TaskInstance, error)
	StartTaskFn  func(ctx context.Context, actor *domain.Employee, id uuid.UUID) (*domain.TaskInstance, error)
	FinishTaskFn func(ctx context.Context, actor *domain.Employee, id uuid.UUID) (*domain.TaskInstance, error)
}

var _ service.TaskService = (*MockTaskService)(nil)

// CreateTask implements service.TaskService.
func (m *MockTaskService) CreateTask(
	ctx context.Context,
	actor *domain.Employee,
	req service.CreateTaskRequest,
) (*service.CreateTaskResult, error) {
	if m.CreateTaskFn == nil {
		return nil, ErrNotConfigured
	}
	return m.CreateTaskFn(ctx, actor, req)
}

// CreateRecurringTask implements service.TaskService.
func (m *MockTaskService) CreateRecurringTask(
	ctx context.Context,
	actor *domain.Employee,
	req service.CreateRecurringTaskRequest,
) (*domain.RecurrenceTemplate, error) {
	if m.CreateRecurringTaskFn == nil {
		return nil, ErrNotConfigured
	}
	return m.CreateRecurringTaskFn(ctx, actor, req)
}

// ListTasks implements service.TaskService.
func (m *MockTaskService) ListTasks(
	ctx context.Context,
	actor *domain.Employee,
	filter domain.TaskFilter,
) ([]*domain.TaskInstance, error) {
	if m.ListTasksFn == nil {
		return nil, ErrNotConfigured
	}
	return m.ListTasksFn(ctx, actor, filter)
}

// GetTask implements service.TaskService.
func (m *MockTaskService) GetTask(ctx context.Context, actor *domain.Employee, id uuid.UUID) (*domain.TaskInstance, error) {
	if m.GetTaskFn == nil {
		return nil, ErrNotConfigured
	}
	return m.GetTaskFn(ctx, actor, id)
}

// StartTask implements service.TaskService.
func (m *MockTaskService) StartTask(ctx context.Context, actor *domain.Employee, id uuid.UUID) (*domain.TaskInstance, error) {
	if m.StartTaskFn == nil {
		return nil, ErrNotConfigured
	}
	return m.StartTaskFn(ctx, actor, id)
}

// FinishTask implements service.TaskService.
func (m *MockTaskService) FinishTask(ctx context.Context, actor *domain.Employee, id uuid.UUID) (*domain.TaskInstance, error) {
	if m.FinishTaskFn == nil {
		return nil, ErrNotConfigured
	}
	return m.FinishTaskFn(ctx, actor, id)
}
