package mocks

import (
	"context"

	"github.com/phrazzld/rota-api/internal/domain"
	"github.com/phrazzld/rota-api/internal/service"
	"github.com/phrazzld/rota-api/internal/store"
)

// MockScheduleService implements service.ScheduleService for testing.
type MockScheduleService struct {
	ListShiftsFn  func(ctx context.Context, actor *domain.Employee, filter store.ShiftFilter) ([]*domain.ShiftAssignment, error)
	CreateShiftFn func(ctx context.Context, actor *domain.Employee,
		req service.CreateShiftRequest) (*domain.ShiftAssignment, error)
}

var _ service.ScheduleService = (*MockScheduleService)(nil)

// ListShifts implements service.ScheduleService.
func (m *MockScheduleService) ListShifts(
	ctx context.Context,
	actor *domain.Employee,
	filter store.ShiftFilter,
) ([]*domain.ShiftAssignment, error) {
	if m.ListShiftsFn == nil {
		return nil, ErrNotConfigured
	}
	return m.ListShiftsFn(ctx, actor, filter)
}

// CreateShift implements service.ScheduleService.
func (m *MockScheduleService) CreateShift(
	ctx context.Context,
	actor *domain.Employee,
	req service.CreateShiftRequest,
) (*domain.ShiftAssignment, error) {
	if m.CreateShiftFn == nil {
		return nil, ErrNotConfigured
	}
	return m.CreateShiftFn(ctx, actor, req)
}
