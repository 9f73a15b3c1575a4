package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/phrazzld/rota-api/internal/authz"
	"github.com/phrazzld/rota-api/internal/domain"
	"github.com/phrazzld/rota-api/internal/domain/calendar"
	"github.com/phrazzld/rota-api/internal/platform/logger"
	"github.com/phrazzld/rota-api/internal/store"
)

const scheduleServiceName = "schedule"

// CreateShiftRequest assigns a labelled shift to an employee on a date.
type CreateShiftRequest struct {
	EmployeeID int64
	Date       time.Time
	Label      string
}

// ScheduleService reads and writes the shift schedule the staffing checks
// are answered from.
type ScheduleService interface {
	// ListShifts returns shifts matching filter. Actors without
	// schedules.view_all only see their own shifts. Requires schedules.view.
	ListShifts(ctx context.Context, actor *domain.Employee, filter store.ShiftFilter) ([]*domain.ShiftAssignment, error)

	// CreateShift assigns a shift to an active employee. Requires
	// schedules.create. Returns store.ErrShiftExists when the employee already
	// has a shift with the same label on that date.
	CreateShift(ctx context.Context, actor *domain.Employee, req CreateShiftRequest) (*domain.ShiftAssignment, error)
}

// scheduleServiceImpl implements the ScheduleService interface
type scheduleServiceImpl struct {
	employees store.EmployeeStore
	shifts    store.ShiftStore
	guard     authz.Guard
	logger    *slog.Logger
}

var _ ScheduleService = (*scheduleServiceImpl)(nil)

// NewScheduleService creates a new ScheduleService.
// It returns an error if any of the required dependencies are nil.
func NewScheduleService(
	employees store.EmployeeStore,
	shifts store.ShiftStore,
	guard authz.Guard,
	logger *slog.Logger,
) (ScheduleService, error) {
	if employees == nil {
		return nil, domain.NewValidationError("employees", "cannot be nil", domain.ErrValidation)
	}
	if shifts == nil {
		return nil, domain.NewValidationError("shifts", "cannot be nil", domain.ErrValidation)
	}
	if guard == nil {
		return nil, domain.NewValidationError("guard", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &scheduleServiceImpl{
		employees: employees,
		shifts:    shifts,
		guard:     guard,
		logger:    logger.With(slog.String("component", "schedule_service")),
	}, nil
}

// ListShifts implements ScheduleService.ListShifts
func (s *scheduleServiceImpl) ListShifts(
	ctx context.Context,
	actor *domain.Employee,
	filter store.ShiftFilter,
) ([]*domain.ShiftAssignment, error) {
	if err := s.guard.RequireOne(ctx, actor, authz.SchedulesView); err != nil {
		return nil, err
	}
	all, err := s.guard.HasPermission(ctx, actor, authz.SchedulesViewAll)
	if err != nil {
		return nil, NewServiceError(scheduleServiceName, "list_shifts", err)
	}
	if !all {
		if filter.EmployeeID != 0 && filter.EmployeeID != actor.ID {
			return nil, s.guard.RequireOne(ctx, actor, authz.SchedulesViewAll)
		}
		filter.EmployeeID = actor.ID
	}

	shifts, err := s.shifts.List(ctx, filter)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list shifts",
			slog.String("error", err.Error()))
		return nil, wrap(scheduleServiceName, "list_shifts", err)
	}
	return shifts, nil
}

// CreateShift implements ScheduleService.CreateShift
func (s *scheduleServiceImpl) CreateShift(
	ctx context.Context,
	actor *domain.Employee,
	req CreateShiftRequest,
) (*domain.ShiftAssignment, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.Int64("employee_id", req.EmployeeID),
		slog.String("date", calendar.FormatDate(req.Date)))

	if err := s.guard.RequireOne(ctx, actor, authz.SchedulesCreate); err != nil {
		return nil, err
	}
	shift, err := domain.NewShiftAssignment(req.EmployeeID, req.Date, req.Label)
	if err != nil {
		return nil, err
	}

	emp, err := s.employees.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return nil, wrap(scheduleServiceName, "create_shift", err)
	}
	if !emp.Assignable() {
		return nil, domain.ErrInactiveEmployee
	}

	if err := s.shifts.Create(ctx, shift); err != nil {
		if !isCallerError(err) {
			log.Error("failed to create shift", slog.String("error", err.Error()))
		}
		return nil, wrap(scheduleServiceName, "create_shift", err)
	}
	log.Info("shift assigned", slog.String("label", shift.Label))
	return shift, nil
}
