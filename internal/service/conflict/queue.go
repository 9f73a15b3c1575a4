// Package conflict implements the queue of staffing conflicts awaiting a
// manager's decision, and their resolution by reassignment or rescheduling.
package conflict

import (
	"context"
	"errors"
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
	"github.com/phrazzld/rota-api/internal/service/recurrence"
	"github.com/phrazzld/rota-api/internal/staffing"
	"github.com/phrazzld/rota-api/internal/store"
)

// Queue lists and resolves conflict notifications.
type Queue interface {
	// ListPending returns pending notifications, newest first.
	// Requires conflicts.view.
	ListPending(ctx context.Context, actor *domain.Employee) ([]*domain.ConflictNotification, error)

	// Resolve turns a pending notification into exactly one task instance.
	// Requires conflicts.resolve.
	//
	// Returns:
	//   - (*ResolveOutcome{Task, Notification}, nil) on success
	//   - (*ResolveOutcome{Conflict}, nil) when the chosen employee is not
	//     working on the chosen date; the notification stays pending
	//   - store.ErrNotificationNotFound when the notification is missing or
	//     already resolved
	//   - store.ErrEmployeeNotFound or domain.ErrInactiveEmployee when the
	//     target employee cannot take tasks
	Resolve(ctx context.Context, actor *domain.Employee, id uuid.UUID, action Action) (*ResolveOutcome, error)
}

// ReConflict is the synchronous rejection of a resolution attempt whose
// target employee is not staffed on the target date.
type ReConflict struct {
	NotificationID uuid.UUID `json:"notification_id"`
	EmployeeID     int64     `json:"employee_id"`
	Date           time.Time `json:"date"`
	Message        string    `json:"message"`
}

// ResolveOutcome is the result of Resolve. Exactly one of Task or Conflict is set.
type ResolveOutcome struct {
	Task         *domain.TaskInstance         `json:"task,omitempty"`
	Notification *domain.ConflictNotification `json:"notification,omitempty"`
	Conflict     *ReConflict                  `json:"conflict,omitempty"`
}

// queueImpl implements Queue.
type queueImpl struct {
	tx            store.Transactor
	notifications store.NotificationStore
	staffing      staffing.Checker
	guard         authz.Guard
	ticker        recurrence.Ticker
	emitter       events.EventEmitter
	now           func() time.Time
	logger        *slog.Logger
}

var _ Queue = (*queueImpl)(nil)

// Option configures the queue.
type Option func(*queueImpl)

// WithTicker runs the recurrence tick before listing or resolving, so
// recurring conflicts due today are visible.
func WithTicker(t recurrence.Ticker) Option {
	return func(q *queueImpl) { q.ticker = t }
}

// WithEmitter publishes task.created and conflict.resolved events.
func WithEmitter(e events.EventEmitter) Option {
	return func(q *queueImpl) { q.emitter = e }
}

// WithClock overrides the clock used for resolution timestamps.
func WithClock(now func() time.Time) Option {
	return func(q *queueImpl) { q.now = now }
}

// NewQueue creates a Queue.
func NewQueue(
	tx store.Transactor,
	notifications store.NotificationStore,
	checker staffing.Checker,
	guard authz.Guard,
	logger *slog.Logger,
	opts ...Option,
) (Queue, error) {
	if tx == nil {
		return nil, domain.NewValidationError("tx", "cannot be nil", domain.ErrValidation)
	}
	if notifications == nil {
		return nil, domain.NewValidationError("notifications", "cannot be nil", domain.ErrValidation)
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

	q := &queueImpl{
		tx:            tx,
		notifications: notifications,
		staffing:      checker,
		guard:         guard,
		now:           time.Now,
		logger:        logger.With(slog.String("component", "conflict_queue")),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q, nil
}

func (q *queueImpl) tick(ctx context.Context) error {
	if q.ticker == nil {
		return nil
	}
	_, err := q.ticker.Tick(ctx)
	return err
}

// ListPending implements Queue.ListPending.
func (q *queueImpl) ListPending(ctx context.Context, actor *domain.Employee) ([]*domain.ConflictNotification, error) {
	log := logger.FromContextOrDefault(ctx, q.logger)

	if err := q.guard.RequireOne(ctx, actor, authz.ConflictsView); err != nil {
		return nil, err
	}
	if err := q.tick(ctx); err != nil {
		return nil, NewListPendingError("recurrence tick failed", err)
	}

	pending, err := q.notifications.ListPending(ctx)
	if err != nil {
		log.Error("failed to list pending conflicts", slog.String("error", err.Error()))
		return nil, NewListPendingError("failed to list pending conflicts", err)
	}
	return pending, nil
}

// Resolve implements Queue.Resolve.
func (q *queueImpl) Resolve(
	ctx context.Context,
	actor *domain.Employee,
	id uuid.UUID,
	action Action,
) (*ResolveOutcome, error) {
	log := logger.FromContextOrDefault(ctx, q.logger).With(
		slog.String("notification_id", id.String()))

	if err := q.guard.RequireOne(ctx, actor, authz.ConflictsResolve); err != nil {
		return nil, err
	}
	if action == nil {
		return nil, domain.NewValidationError("action", "is required", domain.ErrValidation)
	}
	if err := action.validate(); err != nil {
		return nil, err
	}
	if err := q.tick(ctx); err != nil {
		return nil, NewResolveError("recurrence tick failed", err)
	}

	var outcome *ResolveOutcome
	err := q.tx.RunInTx(ctx, func(ctx context.Context, r store.Repos) error {
		n, err := r.Notifications.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !n.IsPending() {
			return fmt.Errorf("%w: already resolved", store.ErrNotificationNotFound)
		}

		payload := action.apply(n.Task)

		emp, err := r.Employees.GetByID(ctx, payload.EmployeeID)
		if err != nil {
			return err
		}
		if !emp.Assignable() {
			return fmt.Errorf("%w: employee %d", domain.ErrInactiveEmployee, emp.ID)
		}

		working, err := q.staffing.IsWorking(ctx, payload.EmployeeID, payload.Date)
		if err != nil {
			return err
		}
		if !working {
			outcome = &ResolveOutcome{Conflict: &ReConflict{
				NotificationID: n.ID,
				EmployeeID:     payload.EmployeeID,
				Date:           payload.Date,
				Message: fmt.Sprintf("%s is not working on %s",
					emp.Name, calendar.FormatDate(payload.Date)),
			}}
			return nil
		}

		task, err := domain.NewTaskInstance(payload)
		if err != nil {
			return err
		}
		if err := r.Tasks.Create(ctx, task); err != nil {
			return err
		}
		if err := n.Resolve(task.ID, action.note(n.Task, emp), q.now()); err != nil {
			return err
		}
		if err := r.Notifications.MarkResolved(ctx, n); err != nil {
			return err
		}

		outcome = &ResolveOutcome{Task: task, Notification: n}
		return nil
	})
	if err != nil {
		if isCallerError(err) {
			log.Debug("conflict resolution rejected", slog.String("error", err.Error()))
			return nil, err
		}
		log.Error("failed to resolve conflict", slog.String("error", err.Error()))
		return nil, NewResolveError("failed to resolve conflict", err)
	}

	if outcome.Conflict != nil {
		metrics.RecordResolutionRejected(ctx, action.Name())
		log.Info("resolution target is not staffed",
			slog.Int64("employee_id", outcome.Conflict.EmployeeID),
			slog.String("date", calendar.FormatDate(outcome.Conflict.Date)))
		return outcome, nil
	}

	metrics.RecordTaskCreated(ctx, metrics.SourceResolution)
	metrics.RecordConflictResolved(ctx, action.Name())
	events.Emit(ctx, q.emitter, log, events.TypeTaskCreated, outcome.Task)
	events.Emit(ctx, q.emitter, log, events.TypeConflictResolved, outcome.Notification)

	log.Info("conflict resolved",
		slog.String("action", action.Name()),
		slog.String("task_id", outcome.Task.ID.String()))
	return outcome, nil
}

// isCallerError reports errors that describe the request rather than a fault.
func isCallerError(err error) bool {
	return store.IsNotFoundError(err) ||
		errors.Is(err, domain.ErrInactiveEmployee) ||
		domain.IsValidationError(err) ||
		errors.Is(err, domain.ErrForbidden)
}
