// Package recurrence materializes recurring task templates into task
// instances for every due date up to today, raising a conflict notification
// for each date the assigned employee is not staffed.
package recurrence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/rota-api/internal/domain"
	"github.com/phrazzld/rota-api/internal/domain/calendar"
	"github.com/phrazzld/rota-api/internal/events"
	"github.com/phrazzld/rota-api/internal/platform/logger"
	"github.com/phrazzld/rota-api/internal/platform/metrics"
	"github.com/phrazzld/rota-api/internal/staffing"
	"github.com/phrazzld/rota-api/internal/store"
)

// Ticker runs one recurrence sweep. Task services call it before every task
// read or mutation so that callers always observe materialized occurrences.
type Ticker interface {
	Tick(ctx context.Context) (*TickResult, error)
}

// Failure records a template that could not be processed during a tick.
// The template's state was rolled back and it will be retried on the next tick.
type Failure struct {
	TemplateID uuid.UUID
	Err        error
}

// TickResult summarizes one sweep.
type TickResult struct {
	// Today is the calendar date the sweep materialized up to.
	Today        time.Time
	Materialized []*domain.TaskInstance
	Conflicts    []*domain.ConflictNotification
	Failures     []Failure
}

// Engine implements Ticker.
type Engine struct {
	tx        store.Transactor
	templates store.TemplateStore
	staffing  staffing.Checker
	emitter   events.EventEmitter
	location  *time.Location
	now       func() time.Time
	logger    *slog.Logger
}

var _ Ticker = (*Engine)(nil)

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the wall clock used to compute today.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithLocation sets the time zone in which today is computed. Defaults to UTC.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		if loc != nil {
			e.location = loc
		}
	}
}

// WithEmitter publishes task.created and conflict.raised events after each
// template commits.
func WithEmitter(emitter events.EventEmitter) Option {
	return func(e *Engine) { e.emitter = emitter }
}

// NewEngine creates a recurrence Engine. templates is used outside any
// transaction to find due templates; each template is then processed through tx.
func NewEngine(
	tx store.Transactor,
	templates store.TemplateStore,
	checker staffing.Checker,
	logger *slog.Logger,
	opts ...Option,
) (*Engine, error) {
	if tx == nil {
		return nil, domain.NewValidationError("tx", "cannot be nil", domain.ErrValidation)
	}
	if templates == nil {
		return nil, domain.NewValidationError("templates", "cannot be nil", domain.ErrValidation)
	}
	if checker == nil {
		return nil, domain.NewValidationError("checker", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	e := &Engine{
		tx:        tx,
		templates: templates,
		staffing:  checker,
		location:  time.UTC,
		now:       time.Now,
		logger:    logger.With(slog.String("component", "recurrence_engine")),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Tick materializes every due occurrence of every active template up to
// today. Each template is handled in its own transaction with the template
// locked, so concurrent ticks never materialize the same date twice. A
// failing template is reported in TickResult.Failures and does not affect
// the others. Tick only returns an error when the due templates cannot be
// listed or ctx is done.
func (e *Engine) Tick(ctx context.Context) (*TickResult, error) {
	log := logger.FromContextOrDefault(ctx, e.logger)
	started := time.Now()

	today := calendar.Today(e.now(), e.location)
	result := &TickResult{Today: today}

	ids, err := e.templates.ListDueIDs(ctx, today)
	if err != nil {
		log.Error("failed to list due templates", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list due templates: %w", err)
	}
	if len(ids) == 0 {
		return result, nil
	}

	log.Debug("recurrence tick started",
		slog.String("today", calendar.FormatDate(today)),
		slog.Int("due_templates", len(ids)))

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		tasks, conflicts, err := e.processTemplate(ctx, id, today)
		if err != nil {
			log.Error("failed to process recurrence template",
				slog.String("template_id", id.String()),
				slog.String("error", err.Error()))
			result.Failures = append(result.Failures, Failure{TemplateID: id, Err: err})
			continue
		}

		for _, task := range tasks {
			metrics.RecordTaskCreated(ctx, metrics.SourceRecurring)
			events.Emit(ctx, e.emitter, log, events.TypeTaskCreated, task)
		}
		for _, n := range conflicts {
			metrics.RecordConflictRaised(ctx, string(n.Type))
			events.Emit(ctx, e.emitter, log, events.TypeConflictRaised, n)
		}
		result.Materialized = append(result.Materialized, tasks...)
		result.Conflicts = append(result.Conflicts, conflicts...)
	}

	metrics.RecordTick(ctx, time.Since(started), len(result.Failures))
	log.Info("recurrence tick finished",
		slog.String("today", calendar.FormatDate(today)),
		slog.Int("materialized", len(result.Materialized)),
		slog.Int("conflicts", len(result.Conflicts)),
		slog.Int("failures", len(result.Failures)))
	return result, nil
}

// processTemplate catches one template up to today inside a transaction.
func (e *Engine) processTemplate(
	ctx context.Context,
	id uuid.UUID,
	today time.Time,
) ([]*domain.TaskInstance, []*domain.ConflictNotification, error) {
	var (
		tasks     []*domain.TaskInstance
		conflicts []*domain.ConflictNotification
	)

	err := e.tx.RunInTx(ctx, func(ctx context.Context, r store.Repos) error {
		tmpl, err := r.Templates.GetForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, store.ErrTemplateNotFound) {
				return nil
			}
			return err
		}
		// Another tick advanced it between listing and locking.
		if !tmpl.IsDue(today) {
			return nil
		}
		if !tmpl.Frequency.IsValid() {
			return fmt.Errorf("template %s: %w %q", tmpl.ID, domain.ErrInvalidFrequency, tmpl.Frequency)
		}

		assignable, err := e.assignable(ctx, r.Employees, tmpl.EmployeeID)
		if err != nil {
			return err
		}

		for tmpl.IsDue(today) {
			occurrence := tmpl.Occurrence()

			working := false
			if assignable {
				working, err = e.staffing.IsWorking(ctx, tmpl.EmployeeID, occurrence.Date)
				if err != nil {
					return err
				}
			}

			if working {
				task, err := domain.NewTaskInstance(occurrence)
				if err != nil {
					return err
				}
				switch err := r.Tasks.Create(ctx, task); {
				case errors.Is(err, store.ErrOccurrenceExists):
					// Already materialized; advance without duplicating.
				case err != nil:
					return err
				default:
					tasks = append(tasks, task)
				}
			} else {
				n := newRecurringConflict(tmpl, occurrence, assignable, e.now())
				if err := r.Notifications.Create(ctx, n); err != nil {
					return err
				}
				conflicts = append(conflicts, n)
			}

			next := calendar.Next(tmpl.NextDueDate, tmpl.Frequency)
			if !next.After(tmpl.NextDueDate) {
				return fmt.Errorf("template %s did not advance past %s", tmpl.ID, calendar.FormatDate(next))
			}
			tmpl.NextDueDate = next
		}

		return r.Templates.UpdateNextDueDate(ctx, tmpl.ID, tmpl.NextDueDate)
	})
	if err != nil {
		return nil, nil, err
	}
	return tasks, conflicts, nil
}

// assignable reports whether the template's employee may receive tasks.
// A missing or inactive employee turns every occurrence into a conflict so a
// manager can reassign it.
func (e *Engine) assignable(ctx context.Context, employees store.EmployeeStore, id int64) (bool, error) {
	emp, err := employees.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrEmployeeNotFound) {
			return false, nil
		}
		return false, err
	}
	return emp.Assignable(), nil
}

func newRecurringConflict(
	tmpl *domain.RecurrenceTemplate,
	occurrence domain.TaskPayload,
	assignable bool,
	at time.Time,
) *domain.ConflictNotification {
	date := calendar.FormatDate(occurrence.Date)
	reason := fmt.Sprintf("employee %d has no shift on %s", tmpl.EmployeeID, date)
	if !assignable {
		reason = fmt.Sprintf("employee %d is not active", tmpl.EmployeeID)
	}
	return domain.NewConflictNotification(
		domain.NotificationRecurringConflict,
		fmt.Sprintf("Recurring task %q not assigned for %s", tmpl.Title, date),
		reason+"; reassign it to a staffed employee or reschedule it",
		occurrence,
		at,
	)
}
