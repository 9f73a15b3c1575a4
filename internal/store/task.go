package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/rota-api/internal/domain"
)

// TaskStore defines the interface for task instance persistence.
// Tasks are never deleted by the scheduling core.
type TaskStore interface {
	// Create saves a new task.
	// Returns ErrOccurrenceExists if a task already exists for the same
	// parent template and date.
	Create(ctx context.Context, task *domain.TaskInstance) error

	// GetByID retrieves a task by its unique ID.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.TaskInstance, error)

	// GetForUpdate retrieves a task and locks it until the surrounding
	// transaction ends. Must be called inside Transactor.RunInTx.
	// Returns ErrTaskNotFound if the task does not exist.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.TaskInstance, error)

	// Update persists status, timestamps and duration of an existing task.
	// Returns ErrTaskNotFound if the task does not exist.
	Update(ctx context.Context, task *domain.TaskInstance) error

	// List returns tasks matching the filter ordered by date, then creation time.
	List(ctx context.Context, filter domain.TaskFilter) ([]*domain.TaskInstance, error)
}

// TemplateStore defines the interface for recurrence template persistence.
type TemplateStore interface {
	// Create saves a new template.
	Create(ctx context.Context, template *domain.RecurrenceTemplate) error

	// GetByID retrieves a template by ID.
	// Returns ErrTemplateNotFound if the template does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.RecurrenceTemplate, error)

	// ListDueIDs returns the IDs of active templates whose next due date is
	// on or before today, oldest due date first.
	ListDueIDs(ctx context.Context, today time.Time) ([]uuid.UUID, error)

	// GetForUpdate retrieves a template and locks it until the surrounding
	// transaction ends. Must be called inside Transactor.RunInTx.
	// Returns ErrTemplateNotFound if the template does not exist.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.RecurrenceTemplate, error)

	// UpdateNextDueDate moves the template's next due date.
	// Returns ErrTemplateNotFound if the template does not exist.
	UpdateNextDueDate(ctx context.Context, id uuid.UUID, next time.Time) error
}

// NotificationStore is the Notification Queue holding conflict notifications.
type NotificationStore interface {
	// Create saves a new pending notification.
	Create(ctx context.Context, notification *domain.ConflictNotification) error

	// GetForUpdate retrieves a notification and locks it until the surrounding
	// transaction ends. Must be called inside Transactor.RunInTx.
	// Returns ErrNotificationNotFound if the notification does not exist.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.ConflictNotification, error)

	// ListPending returns pending notifications, newest created first.
	ListPending(ctx context.Context) ([]*domain.ConflictNotification, error)

	// MarkResolved persists the resolution of a notification. It only
	// succeeds while the stored notification is still pending, so two
	// concurrent resolvers cannot both win.
	// Returns ErrNotificationNotFound if the notification does not exist or is
	// no longer pending.
	MarkResolved(ctx context.Context, notification *domain.ConflictNotification) error
}
