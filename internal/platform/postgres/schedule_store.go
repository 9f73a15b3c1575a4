package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/rota-api/internal/domain"
	"github.com/phrazzld/rota-api/internal/platform/logger"
	"github.com/phrazzld/rota-api/internal/store"
)

// PostgresTemplateStore implements the store.TemplateStore interface.
type PostgresTemplateStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTemplateStore creates a new PostgreSQL implementation of the TemplateStore interface.
func NewPostgresTemplateStore(db store.DBTX, logger *slog.Logger) *PostgresTemplateStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresTemplateStore{
		db:     db,
		logger: logger.With(slog.String("component", "template_store")),
	}
}

var _ store.TemplateStore = (*PostgresTemplateStore)(nil)

const templateColumns = `id, title, description, employee_id, frequency, priority,
	next_due_date, active, created_at, updated_at`

func scanTemplate(row rowScanner) (*domain.RecurrenceTemplate, error) {
	var (
		t         domain.RecurrenceTemplate
		frequency string
		priority  string
	)
	err := row.Scan(
		&t.ID,
		&t.Title,
		&t.Description,
		&t.EmployeeID,
		&frequency,
		&priority,
		&t.NextDueDate,
		&t.Active,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.Frequency = domain.Frequency(frequency)
	t.Priority = domain.Priority(priority)
	t.NextDueDate = domain.DateOnly(t.NextDueDate)
	return &t, nil
}

// Create implements store.TemplateStore.Create.
func (s *PostgresTemplateStore) Create(ctx context.Context, template *domain.RecurrenceTemplate) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := template.Validate(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO recurrence_templates (id, title, description, employee_id, frequency, priority,
			next_due_date, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		template.ID,
		template.Title,
		template.Description,
		template.EmployeeID,
		string(template.Frequency),
		string(template.Priority),
		template.NextDueDate,
		template.Active,
		template.CreatedAt,
		template.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create template",
			slog.String("error", err.Error()),
			slog.String("template_id", template.ID.String()))
		return MapError(err)
	}

	log.Info("recurrence template created",
		slog.String("template_id", template.ID.String()),
		slog.String("frequency", string(template.Frequency)),
		slog.String("next_due_date", template.NextDueDate.Format("2006-01-02")))
	return nil
}

func (s *PostgresTemplateStore) get(ctx context.Context, id uuid.UUID, forUpdate bool) (*domain.RecurrenceTemplate, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + templateColumns + ` FROM recurrence_templates WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	t, err := scanTemplate(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTemplateNotFound
		}
		log.Error("failed to get template",
			slog.String("error", err.Error()),
			slog.String("template_id", id.String()))
		return nil, MapError(err)
	}
	return t, nil
}

// GetByID implements store.TemplateStore.GetByID.
func (s *PostgresTemplateStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.RecurrenceTemplate, error) {
	return s.get(ctx, id, false)
}

// GetForUpdate implements store.TemplateStore.GetForUpdate with SELECT ... FOR UPDATE.
func (s *PostgresTemplateStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.RecurrenceTemplate, error) {
	return s.get(ctx, id, true)
}

// ListDueIDs implements store.TemplateStore.ListDueIDs.
func (s *PostgresTemplateStore) ListDueIDs(ctx context.Context, today time.Time) ([]uuid.UUID, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, `
		SELECT id FROM recurrence_templates
		WHERE active AND next_due_date <= $1
		ORDER BY next_due_date, created_at
	`, domain.DateOnly(today))
	if err != nil {
		log.Error("failed to list due templates", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// UpdateNextDueDate implements store.TemplateStore.UpdateNextDueDate.
func (s *PostgresTemplateStore) UpdateNextDueDate(ctx context.Context, id uuid.UUID, next time.Time) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `
		UPDATE recurrence_templates SET next_due_date = $1, updated_at = $2 WHERE id = $3
	`, domain.DateOnly(next), time.Now().UTC(), id)
	if err != nil {
		log.Error("failed to advance template",
			slog.String("error", err.Error()),
			slog.String("template_id", id.String()))
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrTemplateNotFound)
}

// PostgresNotificationStore implements the store.NotificationStore interface.
// The task payload is stored as JSONB so a resolver can rebuild the task.
type PostgresNotificationStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresNotificationStore creates a new PostgreSQL implementation of the NotificationStore interface.
func NewPostgresNotificationStore(db store.DBTX, logger *slog.Logger) *PostgresNotificationStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresNotificationStore{
		db:     db,
		logger: logger.With(slog.String("component", "notification_store")),
	}
}

var _ store.NotificationStore = (*PostgresNotificationStore)(nil)

const notificationColumns = `id, type, title, description, payload, status, resolution,
	resolved_at, resolved_task_id, created_at`

func scanNotification(row rowScanner) (*domain.ConflictNotification, error) {
	var (
		n          domain.ConflictNotification
		kind       string
		status     string
		payload    []byte
		resolution sql.NullString
		resolvedAt sql.NullTime
		taskID     uuid.NullUUID
	)
	err := row.Scan(
		&n.ID,
		&kind,
		&n.Title,
		&n.Description,
		&payload,
		&status,
		&resolution,
		&resolvedAt,
		&taskID,
		&n.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(payload, &n.Task); err != nil {
		return nil, fmt.Errorf("%w: notification %s has malformed payload: %v", store.ErrInternal, n.ID, err)
	}
	n.Type = domain.NotificationType(kind)
	n.Status = domain.NotificationStatus(status)
	n.Resolution = resolution.String
	if resolvedAt.Valid {
		at := resolvedAt.Time.UTC()
		n.ResolvedAt = &at
	}
	if taskID.Valid {
		id := taskID.UUID
		n.ResolvedTaskID = &id
	}
	return &n, nil
}

// Create implements store.NotificationStore.Create.
func (s *PostgresNotificationStore) Create(ctx context.Context, notification *domain.ConflictNotification) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	payload, err := json.Marshal(notification.Task)
	if err != nil {
		return fmt.Errorf("failed to encode notification payload: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO conflict_notifications (id, type, title, description, payload, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		notification.ID,
		string(notification.Type),
		notification.Title,
		notification.Description,
		payload,
		string(notification.Status),
		notification.CreatedAt,
	)
	if err != nil {
		log.Error("failed to create notification",
			slog.String("error", err.Error()),
			slog.String("notification_id", notification.ID.String()))
		return MapError(err)
	}

	log.Info("conflict notification created",
		slog.String("notification_id", notification.ID.String()),
		slog.String("type", string(notification.Type)),
		slog.Int64("employee_id", notification.Task.EmployeeID))
	return nil
}

// GetForUpdate implements store.NotificationStore.GetForUpdate with SELECT ... FOR UPDATE.
func (s *PostgresNotificationStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.ConflictNotification, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	row := s.db.QueryRowContext(ctx,
		`SELECT `+notificationColumns+` FROM conflict_notifications WHERE id = $1 FOR UPDATE`, id)
	n, err := scanNotification(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotificationNotFound
		}
		log.Error("failed to get notification",
			slog.String("error", err.Error()),
			slog.String("notification_id", id.String()))
		return nil, MapError(err)
	}
	return n, nil
}

// ListPending implements store.NotificationStore.ListPending.
func (s *PostgresNotificationStore) ListPending(ctx context.Context) ([]*domain.ConflictNotification, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+notificationColumns+` FROM conflict_notifications
		WHERE status = $1
		ORDER BY created_at DESC, id DESC
	`, string(domain.NotificationPending))
	if err != nil {
		log.Error("failed to list pending notifications", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	notifications := []*domain.ConflictNotification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			log.Error("failed to scan notification row", slog.String("error", err.Error()))
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// MarkResolved implements store.NotificationStore.MarkResolved.
// The status predicate makes the update a compare-and-swap.
func (s *PostgresNotificationStore) MarkResolved(ctx context.Context, notification *domain.ConflictNotification) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `
		UPDATE conflict_notifications
		SET status = $1, resolution = $2, resolved_at = $3, resolved_task_id = $4
		WHERE id = $5 AND status = $6
	`,
		string(domain.NotificationResolved),
		notification.Resolution,
		nullTime(notification.ResolvedAt),
		nullableUUID(notification.ResolvedTaskID),
		notification.ID,
		string(domain.NotificationPending),
	)
	if err != nil {
		log.Error("failed to resolve notification",
			slog.String("error", err.Error()),
			slog.String("notification_id", notification.ID.String()))
		return MapError(err)
	}
	if err := CheckRowsAffected(result, store.ErrNotificationNotFound); err != nil {
		return err
	}

	log.Info("conflict notification resolved",
		slog.String("notification_id", notification.ID.String()))
	return nil
}
