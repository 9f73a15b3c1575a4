package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/rota-api/internal/domain"
	"github.com/phrazzld/rota-api/internal/platform/logger"
	"github.com/phrazzld/rota-api/internal/store"
)

// PostgresTaskStore implements the store.TaskStore interface using PostgreSQL.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgresTaskStore.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

var _ store.TaskStore = (*PostgresTaskStore)(nil)

const taskColumns = `id, title, description, employee_id, task_date, status, priority,
	parent_template_id, started_at, finished_at, duration_minutes, created_at, updated_at`

func scanTask(row rowScanner) (*domain.TaskInstance, error) {
	var (
		t          domain.TaskInstance
		status     string
		priority   string
		parentID   uuid.NullUUID
		startedAt  sql.NullTime
		finishedAt sql.NullTime
		duration   sql.NullInt32
	)
	err := row.Scan(
		&t.ID,
		&t.Title,
		&t.Description,
		&t.EmployeeID,
		&t.Date,
		&status,
		&priority,
		&parentID,
		&startedAt,
		&finishedAt,
		&duration,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.Date = domain.DateOnly(t.Date)
	t.Status = domain.TaskStatus(status)
	t.Priority = domain.Priority(priority)
	if parentID.Valid {
		id := parentID.UUID
		t.ParentTemplateID = &id
	}
	if startedAt.Valid {
		at := startedAt.Time.UTC()
		t.StartedAt = &at
	}
	if finishedAt.Valid {
		at := finishedAt.Time.UTC()
		t.FinishedAt = &at
	}
	if duration.Valid {
		minutes := int(duration.Int32)
		t.DurationMinutes = &minutes
	}
	return &t, nil
}

func nullableUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}

func nullableInt(v *int) sql.NullInt32 {
	if v == nil {
		return sql.NullInt32{}
	}
	return sql.NullInt32{Int32: int32(*v), Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// Create implements store.TaskStore.Create.
// A second task for the same template and date is absorbed by ON CONFLICT so
// the surrounding transaction stays usable; it is reported as
// store.ErrOccurrenceExists.
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.TaskInstance) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO tasks (id, title, description, employee_id, task_date, status, priority,
			parent_template_id, started_at, finished_at, duration_minutes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT ON CONSTRAINT ` + occurrenceUniqueConstraint + ` DO NOTHING
	`
	result, err := s.db.ExecContext(ctx, query,
		task.ID,
		task.Title,
		task.Description,
		task.EmployeeID,
		task.Date,
		string(task.Status),
		string(task.Priority),
		nullableUUID(task.ParentTemplateID),
		nullTime(task.StartedAt),
		nullTime(task.FinishedAt),
		nullableInt(task.DurationMinutes),
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()),
			slog.Int64("employee_id", task.EmployeeID))
		return MapError(err)
	}
	if err := CheckRowsAffected(result, store.ErrOccurrenceExists); err != nil {
		log.Debug("occurrence already materialized",
			slog.String("template_id", nullableUUID(task.ParentTemplateID).UUID.String()),
			slog.String("date", task.Date.Format("2006-01-02")))
		return err
	}

	log.Debug("task created",
		slog.String("task_id", task.ID.String()),
		slog.Int64("employee_id", task.EmployeeID))
	return nil
}

func (s *PostgresTaskStore) get(ctx context.Context, id uuid.UUID, forUpdate bool) (*domain.TaskInstance, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	t, err := scanTask(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, MapError(err)
	}
	return t, nil
}

// GetByID implements store.TaskStore.GetByID.
func (s *PostgresTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.TaskInstance, error) {
	return s.get(ctx, id, false)
}

// GetForUpdate implements store.TaskStore.GetForUpdate with SELECT ... FOR UPDATE.
func (s *PostgresTaskStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.TaskInstance, error) {
	return s.get(ctx, id, true)
}

// Update implements store.TaskStore.Update.
func (s *PostgresTaskStore) Update(ctx context.Context, task *domain.TaskInstance) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE tasks
		SET status = $1, started_at = $2, finished_at = $3, duration_minutes = $4, updated_at = $5
		WHERE id = $6
	`,
		string(task.Status),
		nullTime(task.StartedAt),
		nullTime(task.FinishedAt),
		nullableInt(task.DurationMinutes),
		task.UpdatedAt,
		task.ID,
	)
	if err != nil {
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return MapError(err)
	}
	if err := CheckRowsAffected(result, store.ErrTaskNotFound); err != nil {
		return err
	}

	log.Debug("task updated",
		slog.String("task_id", task.ID.String()),
		slog.String("status", string(task.Status)))
	return nil
}

// List implements store.TaskStore.List.
func (s *PostgresTaskStore) List(ctx context.Context, filter domain.TaskFilter) ([]*domain.TaskInstance, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if filter.EmployeeID != 0 {
		add("employee_id = $%d", filter.EmployeeID)
	}
	if !filter.From.IsZero() {
		add("task_date >= $%d", domain.DateOnly(filter.From))
	}
	if !filter.To.IsZero() {
		add("task_date <= $%d", domain.DateOnly(filter.To))
	}
	if filter.Status != "" {
		add("status = $%d", string(filter.Status))
	}

	query := `SELECT ` + taskColumns + ` FROM tasks`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY task_date, created_at`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list tasks", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	tasks := []*domain.TaskInstance{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			log.Error("failed to scan task row", slog.String("error", err.Error()))
			return nil, err
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		log.Error("error iterating task rows", slog.String("error", err.Error()))
		return nil, err
	}
	return tasks, nil
}
