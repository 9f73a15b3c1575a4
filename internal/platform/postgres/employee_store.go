package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/rota-api/internal/domain"
	"github.com/phrazzld/rota-api/internal/platform/logger"
	"github.com/phrazzld/rota-api/internal/store"
)

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// PostgresEmployeeStore implements the store.EmployeeStore interface
// using a PostgreSQL database as the storage backend.
type PostgresEmployeeStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresEmployeeStore creates a new PostgreSQL implementation of the EmployeeStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresEmployeeStore(db store.DBTX, logger *slog.Logger) *PostgresEmployeeStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresEmployeeStore{
		db:     db,
		logger: logger.With(slog.String("component", "employee_store")),
	}
}

var _ store.EmployeeStore = (*PostgresEmployeeStore)(nil)

const employeeColumns = `id, name, email, role, active, created_at`

func scanEmployee(row rowScanner) (*domain.Employee, error) {
	var e domain.Employee
	if err := row.Scan(&e.ID, &e.Name, &e.Email, &e.Role, &e.Active, &e.CreatedAt); err != nil {
		return nil, err
	}
	return &e, nil
}

// GetByID implements store.EmployeeStore.GetByID.
func (s *PostgresEmployeeStore) GetByID(ctx context.Context, id int64) (*domain.Employee, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id = $1`
	e, err := scanEmployee(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("employee not found", slog.Int64("employee_id", id))
			return nil, store.ErrEmployeeNotFound
		}
		log.Error("failed to get employee by ID",
			slog.String("error", err.Error()),
			slog.Int64("employee_id", id))
		return nil, MapError(err)
	}
	return e, nil
}

// List implements store.EmployeeStore.List.
func (s *PostgresEmployeeStore) List(ctx context.Context) ([]*domain.Employee, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, `SELECT `+employeeColumns+` FROM employees ORDER BY id`)
	if err != nil {
		log.Error("failed to list employees", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	employees := []*domain.Employee{}
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			log.Error("failed to scan employee row", slog.String("error", err.Error()))
			return nil, err
		}
		employees = append(employees, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return employees, nil
}

// Create implements store.EmployeeStore.Create.
// The database assigns the ID unless the employee already carries one.
// Returns store.ErrInvalidEntity if the role does not exist.
func (s *PostgresEmployeeStore) Create(ctx context.Context, employee *domain.Employee) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := employee.Validate(); err != nil {
		return err
	}

	var row *sql.Row
	if employee.ID > 0 {
		row = s.db.QueryRowContext(ctx, `
			INSERT INTO employees (id, name, email, role, active)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, created_at
		`, employee.ID, employee.Name, employee.Email, employee.Role, employee.Active)
	} else {
		row = s.db.QueryRowContext(ctx, `
			INSERT INTO employees (name, email, role, active)
			VALUES ($1, $2, $3, $4)
			RETURNING id, created_at
		`, employee.Name, employee.Email, employee.Role, employee.Active)
	}

	if err := row.Scan(&employee.ID, &employee.CreatedAt); err != nil {
		log.Error("failed to create employee",
			slog.String("error", err.Error()),
			slog.String("role", employee.Role))
		return MapError(err)
	}

	log.Info("employee created", slog.Int64("employee_id", employee.ID))
	return nil
}

// Update implements store.EmployeeStore.Update.
// Returns store.ErrInvalidEntity if the role does not exist.
func (s *PostgresEmployeeStore) Update(ctx context.Context, employee *domain.Employee) error {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.Int64("employee_id", employee.ID))

	if err := employee.Validate(); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE employees SET name = $1, email = $2, role = $3, active = $4
		WHERE id = $5
	`, employee.Name, employee.Email, employee.Role, employee.Active, employee.ID)
	if err != nil {
		log.Error("failed to update employee", slog.String("error", err.Error()))
		return MapError(err)
	}
	if err := CheckRowsAffected(result, store.ErrEmployeeNotFound); err != nil {
		return err
	}

	log.Info("employee updated",
		slog.String("role", employee.Role),
		slog.Bool("active", employee.Active))
	return nil
}

// PostgresRoleStore implements the store.RoleStore interface.
// Permissions are stored as a JSONB array of permission ids.
type PostgresRoleStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresRoleStore creates a new PostgreSQL implementation of the RoleStore interface.
func NewPostgresRoleStore(db store.DBTX, logger *slog.Logger) *PostgresRoleStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresRoleStore{
		db:     db,
		logger: logger.With(slog.String("component", "role_store")),
	}
}

var _ store.RoleStore = (*PostgresRoleStore)(nil)

func scanRole(row rowScanner) (*domain.Role, error) {
	var (
		r     domain.Role
		perms []byte
	)
	if err := row.Scan(&r.ID, &r.Name, &r.Description, &perms); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(perms, &r.Permissions); err != nil {
		return nil, fmt.Errorf("%w: role %s has malformed permissions: %v", store.ErrInternal, r.ID, err)
	}
	if r.Permissions == nil {
		r.Permissions = []string{}
	}
	return &r, nil
}

// GetByID implements store.RoleStore.GetByID.
func (s *PostgresRoleStore) GetByID(ctx context.Context, id string) (*domain.Role, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, description, permissions FROM roles WHERE id = $1`, id)
	r, err := scanRole(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrRoleNotFound
		}
		log.Error("failed to get role",
			slog.String("error", err.Error()),
			slog.String("role_id", id))
		return nil, MapError(err)
	}
	return r, nil
}

// List implements store.RoleStore.List.
func (s *PostgresRoleStore) List(ctx context.Context) ([]*domain.Role, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, description, permissions FROM roles ORDER BY id`)
	if err != nil {
		log.Error("failed to list roles", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	roles := []*domain.Role{}
	for rows.Next() {
		r, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		roles = append(roles, r)
	}
	return roles, rows.Err()
}

// UpdatePermissions implements store.RoleStore.UpdatePermissions.
func (s *PostgresRoleStore) UpdatePermissions(ctx context.Context, id string, permissions []string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if permissions == nil {
		permissions = []string{}
	}
	encoded, err := json.Marshal(permissions)
	if err != nil {
		return fmt.Errorf("failed to encode permissions: %w", err)
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE roles SET permissions = $1 WHERE id = $2`, encoded, id)
	if err != nil {
		log.Error("failed to update role permissions",
			slog.String("error", err.Error()),
			slog.String("role_id", id))
		return MapError(err)
	}
	if err := CheckRowsAffected(result, store.ErrRoleNotFound); err != nil {
		return err
	}

	log.Info("role permissions updated",
		slog.String("role_id", id),
		slog.Int("permission_count", len(permissions)))
	return nil
}
