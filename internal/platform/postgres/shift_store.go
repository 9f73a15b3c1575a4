package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/phrazzld/rota-api/internal/domain"
	"github.com/phrazzld/rota-api/internal/platform/logger"
	"github.com/phrazzld/rota-api/internal/store"
)

// PostgresShiftStore implements the store.ShiftStore interface.
type PostgresShiftStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresShiftStore creates a new PostgreSQL implementation of the ShiftStore interface.
func NewPostgresShiftStore(db store.DBTX, logger *slog.Logger) *PostgresShiftStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresShiftStore{
		db:     db,
		logger: logger.With(slog.String("component", "shift_store")),
	}
}

var _ store.ShiftStore = (*PostgresShiftStore)(nil)

// ExistsForEmployeeOn implements store.ShiftStore.ExistsForEmployeeOn.
// The lookup is served by the (employee_id, shift_date, label) unique index.
func (s *PostgresShiftStore) ExistsForEmployeeOn(ctx context.Context, employeeID int64, date time.Time) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM shifts WHERE employee_id = $1 AND shift_date = $2)`,
		employeeID, domain.DateOnly(date),
	).Scan(&exists)
	if err != nil {
		log.Error("failed to check shift existence",
			slog.String("error", err.Error()),
			slog.Int64("employee_id", employeeID))
		return false, MapError(err)
	}
	return exists, nil
}

// List implements store.ShiftStore.List.
func (s *PostgresShiftStore) List(ctx context.Context, filter store.ShiftFilter) ([]*domain.ShiftAssignment, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var (
		conds []string
		args  []any
	)
	if filter.EmployeeID != 0 {
		args = append(args, filter.EmployeeID)
		conds = append(conds, fmt.Sprintf("employee_id = $%d", len(args)))
	}
	if !filter.From.IsZero() {
		args = append(args, domain.DateOnly(filter.From))
		conds = append(conds, fmt.Sprintf("shift_date >= $%d", len(args)))
	}
	if !filter.To.IsZero() {
		args = append(args, domain.DateOnly(filter.To))
		conds = append(conds, fmt.Sprintf("shift_date <= $%d", len(args)))
	}

	query := `SELECT id, employee_id, shift_date, label, created_at FROM shifts`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY shift_date, employee_id, label`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list shifts", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	shifts := []*domain.ShiftAssignment{}
	for rows.Next() {
		var sh domain.ShiftAssignment
		if err := rows.Scan(&sh.ID, &sh.EmployeeID, &sh.Date, &sh.Label, &sh.CreatedAt); err != nil {
			log.Error("failed to scan shift row", slog.String("error", err.Error()))
			return nil, err
		}
		sh.Date = domain.DateOnly(sh.Date)
		shifts = append(shifts, &sh)
	}
	return shifts, rows.Err()
}

// Create implements store.ShiftStore.Create.
// Returns store.ErrShiftExists when the (employee, date, label) triple is taken
// and store.ErrInvalidEntity when the employee does not exist.
func (s *PostgresShiftStore) Create(ctx context.Context, shift *domain.ShiftAssignment) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := shift.Validate(); err != nil {
		return err
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO shifts (employee_id, shift_date, label, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, shift.EmployeeID, shift.Date, shift.Label, shift.CreatedAt).Scan(&shift.ID)
	if err != nil {
		log.Warn("failed to create shift",
			slog.String("error", err.Error()),
			slog.Int64("employee_id", shift.EmployeeID))
		return MapError(err)
	}

	log.Info("shift created",
		slog.Int64("shift_id", shift.ID),
		slog.Int64("employee_id", shift.EmployeeID),
		slog.String("date", shift.Date.Format("2006-01-02")))
	return nil
}
