package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/phrazzld/rota-api/internal/domain"
	"github.com/phrazzld/rota-api/internal/store"
)

// NewRepos builds the repository bundle over db, which may be a *sql.DB or a *sql.Tx.
func NewRepos(db store.DBTX, logger *slog.Logger) store.Repos {
	return store.Repos{
		Employees:     NewPostgresEmployeeStore(db, logger),
		Shifts:        NewPostgresShiftStore(db, logger),
		Tasks:         NewPostgresTaskStore(db, logger),
		Templates:     NewPostgresTemplateStore(db, logger),
		Notifications: NewPostgresNotificationStore(db, logger),
	}
}

// Transactor implements store.Transactor on top of store.RunInTransaction.
type Transactor struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ store.Transactor = (*Transactor)(nil)

// NewTransactor creates a Transactor bound to db.
func NewTransactor(db *sql.DB, logger *slog.Logger) *Transactor {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Transactor{db: db, logger: logger}
}

// RunInTx implements store.Transactor.
func (t *Transactor) RunInTx(ctx context.Context, fn func(ctx context.Context, repos store.Repos) error) error {
	return store.RunInTransaction(ctx, t.db, func(ctx context.Context, tx *sql.Tx) error {
		return fn(ctx, NewRepos(tx, t.logger))
	})
}

// SeedRoles inserts roles that do not exist yet. Existing roles keep their
// permissions so edits made through the API survive restarts.
func SeedRoles(ctx context.Context, db store.DBTX, roles []*domain.Role) error {
	for _, r := range roles {
		perms, err := json.Marshal(r.Permissions)
		if err != nil {
			return fmt.Errorf("failed to encode permissions of role %s: %w", r.ID, err)
		}
		_, err = db.ExecContext(ctx, `
			INSERT INTO roles (id, name, description, permissions)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (id) DO NOTHING
		`, r.ID, r.Name, r.Description, perms)
		if err != nil {
			return fmt.Errorf("failed to seed role %s: %w", r.ID, MapError(err))
		}
	}
	return nil
}
