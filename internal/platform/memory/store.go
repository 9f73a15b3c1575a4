// Package memory provides thread-safe in-memory implementations of the store
// interfaces. It backs the "memory" database driver and the service tests.
package memory

import (
	"context"
	"log/slog"
	"sync"

	"github.com/phrazzld/rota-api/internal/platform/logger"
	"github.com/phrazzld/rota-api/internal/store"
)

// Store holds all entities in maps guarded by a single RWMutex.
//
// Units of work run through RunInTx are serialized by txMu, so a row read
// with GetForUpdate inside one stays locked until the unit of work ends.
// Writes made inside RunInTx record an undo entry and are reverted in reverse
// order when the unit of work fails.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex
	data *dataset
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{data: newDataset()}
}

// undoLog collects compensating actions for writes made inside RunInTx.
// A nil *undoLog means the write is not part of a unit of work.
type undoLog struct {
	entries []func(d *dataset)
}

func (u *undoLog) record(fn func(d *dataset)) {
	if u != nil {
		u.entries = append(u.entries, fn)
	}
}

// Employees returns the employee store.
func (s *Store) Employees() *EmployeeStore { return &EmployeeStore{s: s} }

// Roles returns the role store.
func (s *Store) Roles() *RoleStore { return &RoleStore{s: s} }

// Shifts returns the schedule store.
func (s *Store) Shifts() *ShiftStore { return &ShiftStore{s: s} }

// Tasks returns the task store.
func (s *Store) Tasks() *TaskStore { return &TaskStore{s: s} }

// Templates returns the recurrence template store.
func (s *Store) Templates() *TemplateStore { return &TemplateStore{s: s} }

// Notifications returns the conflict notification store.
func (s *Store) Notifications() *NotificationStore { return &NotificationStore{s: s} }

// Repos returns non-transactional views of every store.
func (s *Store) Repos() store.Repos {
	return s.repos(nil)
}

func (s *Store) repos(tx *undoLog) store.Repos {
	return store.Repos{
		Employees:     &EmployeeStore{s: s, tx: tx},
		Shifts:        &ShiftStore{s: s, tx: tx},
		Tasks:         &TaskStore{s: s, tx: tx},
		Templates:     &TemplateStore{s: s, tx: tx},
		Notifications: &NotificationStore{s: s, tx: tx},
	}
}

var _ store.Transactor = (*Store)(nil)

// RunInTx runs fn as a serialized unit of work. If fn returns an error or
// panics, every write it made is undone before RunInTx returns.
// RunInTx must not be called from inside fn.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, repos store.Repos) error) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	log := logger.FromContext(ctx)
	tx := &undoLog{}

	defer func() {
		if p := recover(); p != nil {
			s.rollback(tx)
			log.Error("rolled back in-memory transaction after panic", slog.Any("panic", p))
			// ALLOW-PANIC: Propagating caught panic from transaction
			panic(p)
		}
	}()

	if err = fn(ctx, s.repos(tx)); err != nil {
		s.rollback(tx)
		log.Debug("rolled back in-memory transaction due to error",
			slog.String("error", err.Error()),
			slog.Int("undone_writes", len(tx.entries)))
		return err
	}
	return nil
}

func (s *Store) rollback(tx *undoLog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(tx.entries) - 1; i >= 0; i-- {
		tx.entries[i](s.data)
	}
	tx.entries = nil
}
