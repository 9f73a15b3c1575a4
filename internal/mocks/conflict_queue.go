package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/rota-api/internal/domain"
	"github.com/phrazzld/rota-api/internal/service/conflict"
)

// MockConflictQueue implements conflict.Queue for testing.
type MockConflictQueue struct {
	ListPendingFn func(ctx context.Context, actor *domain.Employee) ([]*domain.ConflictNotification, error)
	ResolveFn     func(ctx context.Context, actor *domain.Employee, id uuid.UUID,
		action conflict.Action) (*conflict.ResolveOutcome, error)
}

var _ conflict.Queue = (*MockConflictQueue)(nil)

// ListPending implements conflict.Queue.
func (m *MockConflictQueue) ListPending(ctx context.Context, actor *domain.Employee) ([]*domain.ConflictNotification, error) {
	if m.ListPendingFn == nil {
		return nil, ErrNotConfigured
	}
	return m.ListPendingFn(ctx, actor)
}

// Resolve implements conflict.Queue.
func (m *MockConflictQueue) Resolve(
	ctx context.Context,
	actor *domain.Employee,
	id uuid.UUID,
	action conflict.Action,
) (*conflict.ResolveOutcome, error) {
	if m.ResolveFn == nil {
		return nil, ErrNotConfigured
	}
	return m.ResolveFn(ctx, actor, id, action)
}
