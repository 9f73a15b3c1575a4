package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/rota-api/internal/domain"
	"github.com/phrazzld/rota-api/internal/store"
)

// TemplateStore implements store.TemplateStore.
type TemplateStore struct {
	s  *Store
	tx *undoLog
}

var _ store.TemplateStore = (*TemplateStore)(nil)

// Create implements store.TemplateStore.
func (ts *TemplateStore) Create(ctx context.Context, template *domain.RecurrenceTemplate) error {
	if err := template.Validate(); err != nil {
		return store.NewStoreError("template", "create", "invalid template", err)
	}

	ts.s.mu.Lock()
	defer ts.s.mu.Unlock()

	if _, exists := ts.s.data.templates[template.ID]; exists {
		return store.NewStoreError("template", "create", "id already in use", store.ErrDuplicate)
	}
	ts.s.data.templates[template.ID] = cloneTemplate(template)

	id := template.ID
	ts.tx.record(func(d *dataset) { delete(d.templates, id) })
	return nil
}

// GetByID implements store.TemplateStore.
func (ts *TemplateStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.RecurrenceTemplate, error) {
	ts.s.mu.RLock()
	defer ts.s.mu.RUnlock()

	t, ok := ts.s.data.templates[id]
	if !ok {
		return nil, store.ErrTemplateNotFound
	}
	return cloneTemplate(t), nil
}

// ListDueIDs implements store.TemplateStore.
func (ts *TemplateStore) ListDueIDs(ctx context.Context, today time.Time) ([]uuid.UUID, error) {
	ts.s.mu.RLock()
	defer ts.s.mu.RUnlock()

	var due []*domain.RecurrenceTemplate
	for _, t := range ts.s.data.templates {
		if t.IsDue(today) {
			due = append(due, t)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		if !due[i].NextDueDate.Equal(due[j].NextDueDate) {
			return due[i].NextDueDate.Before(due[j].NextDueDate)
		}
		return due[i].CreatedAt.Before(due[j].CreatedAt)
	})

	ids := make([]uuid.UUID, len(due))
	for i, t := range due {
		ids[i] = t.ID
	}
	return ids, nil
}

// GetForUpdate implements store.TemplateStore. Row locking is provided by the
// serialization of RunInTx.
func (ts *TemplateStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.RecurrenceTemplate, error) {
	return ts.GetByID(ctx, id)
}

// UpdateNextDueDate implements store.TemplateStore.
func (ts *TemplateStore) UpdateNextDueDate(ctx context.Context, id uuid.UUID, next time.Time) error {
	ts.s.mu.Lock()
	defer ts.s.mu.Unlock()

	t, ok := ts.s.data.templates[id]
	if !ok {
		return store.ErrTemplateNotFound
	}
	prevDue, prevUpdated := t.NextDueDate, t.UpdatedAt
	t.NextDueDate = domain.DateOnly(next)
	t.UpdatedAt = time.Now().UTC()

	ts.tx.record(func(d *dataset) {
		if t, ok := d.templates[id]; ok {
			t.NextDueDate, t.UpdatedAt = prevDue, prevUpdated
		}
	})
	return nil
}

// NotificationStore implements store.NotificationStore.
type NotificationStore struct {
	s  *Store
	tx *undoLog
}

var _ store.NotificationStore = (*NotificationStore)(nil)

// Create implements store.NotificationStore.
func (ns *NotificationStore) Create(ctx context.Context, notification *domain.ConflictNotification) error {
	ns.s.mu.Lock()
	defer ns.s.mu.Unlock()

	if _, exists := ns.s.data.notifications[notification.ID]; exists {
		return store.NewStoreError("notification", "create", "id already in use", store.ErrDuplicate)
	}
	ns.s.data.notifications[notification.ID] = cloneNotification(notification)

	id := notification.ID
	ns.tx.record(func(d *dataset) { delete(d.notifications, id) })
	return nil
}

// GetForUpdate implements store.NotificationStore.
func (ns *NotificationStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.ConflictNotification, error) {
	ns.s.mu.RLock()
	defer ns.s.mu.RUnlock()

	n, ok := ns.s.data.notifications[id]
	if !ok {
		return nil, store.ErrNotificationNotFound
	}
	return cloneNotification(n), nil
}

// ListPending implements store.NotificationStore.
func (ns *NotificationStore) ListPending(ctx context.Context) ([]*domain.ConflictNotification, error) {
	ns.s.mu.RLock()
	defer ns.s.mu.RUnlock()

	var out []*domain.ConflictNotification
	for _, n := range ns.s.data.notifications {
		if n.IsPending() {
			out = append(out, cloneNotification(n))
		}
	}
	// Newest first; equal timestamps fall back to id so the order is stable.
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.String() > out[j].ID.String()
	})
	return out, nil
}

// MarkResolved implements store.NotificationStore as a compare-and-swap on status.
func (ns *NotificationStore) MarkResolved(ctx context.Context, notification *domain.ConflictNotification) error {
	ns.s.mu.Lock()
	defer ns.s.mu.Unlock()

	prev, ok := ns.s.data.notifications[notification.ID]
	if !ok || !prev.IsPending() {
		return store.ErrNotificationNotFound
	}
	next := cloneNotification(prev)
	next.Status = domain.NotificationResolved
	next.Resolution = notification.Resolution
	next.ResolvedAt = clonePtr(notification.ResolvedAt)
	next.ResolvedTaskID = clonePtr(notification.ResolvedTaskID)
	ns.s.data.notifications[notification.ID] = next

	ns.tx.record(func(d *dataset) { d.notifications[prev.ID] = prev })
	return nil
}
