package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/rota-api/internal/domain"
	"github.com/phrazzld/rota-api/internal/store"
)

// TaskStore implements store.TaskStore.
type TaskStore struct {
	s  *Store
	tx *undoLog
}

var _ store.TaskStore = (*TaskStore)(nil)

// Create implements store.TaskStore.
func (ts *TaskStore) Create(ctx context.Context, task *domain.TaskInstance) error {
	if err := task.Validate(); err != nil {
		return store.NewStoreError("task", "create", "invalid task", err)
	}

	ts.s.mu.Lock()
	defer ts.s.mu.Unlock()

	d := ts.s.data
	if _, exists := d.tasks[task.ID]; exists {
		return store.NewStoreError("task", "create", "id already in use", store.ErrDuplicate)
	}
	if task.ParentTemplateID != nil {
		key := occurrenceKey{templateID: *task.ParentTemplateID, date: task.Date}
		if _, exists := d.occurrences[key]; exists {
			return store.ErrOccurrenceExists
		}
		d.occurrences[key] = task.ID
	}
	d.tasks[task.ID] = cloneTask(task)

	id := task.ID
	ts.tx.record(func(d *dataset) { d.removeTask(id) })
	return nil
}

// GetByID implements store.TaskStore.
func (ts *TaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.TaskInstance, error) {
	ts.s.mu.RLock()
	defer ts.s.mu.RUnlock()

	t, ok := ts.s.data.tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	return cloneTask(t), nil
}

// GetForUpdate implements store.TaskStore. Row locking is provided by the
// serialization of RunInTx.
func (ts *TaskStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.TaskInstance, error) {
	return ts.GetByID(ctx, id)
}

// Update implements store.TaskStore.
func (ts *TaskStore) Update(ctx context.Context, task *domain.TaskInstance) error {
	if err := task.Validate(); err != nil {
		return store.NewStoreError("task", "update", "invalid task", err)
	}

	ts.s.mu.Lock()
	defer ts.s.mu.Unlock()

	prev, ok := ts.s.data.tasks[task.ID]
	if !ok {
		return store.ErrTaskNotFound
	}
	next := cloneTask(prev)
	next.Status = task.Status
	next.StartedAt = clonePtr(task.StartedAt)
	next.FinishedAt = clonePtr(task.FinishedAt)
	next.DurationMinutes = clonePtr(task.DurationMinutes)
	next.UpdatedAt = time.Now().UTC()
	ts.s.data.tasks[task.ID] = next
	task.UpdatedAt = next.UpdatedAt

	ts.tx.record(func(d *dataset) { d.tasks[prev.ID] = prev })
	return nil
}

// List implements store.TaskStore.
func (ts *TaskStore) List(ctx context.Context, filter domain.TaskFilter) ([]*domain.TaskInstance, error) {
	ts.s.mu.RLock()
	defer ts.s.mu.RUnlock()

	var out []*domain.TaskInstance
	for _, t := range ts.s.data.tasks {
		if filter.Matches(t) {
			out = append(out, cloneTask(t))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
