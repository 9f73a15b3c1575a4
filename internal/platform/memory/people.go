package memory

import (
	"context"
	"sort"
	"time"

	"github.com/phrazzld/rota-api/internal/domain"
	"github.com/phrazzld/rota-api/internal/store"
)

// EmployeeStore implements store.EmployeeStore.
type EmployeeStore struct {
	s  *Store
	tx *undoLog
}

var _ store.EmployeeStore = (*EmployeeStore)(nil)

// GetByID implements store.EmployeeStore.
func (es *EmployeeStore) GetByID(ctx context.Context, id int64) (*domain.Employee, error) {
	es.s.mu.RLock()
	defer es.s.mu.RUnlock()

	e, ok := es.s.data.employees[id]
	if !ok {
		return nil, store.ErrEmployeeNotFound
	}
	return cloneEmployee(e), nil
}

// List implements store.EmployeeStore.
func (es *EmployeeStore) List(ctx context.Context) ([]*domain.Employee, error) {
	es.s.mu.RLock()
	defer es.s.mu.RUnlock()

	out := make([]*domain.Employee, 0, len(es.s.data.employees))
	for _, e := range es.s.data.employees {
		out = append(out, cloneEmployee(e))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Create implements store.EmployeeStore. A zero ID is assigned the next free ID.
func (es *EmployeeStore) Create(ctx context.Context, employee *domain.Employee) error {
	if err := employee.Validate(); err != nil {
		return store.NewStoreError("employee", "create", "invalid employee", err)
	}

	es.s.mu.Lock()
	defer es.s.mu.Unlock()

	d := es.s.data
	if employee.ID == 0 {
		d.nextEmployeeID++
		employee.ID = d.nextEmployeeID
	} else if employee.ID > d.nextEmployeeID {
		d.nextEmployeeID = employee.ID
	}
	if _, exists := d.employees[employee.ID]; exists {
		return store.NewStoreError("employee", "create", "id already in use", store.ErrDuplicate)
	}
	if employee.CreatedAt.IsZero() {
		employee.CreatedAt = time.Now().UTC()
	}
	d.employees[employee.ID] = cloneEmployee(employee)

	id := employee.ID
	es.tx.record(func(d *dataset) { delete(d.employees, id) })
	return nil
}

// Update implements store.EmployeeStore.
func (es *EmployeeStore) Update(ctx context.Context, employee *domain.Employee) error {
	if err := employee.Validate(); err != nil {
		return store.NewStoreError("employee", "update", "invalid employee", err)
	}

	es.s.mu.Lock()
	defer es.s.mu.Unlock()

	prev, ok := es.s.data.employees[employee.ID]
	if !ok {
		return store.ErrEmployeeNotFound
	}
	next := cloneEmployee(prev)
	next.Name = employee.Name
	next.Email = employee.Email
	next.Role = employee.Role
	next.Active = employee.Active
	es.s.data.employees[employee.ID] = next

	es.tx.record(func(d *dataset) { d.employees[prev.ID] = prev })
	return nil
}

// RoleStore implements store.RoleStore.
type RoleStore struct {
	s *Store
}

var _ store.RoleStore = (*RoleStore)(nil)

// GetByID implements store.RoleStore.
func (rs *RoleStore) GetByID(ctx context.Context, id string) (*domain.Role, error) {
	rs.s.mu.RLock()
	defer rs.s.mu.RUnlock()

	r, ok := rs.s.data.roles[id]
	if !ok {
		return nil, store.ErrRoleNotFound
	}
	return cloneRole(r), nil
}

// List implements store.RoleStore.
func (rs *RoleStore) List(ctx context.Context) ([]*domain.Role, error) {
	rs.s.mu.RLock()
	defer rs.s.mu.RUnlock()

	out := make([]*domain.Role, 0, len(rs.s.data.roles))
	for _, r := range rs.s.data.roles {
		out = append(out, cloneRole(r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// UpdatePermissions implements store.RoleStore.
func (rs *RoleStore) UpdatePermissions(ctx context.Context, id string, permissions []string) error {
	rs.s.mu.Lock()
	defer rs.s.mu.Unlock()

	r, ok := rs.s.data.roles[id]
	if !ok {
		return store.ErrRoleNotFound
	}
	r.Permissions = append([]string(nil), permissions...)
	return nil
}

// Put inserts or replaces a role. It is used to seed default roles.
func (rs *RoleStore) Put(ctx context.Context, role *domain.Role) {
	rs.s.mu.Lock()
	defer rs.s.mu.Unlock()
	rs.s.data.roles[role.ID] = cloneRole(role)
}
