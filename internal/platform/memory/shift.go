package memory

import (
	"context"
	"sort"
	"time"

	"github.com/phrazzld/rota-api/internal/domain"
	"github.com/phrazzld/rota-api/internal/store"
)

// ShiftStore implements store.ShiftStore.
type ShiftStore struct {
	s  *Store
	tx *undoLog
}

var _ store.ShiftStore = (*ShiftStore)(nil)

// ExistsForEmployeeOn implements store.ShiftStore with a constant-time index lookup.
func (ss *ShiftStore) ExistsForEmployeeOn(ctx context.Context, employeeID int64, date time.Time) (bool, error) {
	ss.s.mu.RLock()
	defer ss.s.mu.RUnlock()
	return ss.s.data.shiftDays[shiftDay{employeeID: employeeID, date: domain.DateOnly(date)}] > 0, nil
}

// List implements store.ShiftStore.
func (ss *ShiftStore) List(ctx context.Context, filter store.ShiftFilter) ([]*domain.ShiftAssignment, error) {
	ss.s.mu.RLock()
	defer ss.s.mu.RUnlock()

	from, to := domain.DateOnly(filter.From), domain.DateOnly(filter.To)
	var out []*domain.ShiftAssignment
	for _, sh := range ss.s.data.shifts {
		if filter.EmployeeID != 0 && sh.EmployeeID != filter.EmployeeID {
			continue
		}
		if !filter.From.IsZero() && sh.Date.Before(from) {
			continue
		}
		if !filter.To.IsZero() && sh.Date.After(to) {
			continue
		}
		out = append(out, cloneShift(sh))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		if out[i].EmployeeID != out[j].EmployeeID {
			return out[i].EmployeeID < out[j].EmployeeID
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Create implements store.ShiftStore.
func (ss *ShiftStore) Create(ctx context.Context, shift *domain.ShiftAssignment) error {
	if err := shift.Validate(); err != nil {
		return store.NewStoreError("shift", "create", "invalid shift", err)
	}

	ss.s.mu.Lock()
	defer ss.s.mu.Unlock()

	d := ss.s.data
	day := shiftDay{employeeID: shift.EmployeeID, date: domain.DateOnly(shift.Date)}
	key := shiftKey{shiftDay: day, label: shift.Label}
	if _, exists := d.shiftLabels[key]; exists {
		return store.ErrShiftExists
	}

	d.nextShiftID++
	shift.ID = d.nextShiftID
	shift.Date = day.date
	if shift.CreatedAt.IsZero() {
		shift.CreatedAt = time.Now().UTC()
	}
	d.shifts[shift.ID] = cloneShift(shift)
	d.shiftLabels[key] = shift.ID
	d.shiftDays[day]++

	id := shift.ID
	ss.tx.record(func(d *dataset) { d.removeShift(id) })
	return nil
}
