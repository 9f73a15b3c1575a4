// Package staffing answers whether an employee is scheduled to work on a date.
package staffing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/phrazzld/rota-api/internal/domain"
	"github.com/phrazzld/rota-api/internal/store"
)

// Checker is the read-only staffing check consumed by the scheduling services.
type Checker interface {
	IsWorking(ctx context.Context, employeeID int64, date time.Time) (bool, error)
}

// Oracle implements Checker over the schedule store.
type Oracle struct {
	shifts store.ShiftStore
}

var _ Checker = (*Oracle)(nil)

// NewOracle creates an Oracle reading from shifts.
func NewOracle(shifts store.ShiftStore) (*Oracle, error) {
	if shifts == nil {
		return nil, errors.New("shift store cannot be nil")
	}
	return &Oracle{shifts: shifts}, nil
}

// IsWorking reports whether at least one shift exists for the employee on
// the calendar date of date. The shift label is irrelevant.
func (o *Oracle) IsWorking(ctx context.Context, employeeID int64, date time.Time) (bool, error) {
	ok, err := o.shifts.ExistsForEmployeeOn(ctx, employeeID, domain.DateOnly(date))
	if err != nil {
		return false, fmt.Errorf("failed to check shifts for employee %d: %w", employeeID, err)
	}
	return ok, nil
}
