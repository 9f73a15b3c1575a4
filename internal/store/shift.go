package store

import (
	"context"
	"time"

	"github.com/phrazzld/rota-api/internal/domain"
)

// ShiftFilter narrows shift listings. Zero values mean "no constraint".
type ShiftFilter struct {
	EmployeeID int64
	From       time.Time
	To         time.Time
}

// ShiftStore is the Schedule Store: who works which date.
type ShiftStore interface {
	// ExistsForEmployeeOn reports whether the employee has at least one shift
	// on the given date, regardless of label. Implementations must answer
	// this from an index rather than a scan.
	ExistsForEmployeeOn(ctx context.Context, employeeID int64, date time.Time) (bool, error)

	// List returns shifts matching the filter ordered by date, then employee.
	List(ctx context.Context, filter ShiftFilter) ([]*domain.ShiftAssignment, error)

	// Create saves a new shift and assigns its ID.
	// Returns ErrShiftExists if the (employee, date, label) triple is taken.
	Create(ctx context.Context, shift *domain.ShiftAssignment) error
}
