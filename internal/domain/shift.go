package domain

import (
	"strings"
	"time"
)

// ShiftAssignment records that an employee works a shift on a date.
// An employee may work several shifts on the same date; only the
// (employee, date, label) triple is unique.
type ShiftAssignment struct {
	ID         int64     `json:"id"`
	EmployeeID int64     `json:"employee_id"`
	Date       time.Time `json:"date"`
	Label      string    `json:"label"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewShiftAssignment creates a validated shift for the given employee and date.
func NewShiftAssignment(employeeID int64, date time.Time, label string) (*ShiftAssignment, error) {
	s := &ShiftAssignment{
		EmployeeID: employeeID,
		Date:       DateOnly(date),
		Label:      strings.TrimSpace(label),
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks if the ShiftAssignment has valid data.
func (s *ShiftAssignment) Validate() error {
	if s.EmployeeID <= 0 {
		return NewValidationError("employee_id", "must be positive", ErrValidation)
	}
	if s.Date.IsZero() {
		return NewValidationError("date", "is required", ErrInvalidDate)
	}
	if s.Label == "" {
		return NewValidationError("label", "cannot be empty", ErrValidation)
	}
	return nil
}

// DateOnly truncates t to midnight UTC of its calendar date.
// All dates in the domain are carried in this normalized form.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
