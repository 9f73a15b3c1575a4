// Package calendar implements the date arithmetic behind recurring tasks.
//
// All functions operate on calendar dates. Times are normalized to midnight UTC
// of their date before any arithmetic, so a date never drifts across a day
// boundary because of a time zone or DST transition.
package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/phrazzld/rota-api/internal/domain"
)

// DateLayout is the wire and storage format for calendar dates.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD string into a normalized date.
// Returns an error wrapping domain.ErrInvalidDate when the string is malformed.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", domain.ErrInvalidDate, s)
	}
	return domain.DateOnly(t), nil
}

// FormatDate renders a date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// Today returns the calendar date of now as observed in loc.
// A nil location means UTC.
func Today(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return domain.DateOnly(now.In(loc))
}

// Next returns the occurrence following date for the given frequency.
//
//   - daily adds one day
//   - weekly adds seven days
//   - monthly keeps the day of month, clamped to the last day of a shorter
//     target month (Jan 31 -> Feb 28 or Feb 29); December rolls into January
//
// Any other frequency returns date unchanged.
func Next(date time.Time, frequency domain.Frequency) time.Time {
	d := domain.DateOnly(date)
	switch frequency {
	case domain.FrequencyDaily:
		return d.AddDate(0, 0, 1)
	case domain.FrequencyWeekly:
		return d.AddDate(0, 0, 7)
	case domain.FrequencyMonthly:
		return addMonthClamped(d)
	default:
		return d
	}
}

// NextOccurrence is the string form of Next. It fails with domain.ErrInvalidDate
// when date cannot be parsed.
func NextOccurrence(date string, frequency domain.Frequency) (string, error) {
	d, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	return FormatDate(Next(d, frequency)), nil
}

// addMonthClamped moves d to the same day of the following month.
// time.AddDate normalizes overflow (Jan 31 + 1 month = Mar 3), which is not
// what a monthly schedule means, so the day is clamped instead.
func addMonthClamped(d time.Time) time.Time {
	year, month := d.Year(), d.Month()+1
	if month > time.December {
		month = time.January
		year++
	}
	day := d.Day()
	if last := DaysIn(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
