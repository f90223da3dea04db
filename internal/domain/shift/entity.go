package shift

import "time"

// Shift is a named work schedule. StartTime and EndTime carry wall-clock
// time only (zero date); they are projected onto a concrete day, in the
// attendance timezone, at compute time.
type Shift struct {
	ID                   string
	Code                 string
	Name                 string
	StartTime            time.Time
	EndTime              time.Time
	BreakDurationMinutes int
	GraceTimeMinutes     int
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// Assignment binds an employee to a shift over a dated interval.
// ToDate nil means open-ended.
type Assignment struct {
	ID         string
	EmployeeID string
	ShiftID    string
	FromDate   time.Time
	ToDate     *time.Time
	Shift      *Shift
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Covers reports whether the assignment interval contains the given day.
// date must be a date-only value (midnight UTC), as stored for FromDate
// and ToDate.
func (a Assignment) Covers(date time.Time) bool {
	if a.FromDate.After(date) {
		return false
	}
	if a.ToDate != nil && a.ToDate.Before(date) {
		return false
	}
	return true
}
