package record

import "time"

type Status string

const (
	StatusPresent Status = "PRESENT"
	StatusAbsent  Status = "ABSENT"
	StatusLeave   Status = "LEAVE"
	StatusHoliday Status = "HOLIDAY"
	StatusWeekOff Status = "WEEKOFF"
)

// DailyRecord is the computed per-employee-per-day attendance outcome,
// unique on (EmployeeID, Date). Once finalized it is immutable to the
// compute engine.
type DailyRecord struct {
	ID              string
	EmployeeID      string
	Date            time.Time
	ShiftID         *string
	InTime          *time.Time
	OutTime         *time.Time
	Status          Status
	TotalHours      float64
	LateInMinutes   int
	EarlyOutMinutes int
	// Incomplete marks a PRESENT day with only a single punch: the record
	// stays queryable as PRESENT with zero hours instead of being dropped.
	Incomplete  bool
	IsFinalized bool
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Joined, for report rows
	EmployeeCode *string
	EmployeeName *string
}
