package record

import (
	"time"

	"github.com/clockwise-hr/attendance-backend-go/internal/pkg/validator"
)

// ProcessRequest triggers daily processing for one calendar day.
type ProcessRequest struct {
	Date string `json:"date"` // YYYY-MM-DD
}

func (r *ProcessRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Date) {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date is required",
		})
	} else if _, valid := validator.IsValidDate(r.Date); !valid {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// FinalizeRequest locks all records of one calendar day.
type FinalizeRequest struct {
	Date string `json:"date"` // YYYY-MM-DD
}

func (r *FinalizeRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Date) {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date is required",
		})
	} else if _, valid := validator.IsValidDate(r.Date); !valid {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// EmployeeOutcome is one employee's result within a processing batch.
// A failed employee carries Error and no Status; failures never abort the
// rest of the batch.
type EmployeeOutcome struct {
	EmployeeID   string  `json:"employee_id"`
	EmployeeCode string  `json:"employee_code"`
	Status       Status  `json:"status,omitempty"`
	Error        *string `json:"error,omitempty"`
}

// BatchResult summarizes one daily processing run.
type BatchResult struct {
	RunID       string            `json:"run_id"`
	Date        string            `json:"date"`
	Processed   int               `json:"processed"`
	Failed      int               `json:"failed"`
	Outcomes    []EmployeeOutcome `json:"outcomes"`
	StartedAt   time.Time         `json:"started_at"`
	CompletedAt time.Time         `json:"completed_at"`
}

type DailyRecordResponse struct {
	ID              string  `json:"id"`
	EmployeeID      string  `json:"employee_id"`
	EmployeeCode    *string `json:"employee_code,omitempty"`
	EmployeeName    *string `json:"employee_name,omitempty"`
	Date            string  `json:"date"`
	ShiftID         *string `json:"shift_id,omitempty"`
	InTime          *string `json:"in_time,omitempty"`
	OutTime         *string `json:"out_time,omitempty"`
	Status          Status  `json:"status"`
	TotalHours      float64 `json:"total_hours"`
	LateInMinutes   int     `json:"late_in_minutes"`
	EarlyOutMinutes int     `json:"early_out_minutes"`
	Incomplete      bool    `json:"incomplete"`
	IsFinalized     bool    `json:"is_finalized"`
}

// DailyReportRow is one flat row of the per-day report: every active
// employee appears, with ABSENT defaults when no record exists yet.
type DailyReportRow struct {
	EmployeeID      string  `json:"employee_id"`
	EmployeeCode    string  `json:"employee_code"`
	Name            string  `json:"name"`
	Department      string  `json:"department"`
	Designation     string  `json:"designation"`
	Branch          string  `json:"branch"`
	Status          Status  `json:"status"`
	InTime          *string `json:"in_time,omitempty"`
	OutTime         *string `json:"out_time,omitempty"`
	TotalHours      float64 `json:"total_hours"`
	LateInMinutes   int     `json:"late_in_minutes"`
	EarlyOutMinutes int     `json:"early_out_minutes"`
}

// MonthlyReportRow is one employee's month: day → status plus summary
// counts.
type MonthlyReportRow struct {
	EmployeeID   string            `json:"employee_id"`
	EmployeeCode string            `json:"employee_code"`
	Name         string            `json:"name"`
	Attendance   map[string]Status `json:"attendance"`
	Summary      MonthlySummary    `json:"summary"`
}

type MonthlySummary struct {
	Present  int `json:"present"`
	Absent   int `json:"absent"`
	Leaves   int `json:"leaves"`
	Holidays int `json:"holidays"`
}
