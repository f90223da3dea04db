package holiday

import (
	"context"
	"time"
)

// Checker is the holiday-calendar collaborator. Holiday declaration belongs
// to the surrounding product; the pipeline only asks whether a day is a
// holiday for the employee's calendar.
type Checker interface {
	IsHoliday(ctx context.Context, employeeID string, date time.Time) (bool, error)
}
