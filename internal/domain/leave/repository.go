package leave

import (
	"context"
	"time"
)

// Checker is the leave collaborator. Leave application and approval belong
// to the surrounding product; the pipeline only asks whether an approved
// leave covers a day.
type Checker interface {
	IsOnApprovedLeave(ctx context.Context, employeeID string, date time.Time) (bool, error)
}
