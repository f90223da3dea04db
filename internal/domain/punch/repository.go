package punch

import (
	"context"
	"time"
)

// Repository is the append-only punch store. No update or delete paths
// exist; re-ingesting an event with the same natural key is a no-op.
type Repository interface {
	// BulkInsert persists events, skipping any whose natural key already
	// exists, and returns the number actually inserted.
	BulkInsert(ctx context.Context, events []Event) (int, error)

	// ListByEmployeeAndWindow returns the employee's punches with
	// start <= PunchTime < end, ordered by PunchTime ascending.
	ListByEmployeeAndWindow(ctx context.Context, employeeCode string, start, end time.Time) ([]Event, error)
}
