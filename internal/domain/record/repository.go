package record

import (
	"context"
	"time"
)

// Repository is the daily-attendance record store.
type Repository interface {
	// Upsert inserts the outcome, or overwrites the existing row for the
	// same (EmployeeID, Date) when it is not finalized. A finalized row
	// fails with ErrRecordLocked. The operation is atomic with respect to
	// the uniqueness constraint: of two concurrent computations for the
	// same key, one observes the other's write.
	Upsert(ctx context.Context, rec DailyRecord) (DailyRecord, error)

	// ListByDate returns all records for the day, employee joined,
	// ordered by employee code.
	ListByDate(ctx context.Context, date time.Time) ([]DailyRecord, error)

	// ListByRange returns all records with start <= Date <= end.
	ListByRange(ctx context.Context, start, end time.Time) ([]DailyRecord, error)

	// FinalizeByDate locks every record of the day against recomputation
	// and returns the number of rows locked.
	FinalizeByDate(ctx context.Context, date time.Time) (int64, error)
}
