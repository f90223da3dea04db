package record

import "errors"

var (
	// ErrRecordLocked is returned when an upsert targets a finalized
	// record. The caller must see this; silently skipping or overwriting
	// is not allowed.
	ErrRecordLocked = errors.New("daily attendance record is finalized and locked")

	// ErrConflict signals a concurrent-upsert race on the same
	// (employee, date) key. The service retries once with a fresh
	// computation before surfacing it.
	ErrConflict = errors.New("concurrent upsert conflict on daily attendance record")

	ErrRecordNotFound = errors.New("daily attendance record not found")

	// ErrProcessingInProgress guards the daily compute pipeline: a second
	// batch for any date cannot start while one is running.
	ErrProcessingInProgress = errors.New("daily attendance processing is already running")
)
