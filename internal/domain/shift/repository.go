package shift

import (
	"context"
	"time"
)

// Repository provides read access to shifts and shift assignments. Both are
// owned and edited by the HR collaborator; the pipeline only reads them.
type Repository interface {
	// ListAssignments returns every assignment for the employee whose
	// interval covers the given day, shift joined.
	ListAssignments(ctx context.Context, employeeID string, date time.Time) ([]Assignment, error)
}
