package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/clockwise-hr/attendance-backend-go/internal/domain/leave"
	"github.com/clockwise-hr/attendance-backend-go/internal/pkg/database"
)

type leaveChecker struct {
	db *database.DB
}

// IsOnApprovedLeave implements leave.Checker. Leave requests are owned by
// the surrounding product; only approved requests covering the day count.
func (l *leaveChecker) IsOnApprovedLeave(ctx context.Context, employeeID string, date time.Time) (bool, error) {
	q := GetQuerier(ctx, l.db)

	query := `
		SELECT EXISTS (
			SELECT 1
			FROM leave_requests
			WHERE employee_id = $1
			  AND status = 'APPROVED'
			  AND from_date <= $2
			  AND to_date >= $2
		)
	`

	var onLeave bool
	if err := q.QueryRow(ctx, query, employeeID, date).Scan(&onLeave); err != nil {
		return false, fmt.Errorf("failed to check approved leave: %w", err)
	}

	return onLeave, nil
}

func NewLeaveChecker(db *database.DB) leave.Checker {
	return &leaveChecker{db: db}
}
