package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/clockwise-hr/attendance-backend-go/internal/domain/holiday"
	"github.com/clockwise-hr/attendance-backend-go/internal/pkg/database"
)

type holidayChecker struct {
	db *database.DB
}

// IsHoliday implements holiday.Checker. A holiday row either applies to
// every branch (branch_id null) or to the employee's branch.
func (h *holidayChecker) IsHoliday(ctx context.Context, employeeID string, date time.Time) (bool, error) {
	q := GetQuerier(ctx, h.db)

	query := `
		SELECT EXISTS (
			SELECT 1
			FROM holidays hd
			JOIN employees e ON e.id = $1
			WHERE hd.date = $2
			  AND (hd.branch_id IS NULL OR hd.branch_id = e.branch_id)
		)
	`

	var isHoliday bool
	if err := q.QueryRow(ctx, query, employeeID, date).Scan(&isHoliday); err != nil {
		return false, fmt.Errorf("failed to check holiday: %w", err)
	}

	return isHoliday, nil
}

func NewHolidayChecker(db *database.DB) holiday.Checker {
	return &holidayChecker{db: db}
}
