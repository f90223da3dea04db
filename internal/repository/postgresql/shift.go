package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/clockwise-hr/attendance-backend-go/internal/domain/shift"
	"github.com/clockwise-hr/attendance-backend-go/internal/pkg/database"
)

type shiftRepository struct {
	db *database.DB
}

// ListAssignments implements shift.Repository.
func (s *shiftRepository) ListAssignments(ctx context.Context, employeeID string, date time.Time) ([]shift.Assignment, error) {
	q := GetQuerier(ctx, s.db)

	query := `
		SELECT sa.id, sa.employee_id, sa.shift_id, sa.from_date, sa.to_date,
		       sa.created_at, sa.updated_at,
		       sh.id, sh.code, sh.name,
		       to_char(sh.start_time, 'HH24:MI:SS'),
		       to_char(sh.end_time, 'HH24:MI:SS'),
		       sh.break_duration_minutes, sh.grace_time_minutes,
		       sh.created_at, sh.updated_at
		FROM shift_assignments sa
		JOIN shifts sh ON sh.id = sa.shift_id
		WHERE sa.employee_id = $1
		  AND sa.from_date <= $2
		  AND (sa.to_date IS NULL OR sa.to_date >= $2)
		ORDER BY sa.from_date ASC
	`

	rows, err := q.Query(ctx, query, employeeID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query shift assignments: %w", err)
	}
	defer rows.Close()

	var assignments []shift.Assignment
	for rows.Next() {
		var (
			a                shift.Assignment
			sh               shift.Shift
			startStr, endStr string
		)
		err := rows.Scan(
			&a.ID, &a.EmployeeID, &a.ShiftID, &a.FromDate, &a.ToDate,
			&a.CreatedAt, &a.UpdatedAt,
			&sh.ID, &sh.Code, &sh.Name,
			&startStr, &endStr,
			&sh.BreakDurationMinutes, &sh.GraceTimeMinutes,
			&sh.CreatedAt, &sh.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan shift assignment: %w", err)
		}

		if sh.StartTime, err = time.Parse("15:04:05", startStr); err != nil {
			return nil, fmt.Errorf("invalid shift start time %q: %w", startStr, err)
		}
		if sh.EndTime, err = time.Parse("15:04:05", endStr); err != nil {
			return nil, fmt.Errorf("invalid shift end time %q: %w", endStr, err)
		}

		a.Shift = &sh
		assignments = append(assignments, a)
	}

	return assignments, rows.Err()
}

func NewShiftRepository(db *database.DB) shift.Repository {
	return &shiftRepository{db: db}
}
