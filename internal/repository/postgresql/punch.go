package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/clockwise-hr/attendance-backend-go/internal/domain/punch"
	"github.com/clockwise-hr/attendance-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type punchRepository struct {
	db *database.DB
}

// BulkInsert implements punch.Repository. Events whose natural key
// (employee_code, device_id, punch_time) already exists are skipped, which
// makes overlapping sync windows idempotent. The batch commits as a whole.
func (p *punchRepository) BulkInsert(ctx context.Context, events []punch.Event) (int, error) {
	query := `
		INSERT INTO punch_events (employee_code, device_id, punch_time, direction)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (employee_code, device_id, punch_time) DO NOTHING
	`

	inserted := 0
	err := WithTransaction(ctx, p.db, func(tx pgx.Tx) error {
		for _, ev := range events {
			tag, err := tx.Exec(ctx, query, ev.EmployeeCode, ev.DeviceID, ev.PunchTime, ev.Direction)
			if err != nil {
				return fmt.Errorf("failed to insert punch event: %w", err)
			}
			inserted += int(tag.RowsAffected())
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return inserted, nil
}

// ListByEmployeeAndWindow implements punch.Repository.
func (p *punchRepository) ListByEmployeeAndWindow(ctx context.Context, employeeCode string, start, end time.Time) ([]punch.Event, error) {
	q := GetQuerier(ctx, p.db)

	query := `
		SELECT id, employee_code, device_id, punch_time, direction, ingested_at
		FROM punch_events
		WHERE employee_code = $1
		  AND punch_time >= $2
		  AND punch_time < $3
		ORDER BY punch_time ASC
	`

	rows, err := q.Query(ctx, query, employeeCode, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query punch events: %w", err)
	}
	defer rows.Close()

	var events []punch.Event
	for rows.Next() {
		var ev punch.Event
		if err := rows.Scan(&ev.ID, &ev.EmployeeCode, &ev.DeviceID, &ev.PunchTime, &ev.Direction, &ev.IngestedAt); err != nil {
			return nil, fmt.Errorf("failed to scan punch event: %w", err)
		}
		events = append(events, ev)
	}

	return events, rows.Err()
}

func NewPunchRepository(db *database.DB) punch.Repository {
	return &punchRepository{db: db}
}
