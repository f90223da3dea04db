package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/clockwise-hr/attendance-backend-go/internal/domain/record"
	"github.com/clockwise-hr/attendance-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type recordRepository struct {
	db *database.DB
}

// Upsert implements record.Repository. The conditional ON CONFLICT update
// makes the insert-or-overwrite decision atomic under concurrent batches:
// a finalized row matches the conflict target but not the update predicate,
// so no row comes back and the locked condition is surfaced explicitly.
func (r *recordRepository) Upsert(ctx context.Context, rec record.DailyRecord) (record.DailyRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO daily_attendance_records (
			employee_id, date, shift_id, in_time, out_time, status,
			total_hours, late_in_minutes, early_out_minutes, incomplete, is_finalized
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, false
		)
		ON CONFLICT (employee_id, date) DO UPDATE SET
			shift_id          = EXCLUDED.shift_id,
			in_time           = EXCLUDED.in_time,
			out_time          = EXCLUDED.out_time,
			status            = EXCLUDED.status,
			total_hours       = EXCLUDED.total_hours,
			late_in_minutes   = EXCLUDED.late_in_minutes,
			early_out_minutes = EXCLUDED.early_out_minutes,
			incomplete        = EXCLUDED.incomplete,
			updated_at        = NOW()
		WHERE daily_attendance_records.is_finalized = false
		RETURNING id, is_finalized, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		rec.EmployeeID,
		rec.Date,
		rec.ShiftID,
		rec.InTime,
		rec.OutTime,
		rec.Status,
		rec.TotalHours,
		rec.LateInMinutes,
		rec.EarlyOutMinutes,
		rec.Incomplete,
	).Scan(&rec.ID, &rec.IsFinalized, &rec.CreatedAt, &rec.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return record.DailyRecord{}, record.ErrRecordLocked
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return record.DailyRecord{}, record.ErrConflict
		}
		return record.DailyRecord{}, fmt.Errorf("failed to upsert daily attendance record: %w", err)
	}

	return rec, nil
}

// ListByDate implements record.Repository.
func (r *recordRepository) ListByDate(ctx context.Context, date time.Time) ([]record.DailyRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT d.id, d.employee_id, d.date, d.shift_id, d.in_time, d.out_time,
		       d.status, d.total_hours, d.late_in_minutes, d.early_out_minutes,
		       d.incomplete, d.is_finalized, d.created_at, d.updated_at,
		       e.employee_code, e.full_name
		FROM daily_attendance_records d
		LEFT JOIN employees e ON e.id = d.employee_id
		WHERE d.date = $1
		ORDER BY e.employee_code ASC
	`

	rows, err := q.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily attendance records: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// ListByRange implements record.Repository.
func (r *recordRepository) ListByRange(ctx context.Context, start, end time.Time) ([]record.DailyRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT d.id, d.employee_id, d.date, d.shift_id, d.in_time, d.out_time,
		       d.status, d.total_hours, d.late_in_minutes, d.early_out_minutes,
		       d.incomplete, d.is_finalized, d.created_at, d.updated_at,
		       e.employee_code, e.full_name
		FROM daily_attendance_records d
		LEFT JOIN employees e ON e.id = d.employee_id
		WHERE d.date >= $1
		  AND d.date <= $2
		ORDER BY e.employee_code ASC, d.date ASC
	`

	rows, err := q.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily attendance records: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// FinalizeByDate implements record.Repository.
func (r *recordRepository) FinalizeByDate(ctx context.Context, date time.Time) (int64, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE daily_attendance_records
		SET is_finalized = true, updated_at = NOW()
		WHERE date = $1
		  AND is_finalized = false
	`

	tag, err := q.Exec(ctx, query, date)
	if err != nil {
		return 0, fmt.Errorf("failed to finalize daily attendance records: %w", err)
	}

	return tag.RowsAffected(), nil
}

func scanRecords(rows pgx.Rows) ([]record.DailyRecord, error) {
	var records []record.DailyRecord
	for rows.Next() {
		var rec record.DailyRecord
		err := rows.Scan(
			&rec.ID, &rec.EmployeeID, &rec.Date, &rec.ShiftID, &rec.InTime, &rec.OutTime,
			&rec.Status, &rec.TotalHours, &rec.LateInMinutes, &rec.EarlyOutMinutes,
			&rec.Incomplete, &rec.IsFinalized, &rec.CreatedAt, &rec.UpdatedAt,
			&rec.EmployeeCode, &rec.EmployeeName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan daily attendance record: %w", err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

func NewRecordRepository(db *database.DB) record.Repository {
	return &recordRepository{db: db}
}
