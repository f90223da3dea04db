package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/clockwise-hr/attendance-backend-go/internal/domain/employee"
	"github.com/clockwise-hr/attendance-backend-go/internal/domain/holiday"
	"github.com/clockwise-hr/attendance-backend-go/internal/domain/leave"
	"github.com/clockwise-hr/attendance-backend-go/internal/domain/punch"
	"github.com/clockwise-hr/attendance-backend-go/internal/domain/record"
	"github.com/clockwise-hr/attendance-backend-go/internal/domain/shift"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Service owns the daily attendance derivation pipeline: shift resolution,
// punch interpretation and record persistence, batched over all active
// employees.
type Service struct {
	employees employee.Directory
	shifts    shift.Repository
	punches   punch.Repository
	records   record.Repository
	leaves    leave.Checker
	holidays  holiday.Checker
	logger    *slog.Logger

	loc           *time.Location
	workers       int
	noShiftStatus record.Status

	// computeMu serializes daily processing runs across the cron and HTTP
	// entry points. A second run is rejected, never queued.
	computeMu sync.Mutex

	now func() time.Time
}

type Options struct {
	Location      *time.Location
	Workers       int
	NoShiftStatus record.Status
}

func NewService(
	employees employee.Directory,
	shifts shift.Repository,
	punches punch.Repository,
	records record.Repository,
	leaves leave.Checker,
	holidays holiday.Checker,
	logger *slog.Logger,
	opts Options,
) *Service {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.NoShiftStatus == "" {
		opts.NoShiftStatus = record.StatusAbsent
	}
	return &Service{
		employees:     employees,
		shifts:        shifts,
		punches:       punches,
		records:       records,
		leaves:        leaves,
		holidays:      holidays,
		logger:        logger,
		loc:           opts.Location,
		workers:       opts.Workers,
		noShiftStatus: opts.NoShiftStatus,
		now:           time.Now,
	}
}

// ProcessDailyAttendance computes and stores the attendance record of every
// active employee for one calendar day. Individual employee failures are
// itemized in the result; they never abort the batch. Only one run may be in
// flight at a time; a second caller gets ErrProcessingInProgress.
func (s *Service) ProcessDailyAttendance(ctx context.Context, req record.ProcessRequest) (record.BatchResult, error) {
	if err := req.Validate(); err != nil {
		return record.BatchResult{}, err
	}
	date, _ := time.Parse("2006-01-02", req.Date)

	if !s.computeMu.TryLock() {
		return record.BatchResult{}, record.ErrProcessingInProgress
	}
	defer s.computeMu.Unlock()

	result := record.BatchResult{
		RunID:     uuid.NewString(),
		Date:      req.Date,
		StartedAt: s.now().UTC(),
	}

	employees, err := s.employees.ListActive(ctx)
	if err != nil {
		return record.BatchResult{}, fmt.Errorf("failed to list active employees: %w", err)
	}

	outcomes := make([]record.EmployeeOutcome, len(employees))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i, emp := range employees {
		// Cancellation is cooperative between employees; a started
		// employee always finishes its single atomic write.
		if err := gctx.Err(); err != nil {
			break
		}

		i, emp := i, emp

		g.Go(func() error {
			outcome := record.EmployeeOutcome{
				EmployeeID:   emp.ID,
				EmployeeCode: emp.EmployeeCode,
			}

			rec, err := s.computeEmployee(gctx, emp, date)
			if err != nil {
				msg := err.Error()
				outcome.Error = &msg
				s.logger.Error("failed to process employee attendance",
					slog.String("employee_code", emp.EmployeeCode),
					slog.String("date", req.Date),
					slog.Any("error", err),
				)
			} else {
				outcome.Status = rec.Status
			}

			outcomes[i] = outcome
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return record.BatchResult{}, fmt.Errorf("attendance batch aborted: %w", err)
	}

	for _, o := range outcomes {
		if o.EmployeeID == "" {
			continue // employee skipped by cancellation
		}
		if o.Error != nil {
			result.Failed++
		} else {
			result.Processed++
		}
		result.Outcomes = append(result.Outcomes, o)
	}
	result.CompletedAt = s.now().UTC()

	s.logger.Info("daily attendance batch completed",
		slog.String("run_id", result.RunID),
		slog.String("date", req.Date),
		slog.Int("processed", result.Processed),
		slog.Int("failed", result.Failed),
	)

	return result, nil
}

// computeEmployee derives one employee's outcome for the day and upserts it.
// A concurrent-upsert conflict is retried once with a fresh computation.
func (s *Service) computeEmployee(ctx context.Context, emp employee.Employee, date time.Time) (record.DailyRecord, error) {
	rec, err := s.deriveRecord(ctx, emp, date)
	if err != nil {
		return record.DailyRecord{}, err
	}

	stored, err := s.records.Upsert(ctx, rec)
	if errors.Is(err, record.ErrConflict) {
		rec, err = s.deriveRecord(ctx, emp, date)
		if err != nil {
			return record.DailyRecord{}, err
		}
		stored, err = s.records.Upsert(ctx, rec)
	}
	if err != nil {
		return record.DailyRecord{}, fmt.Errorf("failed to store attendance record: %w", err)
	}
	return stored, nil
}

// deriveRecord runs the per-day state machine: leave, then holiday, then
// shift resolution, then punch interpretation.
func (s *Service) deriveRecord(ctx context.Context, emp employee.Employee, date time.Time) (record.DailyRecord, error) {
	rec := record.DailyRecord{
		EmployeeID: emp.ID,
		Date:       date,
	}

	onLeave, err := s.leaves.IsOnApprovedLeave(ctx, emp.ID, date)
	if err != nil {
		return record.DailyRecord{}, fmt.Errorf("failed to check leave: %w", err)
	}
	if onLeave {
		rec.Status = record.StatusLeave
		return rec, nil
	}

	isHoliday, err := s.holidays.IsHoliday(ctx, emp.ID, date)
	if err != nil {
		return record.DailyRecord{}, fmt.Errorf("failed to check holiday: %w", err)
	}
	if isHoliday {
		rec.Status = record.StatusHoliday
		return rec, nil
	}

	assignments, err := s.shifts.ListAssignments(ctx, emp.ID, date)
	if err != nil {
		return record.DailyRecord{}, fmt.Errorf("failed to list shift assignments: %w", err)
	}
	assignment := shift.Resolve(assignments, date)
	if assignment == nil || assignment.Shift == nil {
		rec.Status = s.noShiftStatus
		return rec, nil
	}
	rec.ShiftID = &assignment.ShiftID

	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, s.loc)
	dayEnd := dayStart.AddDate(0, 0, 1)

	punches, err := s.punches.ListByEmployeeAndWindow(ctx, emp.EmployeeCode, dayStart, dayEnd)
	if err != nil {
		return record.DailyRecord{}, fmt.Errorf("failed to list punches: %w", err)
	}

	if len(punches) == 0 {
		rec.Status = record.StatusAbsent
		return rec, nil
	}

	sh := assignment.Shift
	shiftStart := projectOnDay(sh.StartTime, date, s.loc)
	shiftEnd := projectOnDay(sh.EndTime, date, s.loc)
	if !shiftEnd.After(shiftStart) {
		shiftEnd = shiftEnd.AddDate(0, 0, 1)
	}

	// First-in / last-out; intermediate punches are deliberately ignored.
	inTime := punches[0].PunchTime
	rec.InTime = &inTime
	rec.Status = record.StatusPresent
	rec.LateInMinutes = positiveMinutes(inTime.Sub(shiftStart.Add(time.Duration(sh.GraceTimeMinutes) * time.Minute)))

	if len(punches) == 1 {
		rec.Incomplete = true
		return rec, nil
	}

	outTime := punches[len(punches)-1].PunchTime
	rec.OutTime = &outTime
	rec.EarlyOutMinutes = positiveMinutes(shiftEnd.Sub(outTime))
	rec.TotalHours = roundHours(math.Max(0, outTime.Sub(inTime).Hours()))

	return rec, nil
}

// GetDailyRecords returns the stored records of one day.
func (s *Service) GetDailyRecords(ctx context.Context, dateStr string) ([]record.DailyRecordResponse, error) {
	date, err := s.parseDate(dateStr)
	if err != nil {
		return nil, err
	}

	records, err := s.records.ListByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list daily records: %w", err)
	}

	out := make([]record.DailyRecordResponse, 0, len(records))
	for _, r := range records {
		out = append(out, s.toResponse(r))
	}
	return out, nil
}

// GetDailyReport returns one flat row per active employee for the day.
// Employees without a stored record appear with ABSENT defaults so the
// report is always complete.
func (s *Service) GetDailyReport(ctx context.Context, dateStr string) ([]record.DailyReportRow, error) {
	date, err := s.parseDate(dateStr)
	if err != nil {
		return nil, err
	}

	employees, err := s.employees.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active employees: %w", err)
	}

	records, err := s.records.ListByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list daily records: %w", err)
	}
	byEmployee := make(map[string]record.DailyRecord, len(records))
	for _, r := range records {
		byEmployee[r.EmployeeID] = r
	}

	rows := make([]record.DailyReportRow, 0, len(employees))
	for _, emp := range employees {
		row := record.DailyReportRow{
			EmployeeID:   emp.ID,
			EmployeeCode: emp.EmployeeCode,
			Name:         emp.FullName,
			Department:   strOr(emp.DepartmentName),
			Designation:  strOr(emp.DesignationName),
			Branch:       strOr(emp.BranchName),
			Status:       record.StatusAbsent,
		}
		if r, ok := byEmployee[emp.ID]; ok {
			row.Status = r.Status
			row.InTime = s.formatTime(r.InTime)
			row.OutTime = s.formatTime(r.OutTime)
			row.TotalHours = r.TotalHours
			row.LateInMinutes = r.LateInMinutes
			row.EarlyOutMinutes = r.EarlyOutMinutes
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// GetMonthlyReport returns each active employee's day-by-day status for the
// month plus summary counts.
func (s *Service) GetMonthlyReport(ctx context.Context, year, month int) ([]record.MonthlyReportRow, error) {
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("month %d out of range", month)
	}

	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)

	employees, err := s.employees.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active employees: %w", err)
	}

	records, err := s.records.ListByRange(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list records for month: %w", err)
	}
	byEmployee := make(map[string][]record.DailyRecord)
	for _, r := range records {
		byEmployee[r.EmployeeID] = append(byEmployee[r.EmployeeID], r)
	}

	rows := make([]record.MonthlyReportRow, 0, len(employees))
	for _, emp := range employees {
		row := record.MonthlyReportRow{
			EmployeeID:   emp.ID,
			EmployeeCode: emp.EmployeeCode,
			Name:         emp.FullName,
			Attendance:   make(map[string]record.Status),
		}
		for _, r := range byEmployee[emp.ID] {
			row.Attendance[r.Date.Format("2006-01-02")] = r.Status
			switch r.Status {
			case record.StatusPresent:
				row.Summary.Present++
			case record.StatusAbsent:
				row.Summary.Absent++
			case record.StatusLeave:
				row.Summary.Leaves++
			case record.StatusHoliday:
				row.Summary.Holidays++
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// FinalizeDay locks every record of the day against recomputation and
// returns the number of records locked.
func (s *Service) FinalizeDay(ctx context.Context, req record.FinalizeRequest) (int64, error) {
	if err := req.Validate(); err != nil {
		return 0, err
	}
	date, _ := time.Parse("2006-01-02", req.Date)

	locked, err := s.records.FinalizeByDate(ctx, date)
	if err != nil {
		return 0, fmt.Errorf("failed to finalize records: %w", err)
	}

	s.logger.Info("attendance day finalized",
		slog.String("date", req.Date),
		slog.Int64("locked", locked),
	)
	return locked, nil
}

func (s *Service) parseDate(dateStr string) (time.Time, error) {
	req := record.ProcessRequest{Date: dateStr}
	if err := req.Validate(); err != nil {
		return time.Time{}, err
	}
	date, _ := time.Parse("2006-01-02", dateStr)
	return date, nil
}

func (s *Service) toResponse(r record.DailyRecord) record.DailyRecordResponse {
	return record.DailyRecordResponse{
		ID:              r.ID,
		EmployeeID:      r.EmployeeID,
		EmployeeCode:    r.EmployeeCode,
		EmployeeName:    r.EmployeeName,
		Date:            r.Date.Format("2006-01-02"),
		ShiftID:         r.ShiftID,
		InTime:          s.formatTime(r.InTime),
		OutTime:         s.formatTime(r.OutTime),
		Status:          r.Status,
		TotalHours:      r.TotalHours,
		LateInMinutes:   r.LateInMinutes,
		EarlyOutMinutes: r.EarlyOutMinutes,
		Incomplete:      r.Incomplete,
		IsFinalized:     r.IsFinalized,
	}
}

func (s *Service) formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	formatted := t.In(s.loc).Format("2006-01-02 15:04:05")
	return &formatted
}

// projectOnDay places a wall-clock shift time onto a concrete calendar day
// in the attendance timezone.
func projectOnDay(wallClock, date time.Time, loc *time.Location) time.Time {
	return time.Date(
		date.Year(), date.Month(), date.Day(),
		wallClock.Hour(), wallClock.Minute(), wallClock.Second(), 0,
		loc,
	)
}

func positiveMinutes(d time.Duration) int {
	m := int(d.Minutes())
	if m < 0 {
		return 0
	}
	return m
}

func roundHours(h float64) float64 {
	return math.Round(h*100) / 100
}

func strOr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
