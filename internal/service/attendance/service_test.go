package attendance

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/clockwise-hr/attendance-backend-go/internal/domain/employee"
	"github.com/clockwise-hr/attendance-backend-go/internal/domain/punch"
	"github.com/clockwise-hr/attendance-backend-go/internal/domain/record"
	"github.com/clockwise-hr/attendance-backend-go/internal/domain/shift"
	"github.com/clockwise-hr/attendance-backend-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDirectory struct {
	employees []employee.Employee
	err       error
}

func (f *fakeDirectory) ListActive(ctx context.Context) ([]employee.Employee, error) {
	return f.employees, f.err
}

type fakeShiftRepo struct {
	assignments map[string][]shift.Assignment
}

func (f *fakeShiftRepo) ListAssignments(ctx context.Context, employeeID string, date time.Time) ([]shift.Assignment, error) {
	return f.assignments[employeeID], nil
}

type fakePunchRepo struct {
	punches map[string][]punch.Event
}

func (f *fakePunchRepo) BulkInsert(ctx context.Context, events []punch.Event) (int, error) {
	return 0, errors.New("not used")
}

func (f *fakePunchRepo) ListByEmployeeAndWindow(ctx context.Context, employeeCode string, start, end time.Time) ([]punch.Event, error) {
	var out []punch.Event
	for _, ev := range f.punches[employeeCode] {
		if ev.PunchTime.Before(start) || !ev.PunchTime.Before(end) {
			continue
		}
		out = append(out, ev)
	}
	return out, nil
}

type fakeRecordRepo struct {
	mu      sync.Mutex
	rows    map[string]record.DailyRecord
	upserts int

	// conflictOnce makes the next Upsert fail with ErrConflict.
	conflictOnce bool
}

func recordKey(employeeID string, date time.Time) string {
	return employeeID + "|" + date.Format("2006-01-02")
}

func (f *fakeRecordRepo) Upsert(ctx context.Context, rec record.DailyRecord) (record.DailyRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.upserts++
	if f.conflictOnce {
		f.conflictOnce = false
		return record.DailyRecord{}, record.ErrConflict
	}

	key := recordKey(rec.EmployeeID, rec.Date)
	if existing, ok := f.rows[key]; ok {
		if existing.IsFinalized {
			return record.DailyRecord{}, record.ErrRecordLocked
		}
		rec.ID = existing.ID
	} else {
		rec.ID = fmt.Sprintf("rec-%d", len(f.rows)+1)
	}
	if f.rows == nil {
		f.rows = make(map[string]record.DailyRecord)
	}
	f.rows[key] = rec
	return rec, nil
}

func (f *fakeRecordRepo) ListByDate(ctx context.Context, date time.Time) ([]record.DailyRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []record.DailyRecord
	for _, r := range f.rows {
		if r.Date.Equal(date) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRecordRepo) ListByRange(ctx context.Context, start, end time.Time) ([]record.DailyRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []record.DailyRecord
	for _, r := range f.rows {
		if r.Date.Before(start) || r.Date.After(end) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeRecordRepo) FinalizeByDate(ctx context.Context, date time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var locked int64
	for key, r := range f.rows {
		if r.Date.Equal(date) && !r.IsFinalized {
			r.IsFinalized = true
			f.rows[key] = r
			locked++
		}
	}
	return locked, nil
}

func (f *fakeRecordRepo) get(employeeID string, date time.Time) (record.DailyRecord, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[recordKey(employeeID, date)]
	return r, ok
}

type fakeLeaveChecker struct {
	onLeave map[string]bool
	err     error
}

func (f *fakeLeaveChecker) IsOnApprovedLeave(ctx context.Context, employeeID string, date time.Time) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.onLeave[employeeID], nil
}

type fakeHolidayChecker struct {
	holidays map[string]bool
}

func (f *fakeHolidayChecker) IsHoliday(ctx context.Context, employeeID string, date time.Time) (bool, error) {
	return f.holidays[date.Format("2006-01-02")], nil
}

type fixture struct {
	directory *fakeDirectory
	shifts    *fakeShiftRepo
	punches   *fakePunchRepo
	records   *fakeRecordRepo
	leaves    *fakeLeaveChecker
	holidays  *fakeHolidayChecker
	svc       *Service
}

func newFixture(opts Options) *fixture {
	f := &fixture{
		directory: &fakeDirectory{},
		shifts:    &fakeShiftRepo{assignments: map[string][]shift.Assignment{}},
		punches:   &fakePunchRepo{punches: map[string][]punch.Event{}},
		records:   &fakeRecordRepo{rows: map[string]record.DailyRecord{}},
		leaves:    &fakeLeaveChecker{onLeave: map[string]bool{}},
		holidays:  &fakeHolidayChecker{holidays: map[string]bool{}},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.svc = NewService(f.directory, f.shifts, f.punches, f.records, f.leaves, f.holidays, logger, opts)
	return f
}

func wallClock(hour, minute int) time.Time {
	return time.Date(0, 1, 1, hour, minute, 0, 0, time.UTC)
}

var testDate = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

func (f *fixture) addEmployee(id, code, name string) {
	f.directory.employees = append(f.directory.employees, employee.Employee{
		ID:           id,
		EmployeeCode: code,
		FullName:     name,
		IsActive:     true,
	})
}

func (f *fixture) assignShift(employeeID, assignmentID string, sh shift.Shift) {
	f.shifts.assignments[employeeID] = append(f.shifts.assignments[employeeID], shift.Assignment{
		ID:         assignmentID,
		EmployeeID: employeeID,
		ShiftID:    sh.ID,
		FromDate:   testDate.AddDate(0, -1, 0),
		Shift:      &sh,
	})
}

func (f *fixture) addPunch(code string, at time.Time) {
	f.punches.punches[code] = append(f.punches.punches[code], punch.Event{
		EmployeeCode: code,
		PunchTime:    at,
		Direction:    punch.DirectionUnspecified,
	})
}

func dayShift() shift.Shift {
	return shift.Shift{
		ID:               "shift-day",
		Code:             "DAY",
		Name:             "Day Shift",
		StartTime:        wallClock(9, 0),
		EndTime:          wallClock(18, 0),
		GraceTimeMinutes: 15,
	}
}

func TestProcessLatePunchesWithinShift(t *testing.T) {
	f := newFixture(Options{})
	f.addEmployee("emp-1", "EMP-001", "Asha Rao")
	f.assignShift("emp-1", "assign-1", dayShift())
	f.addPunch("EMP-001", time.Date(2024, 5, 1, 9, 20, 0, 0, time.UTC))
	f.addPunch("EMP-001", time.Date(2024, 5, 1, 18, 5, 0, 0, time.UTC))

	result, err := f.svc.ProcessDailyAttendance(context.Background(), record.ProcessRequest{Date: "2024-05-01"})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, 0, result.Failed)

	rec, ok := f.records.get("emp-1", testDate)
	require.True(t, ok)
	assert.Equal(t, record.StatusPresent, rec.Status)
	assert.Equal(t, 5, rec.LateInMinutes)
	assert.Equal(t, 0, rec.EarlyOutMinutes)
	assert.Equal(t, 8.75, rec.TotalHours)
	assert.False(t, rec.Incomplete)
	require.NotNil(t, rec.ShiftID)
	assert.Equal(t, "shift-day", *rec.ShiftID)
}

func TestProcessNoAssignmentNoPunches(t *testing.T) {
	f := newFixture(Options{})
	f.addEmployee("emp-2", "EMP-002", "Bilal Khan")

	_, err := f.svc.ProcessDailyAttendance(context.Background(), record.ProcessRequest{Date: "2024-05-01"})
	require.NoError(t, err)

	rec, ok := f.records.get("emp-2", testDate)
	require.True(t, ok)
	assert.Equal(t, record.StatusAbsent, rec.Status)
	assert.Nil(t, rec.ShiftID)
	assert.Nil(t, rec.InTime)
	assert.Nil(t, rec.OutTime)
}

func TestProcessNoShiftStatusConfigurable(t *testing.T) {
	f := newFixture(Options{NoShiftStatus: record.StatusWeekOff})
	f.addEmployee("emp-2", "EMP-002", "Bilal Khan")

	_, err := f.svc.ProcessDailyAttendance(context.Background(), record.ProcessRequest{Date: "2024-05-01"})
	require.NoError(t, err)

	rec, _ := f.records.get("emp-2", testDate)
	assert.Equal(t, record.StatusWeekOff, rec.Status)
}

func TestProcessLeaveOverridesPunches(t *testing.T) {
	f := newFixture(Options{})
	f.addEmployee("emp-3", "EMP-003", "Carla Diaz")
	f.assignShift("emp-3", "assign-1", dayShift())
	f.addPunch("EMP-003", time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC))
	f.addPunch("EMP-003", time.Date(2024, 5, 1, 18, 0, 0, 0, time.UTC))
	f.leaves.onLeave["emp-3"] = true

	_, err := f.svc.ProcessDailyAttendance(context.Background(), record.ProcessRequest{Date: "2024-05-01"})
	require.NoError(t, err)

	rec, _ := f.records.get("emp-3", testDate)
	assert.Equal(t, record.StatusLeave, rec.Status)
	assert.Nil(t, rec.InTime)
	assert.Nil(t, rec.OutTime)
	assert.Zero(t, rec.TotalHours)
}

func TestProcessHoliday(t *testing.T) {
	f := newFixture(Options{})
	f.addEmployee("emp-1", "EMP-001", "Asha Rao")
	f.assignShift("emp-1", "assign-1", dayShift())
	f.holidays.holidays["2024-05-01"] = true

	_, err := f.svc.ProcessDailyAttendance(context.Background(), record.ProcessRequest{Date: "2024-05-01"})
	require.NoError(t, err)

	rec, _ := f.records.get("emp-1", testDate)
	assert.Equal(t, record.StatusHoliday, rec.Status)
}

func TestProcessShiftCoveredNoPunches(t *testing.T) {
	f := newFixture(Options{})
	f.addEmployee("emp-1", "EMP-001", "Asha Rao")
	f.assignShift("emp-1", "assign-1", dayShift())

	_, err := f.svc.ProcessDailyAttendance(context.Background(), record.ProcessRequest{Date: "2024-05-01"})
	require.NoError(t, err)

	rec, _ := f.records.get("emp-1", testDate)
	assert.Equal(t, record.StatusAbsent, rec.Status)
	assert.Nil(t, rec.InTime)
	assert.Nil(t, rec.OutTime)
	require.NotNil(t, rec.ShiftID)
}

func TestProcessSinglePunchIncomplete(t *testing.T) {
	f := newFixture(Options{})
	f.addEmployee("emp-1", "EMP-001", "Asha Rao")
	f.assignShift("emp-1", "assign-1", dayShift())
	f.addPunch("EMP-001", time.Date(2024, 5, 1, 9, 5, 0, 0, time.UTC))

	_, err := f.svc.ProcessDailyAttendance(context.Background(), record.ProcessRequest{Date: "2024-05-01"})
	require.NoError(t, err)

	rec, _ := f.records.get("emp-1", testDate)
	assert.Equal(t, record.StatusPresent, rec.Status)
	assert.True(t, rec.Incomplete)
	assert.Zero(t, rec.TotalHours)
	require.NotNil(t, rec.InTime)
	assert.Nil(t, rec.OutTime)
	assert.Equal(t, 0, rec.LateInMinutes, "09:05 is within the 15 minute grace")
}

func TestProcessIgnoresIntermediatePunches(t *testing.T) {
	f := newFixture(Options{})
	f.addEmployee("emp-1", "EMP-001", "Asha Rao")
	f.assignShift("emp-1", "assign-1", dayShift())
	f.addPunch("EMP-001", time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC))
	f.addPunch("EMP-001", time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC))
	f.addPunch("EMP-001", time.Date(2024, 5, 1, 13, 15, 0, 0, time.UTC))
	f.addPunch("EMP-001", time.Date(2024, 5, 1, 18, 0, 0, 0, time.UTC))

	_, err := f.svc.ProcessDailyAttendance(context.Background(), record.ProcessRequest{Date: "2024-05-01"})
	require.NoError(t, err)

	rec, _ := f.records.get("emp-1", testDate)
	assert.Equal(t, 9.0, rec.TotalHours)
	assert.Equal(t, time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC), *rec.InTime)
	assert.Equal(t, time.Date(2024, 5, 1, 18, 0, 0, 0, time.UTC), *rec.OutTime)
}

func TestProcessLateEarlyNeverNegative(t *testing.T) {
	f := newFixture(Options{})
	f.addEmployee("emp-1", "EMP-001", "Asha Rao")
	f.assignShift("emp-1", "assign-1", dayShift())
	// in well before shift start, out well after shift end
	f.addPunch("EMP-001", time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC))
	f.addPunch("EMP-001", time.Date(2024, 5, 1, 19, 30, 0, 0, time.UTC))

	_, err := f.svc.ProcessDailyAttendance(context.Background(), record.ProcessRequest{Date: "2024-05-01"})
	require.NoError(t, err)

	rec, _ := f.records.get("emp-1", testDate)
	assert.Equal(t, 0, rec.LateInMinutes)
	assert.Equal(t, 0, rec.EarlyOutMinutes)
	assert.Equal(t, 11.5, rec.TotalHours)
}

func TestProcessIdempotent(t *testing.T) {
	f := newFixture(Options{})
	f.addEmployee("emp-1", "EMP-001", "Asha Rao")
	f.assignShift("emp-1", "assign-1", dayShift())
	f.addPunch("EMP-001", time.Date(2024, 5, 1, 9, 20, 0, 0, time.UTC))
	f.addPunch("EMP-001", time.Date(2024, 5, 1, 18, 5, 0, 0, time.UTC))

	req := record.ProcessRequest{Date: "2024-05-01"}
	_, err := f.svc.ProcessDailyAttendance(context.Background(), req)
	require.NoError(t, err)
	first, _ := f.records.get("emp-1", testDate)

	_, err = f.svc.ProcessDailyAttendance(context.Background(), req)
	require.NoError(t, err)
	second, _ := f.records.get("emp-1", testDate)

	assert.Equal(t, first, second, "reprocessing identical input must not drift")
	assert.Len(t, f.records.rows, 1)
}

func TestProcessFinalizedRecordRejected(t *testing.T) {
	f := newFixture(Options{})
	f.addEmployee("emp-1", "EMP-001", "Asha Rao")
	f.assignShift("emp-1", "assign-1", dayShift())
	f.addPunch("EMP-001", time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC))
	f.addPunch("EMP-001", time.Date(2024, 5, 1, 18, 0, 0, 0, time.UTC))

	req := record.ProcessRequest{Date: "2024-05-01"}
	_, err := f.svc.ProcessDailyAttendance(context.Background(), req)
	require.NoError(t, err)

	locked, err := f.svc.FinalizeDay(context.Background(), record.FinalizeRequest{Date: "2024-05-01"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), locked)

	result, err := f.svc.ProcessDailyAttendance(context.Background(), req)
	require.NoError(t, err, "batch itself succeeds; the failure is itemized")
	assert.Equal(t, 0, result.Processed)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Outcomes, 1)
	require.NotNil(t, result.Outcomes[0].Error)
	assert.Contains(t, *result.Outcomes[0].Error, record.ErrRecordLocked.Error())
}

func TestProcessConflictRetriedOnce(t *testing.T) {
	f := newFixture(Options{})
	f.addEmployee("emp-1", "EMP-001", "Asha Rao")
	f.assignShift("emp-1", "assign-1", dayShift())
	f.addPunch("EMP-001", time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC))
	f.addPunch("EMP-001", time.Date(2024, 5, 1, 18, 0, 0, 0, time.UTC))
	f.records.conflictOnce = true

	result, err := f.svc.ProcessDailyAttendance(context.Background(), record.ProcessRequest{Date: "2024-05-01"})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, 0, result.Failed)
	assert.Equal(t, 2, f.records.upserts)
}

func TestProcessPerEmployeeFailureDoesNotAbortBatch(t *testing.T) {
	f := newFixture(Options{Workers: 1})
	f.addEmployee("emp-1", "EMP-001", "Asha Rao")
	f.addEmployee("emp-2", "EMP-002", "Bilal Khan")
	f.assignShift("emp-1", "assign-1", dayShift())
	f.assignShift("emp-2", "assign-2", dayShift())
	f.addPunch("EMP-002", time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC))
	f.addPunch("EMP-002", time.Date(2024, 5, 1, 18, 0, 0, 0, time.UTC))

	// emp-1 is already finalized; its upsert fails while emp-2 proceeds.
	f.records.rows[recordKey("emp-1", testDate)] = record.DailyRecord{
		ID:          "rec-old",
		EmployeeID:  "emp-1",
		Date:        testDate,
		Status:      record.StatusAbsent,
		IsFinalized: true,
	}

	result, err := f.svc.ProcessDailyAttendance(context.Background(), record.ProcessRequest{Date: "2024-05-01"})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, 1, result.Failed)

	rec, ok := f.records.get("emp-2", testDate)
	require.True(t, ok)
	assert.Equal(t, record.StatusPresent, rec.Status)
}

func TestProcessInvalidDate(t *testing.T) {
	f := newFixture(Options{})

	_, err := f.svc.ProcessDailyAttendance(context.Background(), record.ProcessRequest{Date: "01-05-2024"})
	require.Error(t, err)

	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)
}

func TestProcessRejectsConcurrentRun(t *testing.T) {
	f := newFixture(Options{})
	f.addEmployee("emp-1", "EMP-001", "Asha Rao")

	f.svc.computeMu.Lock()
	defer f.svc.computeMu.Unlock()

	_, err := f.svc.ProcessDailyAttendance(context.Background(), record.ProcessRequest{Date: "2024-05-01"})
	assert.ErrorIs(t, err, record.ErrProcessingInProgress)
}

func TestGetDailyReportIncludesAbsentEmployees(t *testing.T) {
	f := newFixture(Options{})
	dept := "Engineering"
	f.directory.employees = []employee.Employee{
		{ID: "emp-1", EmployeeCode: "EMP-001", FullName: "Asha Rao", IsActive: true, DepartmentName: &dept},
		{ID: "emp-2", EmployeeCode: "EMP-002", FullName: "Bilal Khan", IsActive: true},
	}
	f.assignShift("emp-1", "assign-1", dayShift())
	f.addPunch("EMP-001", time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC))
	f.addPunch("EMP-001", time.Date(2024, 5, 1, 18, 0, 0, 0, time.UTC))

	_, err := f.svc.ProcessDailyAttendance(context.Background(), record.ProcessRequest{Date: "2024-05-01"})
	require.NoError(t, err)

	// Drop emp-2's stored row to simulate an employee added after the run.
	delete(f.records.rows, recordKey("emp-2", testDate))

	rows, err := f.svc.GetDailyReport(context.Background(), "2024-05-01")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, record.StatusPresent, rows[0].Status)
	assert.Equal(t, "Engineering", rows[0].Department)
	assert.Equal(t, 9.0, rows[0].TotalHours)

	assert.Equal(t, record.StatusAbsent, rows[1].Status)
	assert.Nil(t, rows[1].InTime)
	assert.Zero(t, rows[1].TotalHours)
}

func TestGetMonthlyReportSummarizes(t *testing.T) {
	f := newFixture(Options{})
	f.addEmployee("emp-1", "EMP-001", "Asha Rao")

	days := map[string]record.Status{
		"2024-05-01": record.StatusPresent,
		"2024-05-02": record.StatusPresent,
		"2024-05-03": record.StatusLeave,
		"2024-05-04": record.StatusHoliday,
		"2024-05-05": record.StatusAbsent,
	}
	for day, status := range days {
		date, _ := time.Parse("2006-01-02", day)
		f.records.rows[recordKey("emp-1", date)] = record.DailyRecord{
			EmployeeID: "emp-1",
			Date:       date,
			Status:     status,
		}
	}

	rows, err := f.svc.GetMonthlyReport(context.Background(), 2024, 5)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, 2, row.Summary.Present)
	assert.Equal(t, 1, row.Summary.Absent)
	assert.Equal(t, 1, row.Summary.Leaves)
	assert.Equal(t, 1, row.Summary.Holidays)
	assert.Equal(t, record.StatusLeave, row.Attendance["2024-05-03"])
	assert.Len(t, row.Attendance, 5)
}

func TestGetMonthlyReportRejectsBadMonth(t *testing.T) {
	f := newFixture(Options{})
	_, err := f.svc.GetMonthlyReport(context.Background(), 2024, 13)
	require.Error(t, err)
}

func TestOvernightShiftEndProjectsToNextDay(t *testing.T) {
	f := newFixture(Options{})
	f.addEmployee("emp-1", "EMP-001", "Asha Rao")
	f.assignShift("emp-1", "assign-1", shift.Shift{
		ID:               "shift-night",
		Code:             "NIGHT",
		StartTime:        wallClock(22, 0),
		EndTime:          wallClock(6, 0),
		GraceTimeMinutes: 10,
	})
	f.addPunch("EMP-001", time.Date(2024, 5, 1, 22, 5, 0, 0, time.UTC))
	f.addPunch("EMP-001", time.Date(2024, 5, 1, 23, 50, 0, 0, time.UTC))

	_, err := f.svc.ProcessDailyAttendance(context.Background(), record.ProcessRequest{Date: "2024-05-01"})
	require.NoError(t, err)

	rec, _ := f.records.get("emp-1", testDate)
	assert.Equal(t, record.StatusPresent, rec.Status)
	assert.Equal(t, 0, rec.LateInMinutes)
	// shift end is 06:00 next day; leaving at 23:50 is 370 minutes early
	assert.Equal(t, 370, rec.EarlyOutMinutes)
}
