package cron

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/clockwise-hr/attendance-backend-go/internal/domain/record"
	"github.com/clockwise-hr/attendance-backend-go/internal/service/attendance"
	"github.com/clockwise-hr/attendance-backend-go/internal/service/ingest"
)

const (
	JobPunchSync    = "punch_sync"
	JobDailyCompute = "daily_attendance_compute"
)

// AttendanceJobs wires the punch sync and daily compute pipelines into the
// scheduler.
type AttendanceJobs struct {
	ingestSvc     *ingest.Service
	attendanceSvc *attendance.Service

	loc          *time.Location
	computeHour  int
	syncInterval time.Duration
	syncLookback time.Duration

	now func() time.Time
}

func NewAttendanceJobs(
	ingestSvc *ingest.Service,
	attendanceSvc *attendance.Service,
	loc *time.Location,
	computeHour int,
	syncInterval time.Duration,
	syncLookback time.Duration,
) *AttendanceJobs {
	return &AttendanceJobs{
		ingestSvc:     ingestSvc,
		attendanceSvc: attendanceSvc,
		loc:           loc,
		computeHour:   computeHour,
		syncInterval:  syncInterval,
		syncLookback:  syncLookback,
		now:           time.Now,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob(JobPunchSync, j.syncInterval, j.SyncPunches)
	scheduler.AddJob(JobDailyCompute, 1*time.Hour, j.ComputePreviousDay)
}

// SyncPunches pulls recent punches from the device source. The lookback
// window overlaps previous runs; the store's natural-key dedupe makes that
// safe.
func (j *AttendanceJobs) SyncPunches(ctx context.Context) error {
	to := j.now().UTC()
	from := to.Add(-j.syncLookback)

	result, err := j.ingestSvc.Sync(ctx, from, to)
	if err != nil {
		return err
	}

	slog.Info("Cron: punch sync finished",
		"fetched", result.Fetched,
		"ingested", result.Ingested,
		"skipped", result.Skipped,
	)
	return nil
}

// ComputePreviousDay processes the previous calendar day. The job ticks
// hourly and only fires in the configured local hour.
func (j *AttendanceJobs) ComputePreviousDay(ctx context.Context) error {
	nowLocal := j.now().In(j.loc)
	if nowLocal.Hour() != j.computeHour {
		return nil
	}

	date := nowLocal.AddDate(0, 0, -1).Format("2006-01-02")
	slog.Info("Cron: starting daily attendance compute", "date", date)

	result, err := j.attendanceSvc.ProcessDailyAttendance(ctx, record.ProcessRequest{Date: date})
	if err != nil {
		// An overlapping on-demand run holds the compute guard; the next
		// tick will pick the day up again.
		if errors.Is(err, record.ErrProcessingInProgress) {
			slog.Warn("Cron: daily compute skipped, processing already running", "date", date)
			return nil
		}
		return err
	}

	slog.Info("Cron: daily attendance compute finished",
		"date", date,
		"run_id", result.RunID,
		"processed", result.Processed,
		"failed", result.Failed,
	)
	return nil
}
