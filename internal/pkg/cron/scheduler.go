package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

var ErrJobNotFound = errors.New("cron: job not found")

// ErrJobRunning is returned by RunNow when the previous invocation of the
// job has not finished yet. Periodic ticks hitting the same condition are
// skipped and counted rather than queued.
var ErrJobRunning = errors.New("cron: job is already running")

// Job represents a scheduled job
type Job struct {
	Name     string
	Interval time.Duration
	Fn       func(ctx context.Context) error
}

type jobState struct {
	Job
	running  atomic.Bool
	runs     atomic.Int64
	failures atomic.Int64
	skips    atomic.Int64

	mu        sync.Mutex
	lastRun   time.Time
	lastError string
}

// JobStats is a snapshot of one job's runtime counters.
type JobStats struct {
	Name      string        `json:"name"`
	Interval  time.Duration `json:"interval"`
	Running   bool          `json:"running"`
	Runs      int64         `json:"runs"`
	Failures  int64         `json:"failures"`
	Skips     int64         `json:"skipped_ticks"`
	LastRun   *time.Time    `json:"last_run,omitempty"`
	LastError string        `json:"last_error,omitempty"`
}

// Scheduler manages scheduled jobs. Each job is mutually exclusive with
// itself: a tick arriving while the previous run is in flight is skipped,
// never queued and never run concurrently.
type Scheduler struct {
	jobs   []*jobState
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewScheduler creates a new cron scheduler
func NewScheduler() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		jobs:   make([]*jobState, 0),
		ctx:    ctx,
		cancel: cancel,
	}
}

// AddJob adds a job to the scheduler
func (s *Scheduler) AddJob(name string, interval time.Duration, fn func(ctx context.Context) error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.jobs = append(s.jobs, &jobState{
		Job: Job{
			Name:     name,
			Interval: interval,
			Fn:       fn,
		},
	})
	slog.Info("Cron job registered", "name", name, "interval", interval)
}

// Start begins running all scheduled jobs
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, job := range s.jobs {
		s.wg.Add(1)
		go s.runJob(job)
	}

	slog.Info("Cron scheduler started", "job_count", len(s.jobs))
}

// Stop gracefully stops all scheduled jobs
func (s *Scheduler) Stop() {
	slog.Info("Stopping cron scheduler...")
	s.cancel()
	s.wg.Wait()
	slog.Info("Cron scheduler stopped")
}

// RunNow triggers a single job outside its periodic cadence. It respects the
// same exclusion guard as the ticker: if the job is mid-run, ErrJobRunning
// is returned instead of queueing a second invocation.
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	job := s.findJob(name)
	if job == nil {
		return fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}
	if !job.running.CompareAndSwap(false, true) {
		return ErrJobRunning
	}
	defer job.running.Store(false)
	return s.invoke(ctx, job)
}

// Stats returns a snapshot of every registered job's counters.
func (s *Scheduler) Stats() []JobStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := make([]JobStats, 0, len(s.jobs))
	for _, job := range s.jobs {
		job.mu.Lock()
		var lastRun *time.Time
		if !job.lastRun.IsZero() {
			t := job.lastRun
			lastRun = &t
		}
		stats = append(stats, JobStats{
			Name:      job.Name,
			Interval:  job.Interval,
			Running:   job.running.Load(),
			Runs:      job.runs.Load(),
			Failures:  job.failures.Load(),
			Skips:     job.skips.Load(),
			LastRun:   lastRun,
			LastError: job.lastError,
		})
		job.mu.Unlock()
	}
	return stats
}

func (s *Scheduler) findJob(name string) *jobState {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, job := range s.jobs {
		if job.Name == name {
			return job
		}
	}
	return nil
}

// runJob runs a single job on its schedule
func (s *Scheduler) runJob(job *jobState) {
	defer s.wg.Done()

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	// Run immediately on start
	s.executeJob(job)

	for {
		select {
		case <-s.ctx.Done():
			slog.Info("Cron job stopping", "name", job.Name)
			return
		case <-ticker.C:
			s.executeJob(job)
		}
	}
}

// executeJob executes a job tick, honoring the exclusion guard.
func (s *Scheduler) executeJob(job *jobState) {
	if !job.running.CompareAndSwap(false, true) {
		job.skips.Add(1)
		slog.Warn("Cron job tick skipped: previous run still in flight",
			"name", job.Name, "skipped_ticks", job.skips.Load())
		return
	}
	defer job.running.Store(false)
	_ = s.invoke(s.ctx, job)
}

// invoke executes the job function once, recording counters. A panic inside
// the job is caught so one bad run never terminates the scheduler.
func (s *Scheduler) invoke(ctx context.Context, job *jobState) (err error) {
	start := time.Now()
	slog.Debug("Cron job starting", "name", job.Name)

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("cron job %s panicked: %v", job.Name, p)
		}
		job.runs.Add(1)
		job.mu.Lock()
		job.lastRun = start
		if err != nil {
			job.lastError = err.Error()
		} else {
			job.lastError = ""
		}
		job.mu.Unlock()

		if err != nil {
			job.failures.Add(1)
			slog.Error("Cron job failed", "name", job.Name, "error", err, "duration", time.Since(start))
		} else {
			slog.Debug("Cron job completed", "name", job.Name, "duration", time.Since(start))
		}
	}()

	err = job.Fn(ctx)
	return err
}
