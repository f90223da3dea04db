package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/clockwise-hr/attendance-backend-go/internal/connector"
	"github.com/clockwise-hr/attendance-backend-go/internal/domain/punch"
	"github.com/clockwise-hr/attendance-backend-go/internal/pkg/validator"
	"github.com/google/uuid"
)

const (
	defaultConnectAttempts = 3
	defaultInitialBackoff  = 2 * time.Second
)

// SyncResult summarizes one punch sync run.
type SyncResult struct {
	Fetched  int       `json:"fetched"`
	Ingested int       `json:"ingested"`
	Skipped  int       `json:"skipped"`
	From     time.Time `json:"from"`
	To       time.Time `json:"to"`
}

// Service pulls raw punch events from a connector, normalizes them and
// appends them to the punch store. Deduplication happens in the store, so
// overlapping sync windows are safe.
type Service struct {
	connector connector.Connector
	punches   punch.Repository
	logger    *slog.Logger

	connectAttempts int
	initialBackoff  time.Duration
}

func NewService(conn connector.Connector, punches punch.Repository, logger *slog.Logger) *Service {
	return &Service{
		connector:       conn,
		punches:         punches,
		logger:          logger,
		connectAttempts: defaultConnectAttempts,
		initialBackoff:  defaultInitialBackoff,
	}
}

// Sync fetches events in [from, to) and ingests them. Connection failures
// are retried with doubling backoff before the run is abandoned.
func (s *Service) Sync(ctx context.Context, from, to time.Time) (SyncResult, error) {
	result := SyncResult{From: from, To: to}

	if err := s.connect(ctx); err != nil {
		return result, err
	}
	defer func() {
		if err := s.connector.Disconnect(context.WithoutCancel(ctx)); err != nil {
			s.logger.Warn("failed to disconnect punch connector", slog.Any("error", err))
		}
	}()

	raw, err := s.connector.FetchEvents(ctx, from, to)
	if err != nil {
		return result, fmt.Errorf("failed to fetch punch events: %w", err)
	}
	result.Fetched = len(raw)

	events := make([]punch.Event, 0, len(raw))
	for _, ev := range raw {
		normalized, err := s.normalize(ev)
		if err != nil {
			result.Skipped++
			s.logger.Warn("skipping malformed punch event",
				slog.String("device_id", ev.DeviceID),
				slog.String("employee_code", ev.EmployeeCode),
				slog.Any("error", err),
			)
			continue
		}
		events = append(events, normalized)
	}

	inserted, err := s.punches.BulkInsert(ctx, events)
	if err != nil {
		return result, fmt.Errorf("failed to ingest punch events: %w", err)
	}
	result.Ingested = inserted

	s.logger.Info("punch sync completed",
		slog.Int("fetched", result.Fetched),
		slog.Int("ingested", result.Ingested),
		slog.Int("skipped", result.Skipped),
		slog.Time("from", from),
		slog.Time("to", to),
	)

	return result, nil
}

func (s *Service) connect(ctx context.Context) error {
	backoff := s.initialBackoff

	var err error
	for attempt := 1; attempt <= s.connectAttempts; attempt++ {
		err = s.connector.Connect(ctx)
		if err == nil {
			return nil
		}
		if !errors.Is(err, connector.ErrConnectionFailed) {
			return fmt.Errorf("failed to connect punch source: %w", err)
		}
		if attempt == s.connectAttempts {
			break
		}

		s.logger.Warn("punch source connect failed, retrying",
			slog.Int("attempt", attempt),
			slog.Duration("backoff", backoff),
			slog.Any("error", err),
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}

	return fmt.Errorf("punch source unreachable after %d attempts: %w", s.connectAttempts, err)
}

// normalize validates one raw event and maps it onto the punch entity.
// Unknown direction text degrades to UNSPECIFIED rather than rejecting the
// event.
func (s *Service) normalize(ev connector.RawEvent) (punch.Event, error) {
	code := strings.ToUpper(strings.TrimSpace(ev.EmployeeCode))
	if !validator.IsValidEmployeeCode(code) {
		return punch.Event{}, fmt.Errorf("invalid employee code %q", ev.EmployeeCode)
	}
	if ev.Timestamp.IsZero() {
		return punch.Event{}, fmt.Errorf("missing punch timestamp")
	}
	if ev.Timestamp.After(time.Now().UTC().Add(5 * time.Minute)) {
		return punch.Event{}, fmt.Errorf("punch timestamp %s is in the future", ev.Timestamp.Format(time.RFC3339))
	}

	direction := punch.DirectionUnspecified
	switch strings.ToUpper(strings.TrimSpace(ev.Direction)) {
	case "IN", "I", "0":
		direction = punch.DirectionIn
	case "OUT", "O", "1":
		direction = punch.DirectionOut
	}

	return punch.Event{
		ID:           uuid.NewString(),
		EmployeeCode: code,
		DeviceID:     strings.TrimSpace(ev.DeviceID),
		PunchTime:    ev.Timestamp.UTC(),
		Direction:    direction,
		IngestedAt:   time.Now().UTC(),
	}, nil
}
