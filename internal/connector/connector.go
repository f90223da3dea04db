package connector

import (
	"context"
	"errors"
	"time"
)

// ErrConnectionFailed marks transient connectivity failures. Callers may
// retry with backoff; anything not wrapped in it is treated as permanent
// for the current sync run.
var ErrConnectionFailed = errors.New("connector: connection failed")

// ErrNotConnected is returned by FetchEvents before a successful Connect.
var ErrNotConnected = errors.New("connector: not connected")

// RawEvent is the punch record shape produced by external time-recording
// hardware, prior to normalization. Direction is vendor text and may be
// empty or unknown.
type RawEvent struct {
	DeviceID     string
	Timestamp    time.Time
	EmployeeCode string
	Direction    string
}

// Connector adapts one external punch-log source. Implementations are
// swapped without touching the ingestion pipeline; the shared sync and
// dedupe logic lives in the ingest service.
type Connector interface {
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error

	// FetchEvents returns raw events with from <= Timestamp < to, in
	// timestamp order where the source allows it.
	FetchEvents(ctx context.Context, from, to time.Time) ([]RawEvent, error)
}
