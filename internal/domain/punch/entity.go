package punch

import "time"

type Direction string

const (
	DirectionIn          Direction = "IN"
	DirectionOut         Direction = "OUT"
	DirectionUnspecified Direction = "UNSPECIFIED"
)

// Event is one normalized in/out punch recorded by time-tracking hardware.
// Events are immutable once ingested; the natural key for deduplication is
// (EmployeeCode, DeviceID, PunchTime).
type Event struct {
	ID           string
	EmployeeCode string
	DeviceID     string
	PunchTime    time.Time
	Direction    Direction
	IngestedAt   time.Time
}
