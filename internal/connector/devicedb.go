package connector

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DeviceDBConnector reads the staging table that the punch-device vendor
// software writes to. The table is append-only on the vendor side:
//
//	device_punch_logs(device_id, log_time, employee_code, direction)
type DeviceDBConnector struct {
	dsn     string
	timeout time.Duration
	pool    *pgxpool.Pool
}

func NewDeviceDBConnector(dsn string, timeout time.Duration) *DeviceDBConnector {
	return &DeviceDBConnector{
		dsn:     dsn,
		timeout: timeout,
	}
}

// Connect implements Connector.
func (c *DeviceDBConnector) Connect(ctx context.Context) error {
	if c.pool != nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	config, err := pgxpool.ParseConfig(c.dsn)
	if err != nil {
		return fmt.Errorf("parse device db dsn: %w", err)
	}
	config.MaxConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}

	c.pool = pool
	return nil
}

// Disconnect implements Connector.
func (c *DeviceDBConnector) Disconnect(ctx context.Context) error {
	if c.pool != nil {
		c.pool.Close()
		c.pool = nil
	}
	return nil
}

// FetchEvents implements Connector.
func (c *DeviceDBConnector) FetchEvents(ctx context.Context, from, to time.Time) ([]RawEvent, error) {
	if c.pool == nil {
		return nil, ErrNotConnected
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	query := `
		SELECT device_id, log_time, employee_code, COALESCE(direction, '')
		FROM device_punch_logs
		WHERE log_time >= $1
		  AND log_time < $2
		ORDER BY log_time ASC
	`

	rows, err := c.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch device punch logs: %v", ErrConnectionFailed, err)
	}
	defer rows.Close()

	var events []RawEvent
	for rows.Next() {
		var ev RawEvent
		if err := rows.Scan(&ev.DeviceID, &ev.Timestamp, &ev.EmployeeCode, &ev.Direction); err != nil {
			return nil, fmt.Errorf("failed to scan device punch log: %w", err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: read device punch logs: %v", ErrConnectionFailed, err)
	}

	return events, nil
}
