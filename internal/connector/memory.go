package connector

import (
	"context"
	"sync"
	"time"
)

// MemoryConnector serves a fixed event set from memory. It backs tests with
// deterministic fixtures and lets the API run without punch hardware
// (CONNECTOR_TYPE=memory).
type MemoryConnector struct {
	mu        sync.Mutex
	events    []RawEvent
	connected bool

	// FailConnects makes the next N Connect calls fail with
	// ErrConnectionFailed, for exercising retry paths.
	FailConnects int

	ConnectCalls int
	FetchCalls   int
}

func NewMemoryConnector(events []RawEvent) *MemoryConnector {
	return &MemoryConnector{events: events}
}

// AddEvents appends fixtures; usable while connected.
func (c *MemoryConnector) AddEvents(events ...RawEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, events...)
}

// Connect implements Connector.
func (c *MemoryConnector) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ConnectCalls++
	if c.FailConnects > 0 {
		c.FailConnects--
		return ErrConnectionFailed
	}
	c.connected = true
	return nil
}

// Disconnect implements Connector.
func (c *MemoryConnector) Disconnect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = false
	return nil
}

// FetchEvents implements Connector.
func (c *MemoryConnector) FetchEvents(ctx context.Context, from, to time.Time) ([]RawEvent, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.FetchCalls++
	if !c.connected {
		return nil, ErrNotConnected
	}

	var out []RawEvent
	for _, ev := range c.events {
		if ev.Timestamp.Before(from) || !ev.Timestamp.Before(to) {
			continue
		}
		out = append(out, ev)
	}
	return out, nil
}
