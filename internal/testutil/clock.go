// Package testutil provides deterministic collaborators for tests: a
// settable clock and a sequential id generator. Production code wires
// the real clock and UUIDs instead.
package testutil

import (
	"sync"
	"time"
)

// Clock is a thread-safe settable clock for tests.
//
// Unlike the system clock it only moves when told to, so modification
// timestamps and "today" checks are reproducible across runs.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock creates a clock frozen at the given instant.
func NewClock(now time.Time) *Clock {
	return &Clock{now: now}
}

// Now returns the current instant.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Set jumps the clock to the given instant.
func (c *Clock) Set(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}
