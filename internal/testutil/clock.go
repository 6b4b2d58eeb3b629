// Package testutil provides deterministic fixtures for message and store
// tests.
package testutil

import (
	"sync"
	"time"
)

// DeterministicClock provides a thread-safe monotonic timestamp source for
// tests.
//
// Each call to Next() advances by a fixed step, so the same test scenario
// always produces identical message timestamps and therefore identical
// content identifiers.
//
// Thread-safety: all methods are safe for concurrent use via internal mutex.
type DeterministicClock struct {
	mu   sync.Mutex
	base time.Time
	step time.Duration
	n    int64
}

// NewDeterministicClock creates a clock starting at a fixed epoch
// (2024-01-01T00:00:00Z) advancing one second per call.
func NewDeterministicClock() *DeterministicClock {
	return &DeterministicClock{
		base: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		step: time.Second,
	}
}

// Next returns the next timestamp in wire form and advances the clock.
func (c *DeterministicClock) Next() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n++
	return c.base.Add(time.Duration(c.n) * c.step).Format(time.RFC3339Nano)
}

// Current returns the most recently issued timestamp without advancing.
func (c *DeterministicClock) Current() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.base.Add(time.Duration(c.n) * c.step).Format(time.RFC3339Nano)
}

// Reset resets the clock to its epoch. After Reset(), the next call to
// Next() returns the same value as a fresh clock's first call.
func (c *DeterministicClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n = 0
}
