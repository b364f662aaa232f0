// Package sim is a simulated hal backend: a virtual clock, recording pins, a
// 4x4 key matrix, a recording bus with fault injection, and an HD44780 display
// emulator that decodes the PCF8574 nibble framing seen on the bus.
//
// All types are safe for use from one control goroutine plus one observer
// goroutine (the simulator UI).
package sim

import (
	"sync"
	"time"
)

// Clock is a hal.Clock whose time only advances through Delay. With Realtime
// set, Delay also sleeps so that playback can be heard and keys can be missed.
type Clock struct {
	Realtime bool

	mu    sync.Mutex
	now   time.Time
	total time.Duration
}

// NewClock returns a virtual clock starting at start.
func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

// Delay advances the clock by d.
func (c *Clock) Delay(d time.Duration) {
	if d <= 0 {
		return
	}
	if c.Realtime {
		time.Sleep(d)
	}
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.total += d
	c.mu.Unlock()
}

// Now returns the current virtual time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Elapsed returns the sum of all delays so far.
func (c *Clock) Elapsed() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total
}
