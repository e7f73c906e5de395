package clock

import "time"

// Clock provides an abstraction for time operations to enable deterministic testing.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// After returns a channel that fires after the given duration.
	After(d time.Duration) <-chan time.Time
}

// RealClock implements Clock using the system time.
type RealClock struct{}

// Now returns the current system time.
func (c *RealClock) Now() time.Time {
	return time.Now()
}

// After returns a channel that fires after the given duration.
func (c *RealClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

// FakeClock implements Clock with a controlled time for testing.
// After fires immediately and records the requested duration, so
// retry loops run instantly and tests can assert the backoff sequence.
type FakeClock struct {
	current time.Time
	waits   []time.Duration
}

// NewFakeClock creates a new FakeClock with the given time.
func NewFakeClock(t time.Time) *FakeClock {
	return &FakeClock{current: t}
}

// Now returns the controlled time.
func (c *FakeClock) Now() time.Time {
	return c.current
}

// After records the duration, advances the controlled time by it, and
// returns a channel that has already fired.
func (c *FakeClock) After(d time.Duration) <-chan time.Time {
	c.waits = append(c.waits, d)
	c.current = c.current.Add(d)
	ch := make(chan time.Time, 1)
	ch <- c.current
	return ch
}

// Waits returns the durations passed to After, in call order.
func (c *FakeClock) Waits() []time.Duration {
	return c.waits
}

// Set updates the controlled time.
func (c *FakeClock) Set(t time.Time) {
	c.current = t
}

// Advance moves the controlled time forward by the given duration.
func (c *FakeClock) Advance(d time.Duration) {
	c.current = c.current.Add(d)
}
