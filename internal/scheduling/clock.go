package scheduling

import "time"

// Clock supplies the current time. Injecting it keeps scheduling decisions
// reproducible in tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by time.Now
func SystemClock() Clock { return systemClock{} }

// FixedClock is a Clock frozen at a settable instant
type FixedClock struct {
	Time time.Time
}

// Now returns the frozen instant
func (c *FixedClock) Now() time.Time { return c.Time }

// Advance moves the frozen instant forward
func (c *FixedClock) Advance(d time.Duration) { c.Time = c.Time.Add(d) }

// AdvanceDays moves the frozen instant forward by whole calendar days
func (c *FixedClock) AdvanceDays(days int) { c.Time = c.Time.AddDate(0, 0, days) }
