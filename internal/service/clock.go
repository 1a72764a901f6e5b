package service

import (
	"time"

	"github.com/aliskhannn/prompt-study-bot/internal/domain/entities"
)

// Clock is the single time source shared by the services.
// The location defines the calendar day used for quotas.
type Clock struct {
	now func() time.Time
	loc *time.Location
}

// NewClock returns a clock in loc. A nil now uses time.Now.
func NewClock(loc *time.Location, now func() time.Time) Clock {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.UTC
	}
	return Clock{now: now, loc: loc}
}

// Now returns the current time in the clock's location.
func (c Clock) Now() time.Time {
	return c.now().In(c.loc)
}

// Day returns the bounds of the calendar day containing t.
func (c Clock) Day(t time.Time) (time.Time, time.Time) {
	return entities.DayBounds(t, c.loc)
}

// DaysAgo returns the instant n days before now.
func (c Clock) DaysAgo(n int) time.Time {
	return c.Now().AddDate(0, 0, -n)
}
