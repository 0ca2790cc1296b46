package service

import (
	"time"

	"dotabot/models"
)

// Calendar computes calendar days in one fixed reference timezone
type Calendar struct {
	loc *time.Location
	now Clock
}

// NewCalendar creates a calendar for loc. A nil clock uses time.Now.
func NewCalendar(loc *time.Location, now Clock) *Calendar {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &Calendar{loc: loc, now: now}
}

// Location returns the reference timezone
func (c *Calendar) Location() *time.Location {
	return c.loc
}

// Now returns the current instant in the reference timezone
func (c *Calendar) Now() time.Time {
	return c.now().In(c.loc)
}

// Today returns the current calendar day in the reference timezone
func (c *Calendar) Today() models.Date {
	return models.DateOf(c.Now())
}

// UntilNextMidnight returns the time left until the next local midnight
func (c *Calendar) UntilNextMidnight() time.Duration {
	now := c.Now()
	y, m, d := now.Date()
	next := time.Date(y, m, d+1, 0, 0, 0, 0, c.loc)
	return next.Sub(now)
}
