package core

import (
	"fmt"
	"time"

	"graficaos.service/internal/core/model"
)

// CivilClock answers "now" and "today" in the business's fixed civil timezone,
// independent of the host's TZ setting.
type CivilClock struct {
	loc *time.Location
	now func() time.Time
}

// NewCivilClock builds a clock for a fixed UTC offset in hours (-3 for Brasília).
func NewCivilClock(offsetHours int) *CivilClock {
	name := fmt.Sprintf("UTC%+03d", offsetHours)
	return &CivilClock{
		loc: time.FixedZone(name, offsetHours*3600),
		now: time.Now,
	}
}

// WithNow returns a copy of the clock reading time from fn.
func (c *CivilClock) WithNow(fn func() time.Time) *CivilClock {
	return &CivilClock{loc: c.loc, now: fn}
}

func (c *CivilClock) Location() *time.Location {
	return c.loc
}

// Now is the current instant expressed in the civil location.
func (c *CivilClock) Now() time.Time {
	return c.now().In(c.loc)
}

// Today is the civil date of Now.
func (c *CivilClock) Today() time.Time {
	return c.DateOf(c.now())
}

// DateOf returns the civil date an instant falls on.
func (c *CivilClock) DateOf(t time.Time) time.Time {
	y, m, d := t.In(c.loc).Date()
	return model.CivilDate(y, m, d)
}

// At returns the instant of hour:minute on a civil date.
func (c *CivilClock) At(date time.Time, hour, minute int) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, c.loc)
}

// TimeOfDay returns the civil wall-clock minute of an instant.
func (c *CivilClock) TimeOfDay(t time.Time) model.TimeOfDay {
	lt := t.In(c.loc)
	return model.TimeOfDay{Hour: lt.Hour(), Minute: lt.Minute()}
}
