// Package clock is the single source of truth for "what day and slot is
// it" in the planner's civil timezone. The planner runs against a fixed
// UTC offset with no daylight-saving transitions; every today/tomorrow
// decision and every slot lookup must go through this package rather
// than the host's local zone.
package clock

import (
	"fmt"
	"time"
)

// DateLayout is the civil date form used throughout the planner.
const DateLayout = "2006-01-02"

// CivilTime is a wall-clock reading in the planner timezone.
type CivilTime struct {
	DateISO string
	Hour    int
	Minute  int
}

// Clock projects instants into a fixed civil timezone.
type Clock struct {
	loc *time.Location
	now func() time.Time
}

// NewFixed returns a Clock pinned to the given UTC offset in hours
// (e.g. -3 for UTC-3).
func NewFixed(offsetHours int) *Clock {
	name := fmt.Sprintf("UTC%+d", offsetHours)
	return &Clock{
		loc: time.FixedZone(name, offsetHours*3600),
		now: time.Now,
	}
}

// NewFixedAt is NewFixed with an injected time source, for tests.
func NewFixedAt(offsetHours int, now func() time.Time) *Clock {
	c := NewFixed(offsetHours)
	c.now = now
	return c
}

// Location exposes the civil timezone for date arithmetic elsewhere.
func (c *Clock) Location() *time.Location {
	return c.loc
}

// Now returns the current civil date and wall-clock time.
func (c *Clock) Now() CivilTime {
	t := c.now().In(c.loc)
	return CivilTime{
		DateISO: t.Format(DateLayout),
		Hour:    t.Hour(),
		Minute:  t.Minute(),
	}
}

// Midnight returns local midnight of the given civil date as an instant.
// Deadline instants stored for a civil date must equal this value.
func (c *Clock) Midnight(dateISO string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, dateISO, c.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", dateISO, err)
	}
	return t, nil
}

// DayBounds returns the half-open instant interval [start, end) covering
// the given civil date. Any "due today" comparison must use these bounds;
// comparing bare dates drifts by a day across the UTC offset boundary.
func (c *Clock) DayBounds(dateISO string) (start, end time.Time, err error) {
	start, err = c.Midnight(dateISO)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, start.Add(24 * time.Hour), nil
}

// DateOf projects an instant onto its civil date.
func (c *Clock) DateOf(t time.Time) string {
	return t.In(c.loc).Format(DateLayout)
}
