package domain

import (
	"time"

	"github.com/m04kA/SMC-PhysioBooking/pkg/types"
)

// Calendar the operating region's wall clock and calendar days.
// All day boundaries in the engine go through it, now is always passed in.
type Calendar struct {
	loc *time.Location
}

// NewCalendar creates a calendar for the operating region, nil means UTC
func NewCalendar(loc *time.Location) Calendar {
	if loc == nil {
		loc = time.UTC
	}
	return Calendar{loc: loc}
}

func (c Calendar) Location() *time.Location {
	if c.loc == nil {
		return time.UTC
	}
	return c.loc
}

// Today calendar day of now in the operating region
func (c Calendar) Today(now time.Time) types.Date {
	return types.DateOf(now, c.Location())
}

// Tomorrow first day regeneration may touch
func (c Calendar) Tomorrow(now time.Time) types.Date {
	return c.Today(now).AddDays(1)
}

// WallClock time of day of now in the operating region
func (c Calendar) WallClock(now time.Time) types.TimeString {
	return types.NewTimeString(now.In(c.Location()))
}

// StartInstant absolute instant of wall clock ts on day
func (c Calendar) StartInstant(day types.Date, ts types.TimeString) time.Time {
	return day.At(ts, c.Location())
}

// SlotStart absolute start instant of the slot
func (c Calendar) SlotStart(s *Timeslot) time.Time {
	return c.StartInstant(s.Day, s.StartTime)
}

// SlotEnd absolute end instant of the slot
func (c Calendar) SlotEnd(s *Timeslot) time.Time {
	return c.StartInstant(s.Day, s.EndTime)
}

// HasStarted returns true if the slot start is not after now
func (c Calendar) HasStarted(s *Timeslot, now time.Time) bool {
	return !c.SlotStart(s).After(now)
}
