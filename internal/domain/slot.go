package domain

import (
	"time"

	"github.com/m04kA/SMC-PhysioBooking/pkg/types"
)

// SlotKind type of a timeslot
type SlotKind string

const (
	SlotKindNormal   SlotKind = "normal"
	SlotKindAnalysis SlotKind = "analysis"
)

// TimeslotSpec slot produced by the generator, not yet persisted
type TimeslotSpec struct {
	Day       types.Date
	StartTime types.TimeString
	EndTime   types.TimeString
	Capacity  int
	Kind      SlotKind
}

// Timeslot one bookable unit of time.
// BookedCount counts live bookings and never exceeds Capacity.
type Timeslot struct {
	ID          int64
	Day         types.Date
	StartTime   types.TimeString
	EndTime     types.TimeString
	Capacity    int
	BookedCount int
	Kind        SlotKind
	IsBlocked   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Remaining returns free seats
func (s *Timeslot) Remaining() int {
	if s.BookedCount >= s.Capacity {
		return 0
	}
	return s.Capacity - s.BookedCount
}

// IsFull returns true if no seats are left
func (s *Timeslot) IsFull() bool {
	return s.BookedCount >= s.Capacity
}

// HasBookings returns true if at least one seat is taken
func (s *Timeslot) HasBookings() bool {
	return s.BookedCount > 0
}

// Matches returns true if the stored slot is identical to the generated spec
func (s *Timeslot) Matches(spec TimeslotSpec) bool {
	return s.Day.Equal(spec.Day) &&
		s.StartTime.Equal(spec.StartTime) &&
		s.EndTime.Equal(spec.EndTime) &&
		s.Capacity == spec.Capacity &&
		s.Kind == spec.Kind
}
