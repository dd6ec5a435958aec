package notifier

import (
	"time"

	"github.com/m04kA/SMC-PhysioBooking/internal/domain"
)

// Outcome результат операции, о котором сообщаем наружу
type Outcome string

const (
	OutcomeBooked    Outcome = "booked"
	OutcomeCancelled Outcome = "cancelled"
)

// Event сообщение о бронировании или отмене
type Event struct {
	Outcome     Outcome   `json:"outcome"`
	BookingID   int64     `json:"bookingId"`
	TimeslotID  int64     `json:"timeslotId"`
	SubjectKind string    `json:"subjectKind"`
	SubjectID   int64     `json:"subjectId"`
	TenantID    *int64    `json:"tenantId,omitempty"`
	SlotDay     string    `json:"slotDay"`   // "2026-10-15"
	SlotStart   string    `json:"slotStart"` // "09:30"
	SlotStartAt time.Time `json:"slotStartAt"`
	OccurredAt  time.Time `json:"occurredAt"`
}

// NewEvent собирает событие из бронирования и его слота
func NewEvent(outcome Outcome, b *domain.Booking, slot *domain.Timeslot, cal domain.Calendar, at time.Time) Event {
	e := Event{
		Outcome:     outcome,
		BookingID:   b.ID,
		TimeslotID:  slot.ID,
		SubjectKind: string(b.Subject.Kind()),
		SubjectID:   b.Subject.ID(),
		SlotDay:     slot.Day.String(),
		SlotStart:   slot.StartTime.String(),
		SlotStartAt: cal.SlotStart(slot),
		OccurredAt:  at,
	}
	if tenantID, ok := b.Subject.TenantID(); ok {
		e.TenantID = &tenantID
	}
	return e
}

// ErrorResponse модель ошибки от webhook получателя
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
