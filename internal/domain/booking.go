package domain

import (
	"time"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	StatusConfirmed BookingStatus = "confirmed"
	StatusCompleted BookingStatus = "completed"
	StatusCancelled BookingStatus = "cancelled"
	StatusNoShow    BookingStatus = "no_show"
)

// Booking a subject's claim on one timeslot
type Booking struct {
	ID          int64
	TimeslotID  int64
	Subject     Subject
	Status      BookingStatus
	Note        *string
	CancelledAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsLive returns true if the booking occupies a seat
func (b *Booking) IsLive() bool {
	return b.Status != StatusCancelled
}

// IsCancelled returns true if the booking has been cancelled
func (b *Booking) IsCancelled() bool {
	return b.Status == StatusCancelled
}

// CanBeCancelled returns true if the booking can be cancelled
func (b *Booking) CanBeCancelled() bool {
	return b.Status == StatusConfirmed
}

// ConsumesQuota returns true if the booking counts against the tenant's daily limit
func (b *Booking) ConsumesQuota() bool {
	if !b.Subject.IsTenantUser() {
		return false
	}
	for _, s := range QuotaStatuses {
		if b.Status == s {
			return true
		}
	}
	return false
}

// IsValidStatus checks a status loaded from storage or input
func IsValidStatus(s BookingStatus) bool {
	switch s {
	case StatusConfirmed, StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}
