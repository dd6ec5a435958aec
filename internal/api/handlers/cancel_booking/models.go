package cancel_booking

import (
	"time"

	cancelBooking "github.com/m04kA/SMC-PhysioBooking/internal/usecase/cancel_booking"
)

// CancelBookingResponse HTTP response model
type CancelBookingResponse struct {
	ID               int64   `json:"id"`
	Status           string  `json:"status"`
	CancelledAt      *string `json:"cancelledAt,omitempty"`
	AlreadyCancelled bool    `json:"alreadyCancelled"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *cancelBooking.Response) *CancelBookingResponse {
	out := &CancelBookingResponse{
		ID:               resp.BookingID,
		Status:           string(resp.Status),
		AlreadyCancelled: resp.AlreadyCancelled,
	}
	if resp.CancelledAt != nil {
		at := resp.CancelledAt.Format(time.RFC3339)
		out.CancelledAt = &at
	}
	return out
}
