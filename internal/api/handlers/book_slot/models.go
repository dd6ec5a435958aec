package book_slot

import (
	"time"

	"github.com/m04kA/SMC-PhysioBooking/internal/domain"
	bookSlot "github.com/m04kA/SMC-PhysioBooking/internal/usecase/book_slot"
)

// BookSlotRequest HTTP request model, субъект берется из заголовков
type BookSlotRequest struct {
	TimeslotID int64   `json:"timeslotId"`
	Note       *string `json:"note,omitempty"`
}

// QuotaResponse остаток квоты тенанта на день слота
type QuotaResponse struct {
	Limit     int `json:"limit"`
	Used      int `json:"used"`
	Available int `json:"available"`
}

// BookingResponse HTTP response model
type BookingResponse struct {
	ID         int64          `json:"id"`
	TimeslotID int64          `json:"timeslotId"`
	Date       string         `json:"date"`
	StartTime  string         `json:"startTime"`
	EndTime    string         `json:"endTime"`
	Kind       string         `json:"kind"`
	Status     string         `json:"status"`
	Note       *string        `json:"note,omitempty"`
	Quota      *QuotaResponse `json:"quota,omitempty"`
	CreatedAt  string         `json:"createdAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *BookSlotRequest) ToUseCaseRequest(subject domain.Subject) *bookSlot.Request {
	return &bookSlot.Request{
		Subject:    subject,
		TimeslotID: r.TimeslotID,
		Note:       r.Note,
	}
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *bookSlot.Response) *BookingResponse {
	out := &BookingResponse{
		ID:         resp.BookingID,
		TimeslotID: resp.TimeslotID,
		Date:       resp.Day.String(),
		StartTime:  resp.StartTime.String(),
		EndTime:    resp.EndTime.String(),
		Kind:       string(resp.Kind),
		Status:     string(resp.Status),
		Note:       resp.Note,
		CreatedAt:  resp.CreatedAt.Format(time.RFC3339),
	}
	if resp.Quota != nil {
		out.Quota = &QuotaResponse{
			Limit:     resp.Quota.Limit,
			Used:      resp.Quota.Used,
			Available: resp.Quota.Available(),
		}
	}
	return out
}
