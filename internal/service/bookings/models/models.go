package models

import (
	"errors"
	"time"

	"github.com/m04kA/SMC-PhysioBooking/internal/domain"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid booking status")
)

// Request модели

// GetSubjectBookingsRequest запрос на получение бронирований субъекта
type GetSubjectBookingsRequest struct {
	Subject domain.Subject
	Status  *string `json:"status,omitempty"`
}

// GetTenantBookingsRequest запрос на получение бронирований пользователей тенанта за день
// Viewer = nil означает администратора
type GetTenantBookingsRequest struct {
	TenantID int64           `json:"tenantId"`
	Date     string          `json:"date"` // "2026-10-15"
	Viewer   *domain.Subject `json:"-"`
}

// Response модели

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID           int64  `json:"id"`
	TimeslotID   int64  `json:"timeslotId"`
	SubjectKind  string `json:"subjectKind"`
	SubjectID    int64  `json:"subjectId"`
	TenantID     *int64 `json:"tenantId,omitempty"`
	Status       string `json:"status"`
	ConsumeQuota bool   `json:"consumesQuota"`

	// Денормализованные данные слота
	Date      string `json:"date,omitempty"`      // "2026-10-15"
	StartTime string `json:"startTime,omitempty"` // "10:00"
	EndTime   string `json:"endTime,omitempty"`
	Kind      string `json:"kind,omitempty"`

	Note        *string `json:"note,omitempty"`
	CancelledAt *string `json:"cancelledAt,omitempty"` // ISO 8601 format

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BookingListResponse ответ со списком бронирований
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}

// Методы конвертации

// FromDomainBooking конвертирует domain модель в DTO, slot может быть nil
func FromDomainBooking(b *domain.Booking, slot *domain.Timeslot) *BookingResponse {
	if b == nil {
		return nil
	}

	resp := &BookingResponse{
		ID:           b.ID,
		TimeslotID:   b.TimeslotID,
		SubjectKind:  string(b.Subject.Kind()),
		SubjectID:    b.Subject.ID(),
		Status:       string(b.Status),
		ConsumeQuota: b.ConsumesQuota(),
		Note:         b.Note,
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}
	if tenantID, ok := b.Subject.TenantID(); ok {
		resp.TenantID = &tenantID
	}
	if slot != nil {
		resp.Date = slot.Day.String()
		resp.StartTime = slot.StartTime.String()
		resp.EndTime = slot.EndTime.String()
		resp.Kind = string(slot.Kind)
	}

	// Конвертируем CancelledAt в строку ISO 8601
	if b.CancelledAt != nil {
		cancelledStr := b.CancelledAt.Format(time.RFC3339)
		resp.CancelledAt = &cancelledStr
	}

	return resp
}

// ToDomainBookingStatus конвертирует строку в domain.BookingStatus с валидацией
func ToDomainBookingStatus(status string) (domain.BookingStatus, error) {
	s := domain.BookingStatus(status)
	if !domain.IsValidStatus(s) {
		return "", ErrInvalidStatus
	}
	return s, nil
}
