package book_slot

import (
	"time"

	"github.com/m04kA/SMC-PhysioBooking/internal/domain"
	"github.com/m04kA/SMC-PhysioBooking/pkg/types"
)

// Request модель запроса на бронирование слота
type Request struct {
	Subject    domain.Subject // Пользователь тенанта или прямой клиент
	TimeslotID int64          // ID слота
	Note       *string        // Комментарий (опционально)
}

// Response модель ответа с созданным бронированием
type Response struct {
	BookingID  int64
	TimeslotID int64
	Day        types.Date
	StartTime  types.TimeString
	EndTime    types.TimeString
	Kind       domain.SlotKind
	Status     domain.BookingStatus
	Note       *string

	// Остаток квоты тенанта на день слота, nil для прямых клиентов
	Quota *domain.QuotaUsage

	CreatedAt time.Time
}
