package cancel_booking

import (
	"time"

	"github.com/m04kA/SMC-PhysioBooking/internal/domain"
)

// Request модель запроса на отмену
type Request struct {
	BookingID int64
	Actor     *domain.Subject // nil для администратора
}

// Response результат отмены
type Response struct {
	BookingID        int64
	Status           domain.BookingStatus
	CancelledAt      *time.Time
	AlreadyCancelled bool // повторная отмена, ничего не изменилось
}
