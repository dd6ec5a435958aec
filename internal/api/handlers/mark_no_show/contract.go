package mark_no_show

import (
	"context"

	"github.com/m04kA/SMC-PhysioBooking/internal/service/bookings/models"
)

type BookingService interface {
	MarkNoShow(ctx context.Context, id int64) (*models.BookingResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
