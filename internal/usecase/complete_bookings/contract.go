package complete_bookings

import (
	"context"
	"time"

	"github.com/m04kA/SMC-PhysioBooking/pkg/types"
)

// BookingRepository интерфейс перевода прошедших бронирований в COMPLETED
type BookingRepository interface {
	CompleteEnded(ctx context.Context, today types.Date, wallClock types.TimeString, at time.Time) (int, error)
}

// MetricsRecorder учет завершенных бронирований
type MetricsRecorder interface {
	ObserveCompleted(n int)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
