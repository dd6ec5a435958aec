package reconcile_counts

import (
	"context"
	"time"

	"github.com/m04kA/SMC-PhysioBooking/internal/domain"
	"github.com/m04kA/SMC-PhysioBooking/pkg/types"
)

// TimeslotRepository интерфейс репозитория слотов
type TimeslotRepository interface {
	ListFrom(ctx context.Context, from types.Date) ([]*domain.Timeslot, error)
	ListByDayForUpdate(ctx context.Context, day types.Date) ([]*domain.Timeslot, error)
	SetBookedCount(ctx context.Context, id int64, count int) error
}

// BookingRepository интерфейс подсчета живых бронирований
type BookingRepository interface {
	CountLiveBySlot(ctx context.Context, timeslotID int64) (int, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// MetricsRecorder учет исправлений счетчиков
type MetricsRecorder interface {
	ObserveCorrections(n int)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
