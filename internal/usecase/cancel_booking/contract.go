package cancel_booking

import (
	"context"
	"time"

	"github.com/m04kA/SMC-PhysioBooking/internal/domain"
	"github.com/m04kA/SMC-PhysioBooking/internal/integrations/notifier"
	"github.com/m04kA/SMC-PhysioBooking/pkg/types"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByIDForUpdate(ctx context.Context, id int64) (*domain.Booking, error)
	Cancel(ctx context.Context, id int64, at time.Time) error
}

// TimeslotRepository интерфейс репозитория слотов
type TimeslotRepository interface {
	GetByIDForUpdate(ctx context.Context, id int64) (*domain.Timeslot, error)
	DecrementBooked(ctx context.Context, id int64) error
}

// TenantRepository блокировка квоты тенанта на день
type TenantRepository interface {
	LockQuotaDay(ctx context.Context, tenantID int64, day types.Date) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Notifier внешний получатель событий, вызывается после коммита
type Notifier interface {
	Notify(ctx context.Context, event notifier.Event) error
}

// MetricsRecorder учет исходов отмены
type MetricsRecorder interface {
	ObserveBooking(operation, outcome string)
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
