package book_slot

import (
	"context"
	"time"

	"github.com/m04kA/SMC-PhysioBooking/internal/domain"
	"github.com/m04kA/SMC-PhysioBooking/internal/integrations/notifier"
	"github.com/m04kA/SMC-PhysioBooking/pkg/types"
)

// TimeslotRepository интерфейс репозитория слотов
type TimeslotRepository interface {
	GetByIDForUpdate(ctx context.Context, id int64) (*domain.Timeslot, error)
	IncrementBooked(ctx context.Context, id int64) error
}

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	HasLiveBooking(ctx context.Context, timeslotID int64, subject domain.Subject) (bool, error)
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
}

// QuotaService интерфейс проверки дневной квоты тенанта
type QuotaService interface {
	EnsureAvailable(ctx context.Context, tenantID int64, day types.Date) (*domain.QuotaUsage, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Notifier внешний получатель событий, вызывается после коммита
type Notifier interface {
	Notify(ctx context.Context, event notifier.Event) error
}

// MetricsRecorder учет исходов бронирования
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
