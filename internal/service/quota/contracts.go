package quota

import (
	"context"
	"time"

	"github.com/m04kA/SMC-PhysioBooking/internal/domain"
	"github.com/m04kA/SMC-PhysioBooking/pkg/types"
)

// TenantRepository интерфейс репозитория тенантов
type TenantRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Tenant, error)
	LockQuotaDay(ctx context.Context, tenantID int64, day types.Date) error
}

// BookingRepository интерфейс подсчета бронирований, расходующих квоту
type BookingRepository interface {
	CountQuotaForTenantOnDay(ctx context.Context, tenantID int64, day types.Date) (int, error)
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
