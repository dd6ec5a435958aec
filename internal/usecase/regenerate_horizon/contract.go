package regenerate_horizon

import (
	"context"
	"time"

	"github.com/m04kA/SMC-PhysioBooking/internal/domain"
	"github.com/m04kA/SMC-PhysioBooking/pkg/types"
)

// RuleRepository интерфейс чтения правил расписания
type RuleRepository interface {
	ListOpeningHours(ctx context.Context) ([]domain.OpeningHoursRule, error)
	GetOpeningHours(ctx context.Context, weekday time.Weekday) (*domain.OpeningHoursRule, error)
	ListActiveAnalysisSchedules(ctx context.Context, weekday time.Weekday) ([]domain.AnalysisScheduleRule, error)
	LockWeekday(ctx context.Context, weekday time.Weekday) error
}

// TimeslotRepository интерфейс репозитория слотов
type TimeslotRepository interface {
	ListByDayForUpdate(ctx context.Context, day types.Date) ([]*domain.Timeslot, error)
	InsertIfAbsent(ctx context.Context, spec domain.TimeslotSpec) (bool, error)
	DeleteIfEmpty(ctx context.Context, id int64) (bool, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// MetricsRecorder учет результатов перегенерации
type MetricsRecorder interface {
	ObserveRegeneration(created, deleted, failedDays int)
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
