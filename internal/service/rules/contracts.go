package rules

import (
	"context"
	"time"

	"github.com/m04kA/SMC-PhysioBooking/internal/domain"
)

// RuleRepository интерфейс репозитория правил расписания
type RuleRepository interface {
	ListOpeningHours(ctx context.Context) ([]domain.OpeningHoursRule, error)
	GetOpeningHours(ctx context.Context, weekday time.Weekday) (*domain.OpeningHoursRule, error)
	UpsertOpeningHours(ctx context.Context, rule *domain.OpeningHoursRule) (*domain.OpeningHoursRule, error)
	ListAnalysisSchedules(ctx context.Context, weekday time.Weekday) ([]domain.AnalysisScheduleRule, error)
	ListActiveAnalysisSchedules(ctx context.Context, weekday time.Weekday) ([]domain.AnalysisScheduleRule, error)
	GetAnalysisSchedule(ctx context.Context, id int64) (*domain.AnalysisScheduleRule, error)
	CreateAnalysisSchedule(ctx context.Context, rule *domain.AnalysisScheduleRule) (*domain.AnalysisScheduleRule, error)
	SetAnalysisScheduleActive(ctx context.Context, id int64, active bool) error
	LockWeekday(ctx context.Context, weekday time.Weekday) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
