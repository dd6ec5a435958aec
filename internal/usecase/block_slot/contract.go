package block_slot

import (
	"context"

	"github.com/m04kA/SMC-PhysioBooking/internal/domain"
)

// TimeslotRepository интерфейс для работы со слотами
type TimeslotRepository interface {
	GetByIDForUpdate(ctx context.Context, id int64) (*domain.Timeslot, error)
	SetBlocked(ctx context.Context, id int64, blocked bool) error
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
