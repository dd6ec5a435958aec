package book_slot

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-PhysioBooking/internal/domain"
	"github.com/m04kA/SMC-PhysioBooking/pkg/txmanager"
)

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("book_slot: invalid input data")
)

// classify оставляет бизнес-исходы как есть, таймаут блокировки превращает
// в ErrConcurrencyBusy, остальные ошибки хранилища в ErrStoreUnavailable
func classify(err error) error {
	switch {
	case domain.IsBusinessOutcome(err):
		return err
	case txmanager.IsLockTimeout(err),
		errors.Is(err, txmanager.ErrMaxRetriesExceeded),
		errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", domain.ErrConcurrencyBusy, err)
	default:
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
}
