package block_slot

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-PhysioBooking/internal/domain"
	"github.com/m04kA/SMC-PhysioBooking/pkg/txmanager"
)

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")
)

func classify(err error) error {
	switch {
	case errors.Is(err, domain.ErrSlotNotFound):
		return err
	case txmanager.IsLockTimeout(err),
		errors.Is(err, txmanager.ErrMaxRetriesExceeded),
		errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", domain.ErrConcurrencyBusy, err)
	default:
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
}
