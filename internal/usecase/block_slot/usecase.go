package block_slot

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-PhysioBooking/internal/domain"
	"github.com/m04kA/SMC-PhysioBooking/internal/infra/storage/timeslot"
)

// UseCase блокировка слота администратором.
// Заблокированный слот закрыт для новых бронирований, существующие остаются.
type UseCase struct {
	timeslotRepo TimeslotRepository
	txManager    TransactionManager
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	timeslotRepo TimeslotRepository,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		timeslotRepo: timeslotRepo,
		txManager:    txManager,
		logger:       logger,
	}
}

// Execute ставит или снимает флаг блокировки под блокировкой строки слота
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	if req.TimeslotID <= 0 {
		return nil, fmt.Errorf("%w: timeslotId must be positive", ErrInvalidInput)
	}

	var resp *Response
	err := uc.txManager.Do(ctx, func(ctx context.Context) error {
		slot, err := uc.timeslotRepo.GetByIDForUpdate(ctx, req.TimeslotID)
		if err != nil {
			if errors.Is(err, timeslot.ErrTimeslotNotFound) {
				return domain.ErrSlotNotFound
			}
			return err
		}
		if slot.IsBlocked != req.Blocked {
			if err := uc.timeslotRepo.SetBlocked(ctx, slot.ID, req.Blocked); err != nil {
				return err
			}
		}
		resp = &Response{TimeslotID: slot.ID, Blocked: req.Blocked, BookedCount: slot.BookedCount}
		return nil
	})
	if err != nil {
		err = classify(err)
		if errors.Is(err, domain.ErrSlotNotFound) {
			uc.logger.Warn("BlockSlot: timeslot id=%d not found", req.TimeslotID)
		} else {
			uc.logger.Error("BlockSlot: failed for timeslot id=%d: %v", req.TimeslotID, err)
		}
		return nil, err
	}

	uc.logger.Info("BlockSlot: timeslot id=%d blocked=%t, live bookings=%d", resp.TimeslotID, resp.Blocked, resp.BookedCount)
	return resp, nil
}
