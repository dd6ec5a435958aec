package get_available_slots

import (
	"context"
	"fmt"

	"github.com/m04kA/SMC-PhysioBooking/internal/domain"
)

// UseCase use case для получения доступных слотов для бронирования
type UseCase struct {
	timeslotRepo TimeslotRepository
	calendar     domain.Calendar
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	timeslotRepo TimeslotRepository,
	calendar domain.Calendar,
	logger Logger,
) *UseCase {
	return &UseCase{
		timeslotRepo: timeslotRepo,
		calendar:     calendar,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// WithTimeProvider подменяет источник времени
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute возвращает слоты дня с остатком мест.
// Только чтение, без блокировок: остаток может устареть к моменту бронирования.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableSlots: date=%s", req.Date)

	now := uc.timeProvider.Now()
	if err := validateRequest(req, uc.calendar.Today(now)); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	list, err := uc.timeslotRepo.ListByDay(ctx, req.Date)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to list slots for %s: %v", req.Date, err)
		return nil, fmt.Errorf("%w: %w: %v", ErrInternal, domain.ErrStoreUnavailable, err)
	}

	result := make([]Slot, 0, len(list))
	for _, s := range list {
		// Заблокированные и уже начавшиеся слоты не показываем
		if s.IsBlocked || uc.calendar.HasStarted(s, now) {
			continue
		}
		if req.Kind != nil && s.Kind != *req.Kind {
			continue
		}
		if req.OnlyAvailable && s.IsFull() {
			continue
		}
		result = append(result, Slot{
			ID:             s.ID,
			StartTime:      s.StartTime,
			EndTime:        s.EndTime,
			Kind:           s.Kind,
			AvailableSpots: s.Remaining(),
			TotalSpots:     s.Capacity,
		})
	}

	uc.logger.Info("GetAvailableSlots: date=%s, %d of %d slots returned", req.Date, len(result), len(list))
	return &Response{Date: req.Date, Slots: result}, nil
}
