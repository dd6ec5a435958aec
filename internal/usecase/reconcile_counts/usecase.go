package reconcile_counts

import (
	"context"
	"fmt"

	"github.com/m04kA/SMC-PhysioBooking/internal/domain"
	"github.com/m04kA/SMC-PhysioBooking/pkg/types"
)

// UseCase сверка booked_count с фактическим числом живых бронирований
type UseCase struct {
	timeslotRepo TimeslotRepository
	bookingRepo  BookingRepository
	txManager    TransactionManager
	metrics      MetricsRecorder
	calendar     domain.Calendar
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	timeslotRepo TimeslotRepository,
	bookingRepo BookingRepository,
	txManager TransactionManager,
	metrics MetricsRecorder,
	calendar domain.Calendar,
	logger Logger,
) *UseCase {
	return &UseCase{
		timeslotRepo: timeslotRepo,
		bookingRepo:  bookingRepo,
		txManager:    txManager,
		metrics:      metrics,
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

// Execute пересчитывает счетчики всех слотов начиная с FromDay.
// Повторный запуск без новых бронирований ничего не меняет.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	from := req.FromDay
	if from.IsZero() {
		from = uc.calendar.Today(uc.timeProvider.Now())
	}
	uc.logger.Info("ReconcileCounts: from=%s", from)

	all, err := uc.timeslotRepo.ListFrom(ctx, from)
	if err != nil {
		uc.logger.Error("ReconcileCounts: failed to list slots from %s: %v", from, err)
		return nil, fmt.Errorf("%w: %w: %v", ErrListSlots, domain.ErrStoreUnavailable, err)
	}

	days := make([]types.Date, 0)
	seen := make(map[types.Date]bool)
	for _, s := range all {
		if !seen[s.Day] {
			seen[s.Day] = true
			days = append(days, s.Day)
		}
	}

	resp := &Response{FromDay: from, Errors: []string{}}
	for _, day := range days {
		checked, corrected, oversold, err := uc.reconcileDay(ctx, day)
		if err != nil {
			uc.logger.Error("ReconcileCounts: day=%s failed: %v", day, err)
			resp.Errors = append(resp.Errors, fmt.Sprintf("%s: %v", day, err))
			continue
		}
		resp.Checked += checked
		resp.Corrected += corrected
		resp.Oversold += oversold
	}

	uc.metrics.ObserveCorrections(resp.Corrected)
	uc.logger.Info("ReconcileCounts: done from=%s checked=%d corrected=%d oversold=%d errors=%d",
		from, resp.Checked, resp.Corrected, resp.Oversold, len(resp.Errors))
	return resp, nil
}

func (uc *UseCase) reconcileDay(ctx context.Context, day types.Date) (checked, corrected, oversold int, err error) {
	err = uc.txManager.Do(ctx, func(txCtx context.Context) error {
		checked, corrected, oversold = 0, 0, 0

		list, err := uc.timeslotRepo.ListByDayForUpdate(txCtx, day)
		if err != nil {
			return fmt.Errorf("list slots: %w", err)
		}

		for _, slot := range list {
			checked++
			live, err := uc.bookingRepo.CountLiveBySlot(txCtx, slot.ID)
			if err != nil {
				return fmt.Errorf("count bookings of slot %d: %w", slot.ID, err)
			}

			want := live
			if live > slot.Capacity {
				oversold++
				want = slot.Capacity
				uc.logger.Error("ReconcileCounts: slot=%d %s %s oversold, live=%d capacity=%d",
					slot.ID, day, slot.StartTime, live, slot.Capacity)
			}
			if want == slot.BookedCount {
				continue
			}

			if err := uc.timeslotRepo.SetBookedCount(txCtx, slot.ID, want); err != nil {
				return fmt.Errorf("set booked count of slot %d: %w", slot.ID, err)
			}
			uc.logger.Warn("ReconcileCounts: slot=%d %s %s booked_count %d -> %d",
				slot.ID, day, slot.StartTime, slot.BookedCount, want)
			corrected++
		}
		return nil
	})
	return checked, corrected, oversold, err
}
