package cancel_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-PhysioBooking/internal/domain"
	bookingRepo "github.com/m04kA/SMC-PhysioBooking/internal/infra/storage/booking"
	timeslotRepo "github.com/m04kA/SMC-PhysioBooking/internal/infra/storage/timeslot"
	"github.com/m04kA/SMC-PhysioBooking/internal/integrations/notifier"
)

const operation = "cancel"

// UseCase use case отмены бронирования
type UseCase struct {
	bookingRepo   BookingRepository
	timeslotRepo  TimeslotRepository
	tenantRepo    TenantRepository
	txManager     TransactionManager
	notifier      Notifier
	metrics       MetricsRecorder
	calendar      domain.Calendar
	notifyTimeout time.Duration
	timeProvider  TimeProvider
	logger        Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	timeslotRepo TimeslotRepository,
	tenantRepo TenantRepository,
	txManager TransactionManager,
	notifier Notifier,
	metrics MetricsRecorder,
	calendar domain.Calendar,
	notifyTimeout time.Duration,
	logger Logger,
) *UseCase {
	if notifyTimeout <= 0 {
		notifyTimeout = time.Second
	}
	return &UseCase{
		bookingRepo:   bookingRepo,
		timeslotRepo:  timeslotRepo,
		tenantRepo:    tenantRepo,
		txManager:     txManager,
		notifier:      notifier,
		metrics:       metrics,
		calendar:      calendar,
		notifyTimeout: notifyTimeout,
		timeProvider:  &RealTimeProvider{},
		logger:        logger,
	}
}

// WithTimeProvider подменяет источник времени
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute переводит CONFIRMED бронирование в CANCELLED и освобождает место в слоте.
// Повторная отмена успешна и ничего не меняет.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CancelBooking: booking=%d", req.BookingID)

	if req.BookingID <= 0 {
		return nil, fmt.Errorf("%w: bookingID must be positive", ErrInvalidInput)
	}

	now := uc.timeProvider.Now()

	var (
		booking *domain.Booking
		slot    *domain.Timeslot
		already bool
	)

	err := uc.txManager.Do(ctx, func(txCtx context.Context) error {
		var err error

		booking, err = uc.bookingRepo.GetByIDForUpdate(txCtx, req.BookingID)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				return domain.ErrBookingNotFound
			}
			return fmt.Errorf("get booking %d: %w", req.BookingID, err)
		}

		if req.Actor != nil && !ownedBy(booking, *req.Actor) {
			return domain.ErrAccessDenied
		}

		if booking.IsCancelled() {
			already = true
			return nil
		}
		if !booking.CanBeCancelled() {
			return domain.ErrCannotCancel
		}

		slot, err = uc.timeslotRepo.GetByIDForUpdate(txCtx, booking.TimeslotID)
		if err != nil {
			return fmt.Errorf("get timeslot %d: %w", booking.TimeslotID, err)
		}

		// квота дня меняется только под той же блокировкой, что и при бронировании
		if tenantID, ok := booking.Subject.TenantID(); ok {
			if err := uc.tenantRepo.LockQuotaDay(txCtx, tenantID, slot.Day); err != nil {
				return fmt.Errorf("lock quota day: %w", err)
			}
		}

		if err := uc.bookingRepo.Cancel(txCtx, booking.ID, now); err != nil {
			if errors.Is(err, bookingRepo.ErrStatusConflict) {
				return domain.ErrCannotCancel
			}
			return fmt.Errorf("cancel booking: %w", err)
		}

		if err := uc.timeslotRepo.DecrementBooked(txCtx, slot.ID); err != nil {
			if !errors.Is(err, timeslotRepo.ErrCounterUnderflow) {
				return fmt.Errorf("decrement booked count: %w", err)
			}
			uc.logger.Warn("CancelBooking: slot=%d counter already zero, reconcile needed", slot.ID)
		} else {
			slot.BookedCount--
		}

		booking.Status = domain.StatusCancelled
		booking.CancelledAt = &now
		return nil
	})

	if err != nil {
		err = classify(err)
		uc.metrics.ObserveBooking(operation, domain.OutcomeLabel(err))
		if domain.IsBusinessOutcome(err) {
			uc.logger.Warn("CancelBooking: booking=%d rejected: %v", req.BookingID, err)
		} else {
			uc.logger.Error("CancelBooking: booking=%d failed: %v", req.BookingID, err)
		}
		return nil, err
	}

	uc.metrics.ObserveBooking(operation, domain.OutcomeLabel(nil))

	resp := &Response{
		BookingID:        booking.ID,
		Status:           booking.Status,
		CancelledAt:      booking.CancelledAt,
		AlreadyCancelled: already,
	}
	if already {
		uc.logger.Info("CancelBooking: booking=%d already cancelled", booking.ID)
		return resp, nil
	}

	uc.logger.Info("CancelBooking: booking=%d cancelled, slot=%d %d/%d",
		booking.ID, slot.ID, slot.BookedCount, slot.Capacity)
	uc.notify(ctx, notifier.NewEvent(notifier.OutcomeCancelled, booking, slot, uc.calendar, now))
	return resp, nil
}

func (uc *UseCase) notify(ctx context.Context, event notifier.Event) {
	if uc.notifier == nil {
		return
	}
	notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), uc.notifyTimeout)
	defer cancel()

	if err := uc.notifier.Notify(notifyCtx, event); err != nil {
		uc.logger.Error("CancelBooking: notify booking id=%d: %v", event.BookingID, err)
	}
}

// ownedBy тенант пользователя в заголовках не участвует в сравнении
func ownedBy(b *domain.Booking, actor domain.Subject) bool {
	return b.Subject.Kind() == actor.Kind() && b.Subject.ID() == actor.ID()
}
