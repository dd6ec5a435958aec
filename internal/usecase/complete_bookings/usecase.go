package complete_bookings

import (
	"context"
	"fmt"

	"github.com/m04kA/SMC-PhysioBooking/internal/domain"
)

// Response итог перевода статусов
type Response struct {
	Completed int
}

// UseCase переводит CONFIRMED в COMPLETED после окончания слота
type UseCase struct {
	bookingRepo  BookingRepository
	metrics      MetricsRecorder
	calendar     domain.Calendar
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(bookingRepo BookingRepository, metrics MetricsRecorder, calendar domain.Calendar, logger Logger) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepo,
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

// Execute завершает бронирования, чей слот закончился к текущему моменту
// по настенным часам региона
func (uc *UseCase) Execute(ctx context.Context) (*Response, error) {
	now := uc.timeProvider.Now()
	today := uc.calendar.Today(now)
	wallClock := uc.calendar.WallClock(now)

	n, err := uc.bookingRepo.CompleteEnded(ctx, today, wallClock, now)
	if err != nil {
		uc.logger.Error("CompleteBookings: today=%s %s: %v", today, wallClock, err)
		return nil, fmt.Errorf("%w: %w: %v", ErrInternal, domain.ErrStoreUnavailable, err)
	}

	uc.metrics.ObserveCompleted(n)
	if n > 0 {
		uc.logger.Info("CompleteBookings: %d bookings completed at %s %s", n, today, wallClock)
	}
	return &Response{Completed: n}, nil
}
