package book_slot

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

const operation = "book"

// Options параметры use case
type Options struct {
	MaxNoteLength int
	NotifyTimeout time.Duration
}

// UseCase use case бронирования слота
type UseCase struct {
	timeslotRepo TimeslotRepository
	bookingRepo  BookingRepository
	quota        QuotaService
	txManager    TransactionManager
	notifier     Notifier
	metrics      MetricsRecorder
	calendar     domain.Calendar
	opts         Options
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	timeslotRepo TimeslotRepository,
	bookingRepo BookingRepository,
	quota QuotaService,
	txManager TransactionManager,
	notifier Notifier,
	metrics MetricsRecorder,
	calendar domain.Calendar,
	opts Options,
	logger Logger,
) *UseCase {
	if opts.MaxNoteLength <= 0 {
		opts.MaxNoteLength = domain.MaxNoteLength
	}
	if opts.NotifyTimeout <= 0 {
		opts.NotifyTimeout = time.Second
	}
	return &UseCase{
		timeslotRepo: timeslotRepo,
		bookingRepo:  bookingRepo,
		quota:        quota,
		txManager:    txManager,
		notifier:     notifier,
		metrics:      metrics,
		calendar:     calendar,
		opts:         opts,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// WithTimeProvider подменяет источник времени
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute бронирует место в слоте.
// Проверки и запись идут в одной транзакции под блокировкой строки слота,
// для пользователей тенанта дополнительно под блокировкой (тенант, день слота).
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("BookSlot: subject=%s, timeslot=%d", req.Subject, req.TimeslotID)

	if err := validateRequest(req, uc.opts.MaxNoteLength); err != nil {
		uc.logger.Warn("BookSlot: validation failed: %v", err)
		return nil, err
	}

	now := uc.timeProvider.Now()

	var (
		slot    *domain.Timeslot
		created *domain.Booking
		usage   *domain.QuotaUsage
	)

	err := uc.txManager.Do(ctx, func(txCtx context.Context) error {
		var err error

		// 1. Слот под блокировкой строки
		slot, err = uc.timeslotRepo.GetByIDForUpdate(txCtx, req.TimeslotID)
		if err != nil {
			if errors.Is(err, timeslotRepo.ErrTimeslotNotFound) {
				return domain.ErrSlotNotFound
			}
			return fmt.Errorf("get timeslot %d: %w", req.TimeslotID, err)
		}
		if slot.IsBlocked {
			return domain.ErrSlotBlocked
		}
		if uc.calendar.HasStarted(slot, now) {
			return domain.ErrSlotInPast
		}

		// 2. Вместимость
		if slot.IsFull() {
			return domain.ErrSlotFull
		}

		// 3. Одна живая запись субъекта на слот
		has, err := uc.bookingRepo.HasLiveBooking(txCtx, slot.ID, req.Subject)
		if err != nil {
			return fmt.Errorf("check live booking: %w", err)
		}
		if has {
			return domain.ErrAlreadyBooked
		}

		// 4. Квота тенанта на день слота
		if tenantID, ok := req.Subject.TenantID(); ok {
			usage, err = uc.quota.EnsureAvailable(txCtx, tenantID, slot.Day)
			if err != nil {
				return err
			}
		}

		// 5. Запись и счетчик
		created, err = uc.bookingRepo.Create(txCtx, &domain.Booking{
			TimeslotID: slot.ID,
			Subject:    req.Subject,
			Status:     domain.StatusConfirmed,
			Note:       req.Note,
		})
		if err != nil {
			if errors.Is(err, bookingRepo.ErrDuplicateLiveBooking) {
				return domain.ErrAlreadyBooked
			}
			return fmt.Errorf("create booking: %w", err)
		}

		if err := uc.timeslotRepo.IncrementBooked(txCtx, slot.ID); err != nil {
			if errors.Is(err, timeslotRepo.ErrCapacityExhausted) {
				return domain.ErrSlotFull
			}
			return fmt.Errorf("increment booked count: %w", err)
		}
		slot.BookedCount++
		return nil
	})

	if err != nil {
		err = classify(err)
		uc.metrics.ObserveBooking(operation, domain.OutcomeLabel(err))
		if domain.IsBusinessOutcome(err) {
			uc.logger.Warn("BookSlot: subject=%s, timeslot=%d rejected: %v", req.Subject, req.TimeslotID, err)
		} else {
			uc.logger.Error("BookSlot: subject=%s, timeslot=%d failed: %v", req.Subject, req.TimeslotID, err)
		}
		return nil, err
	}

	uc.metrics.ObserveBooking(operation, domain.OutcomeLabel(nil))
	uc.logger.Info("BookSlot: created booking id=%d, slot=%d %d/%d",
		created.ID, slot.ID, slot.BookedCount, slot.Capacity)

	uc.notify(ctx, notifier.NewEvent(notifier.OutcomeBooked, created, slot, uc.calendar, now))

	resp := &Response{
		BookingID:  created.ID,
		TimeslotID: slot.ID,
		Day:        slot.Day,
		StartTime:  slot.StartTime,
		EndTime:    slot.EndTime,
		Kind:       slot.Kind,
		Status:     created.Status,
		Note:       created.Note,
		CreatedAt:  created.CreatedAt,
	}
	if usage != nil {
		after := *usage
		after.Used++
		resp.Quota = &after
	}
	return resp, nil
}

// notify не влияет на результат: бронирование уже закоммичено
func (uc *UseCase) notify(ctx context.Context, event notifier.Event) {
	if uc.notifier == nil {
		return
	}
	notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), uc.opts.NotifyTimeout)
	defer cancel()

	if err := uc.notifier.Notify(notifyCtx, event); err != nil {
		uc.logger.Error("BookSlot: notify booking id=%d: %v", event.BookingID, err)
	}
}
