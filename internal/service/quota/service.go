package quota

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-PhysioBooking/internal/domain"
	tenantRepo "github.com/m04kA/SMC-PhysioBooking/internal/infra/storage/tenant"
	"github.com/m04kA/SMC-PhysioBooking/pkg/types"
)

// Service учет дневной квоты тенантов.
// "Сегодня" всегда считается по календарю региона работы.
type Service struct {
	tenantRepo   TenantRepository
	bookingRepo  BookingRepository
	calendar     domain.Calendar
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса квот
func NewService(
	tenantRepo TenantRepository,
	bookingRepo BookingRepository,
	calendar domain.Calendar,
	logger Logger,
) *Service {
	return &Service{
		tenantRepo:   tenantRepo,
		bookingRepo:  bookingRepo,
		calendar:     calendar,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// WithTimeProvider подменяет источник времени
func (s *Service) WithTimeProvider(tp TimeProvider) *Service {
	s.timeProvider = tp
	return s
}

// UsedOn считает бронирования тенанта, расходующие квоту дня day.
// Отмененные не считаются. Значение не кэшируется.
func (s *Service) UsedOn(ctx context.Context, tenantID int64, day types.Date) (int, error) {
	used, err := s.bookingRepo.CountQuotaForTenantOnDay(ctx, tenantID, day)
	if err != nil {
		return 0, fmt.Errorf("%w: UsedOn - count bookings: %w", ErrInternal, err)
	}
	return used, nil
}

// GetQuotaUsage лимит и использование квоты тенанта на сегодня
func (s *Service) GetQuotaUsage(ctx context.Context, tenantID int64) (*domain.QuotaUsage, error) {
	if tenantID <= 0 {
		return nil, fmt.Errorf("%w: tenantID must be positive", ErrInvalidInput)
	}

	today := s.calendar.Today(s.timeProvider.Now())
	tenant, err := s.getTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	used, err := s.UsedOn(ctx, tenantID, today)
	if err != nil {
		s.logger.Error("GetQuotaUsage: tenant=%d day=%s: %v", tenantID, today, err)
		return nil, err
	}

	return &domain.QuotaUsage{
		TenantID: tenantID,
		Day:      today,
		Limit:    tenant.DailyLimit,
		Used:     used,
	}, nil
}

// EnsureAvailable проверяет квоту тенанта на день day под блокировкой (тенант, день).
// Вызывается внутри транзакции бронирования, блокировка держится до ее конца.
func (s *Service) EnsureAvailable(ctx context.Context, tenantID int64, day types.Date) (*domain.QuotaUsage, error) {
	if err := s.tenantRepo.LockQuotaDay(ctx, tenantID, day); err != nil {
		return nil, fmt.Errorf("%w: EnsureAvailable - lock quota day: %w", ErrInternal, err)
	}

	tenant, err := s.getTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	used, err := s.UsedOn(ctx, tenantID, day)
	if err != nil {
		return nil, err
	}

	usage := &domain.QuotaUsage{
		TenantID: tenantID,
		Day:      day,
		Limit:    tenant.DailyLimit,
		Used:     used,
	}
	if usage.IsExhausted() {
		return usage, domain.ErrQuotaExceeded
	}
	return usage, nil
}

func (s *Service) getTenant(ctx context.Context, tenantID int64) (*domain.Tenant, error) {
	tenant, err := s.tenantRepo.GetByID(ctx, tenantID)
	if err != nil {
		if errors.Is(err, tenantRepo.ErrTenantNotFound) {
			return nil, domain.ErrTenantNotFound
		}
		return nil, fmt.Errorf("%w: get tenant %d: %w", ErrInternal, tenantID, err)
	}
	return tenant, nil
}
