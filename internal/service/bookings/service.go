package bookings

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-PhysioBooking/internal/domain"
	bookingRepo "github.com/m04kA/SMC-PhysioBooking/internal/infra/storage/booking"
	"github.com/m04kA/SMC-PhysioBooking/internal/service/bookings/models"
	"github.com/m04kA/SMC-PhysioBooking/pkg/types"
)

// Service сервис чтения бронирований и административных переходов статуса
type Service struct {
	bookingRepo  BookingRepository
	timeslotRepo TimeslotRepository
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	bookingRepo BookingRepository,
	timeslotRepo TimeslotRepository,
	logger Logger,
) *Service {
	return &Service{
		bookingRepo:  bookingRepo,
		timeslotRepo: timeslotRepo,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// WithTimeProvider подменяет источник времени
func (s *Service) WithTimeProvider(tp TimeProvider) *Service {
	s.timeProvider = tp
	return s
}

// GetByID получает бронирование по ID
// Субъект видит только свое бронирование, viewer = nil для администратора
func (s *Service) GetByID(ctx context.Context, id int64, viewer *domain.Subject) (*models.BookingResponse, error) {
	s.logger.Info("GetByID: fetching booking id=%d for %s", id, viewerString(viewer))

	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("GetByID: booking id=%d not found", id)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("GetByID: repository error for booking id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	if viewer != nil && !holds(booking, *viewer) {
		s.logger.Warn("GetByID: access denied for %s to booking id=%d", viewer, id)
		return nil, ErrAccessDenied
	}

	slots, err := s.loadSlots(ctx, []*domain.Booking{booking})
	if err != nil {
		s.logger.Error("GetByID: failed to load slot for booking id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - load slot: %v", ErrInternal, err)
	}
	return models.FromDomainBooking(booking, slots[booking.TimeslotID]), nil
}

// GetSubjectBookings получает историю бронирований субъекта
// Опционально фильтрует по статусу
func (s *Service) GetSubjectBookings(ctx context.Context, req *models.GetSubjectBookingsRequest) (*models.BookingListResponse, error) {
	s.logger.Info("GetSubjectBookings: fetching bookings for %s, status=%v", req.Subject, req.Status)

	if req.Subject.IsZero() {
		return nil, fmt.Errorf("%w: subject is required", ErrInvalidInput)
	}

	var status *domain.BookingStatus
	if req.Status != nil {
		st, err := models.ToDomainBookingStatus(*req.Status)
		if err != nil {
			s.logger.Warn("GetSubjectBookings: invalid status=%s for %s", *req.Status, req.Subject)
			return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
		}
		status = &st
	}

	bookings, err := s.bookingRepo.ListBySubject(ctx, req.Subject)
	if err != nil {
		s.logger.Error("GetSubjectBookings: repository error for %s: %v", req.Subject, err)
		return nil, fmt.Errorf("%w: GetSubjectBookings - repository error: %v", ErrInternal, err)
	}

	if status != nil {
		filtered := make([]*domain.Booking, 0, len(bookings))
		for _, b := range bookings {
			if b.Status == *status {
				filtered = append(filtered, b)
			}
		}
		bookings = filtered
	}

	resp, err := s.toList(ctx, bookings)
	if err != nil {
		s.logger.Error("GetSubjectBookings: failed to load slots for %s: %v", req.Subject, err)
		return nil, err
	}

	s.logger.Info("GetSubjectBookings: successfully fetched %d bookings for %s", len(bookings), req.Subject)
	return resp, nil
}

// GetTenantBookings получает бронирования пользователей тенанта на день,
// включая отмененные. Доступно пользователям этого тенанта и администратору.
func (s *Service) GetTenantBookings(ctx context.Context, req *models.GetTenantBookingsRequest) (*models.BookingListResponse, error) {
	s.logger.Info("GetTenantBookings: fetching bookings for tenant=%d, date=%s by %s",
		req.TenantID, req.Date, viewerString(req.Viewer))

	if req.TenantID <= 0 {
		return nil, fmt.Errorf("%w: tenantId must be positive", ErrInvalidInput)
	}
	day, err := types.ParseDate(req.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if req.Viewer != nil {
		tenantID, ok := req.Viewer.TenantID()
		if !ok || tenantID != req.TenantID {
			s.logger.Warn("GetTenantBookings: access denied for %s to tenant=%d", req.Viewer, req.TenantID)
			return nil, ErrAccessDenied
		}
	}

	bookings, err := s.bookingRepo.ListByTenantOnDay(ctx, req.TenantID, day)
	if err != nil {
		s.logger.Error("GetTenantBookings: repository error for tenant=%d: %v", req.TenantID, err)
		return nil, fmt.Errorf("%w: GetTenantBookings - repository error: %v", ErrInternal, err)
	}

	resp, err := s.toList(ctx, bookings)
	if err != nil {
		s.logger.Error("GetTenantBookings: failed to load slots for tenant=%d: %v", req.TenantID, err)
		return nil, err
	}

	s.logger.Info("GetTenantBookings: successfully fetched %d bookings for tenant=%d", len(bookings), req.TenantID)
	return resp, nil
}

// MarkNoShow отмечает неявку. Место в слоте остается занятым, квота расходуется.
func (s *Service) MarkNoShow(ctx context.Context, id int64) (*models.BookingResponse, error) {
	s.logger.Info("MarkNoShow: booking id=%d", id)

	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("MarkNoShow: booking id=%d not found", id)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("MarkNoShow: repository error for booking id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: MarkNoShow - repository error: %v", ErrInternal, err)
	}
	if booking.Status == domain.StatusNoShow {
		return s.GetByID(ctx, id, nil)
	}
	if booking.Status != domain.StatusConfirmed && booking.Status != domain.StatusCompleted {
		s.logger.Warn("MarkNoShow: booking id=%d has status=%s", id, booking.Status)
		return nil, ErrStatusConflict
	}

	now := s.timeProvider.Now()
	if err := s.bookingRepo.UpdateStatus(ctx, id, booking.Status, domain.StatusNoShow, now); err != nil {
		if errors.Is(err, bookingRepo.ErrStatusConflict) {
			s.logger.Warn("MarkNoShow: booking id=%d changed concurrently", id)
			return nil, ErrStatusConflict
		}
		s.logger.Error("MarkNoShow: repository error for booking id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: MarkNoShow - update status: %v", ErrInternal, err)
	}

	s.logger.Info("MarkNoShow: booking id=%d marked as no_show", id)
	return s.GetByID(ctx, id, nil)
}

// Вспомогательные методы

func (s *Service) toList(ctx context.Context, bookings []*domain.Booking) (*models.BookingListResponse, error) {
	slots, err := s.loadSlots(ctx, bookings)
	if err != nil {
		return nil, fmt.Errorf("%w: load slots: %v", ErrInternal, err)
	}

	resp := &models.BookingListResponse{Bookings: make([]models.BookingResponse, 0, len(bookings))}
	for _, b := range bookings {
		resp.Bookings = append(resp.Bookings, *models.FromDomainBooking(b, slots[b.TimeslotID]))
	}
	return resp, nil
}

// loadSlots читает каждый слот один раз
func (s *Service) loadSlots(ctx context.Context, bookings []*domain.Booking) (map[int64]*domain.Timeslot, error) {
	slots := make(map[int64]*domain.Timeslot, len(bookings))
	for _, b := range bookings {
		if _, ok := slots[b.TimeslotID]; ok {
			continue
		}
		slot, err := s.timeslotRepo.GetByID(ctx, b.TimeslotID)
		if err != nil {
			return nil, err
		}
		slots[b.TimeslotID] = slot
	}
	return slots, nil
}

// holds субъект владеет бронированием: совпадают вид и идентификатор
func holds(b *domain.Booking, subject domain.Subject) bool {
	return b.Subject.Kind() == subject.Kind() && b.Subject.ID() == subject.ID()
}

func viewerString(viewer *domain.Subject) string {
	if viewer == nil {
		return "admin"
	}
	return viewer.String()
}
