package book_slot

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-PhysioBooking/internal/api/handlers"
	"github.com/m04kA/SMC-PhysioBooking/internal/api/middleware"
	"github.com/m04kA/SMC-PhysioBooking/internal/domain"
	bookSlot "github.com/m04kA/SMC-PhysioBooking/internal/usecase/book_slot"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidInput       = "некорректные данные бронирования"
	msgSlotNotFound       = "слот не найден"
	msgSlotBlocked        = "слот закрыт для бронирования"
	msgSlotFull           = "в слоте нет свободных мест"
	msgSlotInPast         = "слот уже начался"
	msgAlreadyBooked      = "вы уже записаны на этот слот"
	msgQuotaExceeded      = "дневная квота компании исчерпана"
	msgTenantNotFound     = "компания не найдена"
	msgBusy               = "слот сейчас занят другим запросом, повторите позже"
	msgUnavailable        = "хранилище временно недоступно, повторите позже"
)

type Handler struct {
	useCase BookSlotUseCase
	logger  Logger
}

func NewHandler(useCase BookSlotUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	subject, ok := middleware.GetSubject(r.Context())
	if !ok {
		h.logger.Warn("POST /bookings - Missing subject")
		handlers.RespondUnauthorized(w)
		return
	}

	var req BookSlotRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest(subject))
	if err != nil {
		switch {
		case errors.Is(err, bookSlot.ErrInvalidInput), errors.Is(err, domain.ErrInvalidSubject):
			h.logger.Warn("POST /bookings - Invalid input: subject=%s, error=%v", subject, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, domain.ErrSlotNotFound):
			h.logger.Warn("POST /bookings - Slot not found: timeslot_id=%d", req.TimeslotID)
			handlers.RespondNotFound(w, msgSlotNotFound)

		case errors.Is(err, domain.ErrTenantNotFound):
			h.logger.Warn("POST /bookings - Tenant not found: subject=%s", subject)
			handlers.RespondNotFound(w, msgTenantNotFound)

		case errors.Is(err, domain.ErrSlotBlocked):
			handlers.RespondConflict(w, msgSlotBlocked)

		case errors.Is(err, domain.ErrSlotFull):
			handlers.RespondConflict(w, msgSlotFull)

		case errors.Is(err, domain.ErrSlotInPast):
			handlers.RespondConflict(w, msgSlotInPast)

		case errors.Is(err, domain.ErrAlreadyBooked):
			handlers.RespondConflict(w, msgAlreadyBooked)

		case errors.Is(err, domain.ErrQuotaExceeded):
			handlers.RespondConflict(w, msgQuotaExceeded)

		case errors.Is(err, domain.ErrConcurrencyBusy):
			h.logger.Warn("POST /bookings - Busy: timeslot_id=%d, subject=%s", req.TimeslotID, subject)
			handlers.RespondServiceUnavailable(w, msgBusy)

		case errors.Is(err, domain.ErrStoreUnavailable):
			h.logger.Error("POST /bookings - Store unavailable: timeslot_id=%d, error=%v", req.TimeslotID, err)
			handlers.RespondServiceUnavailable(w, msgUnavailable)

		default:
			h.logger.Error("POST /bookings - Failed to book slot: timeslot_id=%d, subject=%s, error=%v",
				req.TimeslotID, subject, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings - Booking created successfully: booking_id=%d, timeslot_id=%d, subject=%s",
		result.BookingID, result.TimeslotID, subject)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
