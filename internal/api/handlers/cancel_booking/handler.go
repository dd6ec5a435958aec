package cancel_booking

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-PhysioBooking/internal/api/handlers"
	"github.com/m04kA/SMC-PhysioBooking/internal/api/middleware"
	"github.com/m04kA/SMC-PhysioBooking/internal/domain"
	cancelBooking "github.com/m04kA/SMC-PhysioBooking/internal/usecase/cancel_booking"
)

const (
	msgInvalidBookingID = "некорректный ID бронирования"
	msgNotFound         = "бронирование не найдено"
	msgCannotCancel     = "бронирование не может быть отменено"
	msgBusy             = "бронирование сейчас изменяется другим запросом, повторите позже"
	msgUnavailable      = "хранилище временно недоступно, повторите позже"
)

type Handler struct {
	useCase CancelBookingUseCase
	logger  Logger
}

func NewHandler(useCase CancelBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle PATCH /api/v1/bookings/{bookingId}/cancel
// Субъект отменяет только свое бронирование, администратор (X-Admin-ID) любое
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	bookingID, err := strconv.ParseInt(mux.Vars(r)["bookingId"], 10, 64)
	if err != nil || bookingID <= 0 {
		h.logger.Warn("PATCH /bookings/{id}/cancel - Invalid booking ID: %v", mux.Vars(r)["bookingId"])
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	req := &cancelBooking.Request{BookingID: bookingID}
	if _, isAdmin := middleware.GetAdminID(r.Context()); !isAdmin {
		subject, ok := middleware.GetSubject(r.Context())
		if !ok {
			h.logger.Warn("PATCH /bookings/{id}/cancel - Missing subject: booking_id=%d", bookingID)
			handlers.RespondUnauthorized(w)
			return
		}
		req.Actor = &subject
	}

	result, err := h.useCase.Execute(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, cancelBooking.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidBookingID)

		case errors.Is(err, domain.ErrBookingNotFound):
			h.logger.Warn("PATCH /bookings/{id}/cancel - Booking not found: booking_id=%d", bookingID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, domain.ErrAccessDenied):
			h.logger.Warn("PATCH /bookings/{id}/cancel - Access denied: booking_id=%d", bookingID)
			handlers.RespondForbidden(w)

		case errors.Is(err, domain.ErrCannotCancel):
			handlers.RespondConflict(w, msgCannotCancel)

		case errors.Is(err, domain.ErrConcurrencyBusy):
			h.logger.Warn("PATCH /bookings/{id}/cancel - Busy: booking_id=%d", bookingID)
			handlers.RespondServiceUnavailable(w, msgBusy)

		case errors.Is(err, domain.ErrStoreUnavailable):
			h.logger.Error("PATCH /bookings/{id}/cancel - Store unavailable: booking_id=%d, error=%v", bookingID, err)
			handlers.RespondServiceUnavailable(w, msgUnavailable)

		default:
			h.logger.Error("PATCH /bookings/{id}/cancel - Failed to cancel: booking_id=%d, error=%v", bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /bookings/{id}/cancel - Booking cancelled: booking_id=%d, already=%t",
		bookingID, result.AlreadyCancelled)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
