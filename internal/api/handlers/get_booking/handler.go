package get_booking

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-PhysioBooking/internal/api/handlers"
	"github.com/m04kA/SMC-PhysioBooking/internal/api/middleware"
	"github.com/m04kA/SMC-PhysioBooking/internal/domain"
	"github.com/m04kA/SMC-PhysioBooking/internal/service/bookings"
)

const (
	msgInvalidBookingID = "некорректный ID бронирования"
	msgNotFound         = "бронирование не найдено"
)

type Handler struct {
	service BookingService
	logger  Logger
}

func NewHandler(service BookingService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/bookings/{bookingId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	rawID := mux.Vars(r)["bookingId"]
	bookingID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || bookingID <= 0 {
		h.logger.Warn("GET /bookings/{id} - Invalid booking ID: %s", rawID)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	var viewer *domain.Subject
	if _, isAdmin := middleware.GetAdminID(r.Context()); !isAdmin {
		subject, ok := middleware.GetSubject(r.Context())
		if !ok {
			handlers.RespondUnauthorized(w)
			return
		}
		viewer = &subject
	}

	booking, err := h.service.GetByID(r.Context(), bookingID, viewer)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrBookingNotFound):
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, bookings.ErrAccessDenied):
			h.logger.Warn("GET /bookings/{id} - Access denied: booking_id=%d", bookingID)
			handlers.RespondForbidden(w)

		default:
			h.logger.Error("GET /bookings/{id} - Failed to get booking: booking_id=%d, error=%v", bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /bookings/{id} - Booking retrieved: booking_id=%d", bookingID)
	handlers.RespondJSON(w, http.StatusOK, booking)
}
