package get_subject_bookings

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-PhysioBooking/internal/api/handlers"
	"github.com/m04kA/SMC-PhysioBooking/internal/api/middleware"
	"github.com/m04kA/SMC-PhysioBooking/internal/service/bookings"
	"github.com/m04kA/SMC-PhysioBooking/internal/service/bookings/models"
)

const msgInvalidStatus = "некорректный статус бронирования"

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

// Handle GET /api/v1/me/bookings
// Query params: status (optional)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	subject, ok := middleware.GetSubject(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w)
		return
	}

	req := &models.GetSubjectBookingsRequest{Subject: subject}
	if status := r.URL.Query().Get("status"); status != "" {
		req.Status = &status
	}

	result, err := h.service.GetSubjectBookings(r.Context(), req)
	if err != nil {
		if errors.Is(err, bookings.ErrInvalidInput) {
			h.logger.Warn("GET /me/bookings - Invalid status: subject=%s", subject)
			handlers.RespondBadRequest(w, msgInvalidStatus)
			return
		}
		h.logger.Error("GET /me/bookings - Failed to get bookings: subject=%s, error=%v", subject, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /me/bookings - Bookings retrieved: subject=%s, count=%d", subject, len(result.Bookings))
	handlers.RespondJSON(w, http.StatusOK, result)
}
