package get_tenant_bookings

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-PhysioBooking/internal/api/handlers"
	"github.com/m04kA/SMC-PhysioBooking/internal/api/middleware"
	"github.com/m04kA/SMC-PhysioBooking/internal/service/bookings"
	"github.com/m04kA/SMC-PhysioBooking/internal/service/bookings/models"
)

const (
	msgInvalidTenantID = "некорректный ID компании"
	msgInvalidInput    = "некорректные параметры запроса, ожидается date=YYYY-MM-DD"
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

// Handle GET /api/v1/tenants/{tenantId}/bookings
// Query params: date (YYYY-MM-DD)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	tenantID, err := strconv.ParseInt(mux.Vars(r)["tenantId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /tenants/{id}/bookings - Invalid tenant ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTenantID)
		return
	}

	req := &models.GetTenantBookingsRequest{TenantID: tenantID, Date: r.URL.Query().Get("date")}
	if _, isAdmin := middleware.GetAdminID(r.Context()); !isAdmin {
		subject, ok := middleware.GetSubject(r.Context())
		if !ok {
			handlers.RespondUnauthorized(w)
			return
		}
		req.Viewer = &subject
	}

	result, err := h.service.GetTenantBookings(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, bookings.ErrAccessDenied):
			h.logger.Warn("GET /tenants/{id}/bookings - Access denied: tenant_id=%d", tenantID)
			handlers.RespondForbidden(w)

		default:
			h.logger.Error("GET /tenants/{id}/bookings - Failed to get bookings: tenant_id=%d, error=%v", tenantID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /tenants/{id}/bookings - Bookings retrieved: tenant_id=%d, count=%d", tenantID, len(result.Bookings))
	handlers.RespondJSON(w, http.StatusOK, result)
}
