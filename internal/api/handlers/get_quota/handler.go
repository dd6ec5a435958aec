package get_quota

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-PhysioBooking/internal/api/handlers"
	"github.com/m04kA/SMC-PhysioBooking/internal/api/middleware"
	"github.com/m04kA/SMC-PhysioBooking/internal/domain"
	"github.com/m04kA/SMC-PhysioBooking/internal/service/quota"
)

const (
	msgInvalidTenantID = "некорректный ID компании"
	msgTenantNotFound  = "компания не найдена"
)

type Handler struct {
	service QuotaService
	logger  Logger
}

func NewHandler(service QuotaService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/tenants/{tenantId}/quota
// Доступно пользователям компании и администратору
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	tenantID, err := strconv.ParseInt(mux.Vars(r)["tenantId"], 10, 64)
	if err != nil || tenantID <= 0 {
		h.logger.Warn("GET /tenants/{id}/quota - Invalid tenant ID: %s", mux.Vars(r)["tenantId"])
		handlers.RespondBadRequest(w, msgInvalidTenantID)
		return
	}

	if _, isAdmin := middleware.GetAdminID(r.Context()); !isAdmin {
		subject, ok := middleware.GetSubject(r.Context())
		if !ok {
			handlers.RespondUnauthorized(w)
			return
		}
		if own, isUser := subject.TenantID(); !isUser || own != tenantID {
			h.logger.Warn("GET /tenants/{id}/quota - Access denied: tenant_id=%d, subject=%s", tenantID, subject)
			handlers.RespondForbidden(w)
			return
		}
	}

	usage, err := h.service.GetQuotaUsage(r.Context(), tenantID)
	if err != nil {
		switch {
		case errors.Is(err, quota.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidTenantID)

		case errors.Is(err, domain.ErrTenantNotFound):
			handlers.RespondNotFound(w, msgTenantNotFound)

		default:
			h.logger.Error("GET /tenants/{id}/quota - Failed to get quota: tenant_id=%d, error=%v", tenantID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /tenants/{id}/quota - Quota retrieved: tenant_id=%d, used=%d/%d", tenantID, usage.Used, usage.Limit)
	handlers.RespondJSON(w, http.StatusOK, FromDomain(usage))
}
