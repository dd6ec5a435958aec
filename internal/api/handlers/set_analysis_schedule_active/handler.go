package set_analysis_schedule_active

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-PhysioBooking/internal/api/handlers"
	"github.com/m04kA/SMC-PhysioBooking/internal/domain"
	"github.com/m04kA/SMC-PhysioBooking/internal/service/rules"
)

const (
	msgInvalidID          = "некорректный ID окна анализов"
	msgInvalidRequestBody = "некорректное тело запроса, ожидается isActive"
	msgNotFound           = "окно анализов не найдено"
	msgInvalidRuleConfig  = "окно анализов пересекается с активным"
	msgBusy               = "правила дня недели сейчас изменяются, повторите запрос"
)

type Handler struct {
	service RuleService
	trigger RegenerationTrigger
	logger  Logger
}

func NewHandler(service RuleService, trigger RegenerationTrigger, logger Logger) *Handler {
	return &Handler{
		service: service,
		trigger: trigger,
		logger:  logger,
	}
}

// Handle PATCH /api/v1/admin/analysis-schedules/{scheduleId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["scheduleId"], 10, 64)
	if err != nil || id <= 0 {
		handlers.RespondBadRequest(w, msgInvalidID)
		return
	}

	var req SetActiveRequest
	if err := handlers.DecodeJSON(r, &req); err != nil || req.IsActive == nil {
		h.logger.Warn("PATCH /admin/analysis-schedules/{id} - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	updated, err := h.service.SetAnalysisScheduleActive(r.Context(), id, *req.IsActive)
	if err != nil {
		switch {
		case errors.Is(err, rules.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidID)

		case errors.Is(err, rules.ErrRuleNotFound):
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, domain.ErrInvalidRuleConfig):
			handlers.RespondUnprocessable(w, msgInvalidRuleConfig)

		case errors.Is(err, domain.ErrConcurrencyBusy):
			handlers.RespondServiceUnavailable(w, msgBusy)

		default:
			h.logger.Error("PATCH /admin/analysis-schedules/{id} - Failed to update: id=%d, error=%v", id, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	started := h.trigger.Trigger(r.Context())
	h.logger.Info("PATCH /admin/analysis-schedules/{id} - Schedule updated: id=%d, active=%t, regeneration_started=%t",
		id, updated.IsActive, started)
	handlers.RespondJSON(w, http.StatusOK, updated)
}
