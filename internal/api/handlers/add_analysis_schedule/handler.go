package add_analysis_schedule

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-PhysioBooking/internal/api/handlers"
	"github.com/m04kA/SMC-PhysioBooking/internal/domain"
	"github.com/m04kA/SMC-PhysioBooking/internal/service/rules"
	"github.com/m04kA/SMC-PhysioBooking/internal/service/rules/models"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidRuleConfig  = "некорректное окно анализов"
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

// Handle POST /api/v1/admin/analysis-schedules
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req models.CreateAnalysisScheduleRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /admin/analysis-schedules - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	saved, err := h.service.AddAnalysisSchedule(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, rules.ErrInvalidInput):
			handlers.RespondBadRequest(w, err.Error())

		case errors.Is(err, domain.ErrInvalidRuleConfig):
			handlers.RespondUnprocessable(w, msgInvalidRuleConfig+": "+err.Error())

		case errors.Is(err, domain.ErrConcurrencyBusy):
			handlers.RespondServiceUnavailable(w, msgBusy)

		default:
			h.logger.Error("POST /admin/analysis-schedules - Failed to save: error=%v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	started := h.trigger.Trigger(r.Context())
	h.logger.Info("POST /admin/analysis-schedules - Schedule created: id=%d, regeneration_started=%t", saved.ID, started)
	handlers.RespondJSON(w, http.StatusCreated, saved)
}
