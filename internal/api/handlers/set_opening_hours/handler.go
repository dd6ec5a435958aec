package set_opening_hours

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-PhysioBooking/internal/api/handlers"
	"github.com/m04kA/SMC-PhysioBooking/internal/domain"
	"github.com/m04kA/SMC-PhysioBooking/internal/service/rules"
)

const (
	msgInvalidWeekday     = "некорректный день недели, ожидается число от 0 (воскресенье) до 6"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidRuleConfig  = "некорректные часы работы"
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

// Handle PUT /api/v1/admin/opening-hours/{weekday}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	weekday, err := strconv.Atoi(mux.Vars(r)["weekday"])
	if err != nil || weekday < 0 || weekday > 6 {
		h.logger.Warn("PUT /admin/opening-hours/{weekday} - Invalid weekday: %s", mux.Vars(r)["weekday"])
		handlers.RespondBadRequest(w, msgInvalidWeekday)
		return
	}

	var req SetOpeningHoursRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /admin/opening-hours/{weekday} - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	saved, err := h.service.SetOpeningHours(r.Context(), req.ToServiceRequest(time.Weekday(weekday)))
	if err != nil {
		switch {
		case errors.Is(err, rules.ErrInvalidInput):
			handlers.RespondBadRequest(w, err.Error())

		case errors.Is(err, domain.ErrInvalidRuleConfig):
			handlers.RespondUnprocessable(w, msgInvalidRuleConfig+": "+err.Error())

		case errors.Is(err, domain.ErrConcurrencyBusy):
			handlers.RespondServiceUnavailable(w, msgBusy)

		default:
			h.logger.Error("PUT /admin/opening-hours/{weekday} - Failed to save: weekday=%d, error=%v", weekday, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	started := h.trigger.Trigger(r.Context())
	h.logger.Info("PUT /admin/opening-hours/{weekday} - Opening hours saved: weekday=%d, regeneration_started=%t",
		weekday, started)
	handlers.RespondJSON(w, http.StatusOK, saved)
}
