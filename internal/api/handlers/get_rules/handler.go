package get_rules

import (
	"net/http"

	"github.com/m04kA/SMC-PhysioBooking/internal/api/handlers"
)

type Handler struct {
	service RuleService
	logger  Logger
}

func NewHandler(service RuleService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/rules
// Часы работы и окна анализов по дням недели
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	week, err := h.service.ListWeek(r.Context())
	if err != nil {
		h.logger.Error("GET /rules - Failed to list rules: %v", err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /rules - Rules retrieved")
	handlers.RespondJSON(w, http.StatusOK, week)
}
