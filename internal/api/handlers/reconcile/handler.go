package reconcile

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-PhysioBooking/internal/api/handlers"
	"github.com/m04kA/SMC-PhysioBooking/internal/domain"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgStoreUnavailable   = "хранилище недоступно, повторите запрос"
)

type Handler struct {
	useCase ReconcileUseCase
	logger  Logger
}

func NewHandler(useCase ReconcileUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/admin/reconcile
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req ReconcileRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /admin/reconcile - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	ucReq, err := req.ToUseCaseRequest()
	if err != nil {
		handlers.RespondBadRequest(w, err.Error())
		return
	}

	resp, err := h.useCase.Execute(r.Context(), ucReq)
	if err != nil {
		if errors.Is(err, domain.ErrStoreUnavailable) {
			h.logger.Error("POST /admin/reconcile - Store unavailable: %v", err)
			handlers.RespondServiceUnavailable(w, msgStoreUnavailable)
			return
		}
		h.logger.Error("POST /admin/reconcile - Failed: %v", err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("POST /admin/reconcile - Done: from=%s, checked=%d, corrected=%d, oversold=%d",
		resp.FromDay, resp.Checked, resp.Corrected, resp.Oversold)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(resp))
}
