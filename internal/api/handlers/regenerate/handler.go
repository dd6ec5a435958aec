package regenerate

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-PhysioBooking/internal/api/handlers"
	"github.com/m04kA/SMC-PhysioBooking/internal/domain"
	"github.com/m04kA/SMC-PhysioBooking/internal/usecase/regenerate_horizon"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgStoreUnavailable   = "хранилище недоступно, повторите запрос"
)

type Handler struct {
	useCase RegenerateUseCase
	logger  Logger
}

func NewHandler(useCase RegenerateUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/admin/regenerate
// Ошибки отдельных дней возвращаются в теле ответа со статусом 200
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req RegenerateRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /admin/regenerate - Invalid request body: %v", err)
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
		switch {
		case errors.Is(err, regenerate_horizon.ErrInvalidInput):
			handlers.RespondBadRequest(w, err.Error())

		case errors.Is(err, domain.ErrStoreUnavailable):
			h.logger.Error("POST /admin/regenerate - Store unavailable: %v", err)
			handlers.RespondServiceUnavailable(w, msgStoreUnavailable)

		default:
			h.logger.Error("POST /admin/regenerate - Failed: %v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /admin/regenerate - Done: start=%s, days=%d, created=%d, deleted=%d, errors=%d",
		resp.StartDay, resp.Days, resp.Created, resp.DeletedEmpty, len(resp.Errors))
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(resp))
}
