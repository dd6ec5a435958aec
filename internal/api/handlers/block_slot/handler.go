package block_slot

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-PhysioBooking/internal/api/handlers"
	"github.com/m04kA/SMC-PhysioBooking/internal/domain"
	blockSlot "github.com/m04kA/SMC-PhysioBooking/internal/usecase/block_slot"
)

const (
	msgInvalidSlotID      = "некорректный ID слота"
	msgInvalidRequestBody = "некорректное тело запроса, ожидается blocked"
	msgSlotNotFound       = "слот не найден"
	msgBusy               = "слот сейчас изменяется, повторите запрос"
	msgStoreUnavailable   = "хранилище недоступно, повторите запрос"
)

type Handler struct {
	useCase BlockSlotUseCase
	logger  Logger
}

func NewHandler(useCase BlockSlotUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle PATCH /api/v1/admin/slots/{slotId}/block
// Существующие бронирования заблокированного слота сохраняются
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	slotID, err := strconv.ParseInt(mux.Vars(r)["slotId"], 10, 64)
	if err != nil || slotID <= 0 {
		handlers.RespondBadRequest(w, msgInvalidSlotID)
		return
	}

	var req BlockSlotRequest
	if err := handlers.DecodeJSON(r, &req); err != nil || req.Blocked == nil {
		h.logger.Warn("PATCH /admin/slots/{id}/block - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	resp, err := h.useCase.Execute(r.Context(), &blockSlot.Request{TimeslotID: slotID, Blocked: *req.Blocked})
	if err != nil {
		switch {
		case errors.Is(err, blockSlot.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidSlotID)

		case errors.Is(err, domain.ErrSlotNotFound):
			handlers.RespondNotFound(w, msgSlotNotFound)

		case errors.Is(err, domain.ErrConcurrencyBusy):
			handlers.RespondServiceUnavailable(w, msgBusy)

		case errors.Is(err, domain.ErrStoreUnavailable):
			h.logger.Error("PATCH /admin/slots/{id}/block - Store unavailable: slot_id=%d, error=%v", slotID, err)
			handlers.RespondServiceUnavailable(w, msgStoreUnavailable)

		default:
			h.logger.Error("PATCH /admin/slots/{id}/block - Failed: slot_id=%d, error=%v", slotID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /admin/slots/{id}/block - Slot updated: slot_id=%d, blocked=%t", slotID, resp.Blocked)
	handlers.RespondJSON(w, http.StatusOK, resp)
}
