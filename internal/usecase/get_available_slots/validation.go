package get_available_slots

import (
	"fmt"

	"github.com/m04kA/SMC-PhysioBooking/internal/domain"
	"github.com/m04kA/SMC-PhysioBooking/pkg/types"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request, today types.Date) error {
	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	if req.Date.Before(today) {
		return fmt.Errorf("%w: %s is in the past", ErrInvalidDate, req.Date)
	}

	if req.Kind != nil && *req.Kind != domain.SlotKindNormal && *req.Kind != domain.SlotKindAnalysis {
		return fmt.Errorf("%w: unknown slot kind %q", ErrInvalidInput, *req.Kind)
	}

	return nil
}
