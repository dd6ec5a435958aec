package regenerate_horizon

import (
	"fmt"

	"github.com/m04kA/SMC-PhysioBooking/internal/domain"
)

func validateRequest(req *Request) error {
	if req.Days < 1 {
		return fmt.Errorf("%w: days must be positive", ErrInvalidInput)
	}
	if req.Days > domain.MaxHorizonDays {
		return fmt.Errorf("%w: days must not exceed %d", ErrInvalidInput, domain.MaxHorizonDays)
	}
	return nil
}
