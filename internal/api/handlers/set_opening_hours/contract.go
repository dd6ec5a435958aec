package set_opening_hours

import (
	"context"

	"github.com/m04kA/SMC-PhysioBooking/internal/service/rules/models"
)

type RuleService interface {
	SetOpeningHours(ctx context.Context, req *models.SetOpeningHoursRequest) (*models.OpeningHoursResponse, error)
}

// RegenerationTrigger запускает перегенерацию горизонта в фоне
type RegenerationTrigger interface {
	Trigger(ctx context.Context) bool
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
