package get_rules

import (
	"context"

	"github.com/m04kA/SMC-PhysioBooking/internal/service/rules/models"
)

type RuleService interface {
	ListWeek(ctx context.Context) (*models.WeekResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Error(format string, v ...interface{})
}
