package set_analysis_schedule_active

import (
	"context"

	"github.com/m04kA/SMC-PhysioBooking/internal/service/rules/models"
)

type RuleService interface {
	SetAnalysisScheduleActive(ctx context.Context, id int64, active bool) (*models.AnalysisScheduleResponse, error)
}

type RegenerationTrigger interface {
	Trigger(ctx context.Context) bool
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
