package add_analysis_schedule

import (
	"context"

	"github.com/m04kA/SMC-PhysioBooking/internal/service/rules/models"
)

type RuleService interface {
	AddAnalysisSchedule(ctx context.Context, req *models.CreateAnalysisScheduleRequest) (*models.AnalysisScheduleResponse, error)
}

type RegenerationTrigger interface {
	Trigger(ctx context.Context) bool
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
