package get_quota

import (
	"context"

	"github.com/m04kA/SMC-PhysioBooking/internal/domain"
)

type QuotaService interface {
	GetQuotaUsage(ctx context.Context, tenantID int64) (*domain.QuotaUsage, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
