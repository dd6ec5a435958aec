package reconcile

import (
	"context"

	"github.com/m04kA/SMC-PhysioBooking/internal/usecase/reconcile_counts"
)

type ReconcileUseCase interface {
	Execute(ctx context.Context, req *reconcile_counts.Request) (*reconcile_counts.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
