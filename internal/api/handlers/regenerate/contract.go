package regenerate

import (
	"context"

	"github.com/m04kA/SMC-PhysioBooking/internal/usecase/regenerate_horizon"
)

type RegenerateUseCase interface {
	Execute(ctx context.Context, req *regenerate_horizon.Request) (*regenerate_horizon.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
