// Command slotctl обслуживание слотов вне сервера: перегенерация окна,
// сверка счетчиков и завершение прошедших бронирований.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/m04kA/SMC-PhysioBooking/internal/app"
	"github.com/m04kA/SMC-PhysioBooking/internal/config"
	"github.com/m04kA/SMC-PhysioBooking/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := NewRootCommand(openJobs).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// openJobs собирает приложение так же, как сервер
func openJobs(ctx context.Context, configPath string) (*Jobs, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if cfg.Database.Driver == config.DriverMemory {
		return nil, fmt.Errorf("driver %q keeps no state between runs, use the admin API of a running server", cfg.Database.Driver)
	}
	// Метрики процесса slotctl никто не собирает
	cfg.Metrics.Enabled = false

	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	application, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Close()
		return nil, err
	}

	return &Jobs{
		Regenerator: application.RegenerateHorizon,
		Reconciler:  application.ReconcileCounts,
		Completer:   application.CompleteBookings,
		Close: func() {
			application.Close()
			log.Close()
		},
	}, nil
}
