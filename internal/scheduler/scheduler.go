// Package scheduler периодическая работа движка: перегенерация окна слотов
// и завершение прошедших бронирований.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/m04kA/SMC-PhysioBooking/internal/usecase/complete_bookings"
	"github.com/m04kA/SMC-PhysioBooking/internal/usecase/reconcile_counts"
	"github.com/m04kA/SMC-PhysioBooking/internal/usecase/regenerate_horizon"
	"github.com/m04kA/SMC-PhysioBooking/pkg/types"
)

// Regenerator перегенерация окна слотов
type Regenerator interface {
	Execute(ctx context.Context, req *regenerate_horizon.Request) (*regenerate_horizon.Response, error)
}

// Completer завершение прошедших бронирований
type Completer interface {
	Execute(ctx context.Context) (*complete_bookings.Response, error)
}

// Reconciler сверка счетчиков слотов
type Reconciler interface {
	Execute(ctx context.Context, req *reconcile_counts.Request) (*reconcile_counts.Response, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// DefaultInterval период прогона, если в конфигурации не задан
const DefaultInterval = time.Hour

// Config параметры планировщика
type Config struct {
	Interval         time.Duration
	HorizonDays      int
	ReconcileOnStart bool
}

// Scheduler запускает цикл по тикеру. Прогоны никогда не идут параллельно:
// запрос во время прогона пропускается.
type Scheduler struct {
	config      Config
	regenerator Regenerator
	completer   Completer
	reconciler  Reconciler
	logger      Logger

	mu      sync.Mutex
	running bool
	busy    bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewScheduler создает планировщик
func NewScheduler(
	config Config,
	regenerator Regenerator,
	completer Completer,
	reconciler Reconciler,
	logger Logger,
) *Scheduler {
	if config.Interval <= 0 {
		config.Interval = DefaultInterval
	}
	return &Scheduler{
		config:      config,
		regenerator: regenerator,
		completer:   completer,
		reconciler:  reconciler,
		logger:      logger,
		stopCh:      make(chan struct{}),
	}
}

// Start блокирует до отмены ctx или вызова Stop. Первый прогон сразу при старте.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	s.logger.Info("Scheduler: started, interval=%s, horizon=%d days", s.config.Interval, s.config.HorizonDays)

	if s.config.ReconcileOnStart && s.reconciler != nil {
		s.reconcile(ctx)
	}
	s.RunOnce(ctx)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Scheduler: stopped by context")
			s.wg.Wait()
			return
		case <-s.stopCh:
			s.logger.Info("Scheduler: stopped")
			s.wg.Wait()
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// Stop останавливает цикл
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.running {
		s.running = false
		close(s.stopCh)
	}
	s.mu.Unlock()
}

// Trigger запускает внеочередной прогон в фоне, например после правки правил.
// Возвращает false, если прогон уже идет.
func (s *Scheduler) Trigger(ctx context.Context) bool {
	if !s.acquire() {
		s.logger.Info("Scheduler: trigger skipped, run in progress")
		return false
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.releaseRun()
		s.run(context.WithoutCancel(ctx))
	}()
	return true
}

// RunOnce выполняет один прогон синхронно. Возвращает false, если прогон уже идет.
func (s *Scheduler) RunOnce(ctx context.Context) bool {
	if !s.acquire() {
		s.logger.Info("Scheduler: tick skipped, previous run still in progress")
		return false
	}
	defer s.releaseRun()
	s.run(ctx)
	return true
}

func (s *Scheduler) run(ctx context.Context) {
	started := time.Now()

	regen, err := s.regenerator.Execute(ctx, &regenerate_horizon.Request{
		StartDay: types.Date{},
		Days:     s.config.HorizonDays,
	})
	if err != nil {
		s.logger.Error("Scheduler: regeneration failed: %v", err)
	} else if len(regen.Errors) > 0 {
		s.logger.Warn("Scheduler: regeneration finished with %d failed days: %v", len(regen.Errors), regen.Errors)
	}

	completed, err := s.completer.Execute(ctx)
	if err != nil {
		s.logger.Error("Scheduler: completing past bookings failed: %v", err)
	}

	if regen != nil && completed != nil {
		s.logger.Info("Scheduler: run finished in %s, created=%d, deleted=%d, completed=%d",
			time.Since(started), regen.Created, regen.DeletedEmpty, completed.Completed)
	}
}

func (s *Scheduler) reconcile(ctx context.Context) {
	resp, err := s.reconciler.Execute(ctx, &reconcile_counts.Request{})
	if err != nil {
		s.logger.Error("Scheduler: startup reconcile failed: %v", err)
		return
	}
	s.logger.Info("Scheduler: startup reconcile checked=%d, corrected=%d, oversold=%d",
		resp.Checked, resp.Corrected, resp.Oversold)
}

func (s *Scheduler) acquire() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return false
	}
	s.busy = true
	return true
}

func (s *Scheduler) releaseRun() {
	s.mu.Lock()
	s.busy = false
	s.mu.Unlock()
}
