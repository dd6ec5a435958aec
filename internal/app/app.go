// Package app собирает зависимости сервиса: хранилище, уведомления,
// сервисы, use cases и планировщик. Используется сервером и slotctl.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/m04kA/SMC-PhysioBooking/internal/config"
	"github.com/m04kA/SMC-PhysioBooking/internal/domain"
	bookingRepo "github.com/m04kA/SMC-PhysioBooking/internal/infra/storage/booking"
	"github.com/m04kA/SMC-PhysioBooking/internal/infra/storage/memory"
	ruleRepo "github.com/m04kA/SMC-PhysioBooking/internal/infra/storage/rules"
	tenantRepo "github.com/m04kA/SMC-PhysioBooking/internal/infra/storage/tenant"
	timeslotRepo "github.com/m04kA/SMC-PhysioBooking/internal/infra/storage/timeslot"
	"github.com/m04kA/SMC-PhysioBooking/internal/integrations/notifier"
	"github.com/m04kA/SMC-PhysioBooking/internal/scheduler"
	bookingsService "github.com/m04kA/SMC-PhysioBooking/internal/service/bookings"
	quotaService "github.com/m04kA/SMC-PhysioBooking/internal/service/quota"
	rulesService "github.com/m04kA/SMC-PhysioBooking/internal/service/rules"
	"github.com/m04kA/SMC-PhysioBooking/internal/slots"
	blockSlotUC "github.com/m04kA/SMC-PhysioBooking/internal/usecase/block_slot"
	bookSlotUC "github.com/m04kA/SMC-PhysioBooking/internal/usecase/book_slot"
	cancelBookingUC "github.com/m04kA/SMC-PhysioBooking/internal/usecase/cancel_booking"
	completeBookingsUC "github.com/m04kA/SMC-PhysioBooking/internal/usecase/complete_bookings"
	getAvailableSlotsUC "github.com/m04kA/SMC-PhysioBooking/internal/usecase/get_available_slots"
	reconcileCountsUC "github.com/m04kA/SMC-PhysioBooking/internal/usecase/reconcile_counts"
	regenerateHorizonUC "github.com/m04kA/SMC-PhysioBooking/internal/usecase/regenerate_horizon"
	"github.com/m04kA/SMC-PhysioBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-PhysioBooking/pkg/logger"
	"github.com/m04kA/SMC-PhysioBooking/pkg/metrics"
	"github.com/m04kA/SMC-PhysioBooking/pkg/txmanager"
)

// App собранный граф зависимостей
type App struct {
	Config   *config.Config
	Logger   *logger.Logger
	Metrics  *metrics.Metrics // nil, если метрики выключены
	Calendar domain.Calendar

	Bookings *bookingsService.Service
	Quota    *quotaService.Service
	Rules    *rulesService.Service

	BookSlot          *bookSlotUC.UseCase
	CancelBooking     *cancelBookingUC.UseCase
	GetAvailableSlots *getAvailableSlotsUC.UseCase
	BlockSlot         *blockSlotUC.UseCase
	RegenerateHorizon *regenerateHorizonUC.UseCase
	ReconcileCounts   *reconcileCountsUC.UseCase
	CompleteBookings  *completeBookingsUC.UseCase

	Scheduler *scheduler.Scheduler

	closers []func()
}

// New собирает приложение по конфигурации. Close освобождает соединения.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	a := &App{
		Config:   cfg,
		Logger:   log,
		Calendar: domain.NewCalendar(cfg.Scheduling.Location()),
	}

	if cfg.Metrics.Enabled {
		a.Metrics = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	st, err := a.openStorage(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	params := slots.Params{
		StepMinutes:      cfg.Scheduling.SlotStepMinutes,
		NormalCapacity:   cfg.Scheduling.NormalCapacity,
		AnalysisCapacity: cfg.Scheduling.AnalysisCapacity,
	}
	if err := params.Validate(); err != nil {
		a.Close()
		return nil, fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
	}

	recorder := metrics.NewRecorder(a.Metrics, cfg.Metrics.ServiceName)
	notify := a.buildNotifier(ctx)

	a.Bookings = bookingsService.NewService(st.bookings, st.timeslots, log)
	a.Quota = quotaService.NewService(st.tenants, st.bookings, a.Calendar, log)
	a.Rules = rulesService.NewService(st.rules, st.txManager, log)

	a.BookSlot = bookSlotUC.NewUseCase(
		st.timeslots,
		st.bookings,
		a.Quota,
		st.txManager,
		notify,
		recorder,
		a.Calendar,
		bookSlotUC.Options{
			MaxNoteLength: cfg.Booking.MaxNoteLength,
			NotifyTimeout: cfg.Booking.NotifyTimeout(),
		},
		log,
	)
	a.CancelBooking = cancelBookingUC.NewUseCase(
		st.bookings,
		st.timeslots,
		st.tenants,
		st.txManager,
		notify,
		recorder,
		a.Calendar,
		cfg.Booking.NotifyTimeout(),
		log,
	)
	a.GetAvailableSlots = getAvailableSlotsUC.NewUseCase(st.timeslots, a.Calendar, log)
	a.BlockSlot = blockSlotUC.NewUseCase(st.timeslots, st.txManager, log)
	a.RegenerateHorizon = regenerateHorizonUC.NewUseCase(
		st.rules,
		st.timeslots,
		st.txManager,
		recorder,
		a.Calendar,
		params,
		log,
	)
	a.ReconcileCounts = reconcileCountsUC.NewUseCase(
		st.timeslots,
		st.bookings,
		st.txManager,
		recorder,
		a.Calendar,
		log,
	)
	a.CompleteBookings = completeBookingsUC.NewUseCase(st.bookings, recorder, a.Calendar, log)

	a.Scheduler = scheduler.NewScheduler(
		scheduler.Config{
			Interval:         cfg.Scheduling.RegenerationInterval(),
			HorizonDays:      cfg.Scheduling.HorizonDays,
			ReconcileOnStart: cfg.Scheduling.ReconcileOnStart,
		},
		a.RegenerateHorizon,
		a.CompleteBookings,
		a.ReconcileCounts,
		log,
	)

	log.Info("Application assembled (driver=%s, timezone=%s, step=%dm, horizon=%d days)",
		cfg.Database.Driver, cfg.Scheduling.Timezone, cfg.Scheduling.SlotStepMinutes, cfg.Scheduling.HorizonDays)
	return a, nil
}

// Close закрывает соединения в обратном порядке
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func (a *App) openStorage(ctx context.Context) (*storage, error) {
	cfg := a.Config

	if cfg.Database.Driver == config.DriverMemory {
		store := memory.NewStore(memory.Options{LockTimeout: cfg.Booking.LockTimeout()})
		for _, t := range cfg.Seed.Tenants {
			if _, err := store.Tenants().Upsert(ctx, domain.Tenant{ID: t.ID, Name: t.Name, DailyLimit: t.DailyLimit}); err != nil {
				return nil, fmt.Errorf("seed tenant %d: %w", t.ID, err)
			}
		}
		a.Logger.Warn("Using in-memory storage, data is lost on restart (seeded tenants=%d)", len(cfg.Seed.Tenants))
		return &storage{
			timeslots: store.Timeslots(),
			bookings:  store.Bookings(),
			tenants:   store.Tenants(),
			rules:     store.Rules(),
			txManager: store.TxManager(),
		}, nil
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	a.closers = append(a.closers, func() { _ = db.Close() })

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	a.Logger.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Без метрик обертка работает как прозрачный адаптер
	stopStats := make(chan struct{})
	a.closers = append(a.closers, func() { close(stopStats) })
	wrapped := dbmetrics.WrapWithDefault(db, a.Metrics, cfg.Metrics.ServiceName, stopStats)

	return &storage{
		timeslots: timeslotRepo.NewRepository(wrapped),
		bookings:  bookingRepo.NewRepository(wrapped),
		tenants:   tenantRepo.NewRepository(wrapped),
		rules:     ruleRepo.NewRepository(wrapped),
		txManager: txmanager.NewTransactionManager(wrapped, txmanager.Options{
			LockTimeout: cfg.Booking.LockTimeout(),
			MaxRetries:  cfg.Booking.MaxRetries,
		}),
	}, nil
}

// buildNotifier Redis, если включен, иначе webhook, иначе журнал
func (a *App) buildNotifier(ctx context.Context) notifierBackend {
	cfg := a.Config

	if cfg.Redis.Enabled {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			a.Logger.Warn("Redis at %s is unavailable, events are published once it is back: %v", cfg.Redis.Addr, err)
		}
		a.closers = append(a.closers, func() { _ = client.Close() })
		a.Logger.Info("Booking events are published to redis channel %s", cfg.Notifier.Channel)
		return notifier.NewRedisNotifier(client, cfg.Notifier.Channel, a.Logger)
	}

	if cfg.Notifier.WebhookURL != "" {
		a.Logger.Info("Booking events are sent to webhook %s", cfg.Notifier.WebhookURL)
		return notifier.NewWebhookClient(cfg.Notifier.WebhookURL, cfg.Booking.NotifyTimeout(), a.Logger)
	}

	a.Logger.Info("Booking events are written to the log")
	return notifier.NewLogNotifier(a.Logger)
}
