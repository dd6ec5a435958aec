package regenerate_horizon

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-PhysioBooking/internal/domain"
	ruleRepo "github.com/m04kA/SMC-PhysioBooking/internal/infra/storage/rules"
	"github.com/m04kA/SMC-PhysioBooking/internal/slots"
	"github.com/m04kA/SMC-PhysioBooking/pkg/types"
)

// UseCase use case перегенерации слотов на окно дней вперед
type UseCase struct {
	ruleRepo     RuleRepository
	timeslotRepo TimeslotRepository
	txManager    TransactionManager
	metrics      MetricsRecorder
	calendar     domain.Calendar
	params       slots.Params
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	ruleRepo RuleRepository,
	timeslotRepo TimeslotRepository,
	txManager TransactionManager,
	metrics MetricsRecorder,
	calendar domain.Calendar,
	params slots.Params,
	logger Logger,
) *UseCase {
	return &UseCase{
		ruleRepo:     ruleRepo,
		timeslotRepo: timeslotRepo,
		txManager:    txManager,
		metrics:      metrics,
		calendar:     calendar,
		params:       params,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// WithTimeProvider подменяет источник времени
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute перегенерирует дни [StartDay, StartDay+Days). Сегодня никогда не трогается.
// Каждый день в своей транзакции: ошибка дня попадает в Errors, остальные дни продолжаются.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("RegenerateHorizon: validation failed: %v", err)
		return nil, err
	}

	tomorrow := uc.calendar.Tomorrow(uc.timeProvider.Now())
	start := req.StartDay
	if start.IsZero() || start.Before(tomorrow) {
		if !start.IsZero() {
			uc.logger.Warn("RegenerateHorizon: start %s moved to %s", start, tomorrow)
		}
		start = tomorrow
	}

	uc.logger.Info("RegenerateHorizon: start=%s, days=%d", start, req.Days)

	// Правила дня перечитываются под блокировкой дня недели, здесь только проверка доступности
	openingHours, err := uc.ruleRepo.ListOpeningHours(ctx)
	if err != nil {
		uc.logger.Error("RegenerateHorizon: failed to load opening hours: %v", err)
		return nil, fmt.Errorf("%w: %w: %v", ErrLoadRules, domain.ErrStoreUnavailable, err)
	}
	if len(openingHours) == 0 {
		uc.logger.Warn("RegenerateHorizon: no opening hours configured")
	}

	resp := &Response{StartDay: start, Days: req.Days, Errors: []string{}}

	for i := 0; i < req.Days; i++ {
		if err := ctx.Err(); err != nil {
			resp.Errors = append(resp.Errors, fmt.Sprintf("interrupted before %s: %v", start.AddDays(i), err))
			break
		}

		day := start.AddDays(i)
		result, err := uc.regenerateDay(ctx, day)
		if err != nil {
			uc.logger.Error("RegenerateHorizon: day=%s failed: %v", day, err)
			resp.Errors = append(resp.Errors, fmt.Sprintf("%s: %v", day, err))
			continue
		}

		resp.Created += result.created
		resp.DeletedEmpty += result.deleted
		resp.Kept += result.kept
	}

	uc.metrics.ObserveRegeneration(resp.Created, resp.DeletedEmpty, len(resp.Errors))
	uc.logger.Info("RegenerateHorizon: done start=%s days=%d created=%d deleted=%d kept=%d errors=%d",
		start, req.Days, resp.Created, resp.DeletedEmpty, resp.Kept, len(resp.Errors))
	return resp, nil
}

// regenerateDay приводит слоты дня к правилам, не трогая слоты с бронированиями
func (uc *UseCase) regenerateDay(ctx context.Context, day types.Date) (dayResult, error) {
	var result dayResult
	err := uc.txManager.Do(ctx, func(txCtx context.Context) error {
		result = dayResult{}

		if err := uc.ruleRepo.LockWeekday(txCtx, day.Weekday()); err != nil {
			return fmt.Errorf("lock weekday: %w", err)
		}

		rules, err := uc.loadRules(txCtx, day.Weekday())
		if err != nil {
			return err
		}
		specs, err := slots.GenerateSlotsForDay(day, rules, uc.params)
		if err != nil {
			return err
		}

		existing, err := uc.timeslotRepo.ListByDayForUpdate(txCtx, day)
		if err != nil {
			return fmt.Errorf("list slots: %w", err)
		}

		wanted := make(map[int]domain.TimeslotSpec, len(specs))
		for _, spec := range specs {
			wanted[spec.StartTime.Minutes()] = spec
		}

		// 1. Удаляем несовпадающие пустые слоты
		satisfied := make(map[int]bool, len(specs))
		for _, slot := range existing {
			spec, ok := wanted[slot.StartTime.Minutes()]
			if ok && slot.Matches(spec) {
				satisfied[slot.StartTime.Minutes()] = true
				result.kept++
				continue
			}

			deleted, err := uc.timeslotRepo.DeleteIfEmpty(txCtx, slot.ID)
			if err != nil {
				return fmt.Errorf("delete slot %d: %w", slot.ID, err)
			}
			if deleted {
				result.deleted++
				continue
			}

			// слот с бронированиями остается как есть
			satisfied[slot.StartTime.Minutes()] = true
			result.kept++
			if ok {
				uc.logger.Warn("RegenerateHorizon: day=%s slot %s has bookings, rule change not applied",
					day, slot.StartTime)
			}
		}

		// 2. Добавляем недостающие
		for _, spec := range specs {
			if satisfied[spec.StartTime.Minutes()] {
				continue
			}
			created, err := uc.timeslotRepo.InsertIfAbsent(txCtx, spec)
			if err != nil {
				return fmt.Errorf("insert slot %s: %w", spec.StartTime, err)
			}
			if created {
				result.created++
			}
		}
		return nil
	})
	if err != nil {
		return dayResult{}, err
	}
	return result, nil
}

// loadRules правила дня недели, отсутствие часов работы означает закрытый день
func (uc *UseCase) loadRules(ctx context.Context, weekday time.Weekday) (domain.WeekdayRules, error) {
	var rules domain.WeekdayRules

	openingHours, err := uc.ruleRepo.GetOpeningHours(ctx, weekday)
	switch {
	case err == nil:
		rules.OpeningHours = openingHours
	case !errors.Is(err, ruleRepo.ErrRuleNotFound):
		return rules, fmt.Errorf("load opening hours: %w", err)
	}

	rules.Analysis, err = uc.ruleRepo.ListActiveAnalysisSchedules(ctx, weekday)
	if err != nil {
		return rules, fmt.Errorf("load analysis schedules: %w", err)
	}
	return rules, nil
}
