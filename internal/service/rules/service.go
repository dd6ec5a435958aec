package rules

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-PhysioBooking/internal/domain"
	ruleRepo "github.com/m04kA/SMC-PhysioBooking/internal/infra/storage/rules"
	"github.com/m04kA/SMC-PhysioBooking/internal/service/rules/models"
	"github.com/m04kA/SMC-PhysioBooking/pkg/txmanager"
	"github.com/m04kA/SMC-PhysioBooking/pkg/types"
)

// Service сервис правил расписания: часы работы, перерывы, окна анализов.
// Изменения дня недели идут под той же блокировкой, что и регенерация этого дня.
type Service struct {
	ruleRepo  RuleRepository
	txManager TransactionManager
	logger    Logger
}

// NewService создает новый экземпляр сервиса правил
func NewService(
	ruleRepo RuleRepository,
	txManager TransactionManager,
	logger Logger,
) *Service {
	return &Service{
		ruleRepo:  ruleRepo,
		txManager: txManager,
		logger:    logger,
	}
}

// ListWeek возвращает правила всех семи дней недели
func (s *Service) ListWeek(ctx context.Context) (*models.WeekResponse, error) {
	hours, err := s.ruleRepo.ListOpeningHours(ctx)
	if err != nil {
		s.logger.Error("ListWeek: failed to list opening hours: %v", err)
		return nil, s.classify("ListWeek - list opening hours", err)
	}
	byWeekday := make(map[time.Weekday]*domain.OpeningHoursRule, len(hours))
	for i := range hours {
		byWeekday[hours[i].Weekday] = &hours[i]
	}

	resp := &models.WeekResponse{Days: make([]models.WeekdayResponse, 0, 7)}
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		analysis, err := s.ruleRepo.ListAnalysisSchedules(ctx, wd)
		if err != nil {
			s.logger.Error("ListWeek: failed to list analysis schedules for %s: %v", wd, err)
			return nil, s.classify("ListWeek - list analysis schedules", err)
		}

		day := models.WeekdayResponse{
			Weekday:           wd,
			OpeningHours:      models.FromDomainOpeningHours(byWeekday[wd]),
			AnalysisSchedules: make([]models.AnalysisScheduleResponse, 0, len(analysis)),
		}
		for i := range analysis {
			day.AnalysisSchedules = append(day.AnalysisSchedules, *models.FromDomainAnalysisSchedule(&analysis[i]))
		}
		resp.Days = append(resp.Days, day)
	}
	return resp, nil
}

// GetOpeningHours возвращает часы работы дня недели
func (s *Service) GetOpeningHours(ctx context.Context, weekday time.Weekday) (*models.OpeningHoursResponse, error) {
	if err := validateWeekday(weekday); err != nil {
		return nil, err
	}

	rule, err := s.ruleRepo.GetOpeningHours(ctx, weekday)
	if err != nil {
		if errors.Is(err, ruleRepo.ErrRuleNotFound) {
			return nil, ErrRuleNotFound
		}
		s.logger.Error("GetOpeningHours: failed to get rule for %s: %v", weekday, err)
		return nil, s.classify("GetOpeningHours - get rule", err)
	}
	return models.FromDomainOpeningHours(rule), nil
}

// SetOpeningHours заменяет часы работы и перерывы дня недели.
// Некорректные правила отклоняются целиком, сохраненные не меняются.
func (s *Service) SetOpeningHours(ctx context.Context, req *models.SetOpeningHoursRequest) (*models.OpeningHoursResponse, error) {
	s.logger.Info("SetOpeningHours: weekday=%s, closed=%t", req.Weekday, req.IsClosed)

	rule, err := buildOpeningHours(req)
	if err != nil {
		s.logger.Warn("SetOpeningHours: invalid input: %v", err)
		return nil, err
	}
	if err := rule.Validate(); err != nil {
		s.logger.Warn("SetOpeningHours: rule rejected: %v", err)
		return nil, err
	}

	var saved *domain.OpeningHoursRule
	err = s.txManager.Do(ctx, func(ctx context.Context) error {
		if err := s.ruleRepo.LockWeekday(ctx, rule.Weekday); err != nil {
			return err
		}
		var err error
		saved, err = s.ruleRepo.UpsertOpeningHours(ctx, rule)
		return err
	})
	if err != nil {
		s.logger.Error("SetOpeningHours: failed to save rule for %s: %v", req.Weekday, err)
		return nil, s.classify("SetOpeningHours - upsert", err)
	}

	s.logger.Info("SetOpeningHours: saved rule id=%d for %s", saved.ID, saved.Weekday)
	return models.FromDomainOpeningHours(saved), nil
}

// AddAnalysisSchedule добавляет активное окно анализов.
// Пересечение с другим активным окном того же дня отклоняется.
func (s *Service) AddAnalysisSchedule(ctx context.Context, req *models.CreateAnalysisScheduleRequest) (*models.AnalysisScheduleResponse, error) {
	s.logger.Info("AddAnalysisSchedule: weekday=%s, %s-%s", req.Weekday, req.StartTime, req.EndTime)

	rule, err := buildAnalysisSchedule(req)
	if err != nil {
		s.logger.Warn("AddAnalysisSchedule: invalid input: %v", err)
		return nil, err
	}
	if err := rule.Validate(); err != nil {
		s.logger.Warn("AddAnalysisSchedule: rule rejected: %v", err)
		return nil, err
	}

	var saved *domain.AnalysisScheduleRule
	err = s.txManager.Do(ctx, func(ctx context.Context) error {
		if err := s.ruleRepo.LockWeekday(ctx, rule.Weekday); err != nil {
			return err
		}
		if err := s.checkOverlap(ctx, rule); err != nil {
			return err
		}
		var err error
		saved, err = s.ruleRepo.CreateAnalysisSchedule(ctx, rule)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrScheduleOverlap) {
			s.logger.Warn("AddAnalysisSchedule: %v", err)
			return nil, err
		}
		s.logger.Error("AddAnalysisSchedule: failed to save rule for %s: %v", req.Weekday, err)
		return nil, s.classify("AddAnalysisSchedule - create", err)
	}

	s.logger.Info("AddAnalysisSchedule: saved rule id=%d for %s", saved.ID, saved.Weekday)
	return models.FromDomainAnalysisSchedule(saved), nil
}

// SetAnalysisScheduleActive включает или выключает окно анализов.
// Включение проверяет пересечения так же, как добавление.
func (s *Service) SetAnalysisScheduleActive(ctx context.Context, id int64, active bool) (*models.AnalysisScheduleResponse, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: id must be positive", ErrInvalidInput)
	}

	var updated *domain.AnalysisScheduleRule
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		rule, err := s.ruleRepo.GetAnalysisSchedule(ctx, id)
		if err != nil {
			return err
		}
		if err := s.ruleRepo.LockWeekday(ctx, rule.Weekday); err != nil {
			return err
		}
		if active && !rule.IsActive {
			if err := s.checkOverlap(ctx, rule); err != nil {
				return err
			}
		}
		if err := s.ruleRepo.SetAnalysisScheduleActive(ctx, id, active); err != nil {
			return err
		}
		rule.IsActive = active
		updated = rule
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, ruleRepo.ErrRuleNotFound):
			s.logger.Warn("SetAnalysisScheduleActive: rule id=%d not found", id)
			return nil, ErrRuleNotFound
		case errors.Is(err, ErrScheduleOverlap):
			s.logger.Warn("SetAnalysisScheduleActive: %v", err)
			return nil, err
		}
		s.logger.Error("SetAnalysisScheduleActive: failed to update rule id=%d: %v", id, err)
		return nil, s.classify("SetAnalysisScheduleActive - update", err)
	}

	s.logger.Info("SetAnalysisScheduleActive: rule id=%d active=%t", id, active)
	return models.FromDomainAnalysisSchedule(updated), nil
}

func (s *Service) checkOverlap(ctx context.Context, rule *domain.AnalysisScheduleRule) error {
	active, err := s.ruleRepo.ListActiveAnalysisSchedules(ctx, rule.Weekday)
	if err != nil {
		return err
	}
	for _, other := range active {
		if other.ID == rule.ID {
			continue
		}
		if rule.Overlaps(other) {
			return fmt.Errorf("%w: %w: %s-%s overlaps id=%d %s-%s", domain.ErrInvalidRuleConfig, ErrScheduleOverlap,
				rule.StartTime, rule.EndTime, other.ID, other.StartTime, other.EndTime)
		}
	}
	return nil
}

func (s *Service) classify(op string, err error) error {
	if txmanager.IsLockTimeout(err) || errors.Is(err, txmanager.ErrMaxRetriesExceeded) {
		return fmt.Errorf("%w: %s: %v", domain.ErrConcurrencyBusy, op, err)
	}
	return fmt.Errorf("%w: %s: %v", ErrInternal, op, err)
}

func validateWeekday(weekday time.Weekday) error {
	if weekday < time.Sunday || weekday > time.Saturday {
		return fmt.Errorf("%w: weekday must be between 0 and 6", ErrInvalidInput)
	}
	return nil
}

func buildOpeningHours(req *models.SetOpeningHoursRequest) (*domain.OpeningHoursRule, error) {
	if err := validateWeekday(req.Weekday); err != nil {
		return nil, err
	}

	rule := &domain.OpeningHoursRule{Weekday: req.Weekday, IsClosed: req.IsClosed}
	if req.IsClosed {
		return rule, nil
	}

	var err error
	if rule.OpenTime, err = parseTime("openTime", req.OpenTime); err != nil {
		return nil, err
	}
	if rule.CloseTime, err = parseTime("closeTime", req.CloseTime); err != nil {
		return nil, err
	}
	for _, b := range req.Breaks {
		start, err := parseTime("break startTime", b.StartTime)
		if err != nil {
			return nil, err
		}
		end, err := parseTime("break endTime", b.EndTime)
		if err != nil {
			return nil, err
		}
		rule.Breaks = append(rule.Breaks, domain.BreakRule{StartTime: start, EndTime: end})
	}
	return rule, nil
}

func buildAnalysisSchedule(req *models.CreateAnalysisScheduleRequest) (*domain.AnalysisScheduleRule, error) {
	if err := validateWeekday(req.Weekday); err != nil {
		return nil, err
	}
	start, err := parseTime("startTime", req.StartTime)
	if err != nil {
		return nil, err
	}
	end, err := parseTime("endTime", req.EndTime)
	if err != nil {
		return nil, err
	}
	return &domain.AnalysisScheduleRule{
		Weekday:   req.Weekday,
		StartTime: start,
		EndTime:   end,
		IsActive:  true,
	}, nil
}

func parseTime(field, value string) (types.TimeString, error) {
	ts, err := types.NewTimeStringFromString(value)
	if err != nil {
		return "", fmt.Errorf("%w: %s %q: %v", ErrInvalidInput, field, value, err)
	}
	return ts, nil
}
