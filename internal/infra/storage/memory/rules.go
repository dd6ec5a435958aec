package memory

import (
	"context"
	"sort"
	"time"

	"github.com/m04kA/SMC-PhysioBooking/internal/domain"
	"github.com/m04kA/SMC-PhysioBooking/internal/infra/storage/rules"
)

// RuleRepository правила расписания в памяти, ошибки из пакета rules
type RuleRepository struct {
	s *Store
}

func (r *RuleRepository) ListOpeningHours(ctx context.Context) ([]domain.OpeningHoursRule, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	result := make([]domain.OpeningHoursRule, 0, len(r.s.openingHours))
	for _, rule := range r.s.openingHours {
		result = append(result, copyOpeningHours(rule))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Weekday < result[j].Weekday })
	return result, nil
}

func (r *RuleRepository) GetOpeningHours(ctx context.Context, weekday time.Weekday) (*domain.OpeningHoursRule, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rule, ok := r.s.openingHours[weekday]
	if !ok {
		return nil, rules.ErrRuleNotFound
	}
	out := copyOpeningHours(rule)
	return &out, nil
}

func (r *RuleRepository) UpsertOpeningHours(ctx context.Context, rule *domain.OpeningHoursRule) (*domain.OpeningHoursRule, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	before, existed := r.s.openingHours[rule.Weekday]
	if existed {
		rule.ID = before.ID
	} else {
		rule.ID = r.s.nextID()
	}
	if rule.IsClosed {
		rule.Breaks = nil
	}
	for i := range rule.Breaks {
		rule.Breaks[i].ID = r.s.nextID()
	}
	rule.UpdatedAt = r.s.now()
	r.s.openingHours[rule.Weekday] = copyOpeningHours(*rule)

	weekday := rule.Weekday
	r.s.record(ctx, func() {
		if existed {
			r.s.openingHours[weekday] = before
		} else {
			delete(r.s.openingHours, weekday)
		}
	})
	return rule, nil
}

func (r *RuleRepository) ListActiveAnalysisSchedules(ctx context.Context, weekday time.Weekday) ([]domain.AnalysisScheduleRule, error) {
	return r.listAnalysis(weekday, true), nil
}

func (r *RuleRepository) ListAnalysisSchedules(ctx context.Context, weekday time.Weekday) ([]domain.AnalysisScheduleRule, error) {
	return r.listAnalysis(weekday, false), nil
}

func (r *RuleRepository) listAnalysis(weekday time.Weekday, activeOnly bool) []domain.AnalysisScheduleRule {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	result := make([]domain.AnalysisScheduleRule, 0)
	for _, rule := range r.s.analysis {
		if rule.Weekday != weekday || (activeOnly && !rule.IsActive) {
			continue
		}
		result = append(result, rule)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].StartTime.Minutes() != result[j].StartTime.Minutes() {
			return result[i].StartTime.Minutes() < result[j].StartTime.Minutes()
		}
		return result[i].ID < result[j].ID
	})
	return result
}

func (r *RuleRepository) GetAnalysisSchedule(ctx context.Context, id int64) (*domain.AnalysisScheduleRule, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rule, ok := r.s.analysis[id]
	if !ok {
		return nil, rules.ErrRuleNotFound
	}
	return &rule, nil
}

func (r *RuleRepository) CreateAnalysisSchedule(ctx context.Context, rule *domain.AnalysisScheduleRule) (*domain.AnalysisScheduleRule, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rule.ID = r.s.nextID()
	rule.CreatedAt = r.s.now()
	r.s.analysis[rule.ID] = *rule

	id := rule.ID
	r.s.record(ctx, func() {
		delete(r.s.analysis, id)
	})
	return rule, nil
}

func (r *RuleRepository) SetAnalysisScheduleActive(ctx context.Context, id int64, active bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	before, ok := r.s.analysis[id]
	if !ok {
		return rules.ErrRuleNotFound
	}
	after := before
	after.IsActive = active
	r.s.analysis[id] = after

	r.s.record(ctx, func() {
		r.s.analysis[id] = before
	})
	return nil
}

func (r *RuleRepository) LockWeekday(ctx context.Context, weekday time.Weekday) error {
	return r.s.lock(ctx, weekdayLockKey(weekday))
}

func copyOpeningHours(rule domain.OpeningHoursRule) domain.OpeningHoursRule {
	if rule.Breaks != nil {
		rule.Breaks = append([]domain.BreakRule(nil), rule.Breaks...)
	}
	return rule
}
