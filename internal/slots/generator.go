// Package slots превращает недельные правила в слоты конкретного дня.
// Чистые функции без I/O, все сравнения по настенному времени региона.
package slots

import (
	"fmt"

	"github.com/m04kA/SMC-PhysioBooking/internal/domain"
	"github.com/m04kA/SMC-PhysioBooking/pkg/types"
)

// Params параметры генерации
type Params struct {
	StepMinutes      int // шаг сетки слотов
	NormalCapacity   int
	AnalysisCapacity int
}

// Validate проверяет параметры генерации
func (p Params) Validate() error {
	if p.StepMinutes <= 0 || p.StepMinutes > types.MinutesPerDay {
		return fmt.Errorf("%w: slot step %d minutes", domain.ErrInvalidRuleConfig, p.StepMinutes)
	}
	if p.NormalCapacity < 1 || p.AnalysisCapacity < 1 {
		return fmt.Errorf("%w: capacity must be at least 1", domain.ErrInvalidRuleConfig)
	}
	return nil
}

type window struct {
	start, end int
}

func (w window) contains(m int) bool {
	return m >= w.start && m < w.end
}

func (w window) overlaps(start, end int) bool {
	return start < w.end && w.start < end
}

// GenerateSlotsForDay возвращает упорядоченные по времени слоты дня.
// При некорректных правилах возвращает пустой результат и ошибку ErrInvalidRuleConfig.
func GenerateSlotsForDay(day types.Date, rules domain.WeekdayRules, params Params) ([]domain.TimeslotSpec, error) {
	if err := params.Validate(); err != nil {
		return []domain.TimeslotSpec{}, err
	}

	weekday := day.Weekday()
	open := rules.OpeningHours.IsOpen()

	// 1. Окно работы и перерывы
	var hours window
	var breaks []window
	if open {
		if rules.OpeningHours.Weekday != weekday {
			return []domain.TimeslotSpec{}, fmt.Errorf("%w: opening hours for %s applied to %s",
				domain.ErrInvalidRuleConfig, rules.OpeningHours.Weekday, weekday)
		}
		if err := rules.OpeningHours.Validate(); err != nil {
			return []domain.TimeslotSpec{}, err
		}
		hours = window{start: rules.OpeningHours.OpenTime.Minutes(), end: rules.OpeningHours.CloseTime.Minutes()}
		for _, b := range rules.OpeningHours.Breaks {
			breaks = append(breaks, window{start: b.StartTime.Minutes(), end: b.EndTime.Minutes()})
		}
	}

	// 2. Окна анализов, неактивные и чужие дни недели пропускаем
	var analysis []window
	for i := range rules.Analysis {
		a := &rules.Analysis[i]
		if !a.IsActive || a.Weekday != weekday {
			continue
		}
		if err := a.Validate(); err != nil {
			return []domain.TimeslotSpec{}, err
		}
		analysis = append(analysis, window{start: a.StartTime.Minutes(), end: a.EndTime.Minutes()})
	}

	if !open && len(analysis) == 0 {
		return []domain.TimeslotSpec{}, nil
	}

	// 3. Границы дня как объединение окон
	earliest, latest := types.MinutesPerDay, 0
	if open {
		earliest, latest = hours.start, hours.end
	}
	for _, w := range analysis {
		earliest = min(earliest, w.start)
		latest = max(latest, w.end)
	}

	// 4. Проход курсором с фиксированным шагом
	result := make([]domain.TimeslotSpec, 0)
	for cursor := earliest; cursor < latest; cursor += params.StepMinutes {
		end := cursor + params.StepMinutes
		if end > types.MinutesPerDay {
			break
		}

		kind, ok := classify(cursor, end, open, hours, breaks, analysis)
		if !ok {
			continue
		}

		capacity := params.NormalCapacity
		if kind == domain.SlotKindAnalysis {
			capacity = params.AnalysisCapacity
		}

		start, _ := types.FromMinutes(cursor)
		finish, _ := types.FromMinutes(end)
		result = append(result, domain.TimeslotSpec{
			Day:       day,
			StartTime: start,
			EndTime:   finish,
			Capacity:  capacity,
			Kind:      kind,
		})
	}

	return result, nil
}

// classify определяет тип шага. Анализы проверяются первыми и имеют приоритет.
// Обычный слот не должен пересекаться ни с одним перерывом.
func classify(start, end int, open bool, hours window, breaks, analysis []window) (domain.SlotKind, bool) {
	for _, w := range analysis {
		if w.contains(start) {
			return domain.SlotKindAnalysis, true
		}
	}

	if !open || !hours.contains(start) {
		return "", false
	}
	for _, b := range breaks {
		if b.overlaps(start, end) {
			return "", false
		}
	}
	return domain.SlotKindNormal, true
}
