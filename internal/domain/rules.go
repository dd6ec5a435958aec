package domain

import (
	"fmt"
	"sort"
	"time"

	"github.com/m04kA/SMC-PhysioBooking/pkg/types"
)

// OpeningHoursRule regular opening hours for one weekday.
// Times are wall clock values of the operating region.
type OpeningHoursRule struct {
	ID        int64
	Weekday   time.Weekday // 0 = Sunday
	IsClosed  bool
	OpenTime  types.TimeString
	CloseTime types.TimeString
	Breaks    []BreakRule
	UpdatedAt time.Time
}

// BreakRule pause inside opening hours, half-open [StartTime, EndTime)
type BreakRule struct {
	ID        int64
	StartTime types.TimeString
	EndTime   types.TimeString
}

// AnalysisScheduleRule special low-capacity window, independent of opening hours
type AnalysisScheduleRule struct {
	ID        int64
	Weekday   time.Weekday
	StartTime types.TimeString
	EndTime   types.TimeString
	IsActive  bool
	CreatedAt time.Time
}

// WeekdayRules all rules the generator needs for one weekday
type WeekdayRules struct {
	OpeningHours *OpeningHoursRule
	Analysis     []AnalysisScheduleRule
}

// IsEmpty returns true if nothing can be scheduled on the weekday
func (w WeekdayRules) IsEmpty() bool {
	return (w.OpeningHours == nil || w.OpeningHours.IsClosed) && len(w.Analysis) == 0
}

// IsOpen returns true if regular hours apply
func (r *OpeningHoursRule) IsOpen() bool {
	return r != nil && !r.IsClosed
}

// Validate checks hours and breaks. Closed days are always valid.
func (r *OpeningHoursRule) Validate() error {
	if r.Weekday < time.Sunday || r.Weekday > time.Saturday {
		return fmt.Errorf("%w: weekday %d out of range", ErrInvalidRuleConfig, r.Weekday)
	}
	if r.IsClosed {
		return nil
	}
	if err := validateWindow(r.OpenTime, r.CloseTime); err != nil {
		return fmt.Errorf("%w: opening hours %s: %v", ErrInvalidRuleConfig, r.Weekday, err)
	}

	breaks := make([]BreakRule, len(r.Breaks))
	copy(breaks, r.Breaks)
	sort.Slice(breaks, func(i, j int) bool {
		return breaks[i].StartTime.Minutes() < breaks[j].StartTime.Minutes()
	})

	for i, b := range breaks {
		if err := validateWindow(b.StartTime, b.EndTime); err != nil {
			return fmt.Errorf("%w: break %s-%s: %v", ErrInvalidRuleConfig, b.StartTime, b.EndTime, err)
		}
		if b.StartTime.IsBefore(r.OpenTime) || b.EndTime.IsAfter(r.CloseTime) {
			return fmt.Errorf("%w: break %s-%s outside opening hours %s-%s",
				ErrInvalidRuleConfig, b.StartTime, b.EndTime, r.OpenTime, r.CloseTime)
		}
		if i > 0 && b.StartTime.IsBefore(breaks[i-1].EndTime) {
			return fmt.Errorf("%w: breaks %s-%s and %s-%s overlap",
				ErrInvalidRuleConfig, breaks[i-1].StartTime, breaks[i-1].EndTime, b.StartTime, b.EndTime)
		}
	}
	return nil
}

// Validate checks the analysis window
func (a *AnalysisScheduleRule) Validate() error {
	if a.Weekday < time.Sunday || a.Weekday > time.Saturday {
		return fmt.Errorf("%w: weekday %d out of range", ErrInvalidRuleConfig, a.Weekday)
	}
	if err := validateWindow(a.StartTime, a.EndTime); err != nil {
		return fmt.Errorf("%w: analysis schedule %s: %v", ErrInvalidRuleConfig, a.Weekday, err)
	}
	return nil
}

// Overlaps returns true if both windows share at least one minute
func (a *AnalysisScheduleRule) Overlaps(other AnalysisScheduleRule) bool {
	return a.Weekday == other.Weekday &&
		a.StartTime.Minutes() < other.EndTime.Minutes() &&
		other.StartTime.Minutes() < a.EndTime.Minutes()
}

func validateWindow(start, end types.TimeString) error {
	if err := start.Validate(); err != nil {
		return err
	}
	if err := end.Validate(); err != nil {
		return err
	}
	if !start.IsBefore(end) {
		return fmt.Errorf("start %s must be before end %s", start, end)
	}
	return nil
}
