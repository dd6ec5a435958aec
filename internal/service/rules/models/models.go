package models

import (
	"time"

	"github.com/m04kA/SMC-PhysioBooking/internal/domain"
)

// Request модели

// BreakRequest перерыв внутри часов работы
type BreakRequest struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// SetOpeningHoursRequest запрос на замену часов работы дня недели
// При IsClosed=true время и перерывы игнорируются
type SetOpeningHoursRequest struct {
	Weekday   time.Weekday   `json:"weekday"`
	IsClosed  bool           `json:"isClosed"`
	OpenTime  string         `json:"openTime,omitempty"`
	CloseTime string         `json:"closeTime,omitempty"`
	Breaks    []BreakRequest `json:"breaks,omitempty"`
}

// CreateAnalysisScheduleRequest запрос на добавление окна анализов
type CreateAnalysisScheduleRequest struct {
	Weekday   time.Weekday `json:"weekday"`
	StartTime string       `json:"startTime"`
	EndTime   string       `json:"endTime"`
}

// Response модели

// BreakResponse перерыв
type BreakResponse struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// OpeningHoursResponse часы работы дня недели
type OpeningHoursResponse struct {
	Weekday   time.Weekday    `json:"weekday"`
	IsClosed  bool            `json:"isClosed"`
	OpenTime  string          `json:"openTime,omitempty"`
	CloseTime string          `json:"closeTime,omitempty"`
	Breaks    []BreakResponse `json:"breaks"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// AnalysisScheduleResponse окно анализов
type AnalysisScheduleResponse struct {
	ID        int64        `json:"id"`
	Weekday   time.Weekday `json:"weekday"`
	StartTime string       `json:"startTime"`
	EndTime   string       `json:"endTime"`
	IsActive  bool         `json:"isActive"`
	CreatedAt time.Time    `json:"createdAt"`
}

// WeekdayResponse все правила одного дня недели
// OpeningHours = nil, если часы работы не настроены
type WeekdayResponse struct {
	Weekday           time.Weekday               `json:"weekday"`
	OpeningHours      *OpeningHoursResponse      `json:"openingHours,omitempty"`
	AnalysisSchedules []AnalysisScheduleResponse `json:"analysisSchedules"`
}

// WeekResponse правила всей недели, с воскресенья
type WeekResponse struct {
	Days []WeekdayResponse `json:"days"`
}

// Методы конвертации

// FromDomainOpeningHours конвертирует domain модель в DTO
func FromDomainOpeningHours(r *domain.OpeningHoursRule) *OpeningHoursResponse {
	if r == nil {
		return nil
	}

	resp := &OpeningHoursResponse{
		Weekday:   r.Weekday,
		IsClosed:  r.IsClosed,
		Breaks:    make([]BreakResponse, 0, len(r.Breaks)),
		UpdatedAt: r.UpdatedAt,
	}
	if !r.IsClosed {
		resp.OpenTime = r.OpenTime.String()
		resp.CloseTime = r.CloseTime.String()
	}
	for _, b := range r.Breaks {
		resp.Breaks = append(resp.Breaks, BreakResponse{
			StartTime: b.StartTime.String(),
			EndTime:   b.EndTime.String(),
		})
	}
	return resp
}

// FromDomainAnalysisSchedule конвертирует domain модель в DTO
func FromDomainAnalysisSchedule(r *domain.AnalysisScheduleRule) *AnalysisScheduleResponse {
	if r == nil {
		return nil
	}

	return &AnalysisScheduleResponse{
		ID:        r.ID,
		Weekday:   r.Weekday,
		StartTime: r.StartTime.String(),
		EndTime:   r.EndTime.String(),
		IsActive:  r.IsActive,
		CreatedAt: r.CreatedAt,
	}
}
