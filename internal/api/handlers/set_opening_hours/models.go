package set_opening_hours

import (
	"time"

	"github.com/m04kA/SMC-PhysioBooking/internal/service/rules/models"
)

// SetOpeningHoursRequest тело запроса, день недели берется из пути
type SetOpeningHoursRequest struct {
	IsClosed  bool                  `json:"isClosed"`
	OpenTime  string                `json:"openTime,omitempty"`
	CloseTime string                `json:"closeTime,omitempty"`
	Breaks    []models.BreakRequest `json:"breaks,omitempty"`
}

func (r *SetOpeningHoursRequest) ToServiceRequest(weekday time.Weekday) *models.SetOpeningHoursRequest {
	return &models.SetOpeningHoursRequest{
		Weekday:   weekday,
		IsClosed:  r.IsClosed,
		OpenTime:  r.OpenTime,
		CloseTime: r.CloseTime,
		Breaks:    r.Breaks,
	}
}
