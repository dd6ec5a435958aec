package regenerate

import (
	"fmt"

	"github.com/m04kA/SMC-PhysioBooking/internal/usecase/regenerate_horizon"
	"github.com/m04kA/SMC-PhysioBooking/pkg/types"
)

// RegenerateRequest тело запроса, пустая startDate означает "завтра"
type RegenerateRequest struct {
	StartDate string `json:"startDate,omitempty"`
	Days      int    `json:"days"`
}

// RegenerateResponse итог перегенерации
type RegenerateResponse struct {
	StartDate    string   `json:"startDate"`
	Days         int      `json:"days"`
	Created      int      `json:"created"`
	DeletedEmpty int      `json:"deletedEmpty"`
	Kept         int      `json:"kept"`
	Errors       []string `json:"errors"`
}

func (r *RegenerateRequest) ToUseCaseRequest() (*regenerate_horizon.Request, error) {
	req := &regenerate_horizon.Request{Days: r.Days}
	if r.StartDate != "" {
		day, err := types.ParseDate(r.StartDate)
		if err != nil {
			return nil, fmt.Errorf("startDate: %w", err)
		}
		req.StartDay = day
	}
	return req, nil
}

func FromUseCaseResponse(resp *regenerate_horizon.Response) *RegenerateResponse {
	return &RegenerateResponse{
		StartDate:    resp.StartDay.String(),
		Days:         resp.Days,
		Created:      resp.Created,
		DeletedEmpty: resp.DeletedEmpty,
		Kept:         resp.Kept,
		Errors:       resp.Errors,
	}
}
