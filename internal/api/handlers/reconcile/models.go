package reconcile

import (
	"fmt"

	"github.com/m04kA/SMC-PhysioBooking/internal/usecase/reconcile_counts"
	"github.com/m04kA/SMC-PhysioBooking/pkg/types"
)

// ReconcileRequest тело запроса, пустая fromDate означает "сегодня"
type ReconcileRequest struct {
	FromDate string `json:"fromDate,omitempty"`
}

// ReconcileResponse итог сверки
type ReconcileResponse struct {
	FromDate  string   `json:"fromDate"`
	Checked   int      `json:"checked"`
	Corrected int      `json:"corrected"`
	Oversold  int      `json:"oversold"`
	Errors    []string `json:"errors"`
}

func (r *ReconcileRequest) ToUseCaseRequest() (*reconcile_counts.Request, error) {
	req := &reconcile_counts.Request{}
	if r.FromDate != "" {
		day, err := types.ParseDate(r.FromDate)
		if err != nil {
			return nil, fmt.Errorf("fromDate: %w", err)
		}
		req.FromDay = day
	}
	return req, nil
}

func FromUseCaseResponse(resp *reconcile_counts.Response) *ReconcileResponse {
	return &ReconcileResponse{
		FromDate:  resp.FromDay.String(),
		Checked:   resp.Checked,
		Corrected: resp.Corrected,
		Oversold:  resp.Oversold,
		Errors:    resp.Errors,
	}
}
