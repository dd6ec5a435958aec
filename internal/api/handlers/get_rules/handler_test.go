package get_rules

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-PhysioBooking/internal/service/rules/models"
	"github.com/m04kA/SMC-PhysioBooking/pkg/logger"
)

type fakeService struct {
	week *models.WeekResponse
	err  error
}

func (f *fakeService) ListWeek(ctx context.Context) (*models.WeekResponse, error) {
	return f.week, f.err
}

func TestHandle_ReturnsWeek(t *testing.T) {
	svc := &fakeService{week: &models.WeekResponse{Days: []models.WeekdayResponse{{
		Weekday: time.Monday,
		OpeningHours: &models.OpeningHoursResponse{
			Weekday:   time.Monday,
			OpenTime:  "08:00",
			CloseTime: "10:00",
			Breaks:    []models.BreakResponse{},
		},
		AnalysisSchedules: []models.AnalysisScheduleResponse{},
	}}}}

	w := httptest.NewRecorder()
	NewHandler(svc, logger.NewNop()).Handle(w, httptest.NewRequest(http.MethodGet, "/rules", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"openTime":"08:00"`)
	assert.Contains(t, w.Body.String(), `"analysisSchedules":[]`)
}

func TestHandle_StoreError(t *testing.T) {
	w := httptest.NewRecorder()
	NewHandler(&fakeService{err: errors.New("db down")}, logger.NewNop()).
		Handle(w, httptest.NewRequest(http.MethodGet, "/rules", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
