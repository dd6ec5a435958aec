package set_analysis_schedule_active

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-PhysioBooking/internal/infra/storage/memory"
	"github.com/m04kA/SMC-PhysioBooking/internal/service/rules"
	"github.com/m04kA/SMC-PhysioBooking/internal/service/rules/models"
	"github.com/m04kA/SMC-PhysioBooking/pkg/logger"
)

type countingTrigger struct {
	calls int
}

func (c *countingTrigger) Trigger(ctx context.Context) bool {
	c.calls++
	return true
}

func TestHandle(t *testing.T) {
	store := memory.NewStore(memory.Options{})
	svc := rules.NewService(store.Rules(), store.TxManager(), logger.NewNop())
	ctx := context.Background()

	first, err := svc.AddAnalysisSchedule(ctx, &models.CreateAnalysisScheduleRequest{
		Weekday: time.Wednesday, StartTime: "08:00", EndTime: "10:00",
	})
	require.NoError(t, err)

	trigger := &countingTrigger{}
	r := mux.NewRouter()
	r.HandleFunc("/admin/analysis-schedules/{scheduleId}", NewHandler(svc, trigger, logger.NewNop()).Handle).
		Methods(http.MethodPatch)

	patch := func(path, body string) int {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPatch, path, strings.NewReader(body)))
		return w.Code
	}
	path := "/admin/analysis-schedules/" + strconv.FormatInt(first.ID, 10)

	assert.Equal(t, http.StatusOK, patch(path, `{"isActive":false}`))

	_, err = svc.AddAnalysisSchedule(ctx, &models.CreateAnalysisScheduleRequest{
		Weekday: time.Wednesday, StartTime: "09:00", EndTime: "11:00",
	})
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnprocessableEntity, patch(path, `{"isActive":true}`))
	assert.Equal(t, http.StatusBadRequest, patch(path, `{}`))
	assert.Equal(t, http.StatusNotFound, patch("/admin/analysis-schedules/999", `{"isActive":true}`))
	assert.Equal(t, 1, trigger.calls)
}
