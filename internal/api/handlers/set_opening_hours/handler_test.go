package set_opening_hours

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

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

func serve(trigger *countingTrigger, path, body string) *httptest.ResponseRecorder {
	store := memory.NewStore(memory.Options{})
	svc := rules.NewService(store.Rules(), store.TxManager(), logger.NewNop())

	r := mux.NewRouter()
	r.HandleFunc("/admin/opening-hours/{weekday}", NewHandler(svc, trigger, logger.NewNop()).Handle).Methods(http.MethodPut)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPut, path, strings.NewReader(body)))
	return w
}

func TestHandle_SavesAndTriggersRegeneration(t *testing.T) {
	trigger := &countingTrigger{}
	w := serve(trigger, "/admin/opening-hours/1",
		`{"openTime":"09:00","closeTime":"18:00","breaks":[{"startTime":"13:00","endTime":"14:00"}]}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, trigger.calls)

	var body models.OpeningHoursResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "09:00", body.OpenTime)
	assert.Len(t, body.Breaks, 1)
}

func TestHandle_Rejections(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		body       string
		wantStatus int
	}{
		{"weekday out of range", "/admin/opening-hours/7", `{"isClosed":true}`, http.StatusBadRequest},
		{"unknown field", "/admin/opening-hours/1", `{"open":"09:00"}`, http.StatusBadRequest},
		{"malformed time", "/admin/opening-hours/1", `{"openTime":"9am","closeTime":"18:00"}`, http.StatusBadRequest},
		{"open after close", "/admin/opening-hours/1", `{"openTime":"18:00","closeTime":"09:00"}`, http.StatusUnprocessableEntity},
		{
			"break outside hours", "/admin/opening-hours/1",
			`{"openTime":"09:00","closeTime":"18:00","breaks":[{"startTime":"17:30","endTime":"18:30"}]}`,
			http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trigger := &countingTrigger{}
			w := serve(trigger, tt.path, tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Zero(t, trigger.calls)
		})
	}
}
