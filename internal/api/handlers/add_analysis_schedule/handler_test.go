package add_analysis_schedule

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-PhysioBooking/internal/infra/storage/memory"
	"github.com/m04kA/SMC-PhysioBooking/internal/service/rules"
	"github.com/m04kA/SMC-PhysioBooking/pkg/logger"
)

type countingTrigger struct {
	calls int
}

func (c *countingTrigger) Trigger(ctx context.Context) bool {
	c.calls++
	return true
}

func TestHandle_RejectsOverlap(t *testing.T) {
	store := memory.NewStore(memory.Options{})
	trigger := &countingTrigger{}
	h := NewHandler(rules.NewService(store.Rules(), store.TxManager(), logger.NewNop()), trigger, logger.NewNop())

	post := func(body string) int {
		w := httptest.NewRecorder()
		h.Handle(w, httptest.NewRequest(http.MethodPost, "/admin/analysis-schedules", strings.NewReader(body)))
		return w.Code
	}

	require.Equal(t, http.StatusCreated, post(`{"weekday":2,"startTime":"08:00","endTime":"10:00"}`))
	assert.Equal(t, http.StatusUnprocessableEntity, post(`{"weekday":2,"startTime":"09:00","endTime":"11:00"}`))
	assert.Equal(t, http.StatusCreated, post(`{"weekday":2,"startTime":"10:00","endTime":"11:00"}`))
	assert.Equal(t, http.StatusUnprocessableEntity, post(`{"weekday":2,"startTime":"11:00","endTime":"10:00"}`))
	assert.Equal(t, http.StatusBadRequest, post(`{"weekday":2,"startTime":"late","endTime":"11:00"}`))
	assert.Equal(t, 2, trigger.calls)
}
