package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-PhysioBooking/internal/api/middleware"
	"github.com/m04kA/SMC-PhysioBooking/internal/config"
	"github.com/m04kA/SMC-PhysioBooking/pkg/logger"
)

func newMemoryApp(t *testing.T) *App {
	t.Helper()
	cfg := &config.Config{
		Database: config.DatabaseConfig{Driver: config.DriverMemory},
		Scheduling: config.SchedulingConfig{
			Timezone:        "UTC",
			SlotStepMinutes: 60,
			NormalCapacity:  2,
			HorizonDays:     2,
		},
		Seed: config.SeedConfig{Tenants: []config.TenantSeed{{ID: 7, Name: "Acme", DailyLimit: 1}}},
	}
	require.NoError(t, cfg.Validate())

	a, err := New(context.Background(), cfg, logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return a
}

func do(t *testing.T, r *mux.Router, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestNew_RejectsInvalidSlotParams(t *testing.T) {
	cfg := &config.Config{
		Database: config.DatabaseConfig{Driver: config.DriverMemory},
		Scheduling: config.SchedulingConfig{
			Timezone:        "UTC",
			SlotStepMinutes: 24*60 + 1,
			NormalCapacity:  1,
			HorizonDays:     1,
		},
	}
	require.NoError(t, cfg.Validate())

	_, err := New(context.Background(), cfg, logger.NewNop())
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestRouter_BookingFlow(t *testing.T) {
	a := newMemoryApp(t)
	r := a.Router()

	admin := map[string]string{middleware.HeaderAdminID: "1"}
	alice := map[string]string{middleware.HeaderTenantUserID: "3", middleware.HeaderTenantID: "7"}
	bob := map[string]string{middleware.HeaderTenantUserID: "4", middleware.HeaderTenantID: "7"}

	// Правила на каждый день недели, чтобы завтрашний день был открыт
	for weekday := 0; weekday < 7; weekday++ {
		w := do(t, r, http.MethodPut, fmt.Sprintf("/api/v1/admin/opening-hours/%d", weekday),
			`{"openTime":"09:00","closeTime":"12:00"}`, admin)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	assert.Equal(t, http.StatusForbidden,
		do(t, r, http.MethodPost, "/api/v1/admin/regenerate", `{"days":1}`, nil).Code)

	w := do(t, r, http.MethodPost, "/api/v1/admin/regenerate", `{"days":1}`, admin)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	tomorrow := a.Calendar.Tomorrow(time.Now()).String()
	w = do(t, r, http.MethodGet, "/api/v1/slots?date="+tomorrow, "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var slots struct {
		Slots []struct {
			ID             int64  `json:"id"`
			StartTime      string `json:"startTime"`
			AvailableSpots int    `json:"availableSpots"`
		} `json:"slots"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&slots))
	require.Len(t, slots.Slots, 3)
	assert.Equal(t, "09:00", slots.Slots[0].StartTime)
	assert.Equal(t, 2, slots.Slots[0].AvailableSpots)

	first, second := slots.Slots[0].ID, slots.Slots[1].ID

	assert.Equal(t, http.StatusUnauthorized,
		do(t, r, http.MethodPost, "/api/v1/bookings", fmt.Sprintf(`{"timeslotId":%d}`, first), nil).Code)

	w = do(t, r, http.MethodPost, "/api/v1/bookings", fmt.Sprintf(`{"timeslotId":%d}`, first), alice)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var booking struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&booking))

	// Дневная квота тенанта 1
	w = do(t, r, http.MethodPost, "/api/v1/bookings", fmt.Sprintf(`{"timeslotId":%d}`, second), bob)
	assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())

	w = do(t, r, http.MethodGet, "/api/v1/me/bookings", "", alice)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"confirmed"`)

	assert.Equal(t, http.StatusForbidden,
		do(t, r, http.MethodGet, fmt.Sprintf("/api/v1/bookings/%d", booking.ID), "", bob).Code)

	w = do(t, r, http.MethodPatch, fmt.Sprintf("/api/v1/bookings/%d/cancel", booking.ID), "", alice)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// После отмены квота снова доступна
	w = do(t, r, http.MethodPost, "/api/v1/bookings", fmt.Sprintf(`{"timeslotId":%d}`, second), bob)
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do(t, r, http.MethodPost, "/api/v1/admin/reconcile", `{}`, admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"corrected":0`)
}
