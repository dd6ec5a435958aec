package get_booking

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-PhysioBooking/internal/api/middleware"
	"github.com/m04kA/SMC-PhysioBooking/internal/domain"
	"github.com/m04kA/SMC-PhysioBooking/internal/service/bookings"
	"github.com/m04kA/SMC-PhysioBooking/internal/service/bookings/models"
	"github.com/m04kA/SMC-PhysioBooking/pkg/logger"
)

type fakeService struct {
	viewer *domain.Subject
	called bool
	err    error
}

func (f *fakeService) GetByID(ctx context.Context, id int64, viewer *domain.Subject) (*models.BookingResponse, error) {
	f.called = true
	f.viewer = viewer
	if f.err != nil {
		return nil, f.err
	}
	return &models.BookingResponse{ID: id, Status: "confirmed"}, nil
}

func serve(svc *fakeService, path string, headers map[string]string) *httptest.ResponseRecorder {
	r := mux.NewRouter()
	r.Use(middleware.OptionalAuth)
	r.HandleFunc("/bookings/{bookingId}", NewHandler(svc, logger.NewNop()).Handle).Methods(http.MethodGet)

	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandle_SubjectViewer(t *testing.T) {
	svc := &fakeService{}
	w := serve(svc, "/bookings/5", map[string]string{
		middleware.HeaderTenantUserID: "3",
		middleware.HeaderTenantID:     "7",
	})

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, svc.viewer)
	assert.True(t, svc.viewer.IsTenantUser())

	var body models.BookingResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, int64(5), body.ID)
}

func TestHandle_AdminSeesAnyBooking(t *testing.T) {
	svc := &fakeService{}
	w := serve(svc, "/bookings/5", map[string]string{middleware.HeaderAdminID: "1"})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, svc.viewer)
}

func TestHandle_Errors(t *testing.T) {
	consumer := map[string]string{middleware.HeaderConsumerID: "4"}
	tests := []struct {
		name       string
		path       string
		headers    map[string]string
		err        error
		wantStatus int
	}{
		{"bad id", "/bookings/x", consumer, nil, http.StatusBadRequest},
		{"no subject", "/bookings/5", nil, nil, http.StatusUnauthorized},
		{"not found", "/bookings/5", consumer, bookings.ErrBookingNotFound, http.StatusNotFound},
		{"foreign booking", "/bookings/5", consumer, bookings.ErrAccessDenied, http.StatusForbidden},
		{"storage", "/bookings/5", consumer, bookings.ErrInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(&fakeService{err: tt.err}, tt.path, tt.headers)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}
