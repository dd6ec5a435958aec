package get_subject_bookings

import (
	"context"
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
	got *models.GetSubjectBookingsRequest
	err error
}

func (f *fakeService) GetSubjectBookings(ctx context.Context, req *models.GetSubjectBookingsRequest) (*models.BookingListResponse, error) {
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	return &models.BookingListResponse{Bookings: []models.BookingResponse{}}, nil
}

func serve(svc *fakeService, path string, headers map[string]string) *httptest.ResponseRecorder {
	r := mux.NewRouter()
	r.Use(middleware.OptionalAuth)
	r.HandleFunc("/me/bookings", NewHandler(svc, logger.NewNop()).Handle).Methods(http.MethodGet)

	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandle_ConsumerWithStatus(t *testing.T) {
	svc := &fakeService{}
	w := serve(svc, "/me/bookings?status=confirmed", map[string]string{middleware.HeaderConsumerID: "42"})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.SubjectConsumer, svc.got.Subject.Kind())
	assert.Equal(t, int64(42), svc.got.Subject.ID())
	require.NotNil(t, svc.got.Status)
	assert.Equal(t, "confirmed", *svc.got.Status)
}

func TestHandle_NoStatusFilter(t *testing.T) {
	svc := &fakeService{}
	w := serve(svc, "/me/bookings", map[string]string{
		middleware.HeaderTenantUserID: "3",
		middleware.HeaderTenantID:     "7",
	})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, svc.got.Status)
	tenantID, ok := svc.got.Subject.TenantID()
	require.True(t, ok)
	assert.Equal(t, int64(7), tenantID)
}

func TestHandle_Errors(t *testing.T) {
	consumer := map[string]string{middleware.HeaderConsumerID: "42"}
	tests := []struct {
		name       string
		headers    map[string]string
		err        error
		wantStatus int
	}{
		{"no subject", nil, nil, http.StatusUnauthorized},
		{"invalid status", consumer, bookings.ErrInvalidInput, http.StatusBadRequest},
		{"storage", consumer, bookings.ErrInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(&fakeService{err: tt.err}, "/me/bookings?status=unknown", tt.headers)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}
