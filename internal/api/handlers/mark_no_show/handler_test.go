package mark_no_show

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-PhysioBooking/internal/service/bookings"
	"github.com/m04kA/SMC-PhysioBooking/internal/service/bookings/models"
	"github.com/m04kA/SMC-PhysioBooking/pkg/logger"
)

type fakeService struct {
	err error
}

func (f *fakeService) MarkNoShow(ctx context.Context, id int64) (*models.BookingResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.BookingResponse{ID: id, Status: "no_show"}, nil
}

func TestHandle(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		err        error
		wantStatus int
	}{
		{"marked", "/admin/bookings/3/no-show", nil, http.StatusOK},
		{"bad id", "/admin/bookings/0/no-show", nil, http.StatusBadRequest},
		{"not found", "/admin/bookings/3/no-show", bookings.ErrBookingNotFound, http.StatusNotFound},
		{"cancelled booking", "/admin/bookings/3/no-show", bookings.ErrStatusConflict, http.StatusConflict},
		{"storage", "/admin/bookings/3/no-show", bookings.ErrInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := mux.NewRouter()
			r.HandleFunc("/admin/bookings/{bookingId}/no-show", NewHandler(&fakeService{err: tt.err}, logger.NewNop()).Handle).
				Methods(http.MethodPatch)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodPatch, tt.path, nil))
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}
