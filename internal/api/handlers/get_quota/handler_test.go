package get_quota

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
	"github.com/m04kA/SMC-PhysioBooking/pkg/logger"
	"github.com/m04kA/SMC-PhysioBooking/pkg/types"
)

type fakeService struct {
	err error
}

func (f *fakeService) GetQuotaUsage(ctx context.Context, tenantID int64) (*domain.QuotaUsage, error) {
	if f.err != nil {
		return nil, f.err
	}
	day, _ := types.ParseDate("2026-10-14")
	return &domain.QuotaUsage{TenantID: tenantID, Day: day, Limit: 3, Used: 1}, nil
}

func serve(svc *fakeService, path string, headers map[string]string) *httptest.ResponseRecorder {
	r := mux.NewRouter()
	r.Use(middleware.OptionalAuth)
	r.HandleFunc("/tenants/{tenantId}/quota", NewHandler(svc, logger.NewNop()).Handle).Methods(http.MethodGet)

	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandle_TenantUser(t *testing.T) {
	w := serve(&fakeService{}, "/tenants/7/quota", map[string]string{
		middleware.HeaderTenantUserID: "3",
		middleware.HeaderTenantID:     "7",
	})

	require.Equal(t, http.StatusOK, w.Code)
	var body QuotaUsageResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "2026-10-14", body.Date)
	assert.Equal(t, 3, body.Limit)
	assert.Equal(t, 1, body.Used)
	assert.Equal(t, 2, body.Available)
}

func TestHandle_Errors(t *testing.T) {
	user := map[string]string{middleware.HeaderTenantUserID: "3", middleware.HeaderTenantID: "7"}
	tests := []struct {
		name       string
		path       string
		headers    map[string]string
		err        error
		wantStatus int
	}{
		{"bad id", "/tenants/0/quota", user, nil, http.StatusBadRequest},
		{"no subject", "/tenants/7/quota", nil, nil, http.StatusUnauthorized},
		{"consumer", "/tenants/7/quota", map[string]string{middleware.HeaderConsumerID: "4"}, nil, http.StatusForbidden},
		{"other tenant", "/tenants/8/quota", user, nil, http.StatusForbidden},
		{"unknown tenant", "/tenants/9/quota", map[string]string{middleware.HeaderAdminID: "1"}, domain.ErrTenantNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(&fakeService{err: tt.err}, tt.path, tt.headers)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}
