package reconcile

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-PhysioBooking/internal/domain"
	"github.com/m04kA/SMC-PhysioBooking/internal/usecase/reconcile_counts"
	"github.com/m04kA/SMC-PhysioBooking/pkg/logger"
	"github.com/m04kA/SMC-PhysioBooking/pkg/types"
)

type fakeUseCase struct {
	got *reconcile_counts.Request
	err error
}

func (f *fakeUseCase) Execute(ctx context.Context, req *reconcile_counts.Request) (*reconcile_counts.Response, error) {
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	return &reconcile_counts.Response{
		FromDay:   types.MustDate("2026-10-14"),
		Checked:   12,
		Corrected: 2,
		Errors:    []string{},
	}, nil
}

func post(uc *fakeUseCase, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/admin/reconcile", strings.NewReader(body))
	NewHandler(uc, logger.NewNop()).Handle(w, req)
	return w
}

func TestHandle_Success(t *testing.T) {
	uc := &fakeUseCase{}
	w := post(uc, `{"fromDate":"2026-10-14"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, types.MustDate("2026-10-14"), uc.got.FromDay)
	assert.Contains(t, w.Body.String(), `"checked":12`)
	assert.Contains(t, w.Body.String(), `"corrected":2`)
}

func TestHandle_EmptyFromDate(t *testing.T) {
	uc := &fakeUseCase{}
	w := post(uc, `{}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, uc.got.FromDay.IsZero())
}

func TestHandle_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
	}{
		{"bad json", `{`, nil, http.StatusBadRequest},
		{"unknown field", `{"days":3}`, nil, http.StatusBadRequest},
		{"bad date", `{"fromDate":"14.10.2026"}`, nil, http.StatusBadRequest},
		{"store unavailable", `{}`, fmt.Errorf("%w: boom", domain.ErrStoreUnavailable), http.StatusServiceUnavailable},
		{"unexpected", `{}`, fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := post(&fakeUseCase{err: tt.err}, tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}
