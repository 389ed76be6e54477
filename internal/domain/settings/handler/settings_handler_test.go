package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/family-ledger/internal/domain/billing"
	"github.com/FACorreiaa/family-ledger/internal/domain/common"
	"github.com/FACorreiaa/family-ledger/internal/domain/settings"
	"github.com/FACorreiaa/family-ledger/pkg/interceptors"
)

type fakeService struct {
	cycle billing.Cycle
	err   error
}

func (f *fakeService) Get(ctx context.Context, userID uuid.UUID) (*settings.Settings, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &settings.Settings{Cycle: f.cycle}, nil
}

func (f *fakeService) Update(ctx context.Context, userID uuid.UUID, in settings.UpdateInput) (*settings.Settings, error) {
	if f.err != nil {
		return nil, f.err
	}
	if in.StartDay != nil {
		f.cycle.StartDay = *in.StartDay
	}
	if in.EndDay != nil {
		f.cycle.EndDay = *in.EndDay
	}
	return &settings.Settings{Cycle: f.cycle}, nil
}

type staticToken uuid.UUID

func (s staticToken) ParseToken(string) (uuid.UUID, error) { return uuid.UUID(s), nil }

func serve(svc SettingsService, method, body string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api", interceptors.Auth(staticToken(uuid.New())))
	NewSettingsHandler(svc, slog.New(slog.NewTextHandler(io.Discard, nil))).RegisterRoutes(api)

	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, "/api/settings", rd)
	req.Header.Set("Authorization", "Bearer test")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestSettingsHandler_Get(t *testing.T) {
	rec := serve(&fakeService{cycle: billing.DefaultCycle}, http.MethodGet, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"billingCycleStartDay":1`)
	assert.Contains(t, rec.Body.String(), `"billingCycleEndDay":0`)
}

func TestSettingsHandler_Update(t *testing.T) {
	svc := &fakeService{cycle: billing.DefaultCycle}
	rec := serve(svc, http.MethodPatch, `{"billingCycleStartDay":27,"billingCycleEndDay":26}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, billing.Cycle{StartDay: 27, EndDay: 26}, svc.cycle)
	assert.Contains(t, rec.Body.String(), `"billingCycleStartDay":27`)
}

func TestSettingsHandler_UpdateErrors(t *testing.T) {
	rec := serve(&fakeService{}, http.MethodPatch, `{"billingCycleStartDay":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(&fakeService{err: common.Invalid("billingCycleStartDay", "must be between 1 and 31")}, http.MethodPatch, `{"billingCycleStartDay":40}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "billingCycleStartDay")
}
