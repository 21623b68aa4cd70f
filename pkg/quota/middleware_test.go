package quota_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/quotakit/pkg/quota"
)

func okHandler() (http.Handler, *bool) {
	called := new(bool)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	}), called
}

func doRequest(t *testing.T, mw func(http.Handler) http.Handler, tenantID *uuid.UUID) (*httptest.ResponseRecorder, *bool) {
	t.Helper()

	next, called := okHandler()
	req := httptest.NewRequest(http.MethodPost, "/chat/messages", nil)
	if tenantID != nil {
		req = req.WithContext(quota.WithTenantID(req.Context(), *tenantID))
	}

	rec := httptest.NewRecorder()
	mw(next).ServeHTTP(rec, req)
	return rec, called
}

func TestRequireQuota_Permits(t *testing.T) {
	t.Parallel()

	tenantID := uuid.New()
	svc := newTestService(t, "free", nil, nil)

	rec, called := doRequest(t, quota.RequireQuota(svc, quota.FeatureAIChatMessage), &tenantID)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, *called)
}

func TestRequireQuota_Denies(t *testing.T) {
	t.Parallel()

	tenantID := uuid.New()
	svc := newTestService(t, "free", nil, nil)
	recordN(t, svc, tenantID, quota.FeatureAIChatMessage, 20)

	rec, called := doRequest(t, quota.RequireQuota(svc, quota.FeatureAIChatMessage), &tenantID)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.False(t, *called)

	assert.Equal(t, "20", rec.Header().Get("X-Quota-Limit"))
	assert.Equal(t, "20", rec.Header().Get("X-Quota-Used"))
	assert.Equal(t, "1 day", rec.Header().Get("X-Quota-Window"))

	var payload struct {
		Error   string `json:"error"`
		Feature string `json:"feature"`
		Limit   int64  `json:"limit"`
		Window  string `json:"window"`
		Current int64  `json:"current"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "quota_exceeded", payload.Error)
	assert.Equal(t, "ai_chat_message", payload.Feature)
	assert.Equal(t, int64(20), payload.Limit)
	assert.Equal(t, "1 day", payload.Window)
	assert.Equal(t, int64(20), payload.Current)
}

func TestRequireQuota_MissingTenant(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, "free", nil, nil)
	rec, called := doRequest(t, quota.RequireQuota(svc, quota.FeatureAIChatMessage), nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, *called)
}

func TestRequireQuota_FailsClosedOnStoreError(t *testing.T) {
	t.Parallel()

	tenantID := uuid.New()

	rec, called := doRequest(t, quota.RequireQuota(failingService{}, quota.FeatureAIChatMessage), &tenantID)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.False(t, *called)
}

func TestRequireResource(t *testing.T) {
	t.Parallel()

	tenantID := uuid.New()

	counters := quota.NewCounterRegistry()
	counters.Register(quota.FeatureActiveWizard, staticCounter(3))
	svc := newTestService(t, "free", nil, counters)

	rec, called := doRequest(t, quota.RequireResource(svc, quota.FeatureActiveWizard), &tenantID)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.False(t, *called)
	assert.Equal(t, "static", rec.Header().Get("X-Quota-Window"))

	counters.Register(quota.FeatureActiveWizard, staticCounter(1))
	rec, called = doRequest(t, quota.RequireResource(svc, quota.FeatureActiveWizard), &tenantID)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, *called)
}

// failingService returns a hard error from every enforcement call.
type failingService struct{}

func (failingService) EnforceEventRate(ctx context.Context, tenantID uuid.UUID, feature quota.Feature) error {
	return assert.AnError
}

func (failingService) EnforceResourceLimit(ctx context.Context, tenantID uuid.UUID, feature quota.Feature) error {
	return assert.AnError
}

func (failingService) RecordUsage(ctx context.Context, tenantID, userID uuid.UUID, feature quota.Feature, opts ...quota.RecordOption) {
}

func (failingService) Usage(ctx context.Context, tenantID uuid.UUID, feature quota.Feature) ([]quota.WindowUsage, error) {
	return nil, assert.AnError
}
