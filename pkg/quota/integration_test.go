package quota_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/quotakit/pkg/quota"
)

// End-to-end workflows against the in-memory stores.

func TestIntegration_FreePlanChatScenario(t *testing.T) {
	t.Parallel()

	// Free plan: 20 AI chat messages per day.
	tenantID := uuid.New()
	userID := uuid.New()
	store := quota.NewMemoryUsageStore()
	svc := newTestService(t, "free", store, nil)
	ctx := context.Background()

	// 19 recorded events: the next check permits.
	for i := 0; i < 19; i++ {
		require.NoError(t, svc.EnforceEventRate(ctx, tenantID, quota.FeatureAIChatMessage))
		svc.RecordUsage(ctx, tenantID, userID, quota.FeatureAIChatMessage)
	}
	require.NoError(t, svc.EnforceEventRate(ctx, tenantID, quota.FeatureAIChatMessage))

	// The 20th message lands; the 21st is denied with full context.
	svc.RecordUsage(ctx, tenantID, userID, quota.FeatureAIChatMessage)

	err := svc.EnforceEventRate(ctx, tenantID, quota.FeatureAIChatMessage)
	var exceeded *quota.QuotaExceededError
	require.ErrorAs(t, err, &exceeded)
	assert.Equal(t, int64(20), exceeded.Limit)
	assert.Equal(t, int64(20), exceeded.CurrentCount)
	assert.Equal(t, "1 day", exceeded.Window)

	// Another tenant on the same plan is unaffected.
	require.NoError(t, svc.EnforceEventRate(ctx, uuid.New(), quota.FeatureAIChatMessage))
}

func TestIntegration_ResourceAndEventIndependence(t *testing.T) {
	t.Parallel()

	// Simulated live-resource table: create/delete moves the count both ways.
	var liveWizards atomic.Int64

	counters := quota.NewCounterRegistry()
	counters.Register(quota.FeatureActiveWizard, func(ctx context.Context, tenantID uuid.UUID) (int64, error) {
		return liveWizards.Load(), nil
	})

	tenantID := uuid.New()
	userID := uuid.New()
	store := quota.NewMemoryUsageStore()
	svc := newTestService(t, "free", store, counters)
	ctx := context.Background()

	// Fill the resource limit (3 active wizards on free).
	for i := 0; i < 3; i++ {
		require.NoError(t, svc.EnforceResourceLimit(ctx, tenantID, quota.FeatureActiveWizard))
		liveWizards.Add(1)
	}
	require.ErrorIs(t, svc.EnforceResourceLimit(ctx, tenantID, quota.FeatureActiveWizard), quota.ErrQuotaExceeded)

	// Deleting a wizard frees a slot immediately, no historical residue.
	liveWizards.Add(-1)
	require.NoError(t, svc.EnforceResourceLimit(ctx, tenantID, quota.FeatureActiveWizard))

	// The event-rate count is untouched by resource churn: record some chat
	// events, delete wizards, the windowed count stays where it was.
	for i := 0; i < 5; i++ {
		svc.RecordUsage(ctx, tenantID, userID, quota.FeatureAIChatMessage)
	}
	liveWizards.Store(0)

	count, err := store.CountEventsSince(ctx, tenantID, quota.FeatureAIChatMessage, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(5), count)
}

func TestIntegration_IdempotentRetry(t *testing.T) {
	t.Parallel()

	tenantID := uuid.New()
	userID := uuid.New()
	store := quota.NewMemoryUsageStore()
	svc := newTestService(t, "free", store, nil)
	ctx := context.Background()

	// A client retries the same request three times; one row lands.
	for i := 0; i < 3; i++ {
		svc.RecordUsage(ctx, tenantID, userID, quota.FeatureAIChatMessage,
			quota.WithIdempotencyKey("req-abc"))
	}
	assert.Equal(t, 1, store.Len())

	count, err := store.CountEventsSince(ctx, tenantID, quota.FeatureAIChatMessage, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestIntegration_ConcurrentChecks(t *testing.T) {
	t.Parallel()

	// The check and the record are not one transaction: concurrent
	// requests may overshoot, but the engine itself must stay race-free.
	tenantID := uuid.New()
	userID := uuid.New()
	store := quota.NewMemoryUsageStore()
	svc := newTestService(t, "free", store, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	var permitted atomic.Int64
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := svc.EnforceEventRate(ctx, tenantID, quota.FeatureAIChatMessage); err == nil {
				permitted.Add(1)
				svc.RecordUsage(ctx, tenantID, userID, quota.FeatureAIChatMessage)
			}
		}()
	}
	wg.Wait()

	// At least the hard limit gets through; overshoot is bounded by the
	// number of in-flight requests.
	assert.GreaterOrEqual(t, permitted.Load(), int64(20))
	assert.LessOrEqual(t, permitted.Load(), int64(40))

	// Once things settle, the tenant is firmly over the limit.
	require.ErrorIs(t, svc.EnforceEventRate(ctx, tenantID, quota.FeatureAIChatMessage), quota.ErrQuotaExceeded)
}

func TestIntegration_YAMLSeededPlans(t *testing.T) {
	t.Parallel()

	plans, err := quota.ParsePlanLimits([]byte(limitsYAML))
	require.NoError(t, err)

	source, err := quota.NewMemoryLimitSource(plans, fixedPlanResolver("pro"))
	require.NoError(t, err)

	tenantID := uuid.New()
	userID := uuid.New()
	store := quota.NewMemoryUsageStore()
	svc := quota.NewService(source, store, nil)
	ctx := context.Background()

	for i := 0; i < 50; i++ {
		require.NoError(t, svc.EnforceEventRate(ctx, tenantID, quota.FeatureImageGeneration))
		svc.RecordUsage(ctx, tenantID, userID, quota.FeatureImageGeneration)
	}

	err = svc.EnforceEventRate(ctx, tenantID, quota.FeatureImageGeneration)
	var exceeded *quota.QuotaExceededError
	require.ErrorAs(t, err, &exceeded)
	assert.Equal(t, "12 hours", exceeded.Window)
	assert.Equal(t, int64(50), exceeded.Limit)
}
