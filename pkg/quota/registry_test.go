package quota_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/quotakit/pkg/quota"
)

func TestCounterRegistry_Register(t *testing.T) {
	t.Parallel()

	registry := quota.NewCounterRegistry()
	registry.Register(quota.FeatureActiveWizard, staticCounter(1))

	counter, ok := registry[quota.FeatureActiveWizard]
	require.True(t, ok)

	count, err := counter(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// Replacing is allowed; startup wiring decides the final mapping.
	registry.Register(quota.FeatureActiveWizard, staticCounter(5))
	count, err = registry[quota.FeatureActiveWizard](context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, int64(5), count)
}

func TestCounterRegistry_NilPanics(t *testing.T) {
	t.Parallel()

	registry := quota.NewCounterRegistry()
	assert.Panics(t, func() {
		registry.Register(quota.FeatureActiveWizard, nil)
	})
}
