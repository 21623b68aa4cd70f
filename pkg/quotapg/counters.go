package quotapg

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/quotakit/pkg/quota"
)

// Counter adapts a tenant-scoped count query into a quota.CounterFunc. The
// query must take the tenant ID as $1 and return a single bigint.
func Counter(pool *pgxpool.Pool, query string) quota.CounterFunc {
	return func(ctx context.Context, tenantID uuid.UUID) (int64, error) {
		var count int64
		err := pool.QueryRow(ctx, query, tenantID).Scan(&count)
		return count, err
	}
}

const activeWizardCountQuery = `
SELECT count(*)
FROM wizards
WHERE tenant_id = $1
  AND is_active`

// ActiveWizardCounter counts the tenant's active wizards, the counting
// strategy for quota.FeatureActiveWizard.
func ActiveWizardCounter(pool *pgxpool.Pool) quota.CounterFunc {
	return Counter(pool, activeWizardCountQuery)
}

// RegisterCounters wires every SQL-backed resource counter into a registry.
// Register new resource features here when the schema gains them.
func RegisterCounters(registry quota.CounterRegistry, pool *pgxpool.Pool) {
	registry.Register(quota.FeatureActiveWizard, ActiveWizardCounter(pool))
}
