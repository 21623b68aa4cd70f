package quotapg

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/quotakit/pkg/pg"
	"github.com/dmitrymomot/quotakit/pkg/quota"
)

// Store implements quota.LimitSource and quota.UsageStore over a PostgreSQL
// pool. Every call is a fresh round trip; nothing is cached.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a Store over the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const tenantPlanQuery = `
SELECT plan_id
FROM tenants
WHERE id = $1`

const planLimitsQuery = `
SELECT p.code, pl.feature, pl.time_window_seconds, pl.hard_limit
FROM plan_limits pl
JOIN plans p ON p.id = pl.plan_id
WHERE pl.plan_id = $1
  AND pl.feature = $2
  AND p.is_active
ORDER BY pl.time_window_seconds`

// ResolveLimits joins the tenant's current plan to its limit rows for the
// feature. An inactive plan yields zero rows, which the service treats as
// missing configuration.
func (s *Store) ResolveLimits(ctx context.Context, tenantID uuid.UUID, feature quota.Feature) ([]quota.PlanLimit, error) {
	var planID *uuid.UUID
	if err := s.pool.QueryRow(ctx, tenantPlanQuery, tenantID).Scan(&planID); err != nil {
		if pg.IsNotFoundError(err) {
			return nil, quota.ErrTenantNotFound
		}
		return nil, err
	}
	if planID == nil {
		return nil, quota.ErrNoPlanAssigned
	}

	rows, err := s.pool.Query(ctx, planLimitsQuery, *planID, string(feature))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var limits []quota.PlanLimit
	for rows.Next() {
		var (
			planCode      string
			rowFeature    string
			windowSeconds int64
			hardLimit     int64
		)
		if err := rows.Scan(&planCode, &rowFeature, &windowSeconds, &hardLimit); err != nil {
			return nil, err
		}
		limits = append(limits, quota.PlanLimit{
			PlanCode:  planCode,
			Feature:   quota.Feature(rowFeature),
			Window:    time.Duration(windowSeconds) * time.Second,
			HardLimit: hardLimit,
		})
	}
	return limits, rows.Err()
}

const countEventsQuery = `
SELECT count(*)
FROM usage_events
WHERE tenant_id = $1
  AND feature = $2
  AND occurred_at >= $3`

// CountEventsSince counts usage events in the trailing window.
func (s *Store) CountEventsSince(ctx context.Context, tenantID uuid.UUID, feature quota.Feature, since time.Time) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx, countEventsQuery, tenantID, string(feature), since).Scan(&count)
	return count, err
}

const insertEventQuery = `
INSERT INTO usage_events (id, tenant_id, user_id, feature, occurred_at)
VALUES ($1, $2, $3, $4, $5)`

const insertEventIdempotentQuery = `
INSERT INTO usage_events (id, tenant_id, user_id, feature, occurred_at, idempotency_key)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (idempotency_key) WHERE idempotency_key IS NOT NULL DO NOTHING`

// InsertEvent appends one usage event. A duplicate idempotency key is a
// silent no-op so a retried client request is never double-recorded.
func (s *Store) InsertEvent(ctx context.Context, event quota.UsageEvent) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}

	var err error
	if event.IdempotencyKey == "" {
		_, err = s.pool.Exec(ctx, insertEventQuery,
			event.ID, event.TenantID, event.UserID, string(event.Feature), event.OccurredAt)
	} else {
		_, err = s.pool.Exec(ctx, insertEventIdempotentQuery,
			event.ID, event.TenantID, event.UserID, string(event.Feature), event.OccurredAt, event.IdempotencyKey)
	}

	// The partial unique index already makes a duplicate key a no-op, but a
	// concurrent insert can still surface 23505 before the conflict target
	// is chosen. Treat it the same way.
	if err != nil && pg.IsDuplicateKeyError(err) {
		return nil
	}
	return err
}

var _ quota.Store = (*Store)(nil)
