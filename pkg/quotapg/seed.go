package quotapg

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/quotakit/pkg/quota"
)

const upsertPlanQuery = `
INSERT INTO plans (code, name)
VALUES ($1, $2)
ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name
RETURNING id`

const upsertPlanLimitQuery = `
INSERT INTO plan_limits (plan_id, feature, time_window_seconds, hard_limit)
VALUES ($1, $2, $3, $4)
ON CONFLICT (plan_id, feature, time_window_seconds)
DO UPDATE SET hard_limit = EXCLUDED.hard_limit`

// SeedPlanLimits upserts plans and their limit rows, typically from a YAML
// definition loaded with quota.LoadPlanLimits. Runs in one transaction so a
// deployment never observes a half-seeded plan.
func SeedPlanLimits(ctx context.Context, pool *pgxpool.Pool, plans map[string][]quota.PlanLimit) error {
	return pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		for code, limits := range plans {
			var planID string
			if err := tx.QueryRow(ctx, upsertPlanQuery, code, code).Scan(&planID); err != nil {
				return fmt.Errorf("seed plan %s: %w", code, err)
			}

			for _, limit := range limits {
				_, err := tx.Exec(ctx, upsertPlanLimitQuery,
					planID, string(limit.Feature), int64(limit.Window.Seconds()), limit.HardLimit)
				if err != nil {
					return fmt.Errorf("seed limit %s/%s: %w", code, limit.Feature, err)
				}
			}
		}
		return nil
	})
}
