// Package quotapg provides the PostgreSQL persistence layer for the quota
// engine: a Store implementing quota.LimitSource and quota.UsageStore over
// pgx, plus SQL-backed resource counters and goose migrations.
//
// Wiring:
//
//	pool, err := pg.Connect(ctx, pgCfg)
//	if err != nil { ... }
//	if err := pg.Migrate(ctx, pool, pgCfg, log); err != nil { ... }
//
//	store := quotapg.NewStore(pool)
//	counters := quota.NewCounterRegistry()
//	quotapg.RegisterCounters(counters, pool)
//
//	svc := quota.NewService(store, store, counters, quota.WithLogger(log))
//
// The enforcement check and the later usage record are separate statements
// without a shared transaction: concurrent requests can overshoot a limit by
// at most the concurrency degree minus one. Wrap both in a serializable
// transaction or take a per-(tenant, feature) advisory lock if strict
// enforcement is ever required.
package quotapg
