// Package pg wires the quota engine's PostgreSQL layer: a pgx/v5 connection
// pool with startup retry, goose schema migrations, a health check, and
// error classification helpers used by the quotapg store.
//
// Config is populated from environment variables via github.com/caarlos0/env
// (see the field tags for names and defaults), Connect opens the pool with
// exponential back-off, and Migrate brings the schema up to date before the
// service starts answering enforcement calls.
//
//	var cfg pg.Config
//	if err := config.Load(&cfg); err != nil {
//	    panic(err)
//	}
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//	    panic(err)
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, cfg, slog.Default()); err != nil {
//	    panic(err)
//	}
//
// IsNotFoundError and IsDuplicateKeyError classify pgx errors so the store
// can map "tenant missing" and "idempotency key already recorded" without
// inspecting SQLSTATE codes inline.
package pg
