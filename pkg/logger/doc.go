// Package logger builds configured slog loggers for the quota engine: JSON
// or text handlers, static attributes, and context extractors that attach
// request-scoped values (tenant ID, request ID) to every record.
//
//	log := logger.New(
//	    logger.WithProduction("quotakit"),
//	    logger.WithContextExtractors(func(ctx context.Context) (slog.Attr, bool) {
//	        if id, ok := quota.TenantIDFromContext(ctx); ok {
//	            return slog.String("tenant_id", id.String()), true
//	        }
//	        return slog.Attr{}, false
//	    }),
//	)
//
//	svc := quota.NewService(source, store, counters, quota.WithLogger(log))
//
// The fail-open warnings and swallowed recording failures the engine emits
// are only useful if they reach an aggregator; wire this logger in rather
// than the bare default.
package logger
