package metering

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/quotakit/pkg/quota"
)

// RouterOptions configures the metering module.
type RouterOptions struct {
	// Service is the quota engine. Required.
	Service quota.Service
	// Logger defaults to slog.Default.
	Logger *slog.Logger
}

// Router exposes the metering read surface. The tenant ID must be placed in
// the request context by an upstream middleware (see quota.WithTenantID).
//
// Example:
//
//	r := chi.NewRouter()
//	r.Use(tenantMiddleware)
//	r.Mount("/metering", metering.Router(metering.RouterOptions{Service: svc}))
//
//	// Guarding a protected action elsewhere:
//	r.With(quota.RequireQuota(svc, quota.FeatureAIChatMessage)).
//	    Post("/chat/messages", postChatMessage)
func Router(opts RouterOptions) chi.Router {
	if opts.Service == nil {
		panic("metering.Router: Service is required")
	}

	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	h := &handler{svc: opts.Service, log: log}

	r := chi.NewRouter()
	r.Get("/usage/{feature}", h.getUsage)
	return r
}
