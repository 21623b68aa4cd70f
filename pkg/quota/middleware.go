package quota

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
)

// quotaDeniedPayload is the JSON body rendered when a request is denied.
type quotaDeniedPayload struct {
	Error   string  `json:"error"`
	Feature Feature `json:"feature"`
	Limit   int64   `json:"limit"`
	Window  string  `json:"window"`
	Current int64   `json:"current"`
}

// RequireQuota creates HTTP middleware that runs the event-rate check for
// the given feature before the handler. The tenant ID must already be in the
// request context (see WithTenantID).
//
// Denials render 429 with the full limit context; store and configuration
// failures render 500 — the request fails closed rather than treating an
// outage as permission. Requests without a tenant in context fail with 401.
func RequireQuota(svc Service, feature Feature) func(http.Handler) http.Handler {
	return enforceMiddleware(feature, func(r *http.Request) error {
		tenantID, ok := TenantIDFromContext(r.Context())
		if !ok {
			return errMissingTenant
		}
		return svc.EnforceEventRate(r.Context(), tenantID, feature)
	})
}

// RequireResource is the static-limit variant of RequireQuota, for endpoints
// that create or activate resource instances.
func RequireResource(svc Service, feature Feature) func(http.Handler) http.Handler {
	return enforceMiddleware(feature, func(r *http.Request) error {
		tenantID, ok := TenantIDFromContext(r.Context())
		if !ok {
			return errMissingTenant
		}
		return svc.EnforceResourceLimit(r.Context(), tenantID, feature)
	})
}

var errMissingTenant = errors.New("quota.errors.tenant_not_in_context")

func enforceMiddleware(feature Feature, check func(r *http.Request) error) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			err := check(r)
			if err == nil {
				next.ServeHTTP(w, r)
				return
			}

			if errors.Is(err, errMissingTenant) {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			var exceeded *QuotaExceededError
			if errors.As(err, &exceeded) {
				w.Header().Set("X-Quota-Limit", strconv.FormatInt(exceeded.Limit, 10))
				w.Header().Set("X-Quota-Used", strconv.FormatInt(exceeded.CurrentCount, 10))
				w.Header().Set("X-Quota-Window", exceeded.Window)
				w.Header().Set("Content-Type", "application/json; charset=utf-8")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(quotaDeniedPayload{
					Error:   "quota_exceeded",
					Feature: exceeded.Feature,
					Limit:   exceeded.Limit,
					Window:  exceeded.Window,
					Current: exceeded.CurrentCount,
				})
				return
			}

			// Store or configuration failure: fail closed.
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		})
	}
}
