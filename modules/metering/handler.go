package metering

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/quotakit/pkg/quota"
)

// usageResponse is the JSON contract for the usage read endpoint.
type usageResponse struct {
	Feature quota.Feature       `json:"feature"`
	Windows []quota.WindowUsage `json:"windows"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type handler struct {
	svc quota.Service
	log *slog.Logger
}

// getUsage renders current consumption against every limit configured for
// the authenticated tenant and the requested feature. A feature without
// configured limits yields an empty windows list, mirroring the engine's
// fail-open stance.
func (h *handler) getUsage(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := quota.TenantIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing tenant"})
		return
	}

	feature := quota.Feature(chi.URLParam(r, "feature"))
	if !feature.Valid() {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "unknown feature"})
		return
	}

	windows, err := h.svc.Usage(r.Context(), tenantID, feature)
	if err != nil {
		switch {
		case errors.Is(err, quota.ErrTenantNotFound), errors.Is(err, quota.ErrNoPlanAssigned):
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "tenant not found"})
		default:
			h.log.ErrorContext(r.Context(), "failed to read usage",
				"tenant_id", tenantID, "feature", string(feature), "error", err)
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		}
		return
	}

	if windows == nil {
		windows = []quota.WindowUsage{}
	}
	writeJSON(w, http.StatusOK, usageResponse{Feature: feature, Windows: windows})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
