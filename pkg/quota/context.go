package quota

import (
	"context"

	"github.com/google/uuid"
)

type tenantIDCtxKey struct{}

// WithTenantID stores the tenant ID in the context for downstream access,
// typically set by an authentication or tenant-resolution middleware.
func WithTenantID(ctx context.Context, tenantID uuid.UUID) context.Context {
	return context.WithValue(ctx, tenantIDCtxKey{}, tenantID)
}

// TenantIDFromContext retrieves the tenant ID from the context, if present.
func TenantIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	tenantID, ok := ctx.Value(tenantIDCtxKey{}).(uuid.UUID)
	return tenantID, ok
}
