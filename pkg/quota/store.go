package quota

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// LimitSource resolves the quota limits that apply to a tenant+feature pair.
type LimitSource interface {
	// ResolveLimits returns every PlanLimit configured for the tenant's
	// current plan and the given feature, both event-rate and static rows.
	// An empty slice is not an error: it means the plan carries no limits
	// for this feature and the service fails open.
	//
	// Returns ErrTenantNotFound if the tenant does not exist and
	// ErrNoPlanAssigned if it has no current plan.
	ResolveLimits(ctx context.Context, tenantID uuid.UUID, feature Feature) ([]PlanLimit, error)
}

// UsageStore persists and counts usage events. Implementations back onto the
// shared relational store; the service never caches their answers.
type UsageStore interface {
	// CountEventsSince returns the number of events recorded for the
	// tenant+feature pair with OccurredAt >= since.
	CountEventsSince(ctx context.Context, tenantID uuid.UUID, feature Feature, since time.Time) (int64, error)

	// InsertEvent appends a usage event. When the event carries an
	// idempotency key that already exists, the insert is a silent no-op.
	InsertEvent(ctx context.Context, event UsageEvent) error
}

// Store combines both persistence roles; satisfied by quotapg.Store and the
// in-memory implementations in this package.
type Store interface {
	LimitSource
	UsageStore
}
