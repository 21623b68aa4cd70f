package quota

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// CounterFunc returns the number of currently-live resource instances for a
// tenant, e.g. the count of wizards flagged active. Resource limits compare
// against live state, not historical events, so this is deliberately not
// derived from the usage-event table.
type CounterFunc func(ctx context.Context, tenantID uuid.UUID) (int64, error)

// CounterRegistry maps a resource Feature to its CounterFunc. The feature
// set is closed, so the registry is populated completely at startup and
// never mutated afterwards; it is not safe for concurrent writes.
type CounterRegistry map[Feature]CounterFunc

// NewCounterRegistry returns a new, empty CounterRegistry.
func NewCounterRegistry() CounterRegistry {
	return make(CounterRegistry)
}

// Register sets or replaces the CounterFunc for the given feature.
// Panics if fn is nil.
func (r CounterRegistry) Register(feature Feature, fn CounterFunc) {
	if fn == nil {
		panic(fmt.Sprintf("quota: CounterFunc for feature %q cannot be nil", feature))
	}
	r[feature] = fn
}
