package quota

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// PlanResolver returns the plan code currently assigned to a tenant. The
// plan pointer is owned by the billing layer; this engine only reads it.
type PlanResolver func(ctx context.Context, tenantID uuid.UUID) (string, error)

// memLimitSource implements LimitSource over an in-memory plan map. Intended
// for tests and single-process deployments that seed limits from a file.
type memLimitSource struct {
	plans    map[string][]PlanLimit
	resolver PlanResolver
}

// NewMemoryLimitSource returns an in-memory LimitSource with a deep copy of
// the given plan→limits map. The resolver maps tenants to plan codes.
//
// Construction fails on invalid configuration: negative limits, unknown
// features, or duplicate (feature, window) rows within a plan.
func NewMemoryLimitSource(plans map[string][]PlanLimit, resolver PlanResolver) (LimitSource, error) {
	if resolver == nil {
		return nil, errors.Join(ErrInvalidLimitConfiguration, errors.New("plan resolver is required"))
	}
	if err := validatePlanLimits(plans); err != nil {
		return nil, err
	}

	plansCopy := make(map[string][]PlanLimit, len(plans))
	for code, limits := range plans {
		limitsCopy := slices.Clone(limits)
		for i := range limitsCopy {
			limitsCopy[i].PlanCode = code
		}
		plansCopy[code] = limitsCopy
	}

	return &memLimitSource{
		plans:    plansCopy,
		resolver: resolver,
	}, nil
}

func (s *memLimitSource) ResolveLimits(ctx context.Context, tenantID uuid.UUID, feature Feature) ([]PlanLimit, error) {
	planCode, err := s.resolver(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	limits, ok := s.plans[planCode]
	if !ok {
		return nil, ErrNoPlanAssigned
	}

	matched := make([]PlanLimit, 0, len(limits))
	for _, limit := range limits {
		if limit.Feature == feature {
			matched = append(matched, limit)
		}
	}
	return matched, nil
}

// validatePlanLimits checks seed data for configuration invariant violations.
func validatePlanLimits(plans map[string][]PlanLimit) error {
	for code, limits := range plans {
		type key struct {
			feature Feature
			window  time.Duration
		}
		seen := make(map[key]struct{}, len(limits))

		for _, limit := range limits {
			if !limit.Feature.Valid() {
				return errors.Join(ErrInvalidLimitConfiguration,
					fmt.Errorf("plan %s references unknown feature %q", code, limit.Feature))
			}
			if limit.HardLimit < 0 {
				return errors.Join(ErrInvalidLimitConfiguration,
					fmt.Errorf("plan %s has negative limit for %s", code, limit.Feature))
			}
			if limit.Window < 0 {
				return errors.Join(ErrInvalidLimitConfiguration,
					fmt.Errorf("plan %s has negative window for %s", code, limit.Feature))
			}

			k := key{feature: limit.Feature, window: limit.Window}
			if _, dup := seen[k]; dup {
				return errors.Join(ErrInvalidLimitConfiguration,
					fmt.Errorf("plan %s has duplicate limit for %s window %s", code, limit.Feature, FormatWindow(limit.Window)))
			}
			seen[k] = struct{}{}
		}
	}
	return nil
}

// MemoryUsageStore is an append-only in-memory UsageStore. Safe for
// concurrent use. Events are never deleted; windowed counts filter by
// timestamp, so expiry is purely a matter of time passing.
type MemoryUsageStore struct {
	mu     sync.RWMutex
	events []UsageEvent
	keys   map[string]struct{}
}

// NewMemoryUsageStore returns an empty in-memory usage store.
func NewMemoryUsageStore() *MemoryUsageStore {
	return &MemoryUsageStore{
		keys: make(map[string]struct{}),
	}
}

func (s *MemoryUsageStore) CountEventsSince(ctx context.Context, tenantID uuid.UUID, feature Feature, since time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, event := range s.events {
		if event.TenantID == tenantID && event.Feature == feature && !event.OccurredAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (s *MemoryUsageStore) InsertEvent(ctx context.Context, event UsageEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if event.IdempotencyKey != "" {
		if _, exists := s.keys[event.IdempotencyKey]; exists {
			return nil
		}
		s.keys[event.IdempotencyKey] = struct{}{}
	}

	s.events = append(s.events, event)
	return nil
}

// Len returns the number of stored events.
func (s *MemoryUsageStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}
