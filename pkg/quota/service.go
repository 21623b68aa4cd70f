package quota

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Service is the public interface of the quota engine. Callers invoke an
// enforcer before performing a protected action and, for event-rate tracked
// features, RecordUsage strictly after the action succeeded.
//
// The check and the later record are two separate round trips to the store,
// not one transaction: two concurrent requests can both pass a check when a
// single slot remains, overshooting the limit by at most the concurrency
// degree minus one per race window. This is accepted behavior; strict
// enforcement would need a serializable transaction or a per-(tenant,
// feature) advisory lock.
type Service interface {
	// EnforceEventRate checks every event-rate limit configured for the
	// tenant+feature pair. It returns nil when all windows pass, a
	// *QuotaExceededError for the tightest violated window, or a hard
	// error when the store or configuration is broken.
	EnforceEventRate(ctx context.Context, tenantID uuid.UUID, feature Feature) error

	// EnforceResourceLimit checks the static (live-count) limit for the
	// tenant+feature pair. Invoked before activating or creating a
	// resource instance, never on read paths.
	EnforceResourceLimit(ctx context.Context, tenantID uuid.UUID, feature Feature) error

	// RecordUsage appends a usage event after the protected action has
	// completed. Failures are logged and never returned: the action
	// already succeeded and must not be rolled back because metering
	// failed.
	RecordUsage(ctx context.Context, tenantID, userID uuid.UUID, feature Feature, opts ...RecordOption)

	// Usage returns current consumption against every limit configured
	// for the tenant+feature pair, for dashboards and upgrade prompts.
	Usage(ctx context.Context, tenantID uuid.UUID, feature Feature) ([]WindowUsage, error)
}

type service struct {
	limits   LimitSource
	usage    UsageStore
	counters CounterRegistry
	log      *slog.Logger
	now      func() time.Time
}

// Option configures the service.
type Option func(*service)

// WithLogger sets the logger used for fail-open warnings, configuration
// errors and swallowed recording failures. Defaults to slog.Default.
func WithLogger(log *slog.Logger) Option {
	return func(s *service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithClock overrides the time source. Test seam.
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService creates a quota Service over the given limit source, usage
// store and resource counter registry.
func NewService(limits LimitSource, usage UsageStore, counters CounterRegistry, opts ...Option) Service {
	if counters == nil {
		counters = NewCounterRegistry()
	}

	s := &service{
		limits:   limits,
		usage:    usage,
		counters: counters,
		log:      slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EnforceEventRate checks every event-rate limit for the tenant+feature pair.
func (s *service) EnforceEventRate(ctx context.Context, tenantID uuid.UUID, feature Feature) error {
	if !feature.Valid() {
		return ErrUnknownFeature
	}

	applicable, err := s.resolveEventRateLimits(ctx, tenantID, feature)
	if err != nil {
		return err
	}

	if len(applicable) == 0 {
		s.logFailOpen(ctx, tenantID, feature)
		return nil
	}

	// Ascending window order makes the violated window deterministic: the
	// tightest one governs and is the first reported.
	sort.Slice(applicable, func(i, j int) bool {
		return applicable[i].Window < applicable[j].Window
	})

	now := s.now()
	for _, limit := range applicable {
		count, err := s.usage.CountEventsSince(ctx, tenantID, feature, now.Add(-limit.Window))
		if err != nil {
			return errors.Join(ErrFailedToCountUsage, err)
		}

		if count >= limit.HardLimit {
			return &QuotaExceededError{
				Feature:      feature,
				Limit:        limit.HardLimit,
				Window:       limit.WindowLabel(),
				CurrentCount: count,
			}
		}
	}

	return nil
}

// EnforceResourceLimit checks the static limit for the tenant+feature pair.
func (s *service) EnforceResourceLimit(ctx context.Context, tenantID uuid.UUID, feature Feature) error {
	if !feature.Valid() {
		return ErrUnknownFeature
	}

	limit, found, err := s.resolveStaticLimit(ctx, tenantID, feature)
	if err != nil {
		return err
	}
	if !found {
		s.logFailOpen(ctx, tenantID, feature)
		return nil
	}

	live, err := s.countLive(ctx, tenantID, feature)
	if err != nil {
		return err
	}

	if live >= limit.HardLimit {
		return &QuotaExceededError{
			Feature:      feature,
			Limit:        limit.HardLimit,
			Window:       StaticWindowLabel,
			CurrentCount: live,
		}
	}

	return nil
}

// RecordUsage appends a usage event, best effort.
func (s *service) RecordUsage(ctx context.Context, tenantID, userID uuid.UUID, feature Feature, opts ...RecordOption) {
	if !feature.Valid() {
		s.log.ErrorContext(ctx, "refusing to record usage for unknown feature",
			"tenant_id", tenantID, "feature", string(feature))
		return
	}

	var cfg recordConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	event := UsageEvent{
		ID:             uuid.New(),
		TenantID:       tenantID,
		UserID:         userID,
		Feature:        feature,
		OccurredAt:     s.now().UTC(),
		IdempotencyKey: cfg.idempotencyKey,
	}

	if err := s.usage.InsertEvent(ctx, event); err != nil {
		s.log.ErrorContext(ctx, "failed to record usage event",
			"tenant_id", tenantID,
			"user_id", userID,
			"feature", string(feature),
			"error", err)
	}
}

// Usage reports consumption against every configured limit for the pair.
func (s *service) Usage(ctx context.Context, tenantID uuid.UUID, feature Feature) ([]WindowUsage, error) {
	if !feature.Valid() {
		return nil, ErrUnknownFeature
	}

	applicable, err := s.limits.ResolveLimits(ctx, tenantID, feature)
	if err != nil {
		return nil, errors.Join(ErrFailedToResolveLimits, err)
	}

	sort.Slice(applicable, func(i, j int) bool {
		return applicable[i].Window < applicable[j].Window
	})

	now := s.now()
	result := make([]WindowUsage, 0, len(applicable))
	for _, limit := range applicable {
		var current int64
		if limit.IsStatic() {
			current, err = s.countLive(ctx, tenantID, feature)
		} else {
			current, err = s.usage.CountEventsSince(ctx, tenantID, feature, now.Add(-limit.Window))
			if err != nil {
				err = errors.Join(ErrFailedToCountUsage, err)
			}
		}
		if err != nil {
			return nil, err
		}

		result = append(result, WindowUsage{
			Window:  limit.WindowLabel(),
			Current: current,
			Limit:   limit.HardLimit,
		})
	}

	return result, nil
}

// resolveEventRateLimits returns the tenant's event-rate rows for the feature.
func (s *service) resolveEventRateLimits(ctx context.Context, tenantID uuid.UUID, feature Feature) ([]PlanLimit, error) {
	all, err := s.limits.ResolveLimits(ctx, tenantID, feature)
	if err != nil {
		return nil, errors.Join(ErrFailedToResolveLimits, err)
	}

	rate := make([]PlanLimit, 0, len(all))
	for _, limit := range all {
		if !limit.IsStatic() {
			rate = append(rate, limit)
		}
	}
	return rate, nil
}

// resolveStaticLimit returns the single static row for the feature, if any.
// More than one static row per tenant+feature is a configuration invariant
// violation and is never silently resolved by picking one.
func (s *service) resolveStaticLimit(ctx context.Context, tenantID uuid.UUID, feature Feature) (PlanLimit, bool, error) {
	all, err := s.limits.ResolveLimits(ctx, tenantID, feature)
	if err != nil {
		return PlanLimit{}, false, errors.Join(ErrFailedToResolveLimits, err)
	}

	var static []PlanLimit
	for _, limit := range all {
		if limit.IsStatic() {
			static = append(static, limit)
		}
	}

	switch len(static) {
	case 0:
		return PlanLimit{}, false, nil
	case 1:
		return static[0], true, nil
	default:
		s.log.ErrorContext(ctx, "multiple static limits configured for one feature",
			"tenant_id", tenantID,
			"feature", string(feature),
			"rows", len(static))
		return PlanLimit{}, false, ErrConflictingResourceLimits
	}
}

// countLive resolves the feature's counting strategy and runs it.
func (s *service) countLive(ctx context.Context, tenantID uuid.UUID, feature Feature) (int64, error) {
	counter, ok := s.counters[feature]
	if !ok {
		s.log.ErrorContext(ctx, "no resource counter registered for feature",
			"tenant_id", tenantID, "feature", string(feature))
		return 0, ErrNoCounterRegistered
	}

	live, err := counter(ctx, tenantID)
	if err != nil {
		return 0, errors.Join(ErrFailedToCountResource, err)
	}
	return live, nil
}

// logFailOpen records the deliberate missing-configuration permit so
// telemetry can tell it apart from an explicit pass.
func (s *service) logFailOpen(ctx context.Context, tenantID uuid.UUID, feature Feature) {
	s.log.WarnContext(ctx, "no quota limits configured, permitting action",
		"tenant_id", tenantID,
		"feature", string(feature),
		"fail_open", true)
}

// RecordOption configures a single RecordUsage call.
type RecordOption func(*recordConfig)

type recordConfig struct {
	idempotencyKey string
}

// WithIdempotencyKey attaches a globally-unique key to the event so a
// retried client request is recorded at most once.
func WithIdempotencyKey(key string) RecordOption {
	return func(c *recordConfig) {
		c.idempotencyKey = key
	}
}
