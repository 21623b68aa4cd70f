package quota

import "errors"

// Domain errors for quota operations
var (
	// ErrQuotaExceeded is the sentinel matched by errors.Is for any denial.
	// The concrete error is always a *QuotaExceededError carrying the
	// feature, limit, window and current count.
	ErrQuotaExceeded = errors.New("quota.errors.quota_exceeded")

	// Input errors
	ErrUnknownFeature = errors.New("quota.errors.unknown_feature")

	// Tenant/plan resolution errors
	ErrTenantNotFound = errors.New("quota.errors.tenant_not_found")
	ErrNoPlanAssigned = errors.New("quota.errors.no_plan_assigned")

	// Configuration errors
	ErrConflictingResourceLimits = errors.New("quota.errors.conflicting_resource_limits")
	ErrNoCounterRegistered       = errors.New("quota.errors.no_counter_registered")
	ErrInvalidLimitConfiguration = errors.New("quota.errors.invalid_limit_configuration")

	// System errors
	ErrFailedToResolveLimits = errors.New("quota.errors.failed_to_resolve_limits")
	ErrFailedToCountUsage    = errors.New("quota.errors.failed_to_count_usage")
	ErrFailedToCountResource = errors.New("quota.errors.failed_to_count_resource")
	ErrFailedToLoadLimits    = errors.New("quota.errors.failed_to_load_limits")
)
