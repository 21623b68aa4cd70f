// Package quota provides multi-tenant quota enforcement and usage metering
// for plan-based SaaS applications. It answers one question — "may this
// tenant perform this action right now" — and durably records that the
// action happened.
//
// Two limit shapes are supported:
//
//   - Event-rate limits: at most N occurrences of a feature within a
//     trailing window ending now (e.g. 20 AI chat messages per day). Counts
//     come from the append-only usage-event table.
//   - Resource limits: at most N simultaneously live instances of a
//     resource (e.g. 3 active wizards). Counts come from a live query via a
//     registered CounterFunc, never from historical events.
//
// Every check is a fresh query against the shared relational store; there is
// no in-process state or caching, so any number of instances can run behind
// a load balancer with zero coordination.
//
// Basic usage:
//
//	plans, err := quota.LoadPlanLimits("limits.yaml")
//	source, err := quota.NewMemoryLimitSource(plans, planResolver)
//
//	counters := quota.NewCounterRegistry()
//	counters.Register(quota.FeatureActiveWizard, countActiveWizards)
//
//	svc := quota.NewService(source, quota.NewMemoryUsageStore(), counters)
//
//	// Before the protected action:
//	if err := svc.EnforceEventRate(ctx, tenantID, quota.FeatureAIChatMessage); err != nil {
//	    var exceeded *quota.QuotaExceededError
//	    if errors.As(err, &exceeded) {
//	        // render "X of Y used" upgrade prompt
//	    }
//	    return err
//	}
//
//	// ... perform the action ...
//
//	// Strictly after it succeeded:
//	svc.RecordUsage(ctx, tenantID, userID, quota.FeatureAIChatMessage,
//	    quota.WithIdempotencyKey(requestID))
//
// For production deployments use quotapg.Store as both the LimitSource and
// the UsageStore.
package quota
