package quota

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Feature is a trackable action or resource type subject to quota enforcement.
// The set of features is closed and versioned together with the database
// schema: adding one requires a migration plus, for resource features, a
// counter registration.
type Feature string

// Predefined features.
const (
	FeatureAIChatMessage   Feature = "ai_chat_message"
	FeatureImageGeneration Feature = "image_generation"
	FeatureActiveWizard    Feature = "active_wizard"
)

// knownFeatures is the closed enumeration backing Feature.Valid.
var knownFeatures = map[Feature]struct{}{
	FeatureAIChatMessage:   {},
	FeatureImageGeneration: {},
	FeatureActiveWizard:    {},
}

// Valid reports whether f belongs to the closed feature set.
func (f Feature) Valid() bool {
	_, ok := knownFeatures[f]
	return ok
}

const (
	// StaticWindow designates a resource (live-count) limit rather than an
	// event-rate limit over a trailing time window.
	StaticWindow time.Duration = 0

	// StaticWindowLabel is the window string reported for resource limits.
	StaticWindowLabel = "static"
)

// PlanLimit is a single quota ceiling: at most HardLimit occurrences of
// Feature within Window (or, for Window == StaticWindow, at most HardLimit
// simultaneously live instances). A plan may carry several limits for the
// same feature over different windows; all of them must hold independently.
type PlanLimit struct {
	PlanCode  string
	Feature   Feature
	Window    time.Duration
	HardLimit int64
}

// IsStatic reports whether the limit caps live resource instances rather
// than events in a trailing window.
func (l PlanLimit) IsStatic() bool {
	return l.Window == StaticWindow
}

// WindowLabel returns a human-readable window string, e.g. "1 day",
// "12 hours" or "static" for resource limits. Used in denial messages and
// telemetry.
func (l PlanLimit) WindowLabel() string {
	return FormatWindow(l.Window)
}

// FormatWindow renders a window duration the way PlanLimit.WindowLabel does.
func FormatWindow(w time.Duration) string {
	switch {
	case w == StaticWindow:
		return StaticWindowLabel
	case w%(24*time.Hour) == 0:
		return pluralize(int64(w/(24*time.Hour)), "day")
	case w%time.Hour == 0:
		return pluralize(int64(w/time.Hour), "hour")
	case w%time.Minute == 0:
		return pluralize(int64(w/time.Minute), "minute")
	default:
		return w.String()
	}
}

func pluralize(n int64, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// UsageEvent is an immutable record of a single metered occurrence. Events
// are append-only: they are never updated or deleted once written.
type UsageEvent struct {
	ID             uuid.UUID
	TenantID       uuid.UUID
	UserID         uuid.UUID
	Feature        Feature
	OccurredAt     time.Time
	IdempotencyKey string // empty means no idempotency guarantee requested
}

// WindowUsage describes current consumption against one configured limit.
type WindowUsage struct {
	Window  string `json:"window"`
	Current int64  `json:"current"`
	Limit   int64  `json:"limit"`
}
