package quota

import "fmt"

// QuotaExceededError is returned by both enforcers when a limit is hit. It
// carries everything the calling layer needs to render a precise
// "X of Y used" message, regardless of which enforcer produced it.
type QuotaExceededError struct {
	Feature      Feature
	Limit        int64
	Window       string // duration label, or "static" for resource limits
	CurrentCount int64
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("quota exceeded for %s: %d of %d used in %s",
		e.Feature, e.CurrentCount, e.Limit, e.Window)
}

// Is lets errors.Is(err, ErrQuotaExceeded) match any denial without the
// caller having to unwrap the concrete type.
func (e *QuotaExceededError) Is(target error) bool {
	return target == ErrQuotaExceeded
}
