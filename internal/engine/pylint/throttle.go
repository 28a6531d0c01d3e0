package pylint

import (
	"context"

	"golang.org/x/time/rate"
)

// throttle bounds how often pylint processes are started. A nil throttle
// never blocks.
type throttle struct {
	inner *rate.Limiter
}

// newThrottle allows perSecond launches with the given burst. perSecond <= 0
// disables throttling.
func newThrottle(perSecond float64, burst int) *throttle {
	if perSecond <= 0 {
		return nil
	}
	return &throttle{inner: rate.NewLimiter(rate.Limit(perSecond), max(burst, 1))}
}

func (t *throttle) wait(ctx context.Context) error {
	if t == nil {
		return nil
	}
	return t.inner.Wait(ctx)
}
