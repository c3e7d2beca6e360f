package engine

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// TimeProvider supplies wall time to presentation code that runs outside the loop
// Backed by the same clock as the loop so frames and beats agree under a fake clock
type TimeProvider struct {
	clock clockwork.Clock
}

// NewTimeProvider wraps clock; nil selects the real clock
func NewTimeProvider(clock clockwork.Clock) *TimeProvider {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &TimeProvider{clock: clock}
}

// Now returns the current time with monotonic clock reading
func (p *TimeProvider) Now() time.Time {
	return p.clock.Now()
}

// Since returns elapsed time from t
func (p *TimeProvider) Since(t time.Time) time.Duration {
	return p.clock.Since(t)
}
