package engine

import "time"

// Handle identifies a repeating timer; the zero Handle is never issued
type Handle uint64

// Scheduler drives periodic work and supplies timestamps
// Implementations guarantee callbacks never run concurrently with each other
type Scheduler interface {
	// Now returns the current monotonic time
	Now() time.Time

	// ScheduleRepeating runs fn every interval, first call one interval from now
	ScheduleRepeating(interval time.Duration, fn func()) Handle

	// Cancel stops a timer; a fire already queued for it is discarded
	// Cancelling the zero Handle or an unknown Handle is a no-op
	Cancel(h Handle)
}
