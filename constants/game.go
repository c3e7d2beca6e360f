package constants

import "time"

// Tempo Range
const (
	// BPMMin and BPMMax bound every tempo the engine accepts
	BPMMin = 60
	BPMMax = 200

	// BPMStep is the tempo change per adjust keypress
	BPMStep = 5

	// DefaultBPM is the tempo at startup
	DefaultBPM = 120
)

// Scoring
const (
	// ToleranceFraction is the on-time window as a fraction of the beat interval, symmetric around the beat
	ToleranceFraction = 0.3
)

// Session Timing
const (
	// SessionDuration is the bounded user-led session length
	SessionDuration = 15 * time.Second

	// MissCheckInterval is the miss-detector polling cadence
	MissCheckInterval = 100 * time.Millisecond

	// CountdownInterval is the session countdown cadence
	CountdownInterval = time.Second

	// TakeoverFadeBeats is the machine-tone fade length after takeover, in beats
	TakeoverFadeBeats = 2.0
)
