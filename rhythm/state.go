package rhythm

import (
	"time"

	"github.com/google/uuid"
)

// State is the engine's mutable session state
type State struct {
	Mode Mode
	BPM  int

	// ExpectedBeat is the instant the next user beat should land
	ExpectedBeat time.Time
	// LastBeat is the most recent machine beat
	LastBeat time.Time
	// BeatCount counts machine beats in MachineLed and on-time taps in UserLed
	BeatCount int

	// UserBeats holds every accepted tap of the current user-led session, in arrival order
	UserBeats []time.Time

	Streak    int
	MaxStreak int
	Score     int
	Accuracy  int
	Misses    int

	// TimeLeft is the countdown in whole seconds of a bounded session
	TimeLeft int
}

// clone deep-copies the beat history so callers cannot alias engine state
func (s State) clone() State {
	if s.UserBeats != nil {
		s.UserBeats = append([]time.Time(nil), s.UserBeats...)
	}
	return s
}

// TapResult is returned by Tap for the presentation layer
type TapResult struct {
	TimingError     time.Duration
	MaxError        time.Duration
	AccuracyPercent float64
	OnTime          bool
	Streak          int
	Score           int
}

// SessionResult is the frozen outcome of a finished user-led session
type SessionResult struct {
	ID        uuid.UUID
	BPM       int
	Score     int
	MaxStreak int
	Accuracy  int
	Taps      int
	Misses    int
	Started   time.Time
	Ended     time.Time
}

// Duration is the wall length of the session
func (r SessionResult) Duration() time.Duration {
	return r.Ended.Sub(r.Started)
}
