package rhythm

import (
	"time"

	"github.com/lixenwraith/vibe-beat/constants"
)

// Tone is a fire-and-forget sound request
type Tone struct {
	Frequency float64
	Duration  time.Duration
	Volume    float64
	Channel   Channel
}

var (
	machineBeatTone = Tone{constants.MachineToneFrequency, constants.MachineToneDuration, constants.MachineToneVolume, ChannelMachine}
	userTapTone     = Tone{constants.UserToneFrequency, constants.UserToneDuration, constants.UserToneVolume, ChannelUser}
	sessionEndTone  = Tone{constants.EndToneFrequency, constants.EndToneDuration, constants.EndToneVolume, ChannelUser}
)

// ToneEmitter plays tones; the engine never consumes a result
type ToneEmitter interface {
	PlayTone(t Tone)
}

// ChannelFader is optionally implemented by a ToneEmitter that can ramp a channel's gain
type ChannelFader interface {
	FadeOut(ch Channel, over time.Duration)
	Restore(ch Channel)
}

// Snapshot is the read-only view handed to the display after every state change
type Snapshot struct {
	Mode      Mode
	BPM       int
	Accuracy  int
	Streak    int
	MaxStreak int
	Score     int
	Misses    int

	// TimeLeft is meaningful only when Bounded
	TimeLeft int
	Bounded  bool
}

// TapFeedback is the transient per-tap result for tolerance indicators
type TapFeedback struct {
	TimingError     time.Duration
	MaxError        time.Duration
	AccuracyPercent float64
	OnTime          bool
}

// Display is a write-only sink for engine output
type Display interface {
	Update(s Snapshot)
	Feedback(f TapFeedback)
	Pulse(ch Channel)
}

type nopTone struct{}

func (nopTone) PlayTone(Tone) {}

type nopDisplay struct{}

func (nopDisplay) Update(Snapshot) {}

func (nopDisplay) Feedback(TapFeedback) {}

func (nopDisplay) Pulse(Channel) {}
