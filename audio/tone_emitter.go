package audio

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/rs/zerolog"

	"github.com/lixenwraith/vibe-beat/constants"
	"github.com/lixenwraith/vibe-beat/rhythm"
	"github.com/lixenwraith/vibe-beat/status"
)

// ToneEmitter plays rhythm tones through the speaker on separate machine and user buses
// Tones are synthesized on demand; PlayTone never blocks on the device
type ToneEmitter struct {
	cfg   Config
	rate  beep.SampleRate
	buses [2]*bus
	out   beep.Streamer

	started atomic.Bool
	silent  atomic.Bool
	muted   atomic.Bool

	log zerolog.Logger

	// Cached metric pointers
	statPlayed  *atomic.Int64
	statDropped *atomic.Int64
}

// NewToneEmitter builds the bus graph without touching the audio device
func NewToneEmitter(cfg Config, logger zerolog.Logger, reg *status.Registry) *ToneEmitter {
	cfg = cfg.Normalize()
	if reg == nil {
		reg = status.NewRegistry()
	}

	e := &ToneEmitter{
		cfg:         cfg,
		rate:        beep.SampleRate(cfg.SampleRate),
		log:         logger.With().Str("component", "audio").Logger(),
		statPlayed:  reg.Ints.Get("audio.played"),
		statDropped: reg.Ints.Get("audio.dropped"),
	}
	e.buses[rhythm.ChannelMachine] = newBus(cfg.MachineGain, constants.ToneFloor)
	e.buses[rhythm.ChannelUser] = newBus(cfg.UserGain, constants.ToneFloor)

	master := &beep.Mixer{}
	master.Add(e.buses[rhythm.ChannelMachine], e.buses[rhythm.ChannelUser])
	e.out = newVolume(master, cfg.MasterVolume)

	return e
}

// Start opens the speaker and attaches the bus graph
// A disabled config or a device failure leaves the emitter silent; only the latter returns an error
func (e *ToneEmitter) Start() error {
	if !e.started.CompareAndSwap(false, true) {
		return nil
	}

	if !e.cfg.Enabled {
		e.silent.Store(true)
		e.log.Info().Msg("audio disabled")
		return nil
	}

	if err := speaker.Init(e.rate, e.rate.N(constants.SpeakerBufferDuration)); err != nil {
		e.silent.Store(true)
		e.log.Warn().Err(err).Msg("speaker init failed, running silent")
		return fmt.Errorf("%w: %v", ErrAudioUnavailable, err)
	}

	speaker.Play(e.out)
	e.log.Info().Int("sample_rate", e.cfg.SampleRate).Float64("volume", e.cfg.MasterVolume).Msg("audio started")
	return nil
}

// Close releases the speaker
func (e *ToneEmitter) Close() {
	if !e.started.Load() || e.silent.Load() {
		return
	}
	for _, b := range e.buses {
		b.clear()
	}
	speaker.Close()
	e.silent.Store(true)
}

// PlayTone implements rhythm.ToneEmitter
func (e *ToneEmitter) PlayTone(t rhythm.Tone) {
	if e.muted.Load() || e.silent.Load() {
		e.statDropped.Add(1)
		return
	}

	e.bus(t.Channel).add(synthesize(t, e.rate))
	e.statPlayed.Add(1)
}

// FadeOut implements rhythm.ChannelFader
func (e *ToneEmitter) FadeOut(ch rhythm.Channel, over time.Duration) {
	e.bus(ch).fadeOut(e.rate.N(over))
}

// Restore implements rhythm.ChannelFader
func (e *ToneEmitter) Restore(ch rhythm.Channel) {
	e.bus(ch).restore()
}

// ToggleMute flips mute state and returns true if now muted
// Muting cuts tones already sounding
func (e *ToneEmitter) ToggleMute() bool {
	muted := !e.muted.Load()
	e.SetMuted(muted)
	return muted
}

// SetMuted sets mute state
func (e *ToneEmitter) SetMuted(muted bool) {
	e.muted.Store(muted)
	if muted {
		for _, b := range e.buses {
			b.clear()
		}
	}
}

// IsMuted returns current mute state
func (e *ToneEmitter) IsMuted() bool {
	return e.muted.Load()
}

// IsSilent returns true if no device is attached
func (e *ToneEmitter) IsSilent() bool {
	return e.silent.Load()
}

// Active returns the number of tones still sounding on ch
func (e *ToneEmitter) Active(ch rhythm.Channel) int {
	return e.bus(ch).active()
}

func (e *ToneEmitter) bus(ch rhythm.Channel) *bus {
	if ch == rhythm.ChannelUser {
		return e.buses[rhythm.ChannelUser]
	}
	return e.buses[rhythm.ChannelMachine]
}
