package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"

	"github.com/lixenwraith/vibe-beat/constants"
	"github.com/lixenwraith/vibe-beat/rhythm"
)

// oscillator generates a sine wave for a fixed number of samples
type oscillator struct {
	freq     float64
	phase    float64
	duration int
	position int
	rate     beep.SampleRate
}

// newOscillator creates a sine oscillator lasting duration
func newOscillator(freq float64, duration time.Duration, rate beep.SampleRate) beep.Streamer {
	return &oscillator{
		freq:     freq,
		duration: rate.N(duration),
		rate:     rate,
	}
}

func (o *oscillator) Stream(samples [][2]float64) (n int, ok bool) {
	if o.position >= o.duration {
		return 0, false
	}

	for i := range samples {
		if o.position >= o.duration {
			return i, true
		}

		val := math.Sin(2 * math.Pi * o.phase)
		samples[i][0] = val
		samples[i][1] = val

		// Advance phase
		o.phase += o.freq / float64(o.rate)
		o.phase = o.phase - math.Floor(o.phase) // Keep in [0, 1)
		o.position++
	}
	return len(samples), true
}

func (o *oscillator) Err() error { return nil }

// envelope applies a linear attack followed by an exponential release toward floor
type envelope struct {
	streamer      beep.Streamer
	position      int
	attackSamples int
	totalSamples  int
	floor         float64
}

// newEnvelope shapes s over duration; the release spans everything after the attack
func newEnvelope(s beep.Streamer, duration, attack time.Duration, floor float64, rate beep.SampleRate) beep.Streamer {
	total := rate.N(duration)
	att := rate.N(attack)
	if att > total {
		att = total
	}

	return &envelope{
		streamer:      s,
		attackSamples: att,
		totalSamples:  total,
		floor:         floor,
	}
}

// gain is the envelope level at sample pos
func (e *envelope) gain(pos int) float64 {
	if pos < e.attackSamples {
		return float64(pos) / float64(e.attackSamples)
	}
	release := e.totalSamples - e.attackSamples
	if release <= 0 {
		return 1
	}
	return math.Pow(e.floor, float64(pos-e.attackSamples)/float64(release))
}

func (e *envelope) Stream(samples [][2]float64) (n int, ok bool) {
	if e.position >= e.totalSamples {
		return 0, false
	}
	if remaining := e.totalSamples - e.position; len(samples) > remaining {
		samples = samples[:remaining]
	}

	n, ok = e.streamer.Stream(samples)
	for i := 0; i < n; i++ {
		vol := e.gain(e.position)
		samples[i][0] *= vol
		samples[i][1] *= vol
		e.position++
	}
	return n, ok
}

func (e *envelope) Err() error { return e.streamer.Err() }

// Helper to create a volume effect safely
// math.Log2(0) is -Inf, so we handle 0 volume by making it silent
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol), Silent: false}
}

// synthesize builds the streamer for one tone request
func synthesize(t rhythm.Tone, rate beep.SampleRate) beep.Streamer {
	osc := newOscillator(t.Frequency, t.Duration, rate)
	shaped := newEnvelope(osc, t.Duration, constants.ToneAttack, constants.ToneFloor, rate)
	return newVolume(shaped, t.Volume)
}
