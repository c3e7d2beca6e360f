package audio

import (
	"math"
	"sync"

	"github.com/gopxl/beep"
)

// bus is one output channel: a mixer of live tones behind a static gain and a fadeable level
// It never drains, so it can sit in the speaker graph for the life of the process
type bus struct {
	mu    sync.Mutex
	mixer *beep.Mixer
	gain  float64
	floor float64

	// level is 1 when restored and 0 once a fade completes
	level float64

	// Fade ramp, active while fadeLeft > 0
	fadeFrom  float64
	fadeTotal int
	fadeLeft  int
}

func newBus(gain, floor float64) *bus {
	return &bus{
		mixer: &beep.Mixer{},
		gain:  gain,
		floor: floor,
		level: 1,
	}
}

func (b *bus) add(s beep.Streamer) {
	b.mu.Lock()
	b.mixer.Add(s)
	b.mu.Unlock()
}

// clear drops every live tone
func (b *bus) clear() {
	b.mu.Lock()
	b.mixer.Clear()
	b.mu.Unlock()
}

// active returns the number of live tones
func (b *bus) active() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.mixer.Len()
}

// fadeOut ramps the level exponentially from its current value to silence over samples
func (b *bus) fadeOut(samples int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if samples <= 0 || b.level <= b.floor {
		b.level = 0
		b.fadeLeft = 0
		return
	}
	b.fadeFrom = b.level
	b.fadeTotal = samples
	b.fadeLeft = samples
}

// restore cancels any fade and returns to full level
func (b *bus) restore() {
	b.mu.Lock()
	b.level = 1
	b.fadeLeft = 0
	b.mu.Unlock()
}

// currentLevel reports the fade level
func (b *bus) currentLevel() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.level
}

// step advances the fade by one sample and returns the level for it
func (b *bus) step() float64 {
	if b.fadeLeft > 0 {
		done := b.fadeTotal - b.fadeLeft
		b.level = b.fadeFrom * math.Pow(b.floor/b.fadeFrom, float64(done)/float64(b.fadeTotal))
		b.fadeLeft--
		if b.fadeLeft == 0 {
			b.level = 0
		}
	}
	return b.level
}

func (b *bus) Stream(samples [][2]float64) (n int, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i := range samples {
		samples[i] = [2]float64{}
	}
	b.mixer.Stream(samples)

	for i := range samples {
		g := b.gain * b.step()
		samples[i][0] *= g
		samples[i][1] *= g
	}
	return len(samples), true
}

func (b *bus) Err() error { return nil }
