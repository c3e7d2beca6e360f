package audio

import (
	"math"
	"testing"
	"time"

	"github.com/gopxl/beep"

	"github.com/lixenwraith/vibe-beat/rhythm"
)

const testRate = beep.SampleRate(48000)

// drain streams s to completion and returns every sample
func drain(s beep.Streamer) [][2]float64 {
	var out [][2]float64
	buf := make([][2]float64, 512)
	for {
		n, ok := s.Stream(buf)
		out = append(out, buf[:n]...)
		if !ok || n == 0 {
			return out
		}
	}
}

func peak(samples [][2]float64) float64 {
	p := 0.0
	for _, s := range samples {
		p = math.Max(p, math.Abs(s[0]))
	}
	return p
}

// TestOscillatorLength verifies the oscillator stops at its duration
func TestOscillatorLength(t *testing.T) {
	osc := newOscillator(440, 100*time.Millisecond, testRate)
	samples := drain(osc)

	if len(samples) != 4800 {
		t.Errorf("Expected 4800 samples, got %d", len(samples))
	}
	if p := peak(samples); p < 0.99 || p > 1.0 {
		t.Errorf("Expected unit amplitude, got peak %f", p)
	}

	n, ok := osc.Stream(make([][2]float64, 16))
	if n != 0 || ok {
		t.Errorf("Expected drained oscillator, got n=%d ok=%v", n, ok)
	}
}

// TestEnvelopeShape verifies silence at onset, full level after attack and a decay near the floor
func TestEnvelopeShape(t *testing.T) {
	const floor = 0.001
	env := newEnvelope(newOscillator(0, 100*time.Millisecond, testRate), 100*time.Millisecond, 10*time.Millisecond, floor, testRate).(*envelope)

	if g := env.gain(0); g != 0 {
		t.Errorf("Expected zero gain at onset, got %f", g)
	}
	if g := env.gain(testRate.N(10 * time.Millisecond)); g != 1 {
		t.Errorf("Expected full gain after attack, got %f", g)
	}
	if g := env.gain(testRate.N(100 * time.Millisecond)); math.Abs(g-floor) > 1e-9 {
		t.Errorf("Expected floor gain at end, got %f", g)
	}

	mid := env.gain(testRate.N(55 * time.Millisecond))
	if mid <= floor || mid >= 1 {
		t.Errorf("Expected decaying gain mid-release, got %f", mid)
	}
}

// TestEnvelopeTruncatesSource verifies the envelope bounds a longer source
func TestEnvelopeTruncatesSource(t *testing.T) {
	env := newEnvelope(newOscillator(440, time.Second, testRate), 50*time.Millisecond, 10*time.Millisecond, 0.001, testRate)
	if got := len(drain(env)); got != testRate.N(50*time.Millisecond) {
		t.Errorf("Expected %d samples, got %d", testRate.N(50*time.Millisecond), got)
	}
}

// TestNewVolumeZeroIsSilent verifies zero volume does not produce -Inf gain
func TestNewVolumeZeroIsSilent(t *testing.T) {
	s := newVolume(newOscillator(440, 10*time.Millisecond, testRate), 0)
	if p := peak(drain(s)); p != 0 {
		t.Errorf("Expected silence, got peak %f", p)
	}
}

// TestSynthesizeRespectsVolume verifies tone volume scales the output
func TestSynthesizeRespectsVolume(t *testing.T) {
	loud := drain(synthesize(rhythm.Tone{Frequency: 400, Duration: 100 * time.Millisecond, Volume: 0.5}, testRate))
	quiet := drain(synthesize(rhythm.Tone{Frequency: 400, Duration: 100 * time.Millisecond, Volume: 0.25}, testRate))

	if len(loud) != 4800 {
		t.Fatalf("Expected 4800 samples, got %d", len(loud))
	}
	if math.Abs(peak(loud)-2*peak(quiet)) > 1e-6 {
		t.Errorf("Expected half volume to halve peak, got %f vs %f", peak(loud), peak(quiet))
	}
	if peak(loud) > 0.5+1e-9 {
		t.Errorf("Expected peak bounded by volume, got %f", peak(loud))
	}
}
