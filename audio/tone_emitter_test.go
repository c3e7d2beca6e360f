package audio

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/lixenwraith/vibe-beat/rhythm"
	"github.com/lixenwraith/vibe-beat/status"
)

var (
	testUserTone    = rhythm.Tone{Frequency: 400, Duration: 100 * time.Millisecond, Volume: 0.5, Channel: rhythm.ChannelUser}
	testMachineTone = rhythm.Tone{Frequency: 800, Duration: 100 * time.Millisecond, Volume: 0.3, Channel: rhythm.ChannelMachine}
)

func newTestEmitter(t *testing.T) (*ToneEmitter, *status.Registry) {
	t.Helper()
	reg := status.NewRegistry()
	return NewToneEmitter(DefaultConfig(), zerolog.Nop(), reg), reg
}

// render pulls d worth of mixed output without a device
func (e *ToneEmitter) render(d time.Duration) [][2]float64 {
	buf := make([][2]float64, e.rate.N(d))
	e.out.Stream(buf)
	return buf
}

// TestPlayToneProducesSound verifies a tone reaches the output and then expires
func TestPlayToneProducesSound(t *testing.T) {
	e, reg := newTestEmitter(t)

	e.PlayTone(testUserTone)
	if e.Active(rhythm.ChannelUser) != 1 {
		t.Fatalf("Expected 1 active user tone, got %d", e.Active(rhythm.ChannelUser))
	}

	if p := peak(e.render(20 * time.Millisecond)); p < 0.01 {
		t.Errorf("Expected audible output, got peak %f", p)
	}

	e.render(100 * time.Millisecond)
	if e.Active(rhythm.ChannelUser) != 0 {
		t.Errorf("Expected tone to expire, got %d active", e.Active(rhythm.ChannelUser))
	}
	if p := peak(e.render(10 * time.Millisecond)); p != 0 {
		t.Errorf("Expected silence after tone, got peak %f", p)
	}

	if got := reg.Ints.Get("audio.played").Load(); got != 1 {
		t.Errorf("Expected played=1, got %d", got)
	}
}

// TestChannelsAreIndependent verifies tones land on their own bus
func TestChannelsAreIndependent(t *testing.T) {
	e, _ := newTestEmitter(t)

	e.PlayTone(testMachineTone)
	e.PlayTone(testMachineTone)
	e.PlayTone(testUserTone)

	if e.Active(rhythm.ChannelMachine) != 2 || e.Active(rhythm.ChannelUser) != 1 {
		t.Errorf("Expected 2 machine and 1 user tone, got %d and %d",
			e.Active(rhythm.ChannelMachine), e.Active(rhythm.ChannelUser))
	}
}

// TestFadeOutSilencesMachineOnly verifies the machine fade leaves the user bus audible
func TestFadeOutSilencesMachineOnly(t *testing.T) {
	e, _ := newTestEmitter(t)

	e.FadeOut(rhythm.ChannelMachine, 20*time.Millisecond)
	e.PlayTone(testMachineTone)
	e.render(30 * time.Millisecond)

	if lvl := e.buses[rhythm.ChannelMachine].currentLevel(); lvl != 0 {
		t.Fatalf("Expected machine level 0 after fade, got %f", lvl)
	}
	if p := peak(e.render(20 * time.Millisecond)); p != 0 {
		t.Errorf("Expected faded machine bus silent, got peak %f", p)
	}

	e.PlayTone(testUserTone)
	if p := peak(e.render(20 * time.Millisecond)); p < 0.01 {
		t.Errorf("Expected user bus audible during machine fade, got peak %f", p)
	}

	e.Restore(rhythm.ChannelMachine)
	e.PlayTone(testMachineTone)
	if lvl := e.buses[rhythm.ChannelMachine].currentLevel(); lvl != 1 {
		t.Errorf("Expected restored level 1, got %f", lvl)
	}
}

// TestFadeIsMonotonic verifies the ramp only decreases
func TestFadeIsMonotonic(t *testing.T) {
	b := newBus(1, 0.001)
	b.fadeOut(100)

	prev := 1.0
	for i := 0; i < 120; i++ {
		lvl := b.step()
		if lvl > prev {
			t.Fatalf("Level rose at sample %d: %f > %f", i, lvl, prev)
		}
		prev = lvl
	}
	if prev != 0 {
		t.Errorf("Expected level 0 after ramp, got %f", prev)
	}
}

// TestMuteDropsTones verifies muting cuts sounding tones and rejects new ones
func TestMuteDropsTones(t *testing.T) {
	e, reg := newTestEmitter(t)

	e.PlayTone(testUserTone)
	if !e.ToggleMute() {
		t.Fatal("Expected muted after toggle")
	}
	if e.Active(rhythm.ChannelUser) != 0 {
		t.Error("Expected mute to cut sounding tones")
	}

	e.PlayTone(testUserTone)
	if p := peak(e.render(20 * time.Millisecond)); p != 0 {
		t.Errorf("Expected silence while muted, got peak %f", p)
	}
	if got := reg.Ints.Get("audio.dropped").Load(); got != 1 {
		t.Errorf("Expected dropped=1, got %d", got)
	}

	if e.ToggleMute() {
		t.Error("Expected unmuted after second toggle")
	}
}

// TestDisabledEmitterIsSilent verifies a disabled config never opens the device
func TestDisabledEmitterIsSilent(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Enabled = false
	e := NewToneEmitter(cfg, zerolog.Nop(), nil)

	if err := e.Start(); err != nil {
		t.Fatalf("Expected nil error for disabled audio, got %v", err)
	}
	if !e.IsSilent() {
		t.Error("Expected silent emitter")
	}

	e.PlayTone(testUserTone)
	if e.Active(rhythm.ChannelUser) != 0 {
		t.Error("Expected tone dropped while silent")
	}
	e.Close()
}

// TestEmitterSatisfiesRhythmInterfaces is a compile-time check
func TestEmitterSatisfiesRhythmInterfaces(t *testing.T) {
	var _ rhythm.ToneEmitter = (*ToneEmitter)(nil)
	var _ rhythm.ChannelFader = (*ToneEmitter)(nil)
}
