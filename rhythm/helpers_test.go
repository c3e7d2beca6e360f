package rhythm

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/lixenwraith/vibe-beat/engine"
	"github.com/lixenwraith/vibe-beat/status"
)

var testEpoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// recordingTone captures tones and fades
type recordingTone struct {
	tones    []Tone
	fades    []time.Duration
	restores int
}

func (r *recordingTone) PlayTone(t Tone) { r.tones = append(r.tones, t) }

func (r *recordingTone) FadeOut(ch Channel, over time.Duration) {
	if ch == ChannelMachine {
		r.fades = append(r.fades, over)
	}
}

func (r *recordingTone) Restore(ch Channel) {
	if ch == ChannelMachine {
		r.restores++
	}
}

func (r *recordingTone) count(ch Channel, freq float64) int {
	n := 0
	for _, t := range r.tones {
		if t.Channel == ch && t.Frequency == freq {
			n++
		}
	}
	return n
}

// recordingDisplay captures every display write
type recordingDisplay struct {
	snapshots []Snapshot
	feedback  []TapFeedback
	pulses    []Channel
}

func (r *recordingDisplay) Update(s Snapshot) { r.snapshots = append(r.snapshots, s) }

func (r *recordingDisplay) Feedback(f TapFeedback) { r.feedback = append(r.feedback, f) }

func (r *recordingDisplay) Pulse(ch Channel) { r.pulses = append(r.pulses, ch) }

func (r *recordingDisplay) last() Snapshot {
	if len(r.snapshots) == 0 {
		return Snapshot{}
	}
	return r.snapshots[len(r.snapshots)-1]
}

type testRig struct {
	engine  *Engine
	sched   *engine.ManualScheduler
	tone    *recordingTone
	display *recordingDisplay
	reg     *status.Registry
}

func newTestRig(t *testing.T, cfg Config) *testRig {
	t.Helper()

	rig := &testRig{
		sched:   engine.NewManualScheduler(testEpoch),
		tone:    &recordingTone{},
		display: &recordingDisplay{},
		reg:     status.NewRegistry(),
	}

	e, err := New(cfg, rig.sched, rig.tone, rig.display, zerolog.Nop(), rig.reg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	rig.engine = e
	return rig
}

// takeOverAt starts the metronome, lets it run for lead, then takes over and returns the takeover instant
func (r *testRig) takeOverAt(t *testing.T, lead time.Duration) time.Time {
	t.Helper()

	if !r.engine.Start() {
		t.Fatal("Start rejected from Idle")
	}
	r.sched.Advance(lead)

	t0 := r.sched.Now()
	if !r.engine.TakeOver(t0) {
		t.Fatal("TakeOver rejected from MachineLed")
	}
	return t0
}
