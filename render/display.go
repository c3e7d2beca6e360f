package render

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/lixenwraith/vibe-beat/constants"
	"github.com/lixenwraith/vibe-beat/engine"
	"github.com/lixenwraith/vibe-beat/rhythm"
	"github.com/lixenwraith/vibe-beat/status"
)

const helpText = "SPACE beat  T take over  S start  ↑/↓ tempo  E end  R reset  M mute  D debug  Q quit"

// Display implements rhythm.Display on a tcell screen
// The engine writes from the loop goroutine; Draw runs on the frame ticker
type Display struct {
	mu sync.Mutex

	snap     rhythm.Snapshot
	feedback rhythm.TapFeedback
	hasTap   bool

	pulseAt time.Time
	pulseCh rhythm.Channel

	debug bool
	muted bool

	clock *engine.TimeProvider
	reg   *status.Registry
}

// NewDisplay creates a display stamping pulses with clock; reg feeds the debug line and may be nil
func NewDisplay(clock *engine.TimeProvider, reg *status.Registry) *Display {
	if clock == nil {
		clock = engine.NewTimeProvider(nil)
	}
	return &Display{clock: clock, reg: reg}
}

// Update implements rhythm.Display
func (d *Display) Update(s rhythm.Snapshot) {
	d.mu.Lock()
	// A fresh session clears the last tap's bar
	if s.Mode != d.snap.Mode && (s.Mode == rhythm.ModeIdle || s.Mode == rhythm.ModeUserLed) {
		d.hasTap = false
	}
	d.snap = s
	d.mu.Unlock()
}

// Feedback implements rhythm.Display
func (d *Display) Feedback(f rhythm.TapFeedback) {
	d.mu.Lock()
	d.feedback = f
	d.hasTap = true
	d.mu.Unlock()
}

// Pulse implements rhythm.Display
func (d *Display) Pulse(ch rhythm.Channel) {
	now := d.clock.Now()
	d.mu.Lock()
	d.pulseAt = now
	d.pulseCh = ch
	d.mu.Unlock()
}

// ToggleDebug flips the metrics line and returns the new state
func (d *Display) ToggleDebug() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.debug = !d.debug
	return d.debug
}

// SetMuted updates the audio indicator
func (d *Display) SetMuted(muted bool) {
	d.mu.Lock()
	d.muted = muted
	d.mu.Unlock()
}

// frame is an immutable copy of display state for one draw
type frame struct {
	snap     rhythm.Snapshot
	feedback rhythm.TapFeedback
	hasTap   bool
	pulseAt  time.Time
	pulseCh  rhythm.Channel
	debug    bool
	muted    bool
}

func (d *Display) frame() frame {
	d.mu.Lock()
	defer d.mu.Unlock()
	return frame{
		snap:     d.snap,
		feedback: d.feedback,
		hasTap:   d.hasTap,
		pulseAt:  d.pulseAt,
		pulseCh:  d.pulseCh,
		debug:    d.debug,
		muted:    d.muted,
	}
}

// Draw renders the current state to screen as of now and shows it
func (d *Display) Draw(screen tcell.Screen, now time.Time) {
	f := d.frame()

	bg := style(RgbText)
	screen.SetStyle(bg)
	screen.Clear()

	w, _ := screen.Size()
	cx := w / 2
	y := 1

	drawCentered(screen, cx, y, style(RgbTitle).Bold(true), "VIBE BEAT")
	y += 2

	drawCentered(screen, cx, y, style(RgbText), fmt.Sprintf("◀ %d BPM ▶", f.snap.BPM))
	y += 2

	label, labelColor := ModeLabel(f.snap)
	drawCentered(screen, cx, y, style(labelColor).Bold(true), label)
	y += 2

	r := constants.CircleRadius
	drawCircle(screen, cx, y+r, r, circleColor(f, now), pulseActive(f, now))
	y += 2*r + 2

	drawToleranceBar(screen, cx, y, f)
	y += 2

	stats := fmt.Sprintf("Accuracy: %d%%   Streak: %d   Score: %d   Best: %d",
		f.snap.Accuracy, f.snap.Streak, f.snap.Score, f.snap.MaxStreak)
	drawCentered(screen, cx, y, style(RgbText), stats)
	y++

	countdown, cdColor := CountdownText(f.snap)
	drawCentered(screen, cx, y, style(cdColor), countdown)
	y += 2

	help := helpText
	if f.muted {
		help += "  [muted]"
	}
	drawCentered(screen, cx, y, style(RgbDim), help)
	y++

	if f.debug && d.reg != nil {
		drawCentered(screen, cx, y, style(RgbDim), strings.Join(d.reg.Lines(), "  "))
	}

	screen.Show()
}

// ModeLabel returns the status label and its color for a snapshot
func ModeLabel(s rhythm.Snapshot) (string, RGB) {
	switch s.Mode {
	case rhythm.ModeMachineLed:
		return constants.LabelMachineLed, RgbMachinePulse
	case rhythm.ModeUserLed:
		return constants.LabelUserLed, RgbUserPulse
	case rhythm.ModeEnded:
		return fmt.Sprintf(constants.LabelEndedFmt, s.Score), RgbOver
	default:
		return constants.LabelIdle, RgbTitle
	}
}

// CountdownText renders the session clock; "--" unless the session is bounded
// A finished session keeps its final value on screen
func CountdownText(s rhythm.Snapshot) (string, RGB) {
	if !s.Bounded || (s.Mode != rhythm.ModeUserLed && s.Mode != rhythm.ModeEnded) {
		return "Time: --", RgbDim
	}
	return fmt.Sprintf("Time: %ds", s.TimeLeft), CountdownColor(s.TimeLeft)
}

func pulseActive(f frame, now time.Time) bool {
	if f.pulseAt.IsZero() {
		return false
	}
	age := now.Sub(f.pulseAt)
	return age >= 0 && age < constants.PulseDuration
}

// circleColor fades the pulse color back to the idle ring as the pulse ages
func circleColor(f frame, now time.Time) RGB {
	if !pulseActive(f, now) {
		return RgbCircleIdle
	}
	alpha := 1 - float64(now.Sub(f.pulseAt))/float64(constants.PulseDuration)
	return RgbCircleIdle.Blend(PulseColor(f.pulseCh), alpha)
}

// drawCircle draws a radius-r circle centered on (cx, cy); cells are twice as tall as wide
func drawCircle(screen tcell.Screen, cx, cy, r int, color RGB, lit bool) {
	st := style(color)
	for dy := -r; dy <= r; dy++ {
		for dx := -2 * r; dx <= 2*r; dx++ {
			dist := math.Hypot(float64(dx)/2, float64(dy))
			if dist > float64(r)+0.25 {
				continue
			}
			switch {
			case lit:
				screen.SetContent(cx+dx, cy+dy, '█', nil, st)
			case dist >= float64(r)-0.75:
				screen.SetContent(cx+dx, cy+dy, '•', nil, st)
			}
		}
	}
}

// drawToleranceBar draws the last tap's accuracy as a filled bar with its timing error
func drawToleranceBar(screen tcell.Screen, cx, y int, f frame) {
	width := constants.ToleranceBarWidth
	x0 := cx - width/2

	filled := 0
	color := RgbDim
	if f.hasTap {
		filled = int(math.Round(f.feedback.AccuracyPercent / 100 * float64(width)))
		color = ToleranceColor(f.feedback.AccuracyPercent)
	}

	screen.SetContent(x0-1, y, '[', nil, style(RgbDim))
	for i := 0; i < width; i++ {
		if i < filled {
			screen.SetContent(x0+i, y, '█', nil, style(color))
		} else {
			screen.SetContent(x0+i, y, '░', nil, style(RgbDim))
		}
	}
	screen.SetContent(x0+width, y, ']', nil, style(RgbDim))

	if f.hasTap {
		verdict := "HIT"
		if !f.feedback.OnTime {
			verdict = "MISS"
		}
		label := fmt.Sprintf(" %3.0f%% %s ±%dms", f.feedback.AccuracyPercent, verdict, f.feedback.TimingError.Milliseconds())
		drawText(screen, x0+width+1, y, style(color), label)
	}
}

func drawCentered(screen tcell.Screen, cx, y int, st tcell.Style, s string) {
	drawText(screen, cx-runewidth.StringWidth(s)/2, y, st, s)
}

func drawText(screen tcell.Screen, x, y int, st tcell.Style, s string) {
	for _, r := range s {
		screen.SetContent(x, y, r, nil, st)
		x += runewidth.RuneWidth(r)
	}
}
