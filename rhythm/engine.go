package rhythm

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/lixenwraith/vibe-beat/engine"
	"github.com/lixenwraith/vibe-beat/status"
)

// Engine is the beat-timing state machine and scorer
// Not safe for concurrent use: every entry point and every timer callback must run on the
// scheduler's single goroutine (engine.Loop guarantees this for its own timers)
type Engine struct {
	cfg     Config
	sched   engine.Scheduler
	tone    ToneEmitter
	display Display
	log     zerolog.Logger

	state State

	// Timer handles, zero when inactive
	beatTimer      engine.Handle
	missTimer      engine.Handle
	countdownTimer engine.Handle

	// Most recent miss, retracted if a tap stamped before its detection arrives later
	lastMiss missRecord

	sessionID    uuid.UUID
	sessionStart time.Time
	lastResult   SessionResult
	hasResult    bool

	// Cached metric pointers
	statBeats     *atomic.Int64
	statTaps      *atomic.Int64
	statOnTime    *atomic.Int64
	statMisses    *atomic.Int64
	statFaults    *atomic.Int64
	statSessions  *atomic.Int64
	statLastError *status.AtomicFloat
}

// missRecord is the state a miss detection overwrote
type missRecord struct {
	at       time.Time
	expected time.Time
	streak   int
	valid    bool
}

// New creates an engine in Idle mode
// tone and display may be nil; a nil registry gets a private one
func New(cfg Config, sched engine.Scheduler, tone ToneEmitter, display Display, logger zerolog.Logger, reg *status.Registry) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if sched == nil {
		return nil, errors.New("rhythm engine requires a scheduler")
	}
	if tone == nil {
		tone = nopTone{}
	}
	if display == nil {
		display = nopDisplay{}
	}
	if reg == nil {
		reg = status.NewRegistry()
	}

	e := &Engine{
		cfg:           cfg,
		sched:         sched,
		tone:          tone,
		display:       display,
		log:           logger.With().Str("component", "rhythm").Logger(),
		statBeats:     reg.Ints.Get("rhythm.beats"),
		statTaps:      reg.Ints.Get("rhythm.taps"),
		statOnTime:    reg.Ints.Get("rhythm.ontime"),
		statMisses:    reg.Ints.Get("rhythm.misses"),
		statFaults:    reg.Ints.Get("rhythm.faults"),
		statSessions:  reg.Ints.Get("rhythm.sessions"),
		statLastError: reg.Floats.Get("rhythm.last_error_ms"),
	}
	e.state = State{Mode: ModeIdle, BPM: cfg.ClampBPM(cfg.DefaultBPM)}

	return e, nil
}

// Config returns the engine's configuration
func (e *Engine) Config() Config {
	return e.cfg
}

// State returns a copy of the current state
func (e *Engine) State() State {
	return e.state.clone()
}

// Mode returns the current mode
func (e *Engine) Mode() Mode {
	return e.state.Mode
}

// LastResult returns the most recent finished session
func (e *Engine) LastResult() (SessionResult, bool) {
	return e.lastResult, e.hasResult
}

// Snapshot builds the display view of the current state
func (e *Engine) Snapshot() Snapshot {
	s := e.state
	bounded := e.cfg.Takeover == TakeoverNatural && (s.Mode == ModeUserLed || s.Mode == ModeEnded)
	return Snapshot{
		Mode:      s.Mode,
		BPM:       s.BPM,
		Accuracy:  s.Accuracy,
		Streak:    s.Streak,
		MaxStreak: s.MaxStreak,
		Score:     s.Score,
		Misses:    s.Misses,
		TimeLeft:  s.TimeLeft,
		Bounded:   bounded,
	}
}

// BeatInterval is the current nominal beat period
func (e *Engine) BeatInterval() time.Duration {
	return BeatInterval(e.state.BPM)
}

// MaxError is the current on-time tolerance
func (e *Engine) MaxError() time.Duration {
	return MaxError(e.BeatInterval(), e.cfg.ToleranceFraction)
}

// ===== TEMPO =====

// SetBPM clamps and applies a tempo; only honored while Idle
func (e *Engine) SetBPM(bpm int) bool {
	if e.state.Mode != ModeIdle {
		e.log.Debug().Int("bpm", bpm).Stringer("mode", e.state.Mode).Msg("tempo change ignored")
		return false
	}

	e.state.BPM = e.cfg.ClampBPM(bpm)
	e.publish()
	return true
}

// AdjustBPM moves the tempo by steps multiples of the configured step
func (e *Engine) AdjustBPM(steps int) bool {
	return e.SetBPM(e.state.BPM + steps*e.cfg.BPMStep)
}

// ===== TRANSITIONS =====

// Start enters MachineLed and emits a beat now and every beat interval after
// Allowed from Idle, and from MachineLed as a restart
func (e *Engine) Start() bool {
	switch e.state.Mode {
	case ModeIdle, ModeMachineLed:
	default:
		return false
	}

	e.cancelTimers()
	e.restoreMachine()

	interval := e.BeatInterval()
	e.state.Mode = ModeMachineLed
	e.state.BeatCount = 0
	e.state.LastBeat = e.sched.Now()

	e.log.Info().Int("bpm", e.state.BPM).Dur("interval", interval).Msg("metronome started")

	e.emitBeat()
	e.beatTimer = e.sched.ScheduleRepeating(interval, e.emitBeat)

	e.publish()
	return true
}

// TakeOver hands the rhythm to the player; only honored while MachineLed
// Under TakeoverNatural the invoking input is recorded as the first user beat and the
// session countdown starts
func (e *Engine) TakeOver(now time.Time) bool {
	if e.state.Mode != ModeMachineLed {
		return false
	}

	interval := e.BeatInterval()
	naturalBeat := e.state.LastBeat.Add(interval)

	e.cancelTimers()
	e.fadeMachine(time.Duration(e.cfg.FadeBeats * float64(interval)))

	e.state.Mode = ModeUserLed
	e.state.BeatCount = 0
	e.state.UserBeats = make([]time.Time, 0, 64)
	e.state.Streak = 0
	e.state.MaxStreak = 0
	e.state.Score = 0
	e.state.Accuracy = 0
	e.state.Misses = 0
	e.state.TimeLeft = 0

	e.lastMiss = missRecord{}
	e.sessionID = uuid.New()
	e.sessionStart = now
	e.statSessions.Add(1)

	if e.cfg.Takeover == TakeoverNatural {
		e.state.UserBeats = append(e.state.UserBeats, now)
		e.state.Accuracy = SessionAccuracy(e.state.UserBeats, interval, e.MaxError())
		e.state.TimeLeft = e.cfg.sessionTicks()
		e.statTaps.Add(1)

		e.play(userTapTone)
		e.pulse(ChannelUser)

		e.countdownTimer = e.sched.ScheduleRepeating(e.cfg.CountdownInterval, e.countdownTick)
	}

	e.state.ExpectedBeat = now.Add(interval)
	e.missTimer = e.sched.ScheduleRepeating(e.cfg.MissCheckInterval, e.checkMiss)

	e.log.Info().
		Str("session", e.sessionID.String()).
		Stringer("policy", e.cfg.Takeover).
		Dur("offset", now.Sub(naturalBeat)).
		Msg("player took control")

	e.publish()
	return true
}

// EndSession stops a user-led session and freezes its results; only honored while UserLed
func (e *Engine) EndSession() (SessionResult, bool) {
	if e.state.Mode != ModeUserLed {
		return SessionResult{}, false
	}

	e.cancelTimers()
	e.state.Mode = ModeEnded

	result := SessionResult{
		ID:        e.sessionID,
		BPM:       e.state.BPM,
		Score:     e.state.Score,
		MaxStreak: e.state.MaxStreak,
		Accuracy:  e.state.Accuracy,
		Taps:      len(e.state.UserBeats),
		Misses:    e.state.Misses,
		Started:   e.sessionStart,
		Ended:     e.sched.Now(),
	}
	e.lastResult = result
	e.hasResult = true

	e.play(sessionEndTone)

	e.log.Info().
		Str("session", result.ID.String()).
		Int("bpm", result.BPM).
		Int("score", result.Score).
		Int("max_streak", result.MaxStreak).
		Int("accuracy", result.Accuracy).
		Int("taps", result.Taps).
		Int("misses", result.Misses).
		Dur("duration", result.Duration()).
		Msg("game over")

	e.publish()
	return result, true
}

// Reset cancels all timers and returns to Idle with zeroed counters; the tempo is kept
func (e *Engine) Reset() {
	e.cancelTimers()
	e.restoreMachine()

	prev := e.state.Mode
	e.state = State{Mode: ModeIdle, BPM: e.state.BPM}
	e.lastMiss = missRecord{}

	if prev != ModeIdle {
		e.log.Info().Stringer("from", prev).Msg("reset")
	}
	e.publish()
}

// ===== INPUT =====

// HandleInput dispatches a beat input on the current mode:
// Idle starts the metronome, MachineLed takes over (natural policy only),
// UserLed evaluates a tap, Ended ignores it
func (e *Engine) HandleInput(now time.Time) bool {
	switch e.state.Mode {
	case ModeIdle:
		return e.Start()
	case ModeMachineLed:
		if e.cfg.Takeover == TakeoverNatural {
			return e.TakeOver(now)
		}
		return false
	case ModeUserLed:
		_, ok := e.Tap(now)
		return ok
	default:
		return false
	}
}

// Tap scores one user beat against the expected instant; only honored while UserLed
func (e *Engine) Tap(now time.Time) (TapResult, bool) {
	if e.state.Mode != ModeUserLed {
		return TapResult{}, false
	}

	e.retractMiss(now)

	interval := e.BeatInterval()
	maxErr := MaxError(interval, e.cfg.ToleranceFraction)
	timingErr := TimingError(now, e.state.ExpectedBeat)

	e.state.UserBeats = append(e.state.UserBeats, now)

	result := TapResult{TimingError: timingErr, MaxError: maxErr}
	if timingErr <= maxErr {
		acc := AccuracyPercent(timingErr, maxErr)
		e.state.Streak++
		e.state.Score += Reward(acc, e.state.Streak)
		e.state.BeatCount++
		result.AccuracyPercent = acc
		result.OnTime = true
		e.statOnTime.Add(1)
	} else {
		e.state.Streak = 0
	}

	e.state.Accuracy = SessionAccuracy(e.state.UserBeats, interval, maxErr)
	if e.state.Streak > e.state.MaxStreak {
		e.state.MaxStreak = e.state.Streak
	}

	// Re-anchor on the actual tap so one bad tap does not shift every later window
	e.state.ExpectedBeat = now.Add(interval)

	result.Streak = e.state.Streak
	result.Score = e.state.Score

	e.statTaps.Add(1)
	e.statLastError.Set(float64(timingErr) / float64(time.Millisecond))

	e.log.Debug().
		Dur("error", timingErr).
		Dur("max_error", maxErr).
		Bool("on_time", result.OnTime).
		Int("streak", result.Streak).
		Int("score", result.Score).
		Msg("tap")

	e.play(userTapTone)
	e.pulse(ChannelUser)
	e.feedback(TapFeedback{
		TimingError:     timingErr,
		MaxError:        maxErr,
		AccuracyPercent: result.AccuracyPercent,
		OnTime:          result.OnTime,
	})
	e.publish()

	return result, true
}

// ===== TIMER CALLBACKS =====

// emitBeat is the metronome tick
func (e *Engine) emitBeat() {
	if e.state.Mode != ModeMachineLed {
		return
	}

	e.state.LastBeat = e.sched.Now()
	e.state.BeatCount++
	e.statBeats.Add(1)

	e.play(machineBeatTone)
	e.pulse(ChannelMachine)
}

// checkMiss resets the streak when the expected beat passed without a tap inside tolerance
func (e *Engine) checkMiss() {
	if e.state.Mode != ModeUserLed {
		return
	}

	now := e.sched.Now()
	if now.Sub(e.state.ExpectedBeat) <= e.MaxError() {
		return
	}

	e.lastMiss = missRecord{
		at:       now,
		expected: e.state.ExpectedBeat,
		streak:   e.state.Streak,
		valid:    true,
	}

	e.state.Streak = 0
	e.state.Misses++
	// Re-anchor from detection time so silence does not pile up a backlog of misses
	e.state.ExpectedBeat = now.Add(e.BeatInterval())
	e.statMisses.Add(1)

	e.log.Debug().Int("misses", e.state.Misses).Msg("missed beat")
	e.publish()
}

// retractMiss undoes the last miss when the tap at now happened before it was detected
// Taps carry their input timestamp while detection runs on the scheduler, so a tap queued
// behind a miss check is scored as if it had been processed first
func (e *Engine) retractMiss(now time.Time) {
	m := e.lastMiss
	e.lastMiss = missRecord{}
	if !m.valid || !now.Before(m.at) {
		return
	}

	e.state.ExpectedBeat = m.expected
	e.state.Streak = m.streak
	e.state.Misses--
	e.statMisses.Add(-1)

	e.log.Debug().Dur("before_detection", m.at.Sub(now)).Msg("miss retracted by earlier tap")
}

// countdownTick decrements the bounded session clock
func (e *Engine) countdownTick() {
	if e.state.Mode != ModeUserLed {
		return
	}

	e.state.TimeLeft--
	if e.state.TimeLeft <= 0 {
		e.state.TimeLeft = 0
		e.EndSession()
		return
	}
	e.publish()
}

// ===== HELPERS =====

func (e *Engine) cancelTimers() {
	for _, h := range []*engine.Handle{&e.beatTimer, &e.missTimer, &e.countdownTimer} {
		if *h != 0 {
			e.sched.Cancel(*h)
			*h = 0
		}
	}
}

// safely isolates scoring from presentation faults; state is committed before any call
func (e *Engine) safely(what string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			e.statFaults.Add(1)
			e.log.Warn().Str("collaborator", what).Interface("panic", r).Msg("collaborator failed")
		}
	}()
	fn()
}

func (e *Engine) play(t Tone) {
	e.safely("tone", func() { e.tone.PlayTone(t) })
}

func (e *Engine) pulse(ch Channel) {
	e.safely("display", func() { e.display.Pulse(ch) })
}

func (e *Engine) feedback(f TapFeedback) {
	e.safely("display", func() { e.display.Feedback(f) })
}

func (e *Engine) publish() {
	snap := e.Snapshot()
	e.safely("display", func() { e.display.Update(snap) })
}

func (e *Engine) fadeMachine(over time.Duration) {
	fader, ok := e.tone.(ChannelFader)
	if !ok || over <= 0 {
		return
	}
	e.safely("tone", func() { fader.FadeOut(ChannelMachine, over) })
}

func (e *Engine) restoreMachine() {
	fader, ok := e.tone.(ChannelFader)
	if !ok {
		return
	}
	e.safely("tone", func() { fader.Restore(ChannelMachine) })
}
