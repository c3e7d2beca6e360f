package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/gdamore/tcell/v2"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/lixenwraith/vibe-beat/audio"
	"github.com/lixenwraith/vibe-beat/config"
	"github.com/lixenwraith/vibe-beat/constants"
	"github.com/lixenwraith/vibe-beat/core"
	"github.com/lixenwraith/vibe-beat/engine"
	"github.com/lixenwraith/vibe-beat/input"
	"github.com/lixenwraith/vibe-beat/render"
	"github.com/lixenwraith/vibe-beat/rhythm"
	"github.com/lixenwraith/vibe-beat/status"
)

var (
	configPath = flag.String("config", "", "Path to YAML config file")
	envPath    = flag.String("env", ".env", "Path to .env file")
	bpmFlag    = flag.Int("bpm", 0, "Initial tempo in beats per minute")
	takeover   = flag.String("takeover", "", "Takeover policy: natural or immediate")
	logPath    = flag.String("log", "", "Log file path (logging disabled when empty)")
	logLevel   = flag.String("log-level", "", "Log level: debug, info, warn, error")
	muteFlag   = flag.Bool("mute", false, "Start with audio muted")
	noAudio    = flag.Bool("no-audio", false, "Disable audio output")
	debugFlag  = flag.Bool("debug", false, "Show the metrics line")
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			core.HandleCrash(r)
		}
	}()

	flag.Parse()

	if err := config.LoadEnvFile(*envPath); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	applyFlags(cfg)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	level, _ := cfg.LogLevel()
	logFile, err := setupLogging(cfg.Log.File, level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	if logFile != nil {
		defer logFile.Close()
	}

	rcfg, err := cfg.Rhythm()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create screen: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize screen: %v\n", err)
		os.Exit(1)
	}
	defer screen.Fini()
	core.SetRestoreHook(screen.Fini)

	reg := status.NewRegistry()
	clock := clockwork.NewRealClock()

	loop := engine.NewLoop(clock, constants.LoopQueueSize, log.Logger, reg)

	display := render.NewDisplay(engine.NewTimeProvider(clock), reg)
	if *debugFlag {
		display.ToggleDebug()
	}

	// Audio failure is non-fatal; the game runs silent
	tones := audio.NewToneEmitter(cfg.AudioSettings(), log.Logger, reg)
	if err := tones.Start(); err != nil {
		log.Warn().Err(err).Msg("audio unavailable, running silent")
	}
	defer tones.Close()
	tones.SetMuted(cfg.Audio.Muted)
	display.SetMuted(cfg.Audio.Muted)

	game, err := rhythm.New(rcfg, loop, tones, display, log.Logger, reg)
	if err != nil {
		screen.Fini()
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	keys, err := input.LoadKeyConfig(cfg.Keys)
	if err != nil {
		log.Warn().Err(err).Msg("ignoring key overrides")
		keys = nil
	}
	machine := input.NewMachine(input.MergeKeyTable(input.DefaultKeyTable(), keys))

	loop.Start()
	defer loop.Stop()
	loop.Do(game.Reset)

	log.Info().
		Int("bpm", rcfg.DefaultBPM).
		Stringer("takeover", rcfg.Takeover).
		Bool("audio", !tones.IsSilent()).
		Msg("vibe-beat started")

	eventChan := make(chan tcell.Event, constants.InputQueueSize)
	core.Go(func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			eventChan <- ev
		}
	})

	ticker := clock.NewTicker(constants.FrameUpdateInterval)
	defer ticker.Stop()

	display.Draw(screen, clock.Now())

	for {
		select {
		case ev := <-eventChan:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if !dispatch(machine.Translate(ev), loop, game, tones, display) {
					log.Info().Msg("quit requested")
					return
				}
			case *tcell.EventResize:
				screen.Sync()
			}

		case <-ticker.Chan():
			display.Draw(screen, clock.Now())
		}
	}
}

// applyFlags overlays explicitly set command-line flags onto cfg
func applyFlags(cfg *config.Config) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "bpm":
			cfg.Game.BPM = *bpmFlag
		case "takeover":
			cfg.Game.Takeover = *takeover
		case "log":
			cfg.Log.File = *logPath
		case "log-level":
			cfg.Log.Level = *logLevel
		case "mute":
			cfg.Audio.Muted = *muteFlag
		case "no-audio":
			cfg.Audio.Enabled = !*noAudio
		}
	})
}

// mutator is the subset of the tone emitter the input path toggles
type mutator interface {
	ToggleMute() bool
}

// indicator is the subset of the display the input path updates directly
type indicator interface {
	SetMuted(bool)
	ToggleDebug() bool
}

// poster hands work to the loop goroutine that owns the engine
type poster interface {
	Post(fn func()) bool
}

// dispatch routes one input event; returns false when the app should exit
// Presentation toggles run inline, everything touching game state is posted to the loop
func dispatch(ev input.Event, loop poster, game *rhythm.Engine, tones mutator, display indicator) bool {
	switch ev.Intent {
	case input.IntentNone:
		return true
	case input.IntentQuit:
		return false
	case input.IntentToggleMute:
		display.SetMuted(tones.ToggleMute())
		return true
	case input.IntentToggleDebug:
		display.ToggleDebug()
		return true
	}

	if !loop.Post(func() { apply(game, ev) }) {
		log.Warn().Stringer("intent", ev.Intent).Msg("input dropped, loop stopped")
	}
	return true
}

// apply runs an intent against the engine; must be called on the loop goroutine
func apply(game *rhythm.Engine, ev input.Event) {
	switch ev.Intent {
	case input.IntentBeat:
		game.HandleInput(ev.When)
	case input.IntentTakeOver:
		game.TakeOver(ev.When)
	case input.IntentStart:
		game.Start()
	case input.IntentEndSession:
		if res, ok := game.EndSession(); ok {
			log.Info().
				Int("score", res.Score).
				Int("accuracy", res.Accuracy).
				Int("max_streak", res.MaxStreak).
				Msg("session ended")
		}
	case input.IntentTempoUp:
		game.AdjustBPM(1)
	case input.IntentTempoDown:
		game.AdjustBPM(-1)
	case input.IntentReset:
		game.Reset()
	}
}
