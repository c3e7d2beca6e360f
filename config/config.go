package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/lixenwraith/vibe-beat/audio"
	"github.com/lixenwraith/vibe-beat/rhythm"
)

// ErrConfigRead is wrapped by file read and parse failures
var ErrConfigRead = errors.New("config read failed")

// Config is the full application configuration
type Config struct {
	Game  GameConfig        `yaml:"game"`
	Audio AudioConfig       `yaml:"audio"`
	Log   LogConfig         `yaml:"log"`
	Keys  map[string]string `yaml:"keys"` // key name → action name overrides
}

// GameConfig maps onto rhythm.Config
type GameConfig struct {
	BPM               int           `yaml:"bpm"`
	BPMMin            int           `yaml:"bpm_min"`
	BPMMax            int           `yaml:"bpm_max"`
	BPMStep           int           `yaml:"bpm_step"`
	Tolerance         float64       `yaml:"tolerance"`
	SessionDuration   time.Duration `yaml:"session_duration"`
	MissCheckInterval time.Duration `yaml:"miss_check_interval"`
	CountdownInterval time.Duration `yaml:"countdown_interval"`
	FadeBeats         float64       `yaml:"fade_beats"`
	Takeover          string        `yaml:"takeover"`
}

// AudioConfig maps onto audio.Config plus the initial mute state
type AudioConfig struct {
	Enabled      bool    `yaml:"enabled"`
	Muted        bool    `yaml:"muted"`
	MasterVolume float64 `yaml:"master_volume"`
	SampleRate   int     `yaml:"sample_rate"`
	MachineGain  float64 `yaml:"machine_gain"`
	UserGain     float64 `yaml:"user_gain"`
}

// LogConfig selects the log sink; an empty file disables logging
type LogConfig struct {
	File  string `yaml:"file"`
	Level string `yaml:"level"`
}

// Default returns the built-in configuration
func Default() *Config {
	r := rhythm.DefaultConfig()
	a := audio.DefaultConfig()

	return &Config{
		Game: GameConfig{
			BPM:               r.DefaultBPM,
			BPMMin:            r.BPMMin,
			BPMMax:            r.BPMMax,
			BPMStep:           r.BPMStep,
			Tolerance:         r.ToleranceFraction,
			SessionDuration:   r.SessionDuration,
			MissCheckInterval: r.MissCheckInterval,
			CountdownInterval: r.CountdownInterval,
			FadeBeats:         r.FadeBeats,
			Takeover:          r.Takeover.String(),
		},
		Audio: AudioConfig{
			Enabled:      a.Enabled,
			MasterVolume: a.MasterVolume,
			SampleRate:   a.SampleRate,
			MachineGain:  a.MachineGain,
			UserGain:     a.UserGain,
		},
		Log: LogConfig{
			Level: zerolog.InfoLevel.String(),
		},
	}
}

// Rhythm converts to the engine configuration
func (c *Config) Rhythm() (rhythm.Config, error) {
	policy, ok := rhythm.ParseTakeoverPolicy(c.Game.Takeover)
	if !ok {
		return rhythm.Config{}, fmt.Errorf("%w: unknown takeover policy %q", rhythm.ErrInvalidConfig, c.Game.Takeover)
	}

	return rhythm.Config{
		BPMMin:            c.Game.BPMMin,
		BPMMax:            c.Game.BPMMax,
		BPMStep:           c.Game.BPMStep,
		DefaultBPM:        c.Game.BPM,
		ToleranceFraction: c.Game.Tolerance,
		SessionDuration:   c.Game.SessionDuration,
		MissCheckInterval: c.Game.MissCheckInterval,
		CountdownInterval: c.Game.CountdownInterval,
		FadeBeats:         c.Game.FadeBeats,
		Takeover:          policy,
	}, nil
}

// AudioSettings converts to the tone emitter configuration
func (c *Config) AudioSettings() audio.Config {
	return audio.Config{
		Enabled:      c.Audio.Enabled,
		MasterVolume: c.Audio.MasterVolume,
		SampleRate:   c.Audio.SampleRate,
		MachineGain:  c.Audio.MachineGain,
		UserGain:     c.Audio.UserGain,
	}.Normalize()
}

// LogLevel parses the configured level
func (c *Config) LogLevel() (zerolog.Level, error) {
	lvl, err := zerolog.ParseLevel(c.Log.Level)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("log level %q: %w", c.Log.Level, err)
	}
	return lvl, nil
}

// Validate reports the first unusable setting
func (c *Config) Validate() error {
	rc, err := c.Rhythm()
	if err != nil {
		return err
	}
	if err := rc.Validate(); err != nil {
		return err
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	return nil
}
