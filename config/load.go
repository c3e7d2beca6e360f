package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variable names
const (
	EnvBPM          = "VIBE_BEAT_BPM"
	EnvTakeover     = "VIBE_BEAT_TAKEOVER"
	EnvTolerance    = "VIBE_BEAT_TOLERANCE"
	EnvSession      = "VIBE_BEAT_SESSION_DURATION"
	EnvAudioEnabled = "VIBE_BEAT_AUDIO_ENABLED"
	EnvMuted        = "VIBE_BEAT_MUTED"
	EnvMasterVolume = "VIBE_BEAT_MASTER_VOLUME"
	EnvSampleRate   = "VIBE_BEAT_SAMPLE_RATE"
	EnvLogFile      = "VIBE_BEAT_LOG_FILE"
	EnvLogLevel     = "VIBE_BEAT_LOG_LEVEL"
)

// Load builds the configuration from defaults, an optional YAML file, then the environment
// An empty path skips the file
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrConfigRead, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("%w: parse %s: %w", ErrConfigRead, path, err)
		}
	}

	ApplyEnv(cfg, os.LookupEnv)
	return cfg, nil
}

// LoadEnvFile loads .env style files into the process environment without overriding set variables
// Missing files are not an error
func LoadEnvFile(paths ...string) error {
	if err := godotenv.Load(paths...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: env file: %w", ErrConfigRead, err)
	}
	return nil
}

// ApplyEnv overlays VIBE_BEAT_* variables onto cfg
// Unparseable values are ignored and the previous setting kept
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvBPM); ok {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Game.BPM = n
		}
	}
	if v, ok := lookup(EnvTakeover); ok && v != "" {
		cfg.Game.Takeover = v
	}
	if v, ok := lookup(EnvTolerance); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Game.Tolerance = f
		}
	}
	if v, ok := lookup(EnvSession); ok {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Game.SessionDuration = d
		}
	}

	if v, ok := lookup(EnvAudioEnabled); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Audio.Enabled = b
		}
	}
	if v, ok := lookup(EnvMuted); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Audio.Muted = b
		}
	}
	// Master volume is given in percent (0-100)
	if v, ok := lookup(EnvMasterVolume); ok {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Audio.MasterVolume = min(max(float64(n)/100.0, 0), 1)
		}
	}
	if v, ok := lookup(EnvSampleRate); ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Audio.SampleRate = n
		}
	}

	if v, ok := lookup(EnvLogFile); ok {
		cfg.Log.File = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		cfg.Log.Level = v
	}
}
