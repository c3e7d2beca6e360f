package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/lixenwraith/vibe-beat/rhythm"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func noEnv(string) (string, bool) { return "", false }

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Expected defaults valid, got %v", err)
	}

	rc, err := cfg.Rhythm()
	if err != nil {
		t.Fatalf("Rhythm failed: %v", err)
	}
	if rc != rhythm.DefaultConfig() {
		t.Errorf("Expected default rhythm config, got %+v", rc)
	}
	if cfg.Log.File != "" {
		t.Errorf("Expected logging off by default, got %q", cfg.Log.File)
	}
}

func TestLoadYAMLOverlaysDefaults(t *testing.T) {
	path := writeFile(t, "vibe-beat.yaml", `
game:
  bpm: 90
  takeover: immediate
  session_duration: 30s
audio:
  master_volume: 0.4
keys:
  x: beat
log:
  file: /tmp/vibe-beat.log
  level: debug
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Game.BPM != 90 {
		t.Errorf("Expected BPM 90, got %d", cfg.Game.BPM)
	}
	if cfg.Game.SessionDuration != 30*time.Second {
		t.Errorf("Expected 30s session, got %v", cfg.Game.SessionDuration)
	}
	if cfg.Game.BPMMax != 200 {
		t.Errorf("Expected untouched default BPM max 200, got %d", cfg.Game.BPMMax)
	}
	if !cfg.Audio.Enabled {
		t.Error("Expected audio still enabled")
	}
	if cfg.Audio.MasterVolume != 0.4 {
		t.Errorf("Expected volume 0.4, got %f", cfg.Audio.MasterVolume)
	}
	if cfg.Keys["x"] != "beat" {
		t.Errorf("Expected key override, got %v", cfg.Keys)
	}

	rc, err := cfg.Rhythm()
	if err != nil {
		t.Fatalf("Rhythm failed: %v", err)
	}
	if rc.Takeover != rhythm.TakeoverImmediate {
		t.Errorf("Expected immediate policy, got %v", rc.Takeover)
	}

	lvl, err := cfg.LogLevel()
	if err != nil || lvl != zerolog.DebugLevel {
		t.Errorf("Expected debug level, got %v (%v)", lvl, err)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, ErrConfigRead) {
		t.Errorf("Expected ErrConfigRead for missing file, got %v", err)
	}

	path := writeFile(t, "bad.yaml", "game: [unterminated")
	if _, err := Load(path); !errors.Is(err, ErrConfigRead) {
		t.Errorf("Expected ErrConfigRead for bad YAML, got %v", err)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeFile(t, "vibe-beat.yaml", "game:\n  bpm: 90\n")
	t.Setenv(EnvBPM, "140")
	t.Setenv(EnvMasterVolume, "150")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Game.BPM != 140 {
		t.Errorf("Expected env BPM 140, got %d", cfg.Game.BPM)
	}
	if cfg.Audio.MasterVolume != 1 {
		t.Errorf("Expected volume clamped to 1, got %f", cfg.Audio.MasterVolume)
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvTakeover:     "immediate",
		EnvTolerance:    "0.25",
		EnvSession:      "20s",
		EnvAudioEnabled: "false",
		EnvMuted:        "1",
		EnvMasterVolume: "50",
		EnvSampleRate:   "44100",
		EnvLogFile:      "game.log",
		EnvLogLevel:     "warn",
	}
	cfg := Default()
	ApplyEnv(cfg, func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})

	if cfg.Game.Takeover != "immediate" || cfg.Game.Tolerance != 0.25 || cfg.Game.SessionDuration != 20*time.Second {
		t.Errorf("Unexpected game config %+v", cfg.Game)
	}
	if cfg.Audio.Enabled || !cfg.Audio.Muted || cfg.Audio.MasterVolume != 0.5 || cfg.Audio.SampleRate != 44100 {
		t.Errorf("Unexpected audio config %+v", cfg.Audio)
	}
	if cfg.Log.File != "game.log" || cfg.Log.Level != "warn" {
		t.Errorf("Unexpected log config %+v", cfg.Log)
	}
}

func TestApplyEnvIgnoresInvalid(t *testing.T) {
	env := map[string]string{
		EnvBPM:        "fast",
		EnvSampleRate: "-1000",
		EnvSession:    "soon",
	}
	cfg := Default()
	ApplyEnv(cfg, func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})

	def := Default()
	if cfg.Game.BPM != def.Game.BPM || cfg.Audio.SampleRate != def.Audio.SampleRate || cfg.Game.SessionDuration != def.Game.SessionDuration {
		t.Errorf("Expected defaults kept for invalid values, got %+v %+v", cfg.Game, cfg.Audio)
	}
}

func TestValidateRejects(t *testing.T) {
	cfg := Default()
	cfg.Game.Takeover = "eventually"
	if err := cfg.Validate(); !errors.Is(err, rhythm.ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig for unknown policy, got %v", err)
	}

	cfg = Default()
	cfg.Game.BPMMin, cfg.Game.BPMMax = 200, 60
	if err := cfg.Validate(); !errors.Is(err, rhythm.ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig for inverted range, got %v", err)
	}

	cfg = Default()
	cfg.Log.Level = "chatty"
	if err := cfg.Validate(); err == nil {
		t.Error("Expected error for unknown log level")
	}
}

func TestAudioSettingsNormalized(t *testing.T) {
	cfg := Default()
	cfg.Audio.MasterVolume = 3
	cfg.Audio.SampleRate = 0

	a := cfg.AudioSettings()
	if a.MasterVolume != 1 || a.SampleRate != 48000 {
		t.Errorf("Expected normalized audio config, got %+v", a)
	}
}

func TestLoadEnvFile(t *testing.T) {
	const key = "VIBE_BEAT_TEST_ENV_FILE_VALUE"
	path := writeFile(t, ".env", key+"=loaded\n")
	t.Cleanup(func() { os.Unsetenv(key) })

	if err := LoadEnvFile(path); err != nil {
		t.Fatalf("LoadEnvFile failed: %v", err)
	}
	if got := os.Getenv(key); got != "loaded" {
		t.Errorf("Expected loaded, got %q", got)
	}

	if err := LoadEnvFile(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Errorf("Expected missing env file ignored, got %v", err)
	}
}

func TestNoEnvKeepsDefaults(t *testing.T) {
	cfg := Default()
	ApplyEnv(cfg, noEnv)
	if cfg.Game.BPM != Default().Game.BPM {
		t.Errorf("Expected default BPM, got %d", cfg.Game.BPM)
	}
}
