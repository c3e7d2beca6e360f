package audio

import (
	"github.com/lixenwraith/vibe-beat/constants"
)

// Config holds tone emitter settings
type Config struct {
	Enabled      bool
	MasterVolume float64
	SampleRate   int

	// Per-channel gains applied before the master volume
	MachineGain float64
	UserGain    float64
}

// DefaultConfig returns the stock audio settings
func DefaultConfig() Config {
	return Config{
		Enabled:      true,
		MasterVolume: constants.DefaultMasterVolume,
		SampleRate:   constants.DefaultSampleRate,
		MachineGain:  1.0,
		UserGain:     1.0,
	}
}

// Normalize clamps volumes to [0,1] and replaces an unusable sample rate with the default
func (c Config) Normalize() Config {
	c.MasterVolume = clampUnit(c.MasterVolume)
	c.MachineGain = clampUnit(c.MachineGain)
	c.UserGain = clampUnit(c.UserGain)
	if c.SampleRate <= 0 {
		c.SampleRate = constants.DefaultSampleRate
	}
	return c
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
