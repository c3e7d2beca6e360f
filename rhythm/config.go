package rhythm

import (
	"errors"
	"fmt"
	"time"

	"github.com/lixenwraith/vibe-beat/constants"
)

// ErrInvalidConfig is wrapped by every Config validation failure
var ErrInvalidConfig = errors.New("invalid rhythm config")

// Config holds the tunable constants of a game session
type Config struct {
	BPMMin     int
	BPMMax     int
	BPMStep    int
	DefaultBPM int

	// ToleranceFraction is the half-width of the on-time window as a fraction of the beat interval
	ToleranceFraction float64

	// SessionDuration bounds a natural-takeover session
	SessionDuration time.Duration

	MissCheckInterval time.Duration
	CountdownInterval time.Duration

	// FadeBeats is the machine channel fade length after takeover, in beat intervals; zero disables fading
	FadeBeats float64

	Takeover TakeoverPolicy
}

// DefaultConfig returns the stock game settings
func DefaultConfig() Config {
	return Config{
		BPMMin:            constants.BPMMin,
		BPMMax:            constants.BPMMax,
		BPMStep:           constants.BPMStep,
		DefaultBPM:        constants.DefaultBPM,
		ToleranceFraction: constants.ToleranceFraction,
		SessionDuration:   constants.SessionDuration,
		MissCheckInterval: constants.MissCheckInterval,
		CountdownInterval: constants.CountdownInterval,
		FadeBeats:         constants.TakeoverFadeBeats,
		Takeover:          TakeoverNatural,
	}
}

// Validate reports the first inconsistency in c
func (c Config) Validate() error {
	switch {
	case c.BPMMin <= 0:
		return fmt.Errorf("%w: bpm min %d must be positive", ErrInvalidConfig, c.BPMMin)
	case c.BPMMin > c.BPMMax:
		return fmt.Errorf("%w: bpm min %d exceeds bpm max %d", ErrInvalidConfig, c.BPMMin, c.BPMMax)
	case c.BPMStep <= 0:
		return fmt.Errorf("%w: bpm step %d must be positive", ErrInvalidConfig, c.BPMStep)
	case c.ToleranceFraction <= 0 || c.ToleranceFraction > 1:
		return fmt.Errorf("%w: tolerance fraction %v outside (0,1]", ErrInvalidConfig, c.ToleranceFraction)
	case c.MissCheckInterval <= 0:
		return fmt.Errorf("%w: miss check interval %v must be positive", ErrInvalidConfig, c.MissCheckInterval)
	case c.FadeBeats < 0:
		return fmt.Errorf("%w: fade beats %v must not be negative", ErrInvalidConfig, c.FadeBeats)
	case c.Takeover != TakeoverNatural && c.Takeover != TakeoverImmediate:
		return fmt.Errorf("%w: unknown takeover policy %d", ErrInvalidConfig, c.Takeover)
	}

	if c.Takeover == TakeoverNatural {
		if c.CountdownInterval <= 0 {
			return fmt.Errorf("%w: countdown interval %v must be positive", ErrInvalidConfig, c.CountdownInterval)
		}
		if c.SessionDuration < c.CountdownInterval {
			return fmt.Errorf("%w: session duration %v shorter than countdown interval %v", ErrInvalidConfig, c.SessionDuration, c.CountdownInterval)
		}
	}
	return nil
}

// ClampBPM limits bpm to the configured range
func (c Config) ClampBPM(bpm int) int {
	return ClampBPM(bpm, c.BPMMin, c.BPMMax)
}

// sessionTicks is the countdown start value
func (c Config) sessionTicks() int {
	return int(c.SessionDuration / c.CountdownInterval)
}
