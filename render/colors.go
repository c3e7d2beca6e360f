package render

import (
	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/vibe-beat/constants"
	"github.com/lixenwraith/vibe-beat/rhythm"
)

// Palette
var (
	RgbBackground = RGB{26, 27, 38}    // Tokyo Night background
	RgbTitle      = RGB{255, 255, 255} // White
	RgbText       = RGB{200, 200, 200} // Light gray
	RgbDim        = RGB{90, 90, 110}   // Muted gray-blue
	RgbCircleIdle = RGB{60, 60, 80}    // Unlit circle ring

	RgbMachinePulse = RGB{100, 150, 255} // Blue for metronome beats
	RgbUserPulse    = RGB{255, 165, 0}   // Orange for player taps

	RgbGood = RGB{0, 200, 0}    // Green
	RgbFair = RGB{255, 255, 0}  // Yellow
	RgbPoor = RGB{255, 80, 80}  // Red
	RgbOver = RGB{200, 50, 200} // Purple for game over
)

// ToleranceColor grades a per-tap accuracy percent
func ToleranceColor(accuracy float64) RGB {
	switch {
	case accuracy > constants.ToleranceGoodThreshold:
		return RgbGood
	case accuracy > constants.ToleranceFairThreshold:
		return RgbFair
	default:
		return RgbPoor
	}
}

// CountdownColor grades the remaining session seconds
func CountdownColor(secondsLeft int) RGB {
	switch {
	case secondsLeft <= constants.CountdownCriticalSeconds:
		return RgbPoor
	case secondsLeft <= constants.CountdownWarnSeconds:
		return RgbFair
	default:
		return RgbGood
	}
}

// PulseColor is the lit circle color for a channel
func PulseColor(ch rhythm.Channel) RGB {
	if ch == rhythm.ChannelUser {
		return RgbUserPulse
	}
	return RgbMachinePulse
}

func style(fg RGB) tcell.Style {
	return tcell.StyleDefault.Foreground(fg.Color()).Background(RgbBackground.Color())
}
