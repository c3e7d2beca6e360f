package constants

import "time"

// Button Labels
const (
	LabelIdle       = "START TEMPO"
	LabelMachineLed = "PLAYING..."
	LabelUserLed    = "USER PLAYING"
	LabelEndedFmt   = "GAME OVER! Score: %d"
)

// Display Timing
const (
	// PulseDuration is how long the beat circle stays lit after a beat
	PulseDuration = 120 * time.Millisecond
)

// Tolerance Bar Thresholds (accuracy percent)
const (
	ToleranceGoodThreshold = 70
	ToleranceFairThreshold = 40
)

// Countdown Thresholds (seconds left)
const (
	CountdownWarnSeconds     = 10
	CountdownCriticalSeconds = 5
)

// Layout
const (
	// ToleranceBarWidth is the cell width of the tolerance indicator
	ToleranceBarWidth = 40

	// CircleRadius is the beat circle radius in rows
	CircleRadius = 3
)
