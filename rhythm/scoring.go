package rhythm

import (
	"math"
	"time"
)

// ClampBPM returns max(lo, min(hi, bpm))
func ClampBPM(bpm, lo, hi int) int {
	if bpm < lo {
		return lo
	}
	if bpm > hi {
		return hi
	}
	return bpm
}

// BeatInterval is the nominal period between beats, 60000/bpm ms
func BeatInterval(bpm int) time.Duration {
	if bpm <= 0 {
		return 0
	}
	return time.Minute / time.Duration(bpm)
}

// MaxError is the tolerance half-width for a beat interval, rounded to the nanosecond
func MaxError(interval time.Duration, fraction float64) time.Duration {
	return time.Duration(math.Round(float64(interval) * fraction))
}

// TimingError is the absolute offset between a tap and its expected instant
func TimingError(tap, expected time.Time) time.Duration {
	d := tap.Sub(expected)
	if d < 0 {
		return -d
	}
	return d
}

// AccuracyPercent decays linearly from 100 at zero error to 0 at maxErr and beyond
func AccuracyPercent(timingError, maxErr time.Duration) float64 {
	if maxErr <= 0 {
		if timingError == 0 {
			return 100
		}
		return 0
	}
	return math.Max(0, 100-100*float64(timingError)/float64(maxErr))
}

// Reward is floor(accuracy * (1 + 0.1*streak))
// Computed in tenths to keep exact products like 100*1.1 from landing a hair below the integer
func Reward(accuracy float64, streak int) int {
	if accuracy <= 0 {
		return 0
	}
	return int(math.Floor(accuracy * float64(10+streak) / 10))
}

// SessionAccuracy is the floored mean per-tap accuracy of beats against an ideal grid
// anchored at beats[0]; the anchor tap contributes exactly 100
func SessionAccuracy(beats []time.Time, interval, maxErr time.Duration) int {
	if len(beats) == 0 {
		return 0
	}

	total := 100.0
	for i := 1; i < len(beats); i++ {
		ideal := beats[0].Add(time.Duration(i) * interval)
		total += AccuracyPercent(TimingError(beats[i], ideal), maxErr)
	}
	return int(math.Floor(total / float64(len(beats))))
}
