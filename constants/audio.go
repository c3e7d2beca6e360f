package constants

import "time"

// Audio Output
const (
	// DefaultSampleRate is the speaker sample rate
	DefaultSampleRate = 48000

	// SpeakerBufferDuration is the speaker buffer length, trades latency for underrun safety
	SpeakerBufferDuration = 30 * time.Millisecond

	// DefaultMasterVolume matches the master gain of the browser build
	DefaultMasterVolume = 0.7
)

// Machine Beat Tone
const (
	MachineToneFrequency = 800.0
	MachineToneDuration  = 100 * time.Millisecond
	MachineToneVolume    = 0.3
)

// User Tap Tone
const (
	UserToneFrequency = 400.0
	UserToneDuration  = 100 * time.Millisecond
	UserToneVolume    = 0.5
)

// Session End Tone
const (
	EndToneFrequency = 200.0
	EndToneDuration  = 500 * time.Millisecond
	EndToneVolume    = 0.4
)

// Tone Envelope
const (
	// ToneAttack is the linear ramp from silence to peak
	ToneAttack = 10 * time.Millisecond

	// ToneFloor is the gain an exponential release decays to
	ToneFloor = 0.001
)
