package audio

import (
	"errors"
)

// Sentinel errors
var (
	ErrAudioUnavailable = errors.New("audio output unavailable")
)
