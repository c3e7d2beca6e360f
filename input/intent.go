package input

import "time"

// Intent is a semantic game action decoded from a key
type Intent uint8

const (
	IntentNone Intent = iota

	// Rhythm
	IntentBeat       // Space, Enter - context beat input
	IntentTakeOver   // t - explicit takeover
	IntentStart      // s - (re)start metronome
	IntentEndSession // e - end user session

	// Tempo
	IntentTempoUp   // Up, +, k
	IntentTempoDown // Down, -, j

	// System
	IntentReset       // r, Ctrl+R
	IntentToggleMute  // m
	IntentToggleDebug // d
	IntentQuit        // q, Esc, Ctrl+C
)

func (i Intent) String() string {
	if name, ok := intentNames[i]; ok {
		return name
	}
	return "unknown"
}

// Event is an intent stamped with the key event's arrival time
type Event struct {
	Intent Intent
	When   time.Time
}
