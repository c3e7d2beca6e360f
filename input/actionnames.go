package input

// actionRegistry maps canonical action names to intents
// Used by the keymap loader to resolve config action strings to bindings
var actionRegistry = map[string]Intent{
	// Unbind sentinel
	"none": IntentNone,

	"beat":         IntentBeat,
	"takeover":     IntentTakeOver,
	"start":        IntentStart,
	"end_session":  IntentEndSession,
	"tempo_up":     IntentTempoUp,
	"tempo_down":   IntentTempoDown,
	"reset":        IntentReset,
	"toggle_mute":  IntentToggleMute,
	"toggle_debug": IntentToggleDebug,
	"quit":         IntentQuit,
}

var intentNames = func() map[Intent]string {
	m := make(map[Intent]string, len(actionRegistry))
	for name, intent := range actionRegistry {
		m[intent] = name
	}
	return m
}()

// ActionIntent returns the intent for an action name
func ActionIntent(name string) (Intent, bool) {
	i, ok := actionRegistry[name]
	return i, ok
}
