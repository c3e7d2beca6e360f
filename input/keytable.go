package input

import (
	"maps"

	"github.com/gdamore/tcell/v2"
)

// KeyTable maps keys to intents
type KeyTable struct {
	// Special keys (Ctrl+*, arrows, Enter, Esc)
	SpecialKeys map[tcell.Key]Intent

	// Printable rune bindings
	Runes map[rune]Intent
}

// DefaultKeyTable returns the default key bindings
func DefaultKeyTable() *KeyTable {
	return &KeyTable{
		SpecialKeys: map[tcell.Key]Intent{
			tcell.KeyEnter:  IntentBeat,
			tcell.KeyUp:     IntentTempoUp,
			tcell.KeyDown:   IntentTempoDown,
			tcell.KeyCtrlR:  IntentReset,
			tcell.KeyEscape: IntentQuit,
			tcell.KeyCtrlC:  IntentQuit,
		},

		Runes: map[rune]Intent{
			' ': IntentBeat,
			't': IntentTakeOver,
			's': IntentStart,
			'e': IntentEndSession,
			'+': IntentTempoUp,
			'=': IntentTempoUp,
			'k': IntentTempoUp,
			'-': IntentTempoDown,
			'j': IntentTempoDown,
			'r': IntentReset,
			'm': IntentToggleMute,
			'd': IntentToggleDebug,
			'q': IntentQuit,
		},
	}
}

// Clone returns a deep copy
func (kt *KeyTable) Clone() *KeyTable {
	return &KeyTable{
		SpecialKeys: maps.Clone(kt.SpecialKeys),
		Runes:       maps.Clone(kt.Runes),
	}
}
