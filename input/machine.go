package input

import (
	"github.com/gdamore/tcell/v2"
)

// Machine decodes tcell key events into intents
type Machine struct {
	keyTable *KeyTable
}

// NewMachine creates a decoder; nil selects the default bindings
func NewMachine(kt *KeyTable) *Machine {
	if kt == nil {
		kt = DefaultKeyTable()
	}
	return &Machine{keyTable: kt}
}

// Translate decodes ev and stamps it with the event time
func (m *Machine) Translate(ev *tcell.EventKey) Event {
	return Event{
		Intent: m.Resolve(ev.Key(), ev.Rune(), ev.Modifiers()),
		When:   ev.When(),
	}
}

// Resolve maps a key, rune and modifier set to an intent
// Ctrl+letter runes are folded onto the tcell control keys; other modified runes are ignored
func (m *Machine) Resolve(key tcell.Key, r rune, mod tcell.ModMask) Intent {
	if key == tcell.KeyRune {
		switch {
		case mod&tcell.ModCtrl != 0:
			if ck, ok := ctrlKey(r); ok {
				return m.keyTable.SpecialKeys[ck]
			}
			return IntentNone
		case mod&tcell.ModAlt != 0:
			return IntentNone
		}
		return m.keyTable.Runes[r]
	}
	return m.keyTable.SpecialKeys[key]
}

func ctrlKey(r rune) (tcell.Key, bool) {
	switch {
	case r >= 'a' && r <= 'z':
		return tcell.KeyCtrlA + tcell.Key(r-'a'), true
	case r >= 'A' && r <= 'Z':
		return tcell.KeyCtrlA + tcell.Key(r-'A'), true
	}
	return 0, false
}
