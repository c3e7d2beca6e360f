package input

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
)

// Rune aliases for keys that are awkward as bare config keys
var runeAliases = map[string]rune{
	"space": ' ',
	"plus":  '+',
	"minus": '-',
}

// specialKeyNames resolves lower-cased tcell key names ("enter", "up", "ctrl-r")
var specialKeyNames = func() map[string]tcell.Key {
	m := make(map[string]tcell.Key, len(tcell.KeyNames))
	for k, name := range tcell.KeyNames {
		m[strings.ToLower(name)] = k
	}
	return m
}()

// LoadKeyConfig parses key name → action name bindings into a sparse override KeyTable
// Returns error on unknown action names or invalid key names
func LoadKeyConfig(bindings map[string]string) (*KeyTable, error) {
	kt := &KeyTable{
		SpecialKeys: make(map[tcell.Key]Intent),
		Runes:       make(map[rune]Intent),
	}

	for keyStr, actionName := range bindings {
		intent, err := resolveAction(actionName)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", keyStr, err)
		}

		if r, ok := resolveRune(keyStr); ok {
			kt.Runes[r] = intent
			continue
		}
		if k, ok := specialKeyNames[strings.ToLower(keyStr)]; ok {
			kt.SpecialKeys[k] = intent
			continue
		}
		return nil, fmt.Errorf("unknown key name: %q", keyStr)
	}

	return kt, nil
}

// resolveRune converts a single character or alias to a rune
func resolveRune(s string) (rune, bool) {
	if r, ok := runeAliases[strings.ToLower(s)]; ok {
		return r, true
	}
	runes := []rune(s)
	if len(runes) == 1 {
		return runes[0], true
	}
	return 0, false
}

// resolveAction converts an action name string to an Intent
func resolveAction(name string) (Intent, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	intent, ok := ActionIntent(name)
	if !ok {
		return IntentNone, fmt.Errorf("unknown action: %q", name)
	}
	return intent, nil
}

// MergeKeyTable returns a new KeyTable with base values overridden by override
// Override entries bound to "none" delete the key from the result
func MergeKeyTable(base, override *KeyTable) *KeyTable {
	result := base.Clone()
	if override == nil {
		return result
	}

	for k, v := range override.Runes {
		if v == IntentNone {
			delete(result.Runes, k)
		} else {
			result.Runes[k] = v
		}
	}
	for k, v := range override.SpecialKeys {
		if v == IntentNone {
			delete(result.SpecialKeys, k)
		} else {
			result.SpecialKeys[k] = v
		}
	}
	return result
}
