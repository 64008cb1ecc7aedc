package config

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"layoutd/internal/engine"
)

// namedKeys maps the chord key names that are not single characters.
var namedKeys = map[string]engine.KeyCode{
	"backspace": engine.KeyBackspace,
	"return":    engine.KeyReturn,
	"enter":     engine.KeyReturn,
	"tab":       engine.KeyTab,
	"escape":    engine.KeyEscape,
	"esc":       engine.KeyEscape,
}

// ParseChord parses a hotkey string like "ctrl+alt+z" or "ctrl+shift+esc"
// into an engine hotkey. Parts are joined with '+'; all but the last must
// be modifiers (ctrl, alt, shift, meta/super/cmd), and the last is either
// a single character or a named key. An empty string yields a zero hotkey
// that never matches.
func ParseChord(s string) (engine.Hotkey, error) {
	var hk engine.Hotkey
	if s == "" {
		return hk, nil
	}

	parts := strings.Split(strings.ToLower(s), "+")
	key := parts[len(parts)-1]
	for _, mod := range parts[:len(parts)-1] {
		switch strings.TrimSpace(mod) {
		case "ctrl", "control":
			hk.Modifiers |= engine.ModControl
		case "alt", "option":
			hk.Modifiers |= engine.ModAlt
		case "shift":
			hk.Modifiers |= engine.ModShift
		case "meta", "super", "cmd", "win":
			hk.Modifiers |= engine.ModMeta
		default:
			return engine.Hotkey{}, fmt.Errorf("unknown modifier %q in chord %q", mod, s)
		}
	}

	key = strings.TrimSpace(key)
	if code, ok := namedKeys[key]; ok {
		hk.Code = code
		return hk, nil
	}
	if utf8.RuneCountInString(key) != 1 {
		return engine.Hotkey{}, fmt.Errorf("unknown key %q in chord %q", key, s)
	}
	r, _ := utf8.DecodeRuneInString(key)
	hk.Rune = r
	return hk, nil
}

// EngineHotkeys resolves the configured chord strings into engine
// hotkeys. Validation has already confirmed they parse.
func (c *Config) EngineHotkeys() (fixLast, toggle, force engine.Hotkey, err error) {
	if fixLast, err = ParseChord(c.Hotkeys.FixLast); err != nil {
		return
	}
	if toggle, err = ParseChord(c.Hotkeys.Toggle); err != nil {
		return
	}
	force, err = ParseChord(c.Hotkeys.ForceConvert)
	return
}
