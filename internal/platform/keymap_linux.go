//go:build linux

package platform

import (
	"unicode"

	"layoutd/internal/layout"
)

// Linux input event codes (linux/input-event-codes.h). Only the keys
// the daemon reads or injects.
const (
	evSyn = 0x00
	evKey = 0x01

	keyEsc        = 1
	keyBackspace  = 14
	keyTab        = 15
	keyQ          = 16
	keyW          = 17
	keyE          = 18
	keyR          = 19
	keyT          = 20
	keyY          = 21
	keyU          = 22
	keyI          = 23
	keyO          = 24
	keyP          = 25
	keyLeftBrace  = 26
	keyRightBrace = 27
	keyEnter      = 28
	keyLeftCtrl   = 29
	keyA          = 30
	keyS          = 31
	keyD          = 32
	keyF          = 33
	keyG          = 34
	keyH          = 35
	keyJ          = 36
	keyK          = 37
	keyL          = 38
	keySemicolon  = 39
	keyApostrophe = 40
	keyGrave      = 41
	keyLeftShift  = 42
	keyBackslash  = 43
	keyZ          = 44
	keyX          = 45
	keyC          = 46
	keyV          = 47
	keyB          = 48
	keyN          = 49
	keyM          = 50
	keyComma      = 51
	keyDot        = 52
	keySlash      = 53
	keyRightShift = 54
	keyLeftAlt    = 56
	keySpace      = 57
	keyRightCtrl  = 97
	keyRightAlt   = 100
	keyHome       = 102
	keyLeft       = 105
	keyRight      = 106
	keyEnd        = 107
	keyDelete     = 111
	keyLeftMeta   = 125
	keyRightMeta  = 126

	keyPress   = 1
	keyRelease = 0
	keyRepeat  = 2
)

// keyPair holds the unshifted and shifted character a key produces on
// the US QWERTY layout. The Ukrainian character for the same physical
// key comes from the layout table, so one keymap serves both
// directions.
type keyPair struct {
	base, shift rune
}

var usKeymap = map[uint16]keyPair{
	keyQ:          {'q', 'Q'},
	keyW:          {'w', 'W'},
	keyE:          {'e', 'E'},
	keyR:          {'r', 'R'},
	keyT:          {'t', 'T'},
	keyY:          {'y', 'Y'},
	keyU:          {'u', 'U'},
	keyI:          {'i', 'I'},
	keyO:          {'o', 'O'},
	keyP:          {'p', 'P'},
	keyLeftBrace:  {'[', '{'},
	keyRightBrace: {']', '}'},
	keyA:          {'a', 'A'},
	keyS:          {'s', 'S'},
	keyD:          {'d', 'D'},
	keyF:          {'f', 'F'},
	keyG:          {'g', 'G'},
	keyH:          {'h', 'H'},
	keyJ:          {'j', 'J'},
	keyK:          {'k', 'K'},
	keyL:          {'l', 'L'},
	keySemicolon:  {';', ':'},
	keyApostrophe: {'\'', '"'},
	keyZ:          {'z', 'Z'},
	keyX:          {'x', 'X'},
	keyC:          {'c', 'C'},
	keyV:          {'v', 'V'},
	keyB:          {'b', 'B'},
	keyN:          {'n', 'N'},
	keyM:          {'m', 'M'},
	keyComma:      {',', '<'},
	keyDot:        {'.', '>'},
	keySlash:      {'/', '?'},
	keySpace:      {' ', ' '},
	keyGrave:      {'`', '~'},
	keyBackslash:  {'\\', '|'},
}

// usReverse maps a US-layout character back to its key and shift state.
var usReverse = buildReverse()

type keyStroke struct {
	code  uint16
	shift bool
}

func buildReverse() map[rune]keyStroke {
	rev := make(map[rune]keyStroke, len(usKeymap)*2)
	for code, pair := range usKeymap {
		rev[pair.base] = keyStroke{code: code}
		if pair.shift != pair.base {
			rev[pair.shift] = keyStroke{code: code, shift: true}
		}
	}
	return rev
}

// decodeKey returns the character a key press produces under lang.
// The bool is false for keys outside the character map. Under the
// Cyrillic layout the shifted form is the uppercase of the base
// character, not the US shifted symbol.
func decodeKey(code uint16, shifted bool, lang layout.Lang, m *layout.Mapper) (rune, bool) {
	pair, ok := usKeymap[code]
	if !ok {
		return 0, false
	}
	if lang == layout.UK {
		converted := m.Convert(string(pair.base), layout.EN, layout.UK)
		for _, cr := range converted {
			if shifted {
				return unicode.ToUpper(cr), true
			}
			return cr, true
		}
	}
	if shifted {
		return pair.shift, true
	}
	return pair.base, true
}

// encodeRune returns the keystroke that produces r under the active
// layout. Characters from the Cyrillic layout are resolved through the
// layout table back to their physical US key; uppercase resolves to the
// shifted stroke of its lowercase key.
func encodeRune(r rune, lang layout.Lang, m *layout.Mapper) (keyStroke, bool) {
	shift := false
	if unicode.IsUpper(r) {
		shift = true
		r = unicode.ToLower(r)
	}
	if lang == layout.UK {
		converted := m.Convert(string(r), layout.UK, layout.EN)
		for _, cr := range converted {
			r = cr
			break
		}
	}
	ks, ok := usReverse[r]
	if !ok {
		return keyStroke{}, false
	}
	ks.shift = ks.shift || shift
	return ks, true
}

func isModifierKey(code uint16) bool {
	switch code {
	case keyLeftShift, keyRightShift, keyLeftCtrl, keyRightCtrl,
		keyLeftAlt, keyRightAlt, keyLeftMeta, keyRightMeta:
		return true
	}
	return false
}
