package engine

import "time"

// Modifiers represents modifier key state.
type Modifiers uint8

const (
	ModShift Modifiers = 1 << iota
	ModControl
	ModAlt
	ModMeta // Command on macOS, Super on Linux, Windows key on Windows
)

// Has reports whether all of the given modifiers are held.
func (m Modifiers) Has(mods Modifiers) bool {
	return m&mods == mods
}

// Key codes the engine cares about beyond decoded scalars. Values follow
// the platform source; these names cover the control keys the hot path
// must recognize regardless of platform.
type KeyCode uint16

const (
	KeyNone KeyCode = 0
	// KeyBackspace deletes one scalar; with Alt or Control held it
	// deletes a whole word.
	KeyBackspace KeyCode = 0xFF01
	KeyReturn    KeyCode = 0xFF02
	KeyTab       KeyCode = 0xFF03
	KeyEscape    KeyCode = 0xFF04
)

// KeyEvent is one decoded keydown from the event source.
type KeyEvent struct {
	// Rune is the decoded Unicode scalar, zero for non-character keys.
	Rune rune

	// Code is the raw key identifier for control keys.
	Code KeyCode

	// Modifiers holds the modifier state at keydown.
	Modifiers Modifiers

	// Synthetic tags events emitted by the correction executor itself.
	// The engine never processes its own output.
	Synthetic bool

	// Time is when the event occurred.
	Time time.Time
}

// Disposition is the engine's answer for each event on the hot path.
type Disposition int

const (
	// Pass lets the event through to the focused application.
	Pass Disposition = iota
	// Suppress swallows the event (hotkey chords).
	Suppress
)

// KeyEventSource delivers the live keystroke stream. Run blocks until
// ctx is cancelled, invoking handler for every keydown on a single
// dedicated callback context. The handler must return quickly and never
// block on layout switching.
type KeyEventSource interface {
	Run(handler func(KeyEvent) Disposition) error
	Close() error
}

// Hotkey is a key combination that triggers an engine command.
type Hotkey struct {
	Rune      rune
	Code      KeyCode
	Modifiers Modifiers
}

// Matches reports whether ev triggers this hotkey. A zero hotkey never
// matches.
func (h Hotkey) Matches(ev KeyEvent) bool {
	if h.Modifiers == 0 && h.Rune == 0 && h.Code == 0 {
		return false
	}
	if ev.Modifiers != h.Modifiers {
		return false
	}
	if h.Code != 0 {
		return ev.Code == h.Code
	}
	return h.Rune != 0 && ev.Rune == h.Rune
}
