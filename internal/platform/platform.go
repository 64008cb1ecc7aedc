// Package platform provides the OS-specific pieces the engine runs on:
// the keystroke event source, the text injector, and the layout
// switcher.
//
// Linux is the reference platform (evdev + uinput + IBus over D-Bus).
// Other platforms get explicit ErrUnsupported errors rather than silent
// no-ops, so the daemon can report exactly which capability is missing
// and degrade accordingly.
package platform

import (
	"errors"

	"layoutd/internal/correct"
	"layoutd/internal/engine"
	"layoutd/internal/logging"
)

// ErrUnsupported reports a capability the current platform lacks.
var ErrUnsupported = errors.New("platform: not supported on this OS")

// Config selects the devices and layout identifiers to use.
type Config struct {
	// KeyboardDevice is the evdev device path. Empty selects the first
	// physical keyboard automatically.
	KeyboardDevice string

	// LatinLayoutID and CyrillicLayoutID are the system input-source
	// identifiers handed to the layout switcher.
	LatinLayoutID    string
	CyrillicLayoutID string

	Logger *logging.Logger
}

// Platform bundles the OS capabilities the daemon wires into the
// engine. Document is nil where the OS exposes no accessible-text API;
// the executor then uses keystroke navigation.
type Platform struct {
	Source   engine.KeyEventSource
	Injector correct.TextInjector
	Switcher correct.LayoutSwitch
	Document correct.AccessibleDocument

	closers []func() error
}

// Close releases all platform resources.
func (p *Platform) Close() error {
	var first error
	for _, c := range p.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
