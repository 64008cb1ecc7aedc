//go:build linux

package platform

import (
	"fmt"
)

// New assembles the Linux capabilities: an evdev keystroke source, a
// uinput injector, and an IBus layout switcher. Linux desktops expose
// no portable accessible-text API, so Document is nil and corrections
// run through keystroke navigation.
func New(cfg Config) (*Platform, error) {
	log := cfg.Logger

	switcher, err := NewIBusSwitcher(cfg.LatinLayoutID, cfg.CyrillicLayoutID, log.WithComponent("ibus"))
	if err != nil {
		return nil, fmt.Errorf("layout switcher: %w", err)
	}

	injector, err := NewUinputInjector(switcher.CurrentLanguage)
	if err != nil {
		switcher.Close()
		return nil, fmt.Errorf("text injector: %w", err)
	}

	source, err := NewEvdevSource(cfg.KeyboardDevice, switcher.CurrentLanguage, injector.Active, log.WithComponent("evdev"))
	if err != nil {
		injector.Close()
		switcher.Close()
		return nil, fmt.Errorf("keystroke source: %w", err)
	}

	return &Platform{
		Source:   source,
		Injector: injector,
		Switcher: switcher,
		Document: nil,
		closers: []func() error{
			source.Close,
			injector.Close,
			switcher.Close,
		},
	}, nil
}
