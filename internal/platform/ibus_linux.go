//go:build linux

package platform

import (
	"fmt"
	"sync"

	"github.com/godbus/dbus/v5"

	"layoutd/internal/layout"
	"layoutd/internal/logging"
)

// IBus D-Bus constants.
const (
	ibusService   = "org.freedesktop.IBus"
	ibusPath      = "/org/freedesktop/IBus"
	ibusInterface = "org.freedesktop.IBus"
)

// IBusSwitcher drives the system layout through the IBus global
// engine.
type IBusSwitcher struct {
	conn       *dbus.Conn
	latinID    string
	cyrillicID string
	log        *logging.Logger

	mu       sync.Mutex
	lastLang layout.Lang
}

// NewIBusSwitcher connects to the session bus. latinID and cyrillicID
// are the IBus engine names of the two layouts (e.g. "xkb:us::eng",
// "xkb:ua:winkeys:ukr").
func NewIBusSwitcher(latinID, cyrillicID string, log *logging.Logger) (*IBusSwitcher, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, fmt.Errorf("connect to session bus: %w", err)
	}
	s := &IBusSwitcher{
		conn:       conn,
		latinID:    latinID,
		cyrillicID: cyrillicID,
		log:        log,
		lastLang:   layout.EN,
	}
	// Seed from the live engine when IBus answers.
	if lang, ok := s.queryCurrent(); ok {
		s.lastLang = lang
	}
	return s, nil
}

// CurrentLanguage returns the active layout's language. When IBus does
// not answer it reports the last state this process set or observed.
func (s *IBusSwitcher) CurrentLanguage() layout.Lang {
	s.mu.Lock()
	defer s.mu.Unlock()
	if lang, ok := s.queryCurrent(); ok {
		s.lastLang = lang
	}
	return s.lastLang
}

// queryCurrent asks IBus for the global engine and matches its
// description strings against the two configured engine names.
func (s *IBusSwitcher) queryCurrent() (layout.Lang, bool) {
	obj := s.conn.Object(ibusService, ibusPath)
	var desc dbus.Variant
	if err := obj.Call(ibusInterface+".GetGlobalEngine", 0).Store(&desc); err != nil {
		s.log.Debug("ibus global engine query failed", "err", err)
		return layout.EN, false
	}
	for _, str := range variantStrings(desc.Value()) {
		switch str {
		case s.latinID:
			return layout.EN, true
		case s.cyrillicID:
			return layout.UK, true
		}
	}
	return layout.EN, false
}

// variantStrings collects the string fields of an IBus engine
// description, whatever its exact struct shape.
func variantStrings(v interface{}) []string {
	var out []string
	switch val := v.(type) {
	case string:
		out = append(out, val)
	case dbus.Variant:
		out = append(out, variantStrings(val.Value())...)
	case []interface{}:
		for _, item := range val {
			out = append(out, variantStrings(item)...)
		}
	}
	return out
}

// SwitchTo activates the layout for lang.
func (s *IBusSwitcher) SwitchTo(lang layout.Lang) error {
	name := s.latinID
	if lang == layout.UK {
		name = s.cyrillicID
	}
	obj := s.conn.Object(ibusService, ibusPath)
	if err := obj.Call(ibusInterface+".SetGlobalEngine", 0, name).Err; err != nil {
		return fmt.Errorf("switch layout to %s: %w", name, err)
	}
	s.mu.Lock()
	s.lastLang = lang
	s.mu.Unlock()
	return nil
}

// Close releases the bus connection.
func (s *IBusSwitcher) Close() error {
	return s.conn.Close()
}
