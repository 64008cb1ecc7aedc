//go:build linux

package platform

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"layoutd/internal/engine"
	"layoutd/internal/layout"
	"layoutd/internal/logging"
)

// inputEvent matches the Linux input_event struct on 64-bit platforms.
type inputEvent struct {
	Sec   int64
	Usec  int64
	Type  uint16
	Code  uint16
	Value int32
}

const inputEventSize = 24

// EvdevSource reads keydown events from a /dev/input/eventX device and
// decodes them with the active layout.
//
// Events are observed, not intercepted: the daemon does not grab the
// device, so a Suppress disposition cannot stop the key from reaching
// the focused application. Hotkey chords therefore also arrive at the
// application; they are chosen to be chords applications ignore.
// TODO: EVIOCGRAB plus re-injection of passed events would make
// Suppress effective.
type EvdevSource struct {
	file       *os.File
	activeLang func() layout.Lang
	synthetic  func() bool
	mapper     *layout.Mapper
	log        *logging.Logger

	closed atomic.Bool

	// Modifier state tracked from press/release events.
	mods engine.Modifiers
}

// NewEvdevSource opens the keyboard device. An empty path selects the
// first physical keyboard from /proc/bus/input/devices.
func NewEvdevSource(path string, activeLang func() layout.Lang, synthetic func() bool, log *logging.Logger) (*EvdevSource, error) {
	if path == "" {
		found, err := findKeyboardDevice()
		if err != nil {
			return nil, err
		}
		path = found
	}
	f, err := os.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("open keyboard device %s: %w", path, err)
	}
	log.Debug("keyboard device opened", "device", path)
	return &EvdevSource{
		file:       f,
		activeLang: activeLang,
		synthetic:  synthetic,
		mapper:     layout.NewMapper(),
		log:        log,
	}, nil
}

// findKeyboardDevice scans /proc/bus/input/devices for a physical
// keyboard handler.
func findKeyboardDevice() (string, error) {
	f, err := os.Open("/proc/bus/input/devices")
	if err != nil {
		return "", fmt.Errorf("scan input devices: %w", err)
	}
	defer f.Close()
	return parseKeyboardDevice(f)
}

// parseKeyboardDevice picks the first device block that advertises a
// rich key bitmap and a non-virtual physical path.
func parseKeyboardDevice(r io.Reader) (string, error) {
	scanner := bufio.NewScanner(r)
	var handler, phys string
	isKeyboard := false

	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "H: Handlers="):
			for _, part := range strings.Fields(line) {
				if strings.HasPrefix(part, "event") {
					handler = "/dev/input/" + part
				}
			}
		case strings.HasPrefix(line, "P: Phys="):
			phys = strings.TrimPrefix(line, "P: Phys=")
		case strings.HasPrefix(line, "B: KEY="):
			// Keyboards carry a long key capability bitmap.
			if len(strings.TrimPrefix(line, "B: KEY=")) > 20 {
				isKeyboard = true
			}
		case line == "":
			if isKeyboard && handler != "" &&
				phys != "" && !strings.HasPrefix(strings.ToLower(phys), "virtual") {
				return handler, nil
			}
			handler, phys, isKeyboard = "", "", false
		}
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", errors.New("no physical keyboard found")
}

// Run reads events until the source is closed, invoking handler for
// every key press.
func (s *EvdevSource) Run(handler func(engine.KeyEvent) engine.Disposition) error {
	buf := make([]byte, inputEventSize)
	for {
		if _, err := io.ReadFull(s.file, buf); err != nil {
			if s.closed.Load() {
				return nil
			}
			return fmt.Errorf("read keyboard device: %w", err)
		}

		ev := inputEvent{
			Sec:   int64(binary.LittleEndian.Uint64(buf[0:8])),
			Usec:  int64(binary.LittleEndian.Uint64(buf[8:16])),
			Type:  binary.LittleEndian.Uint16(buf[16:18]),
			Code:  binary.LittleEndian.Uint16(buf[18:20]),
			Value: int32(binary.LittleEndian.Uint32(buf[20:24])),
		}
		if ev.Type != evKey {
			continue
		}

		if isModifierKey(ev.Code) {
			s.trackModifier(ev.Code, ev.Value)
			continue
		}
		if ev.Value != keyPress && ev.Value != keyRepeat {
			continue
		}

		handler(s.decode(ev))
	}
}

func (s *EvdevSource) trackModifier(code uint16, value int32) {
	var mod engine.Modifiers
	switch code {
	case keyLeftShift, keyRightShift:
		mod = engine.ModShift
	case keyLeftCtrl, keyRightCtrl:
		mod = engine.ModControl
	case keyLeftAlt, keyRightAlt:
		mod = engine.ModAlt
	case keyLeftMeta, keyRightMeta:
		mod = engine.ModMeta
	}
	if value == keyRelease {
		s.mods &^= mod
	} else {
		s.mods |= mod
	}
}

func (s *EvdevSource) decode(ev inputEvent) engine.KeyEvent {
	out := engine.KeyEvent{
		Modifiers: s.mods,
		Synthetic: s.synthetic != nil && s.synthetic(),
		Time:      time.Unix(ev.Sec, ev.Usec*1000),
	}
	switch ev.Code {
	case keyBackspace:
		out.Code = engine.KeyBackspace
	case keyEnter:
		out.Code = engine.KeyReturn
	case keyTab:
		out.Code = engine.KeyTab
	case keyEsc:
		out.Code = engine.KeyEscape
	default:
		shifted := s.mods.Has(engine.ModShift)
		if r, ok := decodeKey(ev.Code, shifted, s.activeLang(), s.mapper); ok {
			out.Rune = r
		}
	}
	return out
}

// Close stops the source.
func (s *EvdevSource) Close() error {
	s.closed.Store(true)
	return s.file.Close()
}
