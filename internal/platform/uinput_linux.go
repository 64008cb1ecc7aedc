//go:build linux

package platform

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sys/unix"

	"layoutd/internal/correct"
	"layoutd/internal/layout"
)

// uinput ioctl requests (linux/uinput.h).
const (
	uiSetEvBit   = 0x40045564
	uiSetKeyBit  = 0x40045565
	uiDevCreate  = 0x5501
	uiDevDestroy = 0x5502
)

// uinputUserDev matches struct uinput_user_dev.
type uinputUserDev struct {
	Name         [80]byte
	BusType      uint16
	Vendor       uint16
	Product      uint16
	Version      uint16
	FFEffectsMax uint32
	AbsMax       [64]int32
	AbsMin       [64]int32
	AbsFuzz      [64]int32
	AbsFlat      [64]int32
}

// UinputInjector types corrections through a virtual keyboard device.
//
// The injected events come back through evdev like any other keyboard,
// so the injector keeps an activity flag the event source consults to
// tag them synthetic. The flag stays up for a short grace period after
// the last write because the kernel delivers events asynchronously.
type UinputInjector struct {
	mu     sync.Mutex
	file   *os.File
	mapper *layout.Mapper

	// activeLang must report the layout the system is currently in so
	// characters resolve to the right physical keys.
	activeLang func() layout.Lang

	lastInject atomic.Int64

	// KeyDelay spaces consecutive injected keys. Some toolkits drop
	// events that arrive faster than a human could type.
	KeyDelay time.Duration
}

const syntheticGrace = 100 * time.Millisecond

// NewUinputInjector creates the virtual keyboard device.
func NewUinputInjector(activeLang func() layout.Lang) (*UinputInjector, error) {
	f, err := os.OpenFile("/dev/uinput", os.O_WRONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil, fmt.Errorf("open /dev/uinput: %w", err)
	}

	if err := ioctl(f, uiSetEvBit, evKey); err != nil {
		f.Close()
		return nil, fmt.Errorf("enable key events: %w", err)
	}
	for code := range usKeymap {
		if err := ioctl(f, uiSetKeyBit, int(code)); err != nil {
			f.Close()
			return nil, fmt.Errorf("enable key %d: %w", code, err)
		}
	}
	extra := []int{
		keyBackspace, keyEnter, keyTab, keyEsc, keyDelete,
		keyLeft, keyRight, keyHome, keyEnd,
		keyLeftShift, keyLeftCtrl, keyLeftAlt, keyLeftMeta,
	}
	for _, code := range extra {
		if err := ioctl(f, uiSetKeyBit, code); err != nil {
			f.Close()
			return nil, fmt.Errorf("enable key %d: %w", code, err)
		}
	}

	var dev uinputUserDev
	copy(dev.Name[:], "layoutd virtual keyboard")
	dev.BusType = unix.BUS_VIRTUAL
	dev.Vendor = 0x1
	dev.Product = 0x1
	dev.Version = 1

	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, &dev); err != nil {
		f.Close()
		return nil, fmt.Errorf("encode device descriptor: %w", err)
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		f.Close()
		return nil, fmt.Errorf("write device descriptor: %w", err)
	}
	if err := ioctl(f, uiDevCreate, 0); err != nil {
		f.Close()
		return nil, fmt.Errorf("create virtual device: %w", err)
	}

	return &UinputInjector{
		file:       f,
		mapper:     layout.NewMapper(),
		activeLang: activeLang,
		KeyDelay:   2 * time.Millisecond,
	}, nil
}

func ioctl(f *os.File, req, arg int) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, f.Fd(), uintptr(req), uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}

// Active reports whether injected events may still be in flight.
func (u *UinputInjector) Active() bool {
	last := u.lastInject.Load()
	return last != 0 && time.Since(time.Unix(0, last)) < syntheticGrace
}

// DeleteBackward sends count backspaces.
func (u *UinputInjector) DeleteBackward(count int) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	for i := 0; i < count; i++ {
		if err := u.tap(keyBackspace, false, false, false); err != nil {
			return err
		}
	}
	return nil
}

// TypeText types text under the currently active layout.
func (u *UinputInjector) TypeText(text string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	lang := u.activeLang()
	for _, r := range text {
		ks, ok := encodeRune(r, lang, u.mapper)
		if !ok {
			return fmt.Errorf("no key for %q under %v layout", r, lang)
		}
		if err := u.tap(int(ks.code), ks.shift, false, false); err != nil {
			return err
		}
	}
	return nil
}

// MoveCaret moves word-by-word with Ctrl+arrow, optionally extending
// the selection with Shift.
func (u *UinputInjector) MoveCaret(dir correct.Direction, words int, extendSelection bool) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	code := keyLeft
	if dir == correct.Right {
		code = keyRight
	}
	for i := 0; i < words; i++ {
		if err := u.tap(code, extendSelection, true, false); err != nil {
			return err
		}
	}
	return nil
}

// tap presses and releases one key with optional modifiers.
func (u *UinputInjector) tap(code int, shift, ctrl, alt bool) error {
	u.lastInject.Store(time.Now().UnixNano())

	if shift {
		if err := u.emit(keyLeftShift, keyPress); err != nil {
			return err
		}
	}
	if ctrl {
		if err := u.emit(keyLeftCtrl, keyPress); err != nil {
			return err
		}
	}
	if alt {
		if err := u.emit(keyLeftAlt, keyPress); err != nil {
			return err
		}
	}

	if err := u.emit(code, keyPress); err != nil {
		return err
	}
	if err := u.emit(code, keyRelease); err != nil {
		return err
	}

	if alt {
		if err := u.emit(keyLeftAlt, keyRelease); err != nil {
			return err
		}
	}
	if ctrl {
		if err := u.emit(keyLeftCtrl, keyRelease); err != nil {
			return err
		}
	}
	if shift {
		if err := u.emit(keyLeftShift, keyRelease); err != nil {
			return err
		}
	}
	if err := u.syn(); err != nil {
		return err
	}

	if u.KeyDelay > 0 {
		time.Sleep(u.KeyDelay)
	}
	u.lastInject.Store(time.Now().UnixNano())
	return nil
}

func (u *UinputInjector) emit(code int, value int32) error {
	ev := inputEvent{Type: evKey, Code: uint16(code), Value: value}
	return u.writeEvent(ev)
}

func (u *UinputInjector) syn() error {
	return u.writeEvent(inputEvent{Type: evSyn})
}

func (u *UinputInjector) writeEvent(ev inputEvent) error {
	now := time.Now()
	ev.Sec = now.Unix()
	ev.Usec = int64(now.Nanosecond() / 1000)

	buf := make([]byte, inputEventSize)
	binary.LittleEndian.PutUint64(buf[0:8], uint64(ev.Sec))
	binary.LittleEndian.PutUint64(buf[8:16], uint64(ev.Usec))
	binary.LittleEndian.PutUint16(buf[16:18], ev.Type)
	binary.LittleEndian.PutUint16(buf[18:20], ev.Code)
	binary.LittleEndian.PutUint32(buf[20:24], uint32(ev.Value))
	if _, err := u.file.Write(buf); err != nil {
		return fmt.Errorf("write input event: %w", err)
	}
	return nil
}

// Close destroys the virtual device.
func (u *UinputInjector) Close() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	ioctl(u.file, uiDevDestroy, 0)
	return u.file.Close()
}

