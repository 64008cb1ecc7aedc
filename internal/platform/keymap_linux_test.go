//go:build linux

package platform

import (
	"strings"
	"testing"

	"layoutd/internal/layout"
)

func TestDecodeKeyEnglish(t *testing.T) {
	m := layout.NewMapper()

	cases := []struct {
		code    uint16
		shifted bool
		want    rune
	}{
		{keyQ, false, 'q'},
		{keyQ, true, 'Q'},
		{keySemicolon, false, ';'},
		{keySemicolon, true, ':'},
		{keyApostrophe, false, '\''},
		{keySpace, false, ' '},
	}
	for _, tc := range cases {
		got, ok := decodeKey(tc.code, tc.shifted, layout.EN, m)
		if !ok || got != tc.want {
			t.Errorf("decodeKey(%d, %v, EN) = %q %v, want %q", tc.code, tc.shifted, got, ok, tc.want)
		}
	}
}

func TestDecodeKeyUkrainian(t *testing.T) {
	m := layout.NewMapper()

	cases := []struct {
		code    uint16
		shifted bool
		want    rune
	}{
		{keyQ, false, 'й'},
		{keyQ, true, 'Й'},
		{keySemicolon, false, 'ж'},
		{keySemicolon, true, 'Ж'},
		{keyLeftBrace, false, 'х'},
		{keyComma, false, 'б'},
	}
	for _, tc := range cases {
		got, ok := decodeKey(tc.code, tc.shifted, layout.UK, m)
		if !ok || got != tc.want {
			t.Errorf("decodeKey(%d, %v, UK) = %q %v, want %q", tc.code, tc.shifted, got, ok, tc.want)
		}
	}
}

func TestDecodeKeyUnknownCode(t *testing.T) {
	m := layout.NewMapper()
	if _, ok := decodeKey(0xFFFF, false, layout.EN, m); ok {
		t.Error("unknown code decoded")
	}
}

func TestEncodeRuneRoundTrip(t *testing.T) {
	m := layout.NewMapper()

	// Every character the US layout produces must encode back to the
	// key that produced it.
	for code, pair := range usKeymap {
		ks, ok := encodeRune(pair.base, layout.EN, m)
		if !ok {
			t.Errorf("encodeRune(%q) failed", pair.base)
			continue
		}
		if ks.code != code {
			t.Errorf("encodeRune(%q) = key %d, want %d", pair.base, ks.code, code)
		}
	}
}

func TestEncodeRuneUkrainian(t *testing.T) {
	m := layout.NewMapper()

	cases := []struct {
		r     rune
		code  uint16
		shift bool
	}{
		{'й', keyQ, false},
		{'Й', keyQ, true},
		{'ж', keySemicolon, false},
		{'б', keyComma, false},
		{'х', keyLeftBrace, false},
	}
	for _, tc := range cases {
		ks, ok := encodeRune(tc.r, layout.UK, m)
		if !ok {
			t.Errorf("encodeRune(%q) failed", tc.r)
			continue
		}
		if ks.code != tc.code || ks.shift != tc.shift {
			t.Errorf("encodeRune(%q) = {%d %v}, want {%d %v}", tc.r, ks.code, ks.shift, tc.code, tc.shift)
		}
	}
}

func TestParseKeyboardDevice(t *testing.T) {
	devices := `I: Bus=0019 Vendor=0000 Product=0001 Version=0000
N: Name="Power Button"
P: Phys=PNP0C0C/button/input0
H: Handlers=kbd event0
B: KEY=10000000000000 0

I: Bus=0011 Vendor=0001 Product=0001 Version=ab41
N: Name="AT Translated Set 2 keyboard"
P: Phys=isa0060/serio0/input0
H: Handlers=sysrq kbd event2 leds
B: KEY=402000000 3803078f800d001 feffffdfffefffff fffffffffffffffe

I: Bus=0003 Vendor=046d Product=c52b Version=0111
N: Name="Virtual Keyboard"
P: Phys=virtual/input0
H: Handlers=kbd event5
B: KEY=402000000 3803078f800d001 feffffdfffefffff fffffffffffffffe

`
	got, err := parseKeyboardDevice(strings.NewReader(devices))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got != "/dev/input/event2" {
		t.Errorf("device = %q, want /dev/input/event2", got)
	}
}

func TestParseKeyboardDeviceNoneFound(t *testing.T) {
	devices := `I: Bus=0019 Vendor=0000 Product=0001 Version=0000
N: Name="Power Button"
P: Phys=PNP0C0C/button/input0
H: Handlers=kbd event0
B: KEY=10000000000000 0

`
	if _, err := parseKeyboardDevice(strings.NewReader(devices)); err == nil {
		t.Error("expected error for no keyboard")
	}
}
