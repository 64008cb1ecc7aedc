package layout

import "testing"

func TestConvertENtoUK(t *testing.T) {
	m := NewMapper()
	cases := []struct {
		in   string
		want string
	}{
		{"ghbdsn", "привіт"},
		{"vjdf", "мова"},
		{"Ghbdsn", "Привіт"},
		{"GHBDSN", "ПРИВІТ"},
		{"df;rf", "важка"},
		{"[jxe", "хочу"},
		{"g'znm", "п'ять"},
		{"hello123", "руддщ123"}, // digits pass through
	}
	for _, tc := range cases {
		if got := m.Convert(tc.in, EN, UK); got != tc.want {
			t.Errorf("Convert(%q, EN, UK) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestConvertUKtoEN(t *testing.T) {
	m := NewMapper()
	cases := []struct {
		in   string
		want string
	}{
		{"руддщ", "hello"},
		{"привіт", "ghbdsn"},
		{"п'ять", "g'znm"},
		{"п’ять", "g'znm"}, // typographic apostrophe collapses to ASCII
		{"Привіт", "Ghbdsn"},
	}
	for _, tc := range cases {
		if got := m.Convert(tc.in, UK, EN); got != tc.want {
			t.Errorf("Convert(%q, UK, EN) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestConvertRoundTrip(t *testing.T) {
	m := NewMapper()
	words := []string{"ghbdsn", "hello", "qwerty", "Lzrez", "df;rf", "[jxe]"}
	for _, w := range words {
		rt := m.Convert(m.Convert(w, EN, UK), UK, EN)
		if rt != w {
			t.Errorf("round trip of %q = %q", w, rt)
		}
	}
}

func TestConvertSameLang(t *testing.T) {
	m := NewMapper()
	if got := m.Convert("hello", EN, EN); got != "hello" {
		t.Errorf("Convert(hello, EN, EN) = %q", got)
	}
}

func TestAllIn(t *testing.T) {
	m := NewMapper()
	cases := []struct {
		word string
		lang Lang
		want bool
	}{
		{"привіт", UK, true},
		{"п'ять", UK, true},
		{"привiт2", UK, false}, // digit
		{"hello", EN, true},
		{"hell0", EN, false},
		{"", UK, false},
	}
	for _, tc := range cases {
		if got := m.AllIn(tc.word, tc.lang); got != tc.want {
			t.Errorf("AllIn(%q, %v) = %v, want %v", tc.word, tc.lang, got, tc.want)
		}
	}
}

func TestParseLang(t *testing.T) {
	cases := []struct {
		id   string
		want Lang
	}{
		{"com.apple.keylayout.Ukrainian-PC", UK},
		{"com.apple.keylayout.Ukrainian", UK},
		{"uk", UK},
		{"uk_UA", UK},
		{"com.apple.keylayout.ABC", EN},
		{"us", EN},
		{"", EN}, // documented default
		{"xkb:ua:winkeys:ukr", UK},
		{"de", EN}, // any third layout falls back to EN
	}
	for _, tc := range cases {
		if got := ParseLang(tc.id); got != tc.want {
			t.Errorf("ParseLang(%q) = %v, want %v", tc.id, got, tc.want)
		}
	}
}
