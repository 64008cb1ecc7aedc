// Package layout provides the two supported language prefixes and the
// bidirectional character mapping between their keyboard layouts.
package layout

import "strings"

// Lang is the language prefix identifying one of the two supported
// keyboard layouts.
type Lang int

const (
	// EN is the US QWERTY layout.
	EN Lang = iota
	// UK is the Ukrainian ЙЦУКЕН layout.
	UK
)

// String returns the language prefix as a lowercase tag.
func (l Lang) String() string {
	if l == UK {
		return "uk"
	}
	return "en"
}

// Opposite returns the other supported language.
func (l Lang) Opposite() Lang {
	if l == EN {
		return UK
	}
	return EN
}

// IsLatin reports whether the layout produces Latin script.
func (l Lang) IsLatin() bool {
	return l == EN
}

// ParseLang maps an opaque input-source identifier to a language prefix.
// Identifiers containing "ukrainian" or a "uk" language tag select UK;
// anything unrecognized defaults to EN by convention.
func ParseLang(sourceID string) Lang {
	id := strings.ToLower(sourceID)
	switch {
	case id == "uk" || id == "ua" || id == "uk_ua" || id == "uk-ua":
		return UK
	case strings.Contains(id, "ukr"): // com.apple.keylayout.Ukrainian-PC, xkb ukr variants
		return UK
	case strings.Contains(id, ":ua"): // xkb:ua:...
		return UK
	default:
		return EN
	}
}
