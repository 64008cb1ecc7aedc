// Package script provides Unicode script classification for the layout
// correction engine.
//
// Every decoded scalar falls into one of three script tags: Latin,
// Cyrillic, or Neutral. A handful of ASCII punctuation marks get special
// treatment because on the US QWERTY layout they sit on physical keys
// that produce Ukrainian letters, so a word "containing punctuation" may
// actually be a Ukrainian word typed with the wrong layout active.
package script

import "unicode"

// Tag identifies the script family of a single scalar.
type Tag int

const (
	// Neutral covers digits, punctuation, whitespace, and any letter
	// outside the two supported scripts.
	Neutral Tag = iota
	// Latin covers ASCII A-Z and a-z only.
	Latin
	// Cyrillic covers the Cyrillic blocks used by the supported layouts.
	Cyrillic
)

// String returns a human-readable name for the tag.
func (t Tag) String() string {
	switch t {
	case Latin:
		return "latin"
	case Cyrillic:
		return "cyrillic"
	default:
		return "neutral"
	}
}

// cyrillicRanges holds the Cyrillic blocks produced by the supported
// layouts: base Cyrillic, Cyrillic Supplement, Extended-A, Extended-B.
var cyrillicRanges = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x0400, Hi: 0x04FF, Stride: 1},
		{Lo: 0x0500, Hi: 0x052F, Stride: 1},
		{Lo: 0x2DE0, Hi: 0x2DFF, Stride: 1},
		{Lo: 0xA640, Hi: 0xA69F, Stride: 1},
	},
}

// Classify returns the script tag for a single scalar.
func Classify(r rune) Tag {
	switch {
	case (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z'):
		return Latin
	case unicode.Is(cyrillicRanges, r):
		return Cyrillic
	default:
		return Neutral
	}
}

// Word-internal marks never terminate a word: the ASCII apostrophe and
// its typographic variant appear inside Ukrainian words (п'ять), and
// hyphen-minus joins compounds in both languages.
const (
	apostrophe  = '\''
	rightQuote  = '’'
	hyphenMinus = '-'
)

// IsWordInternal reports whether r may appear inside a word without
// ending it.
func IsWordInternal(r rune) bool {
	return r == apostrophe || r == rightQuote || r == hyphenMinus
}

// boundaryPunct is the fixed punctuation set that ends a word. The
// word-internal marks above are deliberately absent, as is '@' which the
// tokenizer intercepts for email handling before boundary checks run.
var boundaryPunct = map[rune]bool{
	'.': true, ',': true, ';': true, ':': true,
	'!': true, '?': true, '"': true, '`': true,
	'(': true, ')': true, '[': true, ']': true,
	'{': true, '}': true, '<': true, '>': true,
	'/': true, '\\': true, '|': true,
	'#': true, '$': true, '%': true, '^': true,
	'&': true, '*': true, '+': true, '=': true,
	'~': true,
	'«': true, '»': true,
	'…': true, // horizontal ellipsis
	'—': true, // em dash
	'“': true, '”': true,
}

// IsBoundary reports whether r ends the word being typed. Whitespace and
// the fixed punctuation set are boundaries; word-internal marks never are.
func IsBoundary(r rune) bool {
	if IsWordInternal(r) {
		return false
	}
	return unicode.IsSpace(r) || boundaryPunct[r]
}

// mappedPunct is the set of ASCII punctuation marks whose physical keys
// produce letters on the Ukrainian layout: [ ] ; ' , . map to х ї ж є б ю.
var mappedPunct = map[rune]bool{
	'[': true, ']': true, ';': true,
	'\'': true, ',': true, '.': true,
}

// IsMappedLatinPunctuation reports whether r is punctuation on the Latin
// layout but a letter on the Ukrainian one. While the Latin layout is
// active these scalars must be buffered as letters, because the user may
// be typing a Ukrainian word on the wrong layout.
func IsMappedLatinPunctuation(r rune) bool {
	return mappedPunct[r]
}

// trailingMapped is the subset of mapped punctuation that legitimately
// ends sentences and must be stripped before consulting a spellchecker.
var trailingMapped = map[rune]bool{
	'.': true, ',': true, ';': true,
}

// SplitTrailingMapped strips a trailing run of sentence punctuation
// (. , ;) from word and returns the remaining core together with the
// number of scalars stripped.
func SplitTrailingMapped(word string) (core string, trailing int) {
	runes := []rune(word)
	i := len(runes)
	for i > 0 && trailingMapped[runes[i-1]] {
		i--
	}
	return string(runes[:i]), len(runes) - i
}

// ContainsSuspiciousMapped reports whether word carries mapped
// punctuation in non-trailing position. Punctuation in the middle of a
// word is a strong signal the word was typed as Ukrainian letters on the
// Latin layout.
func ContainsSuspiciousMapped(word string) bool {
	core, _ := SplitTrailingMapped(word)
	for _, r := range core {
		if mappedPunct[r] {
			return true
		}
	}
	return false
}

// IsLetterFor reports whether r counts as a letter while the layout with
// the given script is active. Mapped punctuation counts as a letter only
// under the Latin layout.
func IsLetterFor(r rune, activeLatin bool) bool {
	switch Classify(r) {
	case Latin, Cyrillic:
		return true
	}
	return activeLatin && IsMappedLatinPunctuation(r)
}

// EffectiveTag returns the script tag used for mid-word script-change
// detection. Mapped punctuation adopts the script it decodes to under
// the active layout rather than Neutral.
func EffectiveTag(r rune, activeLatin bool) Tag {
	if tag := Classify(r); tag != Neutral {
		return tag
	}
	if activeLatin && IsMappedLatinPunctuation(r) {
		return Latin
	}
	return Neutral
}
