package layout

import "unicode"

// enToUK is the lowercase key-for-key table from US QWERTY to Ukrainian
// ЙЦУКЕН. The reverse direction is the algorithmic inverse built in
// newInverse, with one override: the Ukrainian apostrophe (ASCII or
// U+2019) always converts to an ASCII apostrophe, never back through the
// є key.
var enToUK = map[rune]rune{
	'q': 'й', 'w': 'ц', 'e': 'у', 'r': 'к', 't': 'е',
	'y': 'н', 'u': 'г', 'i': 'ш', 'o': 'щ', 'p': 'з',
	'[': 'х', ']': 'ї',
	'a': 'ф', 's': 'і', 'd': 'в', 'f': 'а', 'g': 'п',
	'h': 'р', 'j': 'о', 'k': 'л', 'l': 'д',
	';': 'ж', '\'': 'є',
	'z': 'я', 'x': 'ч', 'c': 'с', 'v': 'м', 'b': 'и',
	'n': 'т', 'm': 'ь',
	',': 'б', '.': 'ю',
}

// newInverse builds the UK→EN table from enToUK and applies the
// apostrophe override.
func newInverse() map[rune]rune {
	inv := make(map[rune]rune, len(enToUK)+2)
	for from, to := range enToUK {
		inv[to] = from
	}
	inv['\''] = '\''
	inv['’'] = '\''
	return inv
}

var ukToEN = newInverse()

// Mapper converts words between the two supported layouts. The zero
// Mapper is not usable; construct with NewMapper or NewCustomMapper.
type Mapper struct {
	enToUK map[rune]rune
	ukToEN map[rune]rune
}

// NewMapper returns a Mapper over the built-in QWERTY/ЙЦУКЕН table.
func NewMapper() *Mapper {
	return &Mapper{enToUK: enToUK, ukToEN: ukToEN}
}

// Convert translates word from one layout to the other, preserving the
// per-character case of the input. Characters absent from the table pass
// through unchanged. Conversion is deterministic and total.
func (m *Mapper) Convert(word string, from, to Lang) string {
	if from == to || word == "" {
		return word
	}
	table := m.enToUK
	if from == UK {
		table = m.ukToEN
	}

	out := make([]rune, 0, len(word))
	for _, r := range word {
		lower := unicode.ToLower(r)
		mapped, ok := table[lower]
		if !ok {
			out = append(out, r)
			continue
		}
		if lower != r {
			mapped = unicode.ToUpper(mapped)
		}
		out = append(out, mapped)
	}
	return string(out)
}

// AllIn reports whether every scalar of word belongs to the target
// script of lang (letters only; word-internal apostrophes count for UK).
// Used by the decision engine to confirm that a suspicious word decodes
// entirely into the other layout's alphabet.
func (m *Mapper) AllIn(word string, lang Lang) bool {
	if word == "" {
		return false
	}
	for _, r := range word {
		if r == '\'' || r == '’' || r == '-' {
			continue
		}
		lower := unicode.ToLower(r)
		if lang == UK {
			if _, ok := m.ukToEN[lower]; !ok {
				return false
			}
		} else {
			if lower < 'a' || lower > 'z' {
				return false
			}
		}
	}
	return true
}
