package ambiguity

// Relocation of a deferred entry in the live document. The document may
// have been edited by means the engine never observed, so anchor text is
// a soft hint. Three tiers, each consulted only when the previous fails:
//
//  1. exact match of anchorBefore+original+anchorAfter in a bounded
//     window around the last known position
//  2. backward search for the original word alone in the same window
//  3. pure keystroke navigation driven by WordsAhead
//
// Tier 3 always succeeds syntactically; it may land on the wrong word if
// the WordsAhead bookkeeping has drifted.

// PlanKind selects the relocation strategy.
type PlanKind int

const (
	// PlanReplace replaces a located rune range through the accessible
	// document API.
	PlanReplace PlanKind = iota
	// PlanKeystrokes navigates word-by-word with synthetic keystrokes.
	PlanKeystrokes
)

// Plan describes how to apply a deferred correction.
type Plan struct {
	Kind PlanKind

	// Start and End delimit the original word in the document, in rune
	// offsets, for PlanReplace.
	Start, End int

	// WordsBack is the number of words between the caret and the target
	// word, for PlanKeystrokes.
	WordsBack uint
}

// DefaultWindow is the number of runes searched on either side of the
// last known position.
const DefaultWindow = 256

// ComputePlan locates e in doc. An empty doc (accessible text absent)
// always degrades to keystroke navigation.
func ComputePlan(doc string, e Entry, window int) Plan {
	if doc == "" {
		return Plan{Kind: PlanKeystrokes, WordsBack: e.WordsAhead}
	}
	if window <= 0 {
		window = DefaultWindow
	}

	runes := []rune(doc)
	lo, hi := windowBounds(len(runes), e.DocPos, len([]rune(e.Original)), window)

	// Tier 1: anchored exact match.
	pattern := []rune(e.AnchorBefore + e.Original + e.AnchorAfter)
	if idx := lastIndexRunes(runes[lo:hi], pattern); idx >= 0 {
		start := lo + idx + len([]rune(e.AnchorBefore))
		return Plan{
			Kind:  PlanReplace,
			Start: start,
			End:   start + len([]rune(e.Original)),
		}
	}

	// Tier 2: the word alone, nearest match searching backwards.
	word := []rune(e.Original)
	if idx := lastIndexRunes(runes[lo:hi], word); idx >= 0 {
		start := lo + idx
		return Plan{
			Kind:  PlanReplace,
			Start: start,
			End:   start + len(word),
		}
	}

	// Tier 3: keystroke navigation.
	return Plan{Kind: PlanKeystrokes, WordsBack: e.WordsAhead}
}

// windowBounds clamps the search window around pos. With no known
// position the whole document is searched.
func windowBounds(docLen, pos, wordLen, window int) (lo, hi int) {
	if pos < 0 {
		return 0, docLen
	}
	lo = pos - window
	if lo < 0 {
		lo = 0
	}
	hi = pos + wordLen + window
	if hi > docLen {
		hi = docLen
	}
	if lo > hi {
		lo = hi
	}
	return lo, hi
}

// lastIndexRunes returns the rune offset of the last occurrence of
// pattern in s, or -1. An empty pattern never matches.
func lastIndexRunes(s, pattern []rune) int {
	if len(pattern) == 0 || len(pattern) > len(s) {
		return -1
	}
	for i := len(s) - len(pattern); i >= 0; i-- {
		match := true
		for j, p := range pattern {
			if s[i+j] != p {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}
