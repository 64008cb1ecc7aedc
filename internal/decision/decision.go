// Package decision implements the per-word conversion verdict.
//
// Given a completed word and the layout that was active while it was
// typed, the engine consults a two-language spell oracle and the layout
// mapper and decides whether the word stays, converts immediately, or is
// deferred as ambiguous for later hotkey resolution.
package decision

import (
	"unicode/utf8"

	"layoutd/internal/layout"
	"layoutd/internal/script"
)

// SpellOracle is the external spellchecker consumed as a predicate. The
// engine never inspects oracle internals.
type SpellOracle interface {
	// IsCorrect reports whether word spellchecks in the given language.
	IsCorrect(word string, lang layout.Lang) bool

	// BestAvailableLanguage resolves a language prefix to a concrete
	// installed spellcheck language tag, or reports absence.
	BestAvailableLanguage(lang layout.Lang) (string, bool)
}

// Verdict is the outcome for one completed word.
type Verdict int

const (
	// Keep leaves the word untouched.
	Keep Verdict = iota
	// ConvertNow replaces the word immediately.
	ConvertNow
	// Defer records the word as ambiguous for hotkey resolution.
	Defer
)

// String returns a short name for the verdict.
func (v Verdict) String() string {
	switch v {
	case ConvertNow:
		return "convert"
	case Defer:
		return "defer"
	default:
		return "keep"
	}
}

// Candidate pairs a word with its conversion into the other layout.
// Immutable once created.
type Candidate struct {
	Original   string
	Converted  string
	TargetLang layout.Lang
}

// Engine applies the conversion decision rules.
type Engine struct {
	oracle SpellOracle
	mapper *layout.Mapper
}

// New creates a decision engine over the given oracle and mapper.
func New(oracle SpellOracle, mapper *layout.Mapper) *Engine {
	return &Engine{oracle: oracle, mapper: mapper}
}

// Decide evaluates a completed core word (trailing sentence punctuation
// already stripped) typed while active was the current layout.
// The returned candidate is meaningful only for ConvertNow and Defer.
func (e *Engine) Decide(core string, active layout.Lang) (Verdict, Candidate) {
	if core == "" {
		return Keep, Candidate{}
	}

	other := active.Opposite()

	// Without both spellcheck references no correction is possible.
	if _, ok := e.oracle.BestAvailableLanguage(active); !ok {
		return Keep, Candidate{}
	}
	if _, ok := e.oracle.BestAvailableLanguage(other); !ok {
		return Keep, Candidate{}
	}

	converted := e.mapper.Convert(core, active, other)
	cand := Candidate{Original: core, Converted: converted, TargetLang: other}
	otherOK := converted != "" && e.oracle.IsCorrect(converted, other)

	if utf8.RuneCountInString(core) == 1 {
		curOK := e.oracle.IsCorrect(core, active)
		switch {
		case curOK && otherOK:
			// Genuinely ambiguous one-letter word, e.g. "a"/"і".
			return Defer, cand
		case !curOK && otherOK:
			return ConvertNow, cand
		default:
			return Keep, Candidate{}
		}
	}

	suspicious := active == layout.EN && script.ContainsSuspiciousMapped(core)
	curOK := !suspicious && e.oracle.IsCorrect(core, active)

	switch {
	case curOK && otherOK:
		return Defer, cand
	case curOK && !otherOK:
		return Keep, Candidate{}
	}

	// A word typed entirely with mapped punctuation keys that decodes to
	// valid second-script letters is overwhelming evidence of a layout
	// mismatch even when the spellchecker disagrees.
	shouldConvert := otherOK ||
		(suspicious && e.mapper.AllIn(converted, other))
	if shouldConvert {
		return ConvertNow, cand
	}
	return Keep, Candidate{}
}
