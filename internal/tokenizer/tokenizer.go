// Package tokenizer accumulates decoded scalars into words and reports
// word boundaries to the layout correction engine.
//
// The tokenizer is a single-owner state machine: one instance consumes
// the live keystroke stream one scalar at a time. It understands three
// things beyond plain boundaries: email addresses are never words, a
// mid-word script change finalizes the word in progress, and mapped
// punctuation counts as letters while the Latin layout is active.
package tokenizer

import (
	"layoutd/internal/layout"
	"layoutd/internal/script"
)

// EventKind discriminates the result of consuming one scalar.
type EventKind int

const (
	// Continue means the scalar was absorbed and no word finished.
	Continue EventKind = iota
	// WordCompleted means a word was finalized and should be evaluated.
	WordCompleted
	// BufferReset means the buffer was cleared without producing a word.
	BufferReset
)

// Event is the outcome of one Consume call.
type Event struct {
	Kind EventKind

	// Word is the completed word, set when Kind is WordCompleted.
	Word string

	// Boundary is the scalar that terminated the word, zero when the
	// word was finalized by a script change (the scalar started the
	// next word instead).
	Boundary rune

	// KeepBoundary indicates the boundary scalar reached the document
	// and must be retyped after a correction replaces the word.
	KeepBoundary bool
}

// Tokenizer owns the current word buffer. Not safe for concurrent use;
// the engine serializes access.
type Tokenizer struct {
	buf     []rune
	inEmail bool
}

// New returns an empty tokenizer.
func New() *Tokenizer {
	return &Tokenizer{}
}

// Consume feeds one decoded scalar under the given active layout and
// returns the resulting event.
func (t *Tokenizer) Consume(r rune, active layout.Lang) Event {
	// Email spans are swallowed whole: nothing between '@' and the next
	// whitespace is ever a correctable word.
	if t.inEmail {
		if isWhitespace(r) {
			t.inEmail = false
			t.buf = t.buf[:0]
			return Event{Kind: BufferReset}
		}
		return Event{Kind: Continue}
	}

	if r == '@' {
		t.buf = t.buf[:0]
		t.inEmail = true
		return Event{Kind: BufferReset}
	}

	activeLatin := active.IsLatin()
	if script.IsLetterFor(r, activeLatin) {
		if len(t.buf) > 0 {
			first := script.EffectiveTag(t.buf[0], activeLatin)
			cur := script.EffectiveTag(r, activeLatin)
			if first != cur {
				// Script change finalizes the old word; the new scalar
				// starts a fresh buffer.
				word := string(t.buf)
				t.buf = append(t.buf[:0], r)
				return Event{Kind: WordCompleted, Word: word}
			}
		}
		t.buf = append(t.buf, r)
		return Event{Kind: Continue}
	}

	// Word-internal marks extend a word in progress but never start one.
	if script.IsWordInternal(r) {
		if len(t.buf) > 0 {
			t.buf = append(t.buf, r)
			return Event{Kind: Continue}
		}
		return Event{Kind: BufferReset}
	}

	// Boundary, digit, or unmapped symbol: finalize whatever is buffered.
	if len(t.buf) == 0 {
		return Event{Kind: BufferReset}
	}
	word := string(t.buf)
	t.buf = t.buf[:0]
	return Event{Kind: WordCompleted, Word: word, Boundary: r, KeepBoundary: true}
}

// Pop removes the last buffered scalar, mirroring a backspace. Popping
// an empty buffer is a no-op.
func (t *Tokenizer) Pop() {
	if n := len(t.buf); n > 0 {
		t.buf = t.buf[:n-1]
	}
}

// Clear empties the buffer without leaving email mode, mirroring a
// modified delete (option/ctrl-backspace).
func (t *Tokenizer) Clear() {
	t.buf = t.buf[:0]
}

// Reset returns the tokenizer to its initial state.
func (t *Tokenizer) Reset() {
	t.buf = t.buf[:0]
	t.inEmail = false
}

// Word returns the word currently being typed.
func (t *Tokenizer) Word() string {
	return string(t.buf)
}

// Len returns the number of buffered scalars.
func (t *Tokenizer) Len() int {
	return len(t.buf)
}

func isWhitespace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\v', '\f', 0x00A0:
		return true
	}
	return false
}
