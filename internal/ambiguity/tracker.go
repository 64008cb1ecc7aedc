// Package ambiguity tracks deferred correction candidates.
//
// A word that spellchecks in both languages is not corrected silently;
// it is remembered here so a later hotkey can resolve it. Entries age as
// the caret moves on and are relocated in the live document on a
// best-effort basis.
package ambiguity

import (
	"sync"

	"layoutd/internal/layout"
)

// Capacity bounds the stack; pushing beyond it evicts the oldest entry.
const Capacity = 5

// PosUnknown marks an entry with no live document position.
const PosUnknown = -1

// Entry is one deferred correction candidate.
type Entry struct {
	Original   string
	Converted  string
	TargetLang layout.Lang

	// AnchorBefore and AnchorAfter hold up to 8 scalars of surrounding
	// document text captured shortly after the word was typed. Soft
	// hints only; the document may change underneath.
	AnchorBefore string
	AnchorAfter  string

	// WordsAhead counts word boundaries crossed since the entry was
	// pushed. It drives the keystroke-navigation fallback when anchor
	// relocation fails.
	WordsAhead uint

	// DocPos is the rune offset of the word's first scalar in the
	// document at capture time, or PosUnknown.
	DocPos int
}

// Tracker is a bounded stack of deferred candidates. All methods are
// safe for concurrent use; mutation is serialized so a hotkey pop cannot
// race a new push or a boundary aging pass.
type Tracker struct {
	mu      sync.Mutex
	entries []Entry
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{entries: make([]Entry, 0, Capacity)}
}

// Push appends an entry, evicting the oldest when the stack is full.
func (t *Tracker) Push(e Entry) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.entries) >= Capacity {
		copy(t.entries, t.entries[1:])
		t.entries = t.entries[:len(t.entries)-1]
	}
	t.entries = append(t.entries, e)
}

// AgeAll increments WordsAhead on every stored entry. Called once per
// word boundary crossed anywhere in the input stream, including
// boundaries produced by synthetic replay: those represent real words
// now present in the document.
func (t *Tracker) AgeAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.entries {
		t.entries[i].WordsAhead++
	}
}

// PopMostRecent removes and returns the most recently pushed entry.
func (t *Tracker) PopMostRecent() (Entry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := len(t.entries)
	if n == 0 {
		return Entry{}, false
	}
	e := t.entries[n-1]
	t.entries = t.entries[:n-1]
	return e, true
}

// Len returns the number of stored entries.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// Snapshot returns a copy of the stored entries, oldest first.
func (t *Tracker) Snapshot() []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Clear drops all entries.
func (t *Tracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = t.entries[:0]
}
