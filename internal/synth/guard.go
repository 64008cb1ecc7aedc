// Package synth guards the engine against its own corrective keystrokes.
//
// While the correction executor emits synthetic events, genuinely new
// user input must not be tokenized (the document is mid-rewrite) and the
// synthetic events themselves must never re-enter the decision path,
// which would loop forever. The guard is a two-state machine with a FIFO
// capture queue flushed on the way back to idle.
package synth

import "sync"

// State of the guard.
type State int

const (
	// Idle means live input flows straight into the tokenizer.
	Idle State = iota
	// Synthesizing means the executor owns the keystroke stream.
	Synthesizing
)

// Guard serializes the synthesizing flag and the capture queue. Safe for
// use from the hot key-event path and the delayed correction path.
type Guard[T any] struct {
	mu    sync.Mutex
	state State
	queue []T
}

// NewGuard returns an idle guard.
func NewGuard[T any]() *Guard[T] {
	return &Guard[T]{}
}

// State returns the current state.
func (g *Guard[T]) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Begin enters Synthesizing. Returns false if a synthesis is already in
// progress, in which case the caller must not emit.
func (g *Guard[T]) Begin() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state == Synthesizing {
		return false
	}
	g.state = Synthesizing
	return true
}

// End returns to Idle and hands back every event captured while
// synthesizing, in arrival order. The caller replays them through the
// normal tokenizer path.
func (g *Guard[T]) End() []T {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = Idle
	captured := g.queue
	g.queue = nil
	return captured
}

// Capture queues ev if a synthesis is in progress and reports whether it
// did. When false, the event should be processed normally.
func (g *Guard[T]) Capture(ev T) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != Synthesizing {
		return false
	}
	g.queue = append(g.queue, ev)
	return true
}

// Pending returns the number of captured events.
func (g *Guard[T]) Pending() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.queue)
}
