// Package engine wires the tokenizer, decision engine, ambiguity
// tracker, synthesis guard, and correction executor into the live
// keystroke hot path.
//
// One Engine instance owns all mutable state. The hot path (HandleKey)
// runs on the event source's callback context and must return quickly;
// corrections and anchor captures run on their own goroutines tied to
// the engine's lifecycle and cancelled on Close.
package engine

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"layoutd/internal/ambiguity"
	"layoutd/internal/correct"
	"layoutd/internal/decision"
	"layoutd/internal/layout"
	"layoutd/internal/script"
	"layoutd/internal/synth"
	"layoutd/internal/tokenizer"
)

// Recorder persists correction outcomes. Optional; nil disables
// persistence. Called off the hot path.
type Recorder interface {
	RecordCorrection(original, converted string, target layout.Lang, kind string) error
}

// Config tunes the engine.
type Config struct {
	// FixLast resolves the most recent deferred ambiguity.
	FixLast Hotkey
	// Toggle switches the engine on or off and clears the word buffer.
	Toggle Hotkey
	// ForceConvert converts the current word buffer regardless of the
	// spellcheck verdict.
	ForceConvert Hotkey

	// SettleDelay is how long after a deferral the engine waits before
	// reading anchor text, letting the host document settle.
	SettleDelay time.Duration

	// StartEnabled controls the initial on/off state.
	StartEnabled bool
}

// DefaultConfig returns the stock engine tuning.
func DefaultConfig() Config {
	return Config{
		SettleDelay:  150 * time.Millisecond,
		StartEnabled: true,
	}
}

// Stats counts correction outcomes since start.
type Stats struct {
	Converted atomic.Uint64
	Deferred  atomic.Uint64
	Resolved  atomic.Uint64
	Kept      atomic.Uint64
}

// StatsSnapshot is a point-in-time copy of Stats.
type StatsSnapshot struct {
	Converted uint64 `json:"converted"`
	Deferred  uint64 `json:"deferred"`
	Resolved  uint64 `json:"resolved"`
	Kept      uint64 `json:"kept"`
}

// Deps carries the engine's collaborators.
type Deps struct {
	Decision *decision.Engine
	Mapper   *layout.Mapper
	Executor *correct.Executor
	Switcher correct.LayoutSwitch
	Document correct.AccessibleDocument // may be nil
	Recorder Recorder                   // may be nil
	Logger   *slog.Logger
}

// Engine is the layout correction core.
type Engine struct {
	mu      sync.Mutex
	tok     *tokenizer.Tokenizer
	enabled bool

	dec      *decision.Engine
	mapper   *layout.Mapper
	tracker  *ambiguity.Tracker
	guard    *synth.Guard[KeyEvent]
	exec     *correct.Executor
	switcher correct.LayoutSwitch
	doc      correct.AccessibleDocument
	rec      Recorder
	log      *slog.Logger
	cfg      Config

	stats Stats

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates an engine. Call Close to cancel in-flight corrections.
func New(deps Deps, cfg Config) *Engine {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if cfg.SettleDelay <= 0 {
		cfg.SettleDelay = DefaultConfig().SettleDelay
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Engine{
		tok:      tokenizer.New(),
		enabled:  cfg.StartEnabled,
		dec:      deps.Decision,
		mapper:   deps.Mapper,
		tracker:  ambiguity.NewTracker(),
		guard:    synth.NewGuard[KeyEvent](),
		exec:     deps.Executor,
		switcher: deps.Switcher,
		doc:      deps.Document,
		rec:      deps.Recorder,
		log:      deps.Logger,
		cfg:      cfg,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Close tears the engine down: pending retries and delayed captures are
// cancelled and no correction fires afterwards.
func (e *Engine) Close() {
	e.cancel()
	e.wg.Wait()
}

// Flush waits for in-flight corrections and anchor captures to finish
// without cancelling them.
func (e *Engine) Flush() {
	e.wg.Wait()
}

// PendingWord returns the word currently in the buffer.
func (e *Engine) PendingWord() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tok.Word()
}

// Enabled reports the on/off state.
func (e *Engine) Enabled() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.enabled
}

// SetEnabled flips the on/off state, clearing the word buffer.
func (e *Engine) SetEnabled(on bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.enabled = on
	e.tok.Reset()
}

// Toggle flips the on/off state and returns the new state.
func (e *Engine) Toggle() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.enabled = !e.enabled
	e.tok.Reset()
	return e.enabled
}

// UpdateHotkeys replaces the hotkey bindings. Used by configuration
// hot-reload.
func (e *Engine) UpdateHotkeys(fixLast, toggle, force Hotkey) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cfg.FixLast = fixLast
	e.cfg.Toggle = toggle
	e.cfg.ForceConvert = force
}

// StatsSnapshot returns current counters.
func (e *Engine) StatsSnapshot() StatsSnapshot {
	return StatsSnapshot{
		Converted: e.stats.Converted.Load(),
		Deferred:  e.stats.Deferred.Load(),
		Resolved:  e.stats.Resolved.Load(),
		Kept:      e.stats.Kept.Load(),
	}
}

// Ambiguities returns a copy of the deferred entries, oldest first.
func (e *Engine) Ambiguities() []ambiguity.Entry {
	return e.tracker.Snapshot()
}

// HandleKey is the hot path: one call per keydown, returning the
// pass/suppress disposition. It never blocks on the layout switch.
func (e *Engine) HandleKey(ev KeyEvent) Disposition {
	// The engine's own corrective keystrokes are excluded by origin tag.
	if ev.Synthetic {
		return Pass
	}
	// Mid-synthesis input is captured for ordered replay, never dropped
	// and never tokenized out of order.
	if e.guard.Capture(ev) {
		return Pass
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.processLocked(ev)
}

// processLocked handles one event with e.mu held.
func (e *Engine) processLocked(ev KeyEvent) Disposition {
	if e.cfg.Toggle.Matches(ev) {
		e.enabled = !e.enabled
		e.tok.Reset()
		e.log.Info("engine toggled", "enabled", e.enabled)
		return Suppress
	}
	if !e.enabled {
		return Pass
	}
	if e.cfg.FixLast.Matches(ev) {
		e.fixLastLocked()
		return Suppress
	}
	if e.cfg.ForceConvert.Matches(ev) {
		e.forceConvertLocked()
		return Suppress
	}

	if ev.Code == KeyBackspace {
		if ev.Modifiers.Has(ModAlt) || ev.Modifiers.Has(ModControl) {
			e.tok.Clear()
		} else {
			e.tok.Pop()
		}
		return Pass
	}
	if ev.Rune == 0 {
		return Pass
	}
	// Modified keys are shortcuts, not text.
	if ev.Modifiers.Has(ModControl) || ev.Modifiers.Has(ModMeta) {
		e.tok.Reset()
		return Pass
	}

	active := e.switcher.CurrentLanguage()
	tev := e.tok.Consume(ev.Rune, active)
	if tev.Kind == tokenizer.WordCompleted {
		e.wordCompletedLocked(tev, active)
	}
	return Pass
}

// wordCompletedLocked runs the decision for a finished word.
func (e *Engine) wordCompletedLocked(tev tokenizer.Event, active layout.Lang) {
	// Every boundary ages the whole stack, including boundaries of words
	// that were kept or converted: the deferred words' distance from the
	// caret grows regardless.
	e.tracker.AgeAll()

	core, trailingCount := script.SplitTrailingMapped(tev.Word)
	wordRunes := []rune(tev.Word)
	trailing := string(wordRunes[len(wordRunes)-trailingCount:])

	verdict, cand := e.dec.Decide(core, active)
	switch verdict {
	case decision.Keep:
		e.stats.Kept.Add(1)

	case decision.ConvertNow:
		e.stats.Converted.Add(1)
		typed := tev.Word
		replacement := cand.Converted + trailing
		e.log.Debug("converting word", "from", core, "to", cand.Converted)
		e.spawnCorrection("convert", cand, func(ctx context.Context) error {
			return e.exec.ReplaceLastWord(ctx, typed, replacement, cand.TargetLang, tev.Boundary, tev.KeepBoundary)
		})

	case decision.Defer:
		e.stats.Deferred.Add(1)
		e.log.Debug("deferring ambiguous word", "word", core, "converted", cand.Converted)
		e.scheduleCapture(cand)
	}
}

// spawnCorrection runs apply on its own goroutine under the synthesis
// guard and replays any input captured meanwhile.
func (e *Engine) spawnCorrection(kind string, cand decision.Candidate, apply func(context.Context) error) {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		if e.ctx.Err() != nil {
			return
		}
		if !e.guard.Begin() {
			e.log.Debug("correction skipped, synthesis already in progress", "word", cand.Original)
			return
		}
		err := apply(e.ctx)
		queued := e.guard.End()
		if err != nil {
			e.log.Warn("correction failed", "kind", kind, "word", cand.Original, "error", err)
		} else if e.rec != nil {
			if rerr := e.rec.RecordCorrection(cand.Original, cand.Converted, cand.TargetLang, kind); rerr != nil {
				e.log.Debug("correction record failed", "error", rerr)
			}
		}
		e.replay(queued)
	}()
}

// replay pushes captured events back through the normal tokenizer path
// in arrival order. The events already reached the application; only the
// engine's bookkeeping needs them.
func (e *Engine) replay(events []KeyEvent) {
	for _, ev := range events {
		if ev.Synthetic {
			continue
		}
		e.mu.Lock()
		e.processLocked(ev)
		e.mu.Unlock()
	}
}

// scheduleCapture pushes a deferred candidate after the settle delay,
// reading anchor context from the accessible document if available. The
// push happens even when no anchors can be read; relocation then relies
// on WordsAhead alone.
func (e *Engine) scheduleCapture(cand decision.Candidate) {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		timer := time.NewTimer(e.cfg.SettleDelay)
		defer timer.Stop()
		select {
		case <-e.ctx.Done():
			return
		case <-timer.C:
		}

		entry := ambiguity.Entry{
			Original:   cand.Original,
			Converted:  cand.Converted,
			TargetLang: cand.TargetLang,
			DocPos:     ambiguity.PosUnknown,
		}
		if e.doc != nil {
			if text, ok := e.doc.FocusedText(); ok {
				fillAnchors(&entry, text)
			}
		}
		e.tracker.Push(entry)
	}()
}

// anchorLen is the maximum anchor length in scalars.
const anchorLen = 8

// fillAnchors locates the most recent occurrence of the entry's word in
// text and captures up to anchorLen scalars of context on each side.
func fillAnchors(entry *ambiguity.Entry, text string) {
	runes := []rune(text)
	word := []rune(entry.Original)
	pos := -1
	for i := len(runes) - len(word); i >= 0; i-- {
		match := true
		for j, w := range word {
			if runes[i+j] != w {
				match = false
				break
			}
		}
		if match {
			pos = i
			break
		}
	}
	if pos < 0 {
		return
	}

	lo := pos - anchorLen
	if lo < 0 {
		lo = 0
	}
	hi := pos + len(word) + anchorLen
	if hi > len(runes) {
		hi = len(runes)
	}
	entry.DocPos = pos
	entry.AnchorBefore = string(runes[lo:pos])
	entry.AnchorAfter = string(runes[pos+len(word) : hi])
}

// FixLast resolves the most recently deferred ambiguity. Exposed for
// the hotkey and the control IPC.
func (e *Engine) FixLast() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.fixLastLocked()
}

func (e *Engine) fixLastLocked() bool {
	entry, ok := e.tracker.PopMostRecent()
	if !ok {
		e.log.Debug("fix-last requested with empty ambiguity stack")
		return false
	}
	pending := e.tok.Len() > 0
	e.stats.Resolved.Add(1)
	cand := decision.Candidate{Original: entry.Original, Converted: entry.Converted, TargetLang: entry.TargetLang}
	e.spawnCorrection("resolve", cand, func(ctx context.Context) error {
		return e.exec.ApplyDeferred(ctx, entry, pending)
	})
	return true
}

// ForceConvert converts the word currently in the buffer regardless of
// the spellcheck verdict. Exposed for the hotkey and the control IPC.
func (e *Engine) ForceConvert() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.forceConvertLocked()
}

func (e *Engine) forceConvertLocked() bool {
	word := e.tok.Word()
	if word == "" {
		return false
	}
	active := e.switcher.CurrentLanguage()
	other := active.Opposite()
	converted := e.mapper.Convert(word, active, other)
	e.tok.Clear()
	e.stats.Converted.Add(1)
	cand := decision.Candidate{Original: word, Converted: converted, TargetLang: other}
	e.spawnCorrection("force", cand, func(ctx context.Context) error {
		return e.exec.ReplaceLastWord(ctx, word, converted, other, 0, false)
	})
	return true
}
