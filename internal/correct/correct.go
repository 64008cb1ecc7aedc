// Package correct turns decision verdicts into sequences of external
// actions: delete typed text, switch the keyboard layout, retype the
// converted word, and relocate deferred words in the live document.
//
// All collaborators are interfaces; platform implementations live in
// internal/platform and tests use fakes. Nothing in this package is
// fatal: failure paths degrade to best-effort keystroke fallbacks.
package correct

import (
	"context"
	"log/slog"
	"time"

	"layoutd/internal/ambiguity"
	"layoutd/internal/layout"
)

// Direction of caret movement.
type Direction int

const (
	// Left moves the caret toward the start of the document.
	Left Direction = iota
	// Right moves the caret toward the end.
	Right
)

// LayoutSwitch drives the OS keyboard layout. Both calls are synchronous
// from the executor's viewpoint; confirmation is by polling
// CurrentLanguage after a SwitchTo.
type LayoutSwitch interface {
	CurrentLanguage() layout.Lang
	SwitchTo(lang layout.Lang) error
}

// TextInjector emits synthetic editing keystrokes into the focused
// application. MoveCaret moves word-by-word; with extendSelection it
// grows the selection instead of moving the caret.
type TextInjector interface {
	DeleteBackward(count int) error
	TypeText(text string) error
	MoveCaret(dir Direction, words int, extendSelection bool) error
}

// AccessibleDocument is the optional out-of-band text surface. Hosts
// without editable-text exposure simply do not provide one; every code
// path here degrades to keystroke navigation, never to silent failure.
type AccessibleDocument interface {
	FocusedText() (string, bool)
	SelectedRange() (start, length int, ok bool)
	Replace(start, end int, text string) bool
}

// Options tunes the layout-switch confirmation policy.
type Options struct {
	// SwitchPollInterval is the delay between layout confirmation polls.
	SwitchPollInterval time.Duration

	// SwitchRetryLimit bounds confirmation polls before giving up and
	// typing anyway.
	SwitchRetryLimit int

	// RelocationWindow is the rune window searched around a deferred
	// entry's last known position.
	RelocationWindow int
}

// DefaultOptions returns the stock timing policy.
func DefaultOptions() Options {
	return Options{
		SwitchPollInterval: 50 * time.Millisecond,
		SwitchRetryLimit:   10,
		RelocationWindow:   ambiguity.DefaultWindow,
	}
}

// Executor applies corrections through the collaborator interfaces.
type Executor struct {
	switcher LayoutSwitch
	injector TextInjector
	doc      AccessibleDocument // nil when the host exposes no text API
	opts     Options
	log      *slog.Logger
}

// NewExecutor wires an executor. doc may be nil.
func NewExecutor(sw LayoutSwitch, inj TextInjector, doc AccessibleDocument, opts Options, log *slog.Logger) *Executor {
	if log == nil {
		log = slog.Default()
	}
	if opts.SwitchPollInterval <= 0 {
		opts.SwitchPollInterval = DefaultOptions().SwitchPollInterval
	}
	if opts.SwitchRetryLimit <= 0 {
		opts.SwitchRetryLimit = DefaultOptions().SwitchRetryLimit
	}
	if opts.RelocationWindow <= 0 {
		opts.RelocationWindow = ambiguity.DefaultWindow
	}
	return &Executor{switcher: sw, injector: inj, doc: doc, opts: opts, log: log}
}

// ReplaceLastWord rewrites the word just typed: deletes it (plus the
// boundary scalar when one reached the document), switches to the
// target layout, and retypes the replacement with the boundary restored.
func (e *Executor) ReplaceLastWord(ctx context.Context, typed, replacement string, target layout.Lang, boundary rune, keepBoundary bool) error {
	del := len([]rune(typed))
	if keepBoundary {
		del++
	}
	if err := e.injector.DeleteBackward(del); err != nil {
		return err
	}
	if err := e.ensureLayout(ctx, target); err != nil {
		return err
	}
	text := replacement
	if keepBoundary && boundary != 0 {
		text += string(boundary)
	}
	return e.injector.TypeText(text)
}

// ApplyDeferred resolves a popped ambiguity entry. pendingWord reports
// whether a word is currently in progress at the caret; it widens the
// keystroke navigation by one jump.
func (e *Executor) ApplyDeferred(ctx context.Context, entry ambiguity.Entry, pendingWord bool) error {
	var docText string
	if e.doc != nil {
		if text, ok := e.doc.FocusedText(); ok {
			docText = text
		}
	}

	plan := ambiguity.ComputePlan(docText, entry, e.opts.RelocationWindow)

	if plan.Kind == ambiguity.PlanReplace && e.doc != nil {
		if err := e.ensureLayout(ctx, entry.TargetLang); err != nil {
			return err
		}
		if e.doc.Replace(plan.Start, plan.End, entry.Converted) {
			e.log.Debug("deferred correction applied via accessible document",
				"word", entry.Original, "start", plan.Start)
			return nil
		}
		e.log.Debug("accessible replace refused, falling back to keystrokes",
			"word", entry.Original)
	}

	return e.applyByKeystrokes(ctx, entry, pendingWord)
}

// applyByKeystrokes is the guaranteed-available last resort: walk left
// word-by-word, select the target word, delete it, retype the
// conversion, and walk back. It may land on the wrong word if WordsAhead
// bookkeeping drifted; that is a documented accuracy limit.
func (e *Executor) applyByKeystrokes(ctx context.Context, entry ambiguity.Entry, pendingWord bool) error {
	back := int(entry.WordsAhead) + 1
	if pendingWord {
		back++
	}

	if err := e.injector.MoveCaret(Left, back, false); err != nil {
		return err
	}
	if err := e.injector.MoveCaret(Right, 1, true); err != nil {
		return err
	}
	if err := e.injector.DeleteBackward(1); err != nil {
		return err
	}
	if err := e.ensureLayout(ctx, entry.TargetLang); err != nil {
		return err
	}
	if err := e.injector.TypeText(entry.Converted); err != nil {
		return err
	}
	// Best-effort caret restore.
	return e.injector.MoveCaret(Right, back-1, false)
}

// ensureLayout requests a switch and polls for confirmation up to the
// retry ceiling. Reaching the ceiling is not an error: leaving the
// buffer untouched would strand the user mid-correction, so the caller
// proceeds to type anyway.
func (e *Executor) ensureLayout(ctx context.Context, target layout.Lang) error {
	if e.switcher.CurrentLanguage() == target {
		return nil
	}
	if err := e.switcher.SwitchTo(target); err != nil {
		e.log.Warn("layout switch request failed", "target", target, "error", err)
		return nil
	}

	for attempt := 0; attempt < e.opts.SwitchRetryLimit; attempt++ {
		if e.switcher.CurrentLanguage() == target {
			return nil
		}
		timer := time.NewTimer(e.opts.SwitchPollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	e.log.Warn("layout switch unconfirmed after retries, typing anyway",
		"target", target, "attempts", e.opts.SwitchRetryLimit)
	return nil
}
