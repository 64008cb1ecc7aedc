package engine

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"layoutd/internal/ambiguity"
	"layoutd/internal/correct"
	"layoutd/internal/decision"
	"layoutd/internal/layout"
	"layoutd/internal/synth"
)

type fakeOracle struct {
	en, uk map[string]bool
}

func (f *fakeOracle) IsCorrect(word string, lang layout.Lang) bool {
	if lang == layout.UK {
		return f.uk[word]
	}
	return f.en[word]
}

func (f *fakeOracle) BestAvailableLanguage(lang layout.Lang) (string, bool) {
	if lang == layout.UK {
		return "uk_UA", true
	}
	return "en_US", true
}

type fakeSwitch struct {
	mu      sync.Mutex
	current layout.Lang
}

func (f *fakeSwitch) CurrentLanguage() layout.Lang {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current
}

func (f *fakeSwitch) SwitchTo(lang layout.Lang) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.current = lang
	return nil
}

type fakeInjector struct {
	mu      sync.Mutex
	actions []string
	block   chan struct{} // when non-nil, DeleteBackward waits on it
}

func (f *fakeInjector) DeleteBackward(count int) error {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.actions = append(f.actions, fmt.Sprintf("delete:%d", count))
	return nil
}

func (f *fakeInjector) TypeText(text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.actions = append(f.actions, "type:"+text)
	return nil
}

func (f *fakeInjector) MoveCaret(dir correct.Direction, words int, extend bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.actions = append(f.actions, fmt.Sprintf("move:%d:%d:%v", dir, words, extend))
	return nil
}

func (f *fakeInjector) snapshot() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.actions))
	copy(out, f.actions)
	return out
}

type fakeDoc struct {
	mu   sync.Mutex
	text string
}

func (f *fakeDoc) FocusedText() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.text, true
}

func (f *fakeDoc) SelectedRange() (int, int, bool) { return 0, 0, false }

func (f *fakeDoc) Replace(start, end int, text string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	runes := []rune(f.text)
	if start < 0 || end > len(runes) || start > end {
		return false
	}
	f.text = string(runes[:start]) + text + string(runes[end:])
	return true
}

type testRig struct {
	eng *Engine
	sw  *fakeSwitch
	inj *fakeInjector
	doc *fakeDoc
}

func newRig(t *testing.T, oracle decision.SpellOracle, cfg Config) *testRig {
	t.Helper()
	sw := &fakeSwitch{current: layout.EN}
	inj := &fakeInjector{}
	doc := &fakeDoc{}
	mapper := layout.NewMapper()
	opts := correct.Options{
		SwitchPollInterval: time.Millisecond,
		SwitchRetryLimit:   3,
	}
	exec := correct.NewExecutor(sw, inj, doc, opts, nil)
	if cfg.SettleDelay == 0 {
		cfg.SettleDelay = time.Millisecond
	}
	cfg.StartEnabled = true
	eng := New(Deps{
		Decision: decision.New(oracle, mapper),
		Mapper:   mapper,
		Executor: exec,
		Switcher: sw,
		Document: doc,
	}, cfg)
	t.Cleanup(eng.Close)
	return &testRig{eng: eng, sw: sw, inj: inj, doc: doc}
}

func typeString(e *Engine, s string) {
	for _, r := range s {
		e.HandleKey(KeyEvent{Rune: r})
	}
}

func TestImmediateConversion(t *testing.T) {
	oracle := &fakeOracle{en: map[string]bool{"hello": true}, uk: map[string]bool{"привіт": true}}
	rig := newRig(t, oracle, Config{})

	typeString(rig.eng, "ghbdsn ")
	rig.eng.Flush()

	actions := rig.inj.snapshot()
	if len(actions) != 2 || actions[0] != "delete:7" || actions[1] != "type:привіт " {
		t.Errorf("actions = %v", actions)
	}
	if got := rig.eng.StatsSnapshot().Converted; got != 1 {
		t.Errorf("converted = %d, want 1", got)
	}
}

func TestValidWordUntouched(t *testing.T) {
	oracle := &fakeOracle{en: map[string]bool{"hello": true}, uk: map[string]bool{"привіт": true}}
	rig := newRig(t, oracle, Config{})

	typeString(rig.eng, "hello ")
	rig.eng.Flush()

	if actions := rig.inj.snapshot(); len(actions) != 0 {
		t.Errorf("correction fired for valid word: %v", actions)
	}
	if got := rig.eng.StatsSnapshot().Kept; got != 1 {
		t.Errorf("kept = %d, want 1", got)
	}
}

func TestTrailingPunctuationPreserved(t *testing.T) {
	oracle := &fakeOracle{en: map[string]bool{}, uk: map[string]bool{"привіт": true}}
	rig := newRig(t, oracle, Config{})

	// "ghbdsn." then space: the dot is buffered under the Latin layout,
	// stripped before the oracle, and restored after conversion.
	typeString(rig.eng, "ghbdsn. ")
	rig.eng.Flush()

	actions := rig.inj.snapshot()
	if len(actions) != 2 || actions[0] != "delete:8" || actions[1] != "type:привіт. " {
		t.Errorf("actions = %v", actions)
	}
}

func TestDeferredCaptureAndFix(t *testing.T) {
	oracle := &fakeOracle{en: map[string]bool{"vsq": true}, uk: map[string]bool{"мій": true}}
	rig := newRig(t, oracle, Config{})
	rig.doc.mu.Lock()
	rig.doc.text = "vsq"
	rig.doc.mu.Unlock()

	typeString(rig.eng, "vsq ")
	rig.eng.Flush()

	entries := rig.eng.Ambiguities()
	if len(entries) != 1 {
		t.Fatalf("ambiguities = %d, want 1", len(entries))
	}
	if entries[0].Original != "vsq" || entries[0].Converted != "мій" {
		t.Errorf("entry = %+v", entries[0])
	}
	if entries[0].DocPos != 0 {
		t.Errorf("DocPos = %d, want 0", entries[0].DocPos)
	}

	if !rig.eng.FixLast() {
		t.Fatal("FixLast found nothing")
	}
	rig.eng.Flush()

	rig.doc.mu.Lock()
	text := rig.doc.text
	rig.doc.mu.Unlock()
	if text != "мій" {
		t.Errorf("document = %q, want мій", text)
	}
	if rig.eng.Ambiguities() != nil && len(rig.eng.Ambiguities()) != 0 {
		t.Error("entry not popped")
	}
}

func TestAgingAcrossBoundaries(t *testing.T) {
	oracle := &fakeOracle{
		en: map[string]bool{"vsq": true, "hello": true, "cat": true},
		uk: map[string]bool{"мій": true},
	}
	rig := newRig(t, oracle, Config{})

	typeString(rig.eng, "vsq ")
	rig.eng.Flush() // capture completes before later boundaries

	typeString(rig.eng, "hello cat ")
	rig.eng.Flush()

	entries := rig.eng.Ambiguities()
	if len(entries) != 1 {
		t.Fatalf("ambiguities = %d, want 1", len(entries))
	}
	if entries[0].WordsAhead != 2 {
		t.Errorf("WordsAhead = %d, want 2", entries[0].WordsAhead)
	}
}

func TestSynthesisCaptureAndReplay(t *testing.T) {
	oracle := &fakeOracle{en: map[string]bool{}, uk: map[string]bool{"привіт": true}}
	rig := newRig(t, oracle, Config{})
	rig.inj.block = make(chan struct{})

	typeString(rig.eng, "ghbdsn ")

	// Wait until the correction goroutine enters synthesis.
	deadline := time.Now().Add(time.Second)
	for rig.eng.guard.State() == synth.Idle && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	// Input arriving mid-synthesis is passed through but not tokenized.
	typeString(rig.eng, "hi")
	if got := rig.eng.PendingWord(); got != "" {
		t.Errorf("buffer mid-synthesis = %q, want empty", got)
	}

	close(rig.inj.block)
	rig.eng.Flush()

	// After replay, the queued input reached the tokenizer in order.
	if got := rig.eng.PendingWord(); got != "hi" {
		t.Errorf("buffer after replay = %q, want hi", got)
	}
}

func TestSyntheticEventsIgnored(t *testing.T) {
	oracle := &fakeOracle{en: map[string]bool{}, uk: map[string]bool{"привіт": true}}
	rig := newRig(t, oracle, Config{})

	for _, r := range "ghbdsn " {
		rig.eng.HandleKey(KeyEvent{Rune: r, Synthetic: true})
	}
	rig.eng.Flush()

	if actions := rig.inj.snapshot(); len(actions) != 0 {
		t.Errorf("synthetic input triggered corrections: %v", actions)
	}
	if got := rig.eng.PendingWord(); got != "" {
		t.Errorf("synthetic input reached buffer: %q", got)
	}
}

func TestToggleHotkey(t *testing.T) {
	oracle := &fakeOracle{en: map[string]bool{}, uk: map[string]bool{"привіт": true}}
	toggle := Hotkey{Rune: 'l', Modifiers: ModControl | ModAlt}
	rig := newRig(t, oracle, Config{Toggle: toggle})

	d := rig.eng.HandleKey(KeyEvent{Rune: 'l', Modifiers: ModControl | ModAlt})
	if d != Suppress {
		t.Error("toggle hotkey not suppressed")
	}
	if rig.eng.Enabled() {
		t.Error("engine still enabled after toggle")
	}

	// Disabled engine corrects nothing.
	typeString(rig.eng, "ghbdsn ")
	rig.eng.Flush()
	if actions := rig.inj.snapshot(); len(actions) != 0 {
		t.Errorf("disabled engine corrected: %v", actions)
	}

	rig.eng.HandleKey(KeyEvent{Rune: 'l', Modifiers: ModControl | ModAlt})
	if !rig.eng.Enabled() {
		t.Error("engine not re-enabled")
	}
}

func TestForceConvertHotkey(t *testing.T) {
	// Oracle knows nothing; force-convert ignores it.
	oracle := &fakeOracle{en: map[string]bool{}, uk: map[string]bool{}}
	force := Hotkey{Rune: 'f', Modifiers: ModControl | ModAlt}
	rig := newRig(t, oracle, Config{ForceConvert: force})

	typeString(rig.eng, "ghbdsn")
	d := rig.eng.HandleKey(KeyEvent{Rune: 'f', Modifiers: ModControl | ModAlt})
	if d != Suppress {
		t.Error("force hotkey not suppressed")
	}
	rig.eng.Flush()

	actions := rig.inj.snapshot()
	if len(actions) != 2 || actions[0] != "delete:6" || actions[1] != "type:привіт" {
		t.Errorf("actions = %v", actions)
	}
	if got := rig.eng.PendingWord(); got != "" {
		t.Errorf("buffer after force convert = %q", got)
	}
}

func TestBackspaceEditsBuffer(t *testing.T) {
	oracle := &fakeOracle{en: map[string]bool{}, uk: map[string]bool{}}
	rig := newRig(t, oracle, Config{})

	typeString(rig.eng, "hello")
	rig.eng.HandleKey(KeyEvent{Code: KeyBackspace})
	if got := rig.eng.PendingWord(); got != "hell" {
		t.Errorf("buffer = %q, want hell", got)
	}

	rig.eng.HandleKey(KeyEvent{Code: KeyBackspace, Modifiers: ModAlt})
	if got := rig.eng.PendingWord(); got != "" {
		t.Errorf("buffer after word delete = %q", got)
	}
}

func TestEmailNeverCorrected(t *testing.T) {
	oracle := &fakeOracle{en: map[string]bool{}, uk: map[string]bool{"привіт": true}}
	rig := newRig(t, oracle, Config{})

	typeString(rig.eng, "ghbdsn@gmail.com ")
	rig.eng.Flush()

	if actions := rig.inj.snapshot(); len(actions) != 0 {
		t.Errorf("email fragment corrected: %v", actions)
	}
}

func TestCapacityEviction(t *testing.T) {
	oracle := &fakeOracle{
		en: map[string]bool{"vsq": true},
		uk: map[string]bool{"мій": true},
	}
	rig := newRig(t, oracle, Config{})

	for i := 0; i < ambiguity.Capacity+2; i++ {
		typeString(rig.eng, "vsq ")
		rig.eng.Flush()
	}
	if got := len(rig.eng.Ambiguities()); got != ambiguity.Capacity {
		t.Errorf("ambiguities = %d, want %d", got, ambiguity.Capacity)
	}
}
