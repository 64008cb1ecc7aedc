package ambiguity

import (
	"fmt"
	"testing"

	"layoutd/internal/layout"
)

func entry(word string) Entry {
	return Entry{Original: word, Converted: "x", TargetLang: layout.UK, DocPos: PosUnknown}
}

func TestPushPopLIFO(t *testing.T) {
	tr := NewTracker()
	tr.Push(entry("first"))
	tr.Push(entry("second"))

	e, ok := tr.PopMostRecent()
	if !ok || e.Original != "second" {
		t.Fatalf("pop = %v %v, want second", e.Original, ok)
	}
	e, ok = tr.PopMostRecent()
	if !ok || e.Original != "first" {
		t.Fatalf("pop = %v %v, want first", e.Original, ok)
	}
	if _, ok := tr.PopMostRecent(); ok {
		t.Error("pop on empty tracker returned an entry")
	}
}

func TestCapacityEvictsOldest(t *testing.T) {
	tr := NewTracker()
	for i := 0; i < Capacity+1; i++ {
		tr.Push(entry(fmt.Sprintf("w%d", i)))
	}
	if tr.Len() != Capacity {
		t.Fatalf("len = %d, want %d", tr.Len(), Capacity)
	}

	snap := tr.Snapshot()
	if snap[0].Original != "w1" {
		t.Errorf("oldest = %q, want w1 (w0 evicted)", snap[0].Original)
	}
	if snap[len(snap)-1].Original != fmt.Sprintf("w%d", Capacity) {
		t.Errorf("newest = %q", snap[len(snap)-1].Original)
	}
}

func TestAgeAll(t *testing.T) {
	tr := NewTracker()
	e := entry("word")
	e.WordsAhead = 3
	tr.Push(e)
	tr.Push(entry("later"))

	const n = 4
	for i := 0; i < n; i++ {
		tr.AgeAll()
	}

	snap := tr.Snapshot()
	if snap[0].WordsAhead != 3+n {
		t.Errorf("WordsAhead = %d, want %d", snap[0].WordsAhead, 3+n)
	}
	if snap[1].WordsAhead != n {
		t.Errorf("WordsAhead = %d, want %d", snap[1].WordsAhead, n)
	}
}

func TestClear(t *testing.T) {
	tr := NewTracker()
	tr.Push(entry("a"))
	tr.Clear()
	if tr.Len() != 0 {
		t.Errorf("len after Clear = %d", tr.Len())
	}
}

func TestComputePlanAnchoredMatch(t *testing.T) {
	doc := "the best cat"
	e := Entry{
		Original:     "the",
		Converted:    "еру",
		AnchorBefore: "",
		AnchorAfter:  " bes",
		WordsAhead:   2,
		DocPos:       0,
	}
	plan := ComputePlan(doc, e, DefaultWindow)
	if plan.Kind != PlanReplace {
		t.Fatalf("plan = %+v, want PlanReplace", plan)
	}
	if plan.Start != 0 || plan.End != 3 {
		t.Errorf("range = [%d,%d), want [0,3)", plan.Start, plan.End)
	}

	// Applying the plan changes only the first word.
	runes := []rune(doc)
	got := string(runes[:plan.Start]) + e.Converted + string(runes[plan.End:])
	if got != "еру best cat" {
		t.Errorf("applied = %q, want %q", got, "еру best cat")
	}
}

func TestComputePlanWordOnlyFallback(t *testing.T) {
	// Anchors no longer match (text edited behind the engine's back),
	// but the word itself is still present.
	doc := "xxx vsq yyy"
	e := Entry{
		Original:     "vsq",
		AnchorBefore: "gone",
		AnchorAfter:  "gone",
		DocPos:       4,
	}
	plan := ComputePlan(doc, e, DefaultWindow)
	if plan.Kind != PlanReplace {
		t.Fatalf("plan = %+v, want PlanReplace", plan)
	}
	if plan.Start != 4 || plan.End != 7 {
		t.Errorf("range = [%d,%d), want [4,7)", plan.Start, plan.End)
	}
}

func TestComputePlanKeystrokeFallback(t *testing.T) {
	// Word vanished entirely: degrade to keystroke navigation.
	e := Entry{Original: "vsq", WordsAhead: 5, DocPos: PosUnknown}
	plan := ComputePlan("completely different text", e, DefaultWindow)
	if plan.Kind != PlanKeystrokes || plan.WordsBack != 5 {
		t.Errorf("plan = %+v, want keystrokes 5 back", plan)
	}

	// No accessible text at all.
	plan = ComputePlan("", e, DefaultWindow)
	if plan.Kind != PlanKeystrokes {
		t.Errorf("plan = %+v, want keystrokes", plan)
	}
}

func TestComputePlanWindowBounds(t *testing.T) {
	// The word occurs twice; the window around the known position picks
	// the nearby occurrence, not the distant one.
	doc := "vsq aaaaaaaaaaaaaaaaaaaa vsq bbbb"
	e := Entry{Original: "vsq", DocPos: 25}
	plan := ComputePlan(doc, e, 6)
	if plan.Kind != PlanReplace || plan.Start != 25 {
		t.Errorf("plan = %+v, want replace at 25", plan)
	}
}

func TestComputePlanCyrillicOffsets(t *testing.T) {
	// Rune offsets, not byte offsets.
	doc := "це мій дім"
	e := Entry{Original: "мій", AnchorBefore: "це ", AnchorAfter: " ді", DocPos: 3}
	plan := ComputePlan(doc, e, DefaultWindow)
	if plan.Kind != PlanReplace || plan.Start != 3 || plan.End != 6 {
		t.Errorf("plan = %+v, want replace [3,6)", plan)
	}
}
