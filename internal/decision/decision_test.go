package decision

import (
	"testing"

	"layoutd/internal/layout"
)

type fakeOracle struct {
	en, uk         map[string]bool
	enGone, ukGone bool
}

func (f *fakeOracle) IsCorrect(word string, lang layout.Lang) bool {
	if lang == layout.UK {
		return f.uk[word]
	}
	return f.en[word]
}

func (f *fakeOracle) BestAvailableLanguage(lang layout.Lang) (string, bool) {
	if lang == layout.UK {
		if f.ukGone {
			return "", false
		}
		return "uk_UA", true
	}
	if f.enGone {
		return "", false
	}
	return "en_US", true
}

func set(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

func TestDecideConvertNow(t *testing.T) {
	oracle := &fakeOracle{en: set("hello"), uk: set("привіт")}
	eng := New(oracle, layout.NewMapper())

	verdict, cand := eng.Decide("ghbdsn", layout.EN)
	if verdict != ConvertNow {
		t.Fatalf("verdict = %v, want ConvertNow", verdict)
	}
	if cand.Converted != "привіт" || cand.TargetLang != layout.UK {
		t.Errorf("candidate = %+v", cand)
	}

	verdict, cand = eng.Decide("руддщ", layout.UK)
	if verdict != ConvertNow || cand.Converted != "hello" {
		t.Errorf("verdict = %v cand = %+v", verdict, cand)
	}
}

func TestDecideKeepValidWord(t *testing.T) {
	oracle := &fakeOracle{en: set("hello"), uk: set("привіт")}
	eng := New(oracle, layout.NewMapper())

	if v, _ := eng.Decide("hello", layout.EN); v != Keep {
		t.Errorf("Decide(hello, EN) = %v, want Keep", v)
	}
	if v, _ := eng.Decide("привіт", layout.UK); v != Keep {
		t.Errorf("Decide(привіт, UK) = %v, want Keep", v)
	}
	// Garbage in both languages stays untouched.
	if v, _ := eng.Decide("zzzzqq", layout.EN); v != Keep {
		t.Errorf("Decide(zzzzqq, EN) = %v, want Keep", v)
	}
}

func TestDecideDeferAmbiguous(t *testing.T) {
	// "vsq" decodes to "мій"; pretend both spellings are words.
	oracle := &fakeOracle{en: set("vsq"), uk: set("мій")}
	eng := New(oracle, layout.NewMapper())

	verdict, cand := eng.Decide("vsq", layout.EN)
	if verdict != Defer {
		t.Fatalf("verdict = %v, want Defer", verdict)
	}
	if cand.Original != "vsq" || cand.Converted != "мій" {
		t.Errorf("candidate = %+v", cand)
	}
}

func TestDecideSingleLetter(t *testing.T) {
	oracle := &fakeOracle{en: set("v", "a"), uk: set("м", "і")}
	eng := New(oracle, layout.NewMapper())

	// v/м: correct in both, defer.
	if v, _ := eng.Decide("v", layout.EN); v != Defer {
		t.Errorf("Decide(v, EN) = %v, want Defer", v)
	}
	// s/і: "s" is not an English word, "і" is Ukrainian: convert.
	if v, cand := eng.Decide("s", layout.EN); v != ConvertNow || cand.Converted != "і" {
		t.Errorf("Decide(s, EN) = %v %+v", v, cand)
	}
	// q/й: correct in neither, keep.
	if v, _ := eng.Decide("q", layout.EN); v != Keep {
		t.Errorf("Decide(q, EN) = %v, want Keep", v)
	}
}

func TestDecideSuspiciousMappedFallback(t *testing.T) {
	// df;rf decodes to важка which the oracle does not know, but the
	// mid-word semicolon plus a fully Cyrillic decode forces conversion.
	oracle := &fakeOracle{en: set(), uk: set()}
	eng := New(oracle, layout.NewMapper())

	verdict, cand := eng.Decide("df;rf", layout.EN)
	if verdict != ConvertNow {
		t.Fatalf("verdict = %v, want ConvertNow", verdict)
	}
	if cand.Converted != "важка" {
		t.Errorf("converted = %q", cand.Converted)
	}
}

func TestDecideSuspiciousSuppressesCurrentSpelling(t *testing.T) {
	// Even if the oracle claims the punctuation-bearing word is fine in
	// English, mid-word mapped punctuation overrides it.
	oracle := &fakeOracle{en: set("df;rf"), uk: set("важка")}
	eng := New(oracle, layout.NewMapper())

	if v, _ := eng.Decide("df;rf", layout.EN); v != ConvertNow {
		t.Errorf("verdict = %v, want ConvertNow", v)
	}
}

func TestDecideOracleUnavailable(t *testing.T) {
	oracle := &fakeOracle{en: set("hello"), uk: set("привіт"), ukGone: true}
	eng := New(oracle, layout.NewMapper())

	if v, _ := eng.Decide("ghbdsn", layout.EN); v != Keep {
		t.Errorf("verdict with missing uk oracle = %v, want Keep", v)
	}

	oracle = &fakeOracle{en: set("hello"), uk: set("привіт"), enGone: true}
	eng = New(oracle, layout.NewMapper())
	if v, _ := eng.Decide("ghbdsn", layout.EN); v != Keep {
		t.Errorf("verdict with missing en oracle = %v, want Keep", v)
	}
}

func TestDecideEmptyWord(t *testing.T) {
	oracle := &fakeOracle{en: set(), uk: set()}
	eng := New(oracle, layout.NewMapper())
	if v, _ := eng.Decide("", layout.EN); v != Keep {
		t.Errorf("Decide(\"\") = %v, want Keep", v)
	}
}
