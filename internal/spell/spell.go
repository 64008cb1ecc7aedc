// Package spell provides a wordlist-backed implementation of the spell
// oracle consumed by the decision engine.
//
// Wordlists are plain text, one word per line, lowercase. A personal
// dictionary (see internal/dictionary) overlays the wordlists: a word
// the user has claimed is correct in either language regardless of the
// list. Lookups normalize to NFC and lowercase first, so typographic
// apostrophes and decomposed forms land on the stored spelling.
package spell

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/text/unicode/norm"

	"layoutd/internal/layout"
)

// Personal is the user dictionary overlay. Optional.
type Personal interface {
	Contains(word string, lang layout.Lang) bool
}

// Oracle answers spellcheck queries for the two supported languages.
// Safe for concurrent use after loading.
type Oracle struct {
	mu       sync.RWMutex
	words    map[layout.Lang]map[string]struct{}
	tags     map[layout.Lang]string
	personal Personal
}

// NewOracle returns an oracle with no wordlists loaded. personal may be
// nil.
func NewOracle(personal Personal) *Oracle {
	return &Oracle{
		words:    make(map[layout.Lang]map[string]struct{}),
		tags:     make(map[layout.Lang]string),
		personal: personal,
	}
}

// Load reads a wordlist for lang from r, registering it under the
// concrete language tag (e.g. "en_US", "uk_UA"). Blank lines and lines
// starting with '#' are skipped.
func (o *Oracle) Load(lang layout.Lang, tag string, r io.Reader) error {
	set := make(map[string]struct{})
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		set[Normalize(line)] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read wordlist: %w", err)
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.words[lang] = set
	o.tags[lang] = tag
	return nil
}

// LoadFile reads a wordlist for lang from path.
func (o *Oracle) LoadFile(lang layout.Lang, tag, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open wordlist: %w", err)
	}
	defer f.Close()
	return o.Load(lang, tag, f)
}

// Normalize maps a word to its lookup form: NFC, lowercase, typographic
// apostrophe collapsed to ASCII.
func Normalize(word string) string {
	w := norm.NFC.String(word)
	w = strings.ToLower(w)
	return strings.ReplaceAll(w, "’", "'")
}

// IsCorrect reports whether word spellchecks in lang. The personal
// dictionary wins over the wordlist.
func (o *Oracle) IsCorrect(word string, lang layout.Lang) bool {
	if word == "" {
		return false
	}
	w := Normalize(word)

	if o.personal != nil && o.personal.Contains(w, lang) {
		return true
	}

	o.mu.RLock()
	defer o.mu.RUnlock()
	set, ok := o.words[lang]
	if !ok {
		return false
	}
	_, ok = set[w]
	return ok
}

// BestAvailableLanguage resolves lang to its loaded concrete tag.
func (o *Oracle) BestAvailableLanguage(lang layout.Lang) (string, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	tag, ok := o.tags[lang]
	return tag, ok
}

// WordCount returns the number of loaded words for lang.
func (o *Oracle) WordCount(lang layout.Lang) int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.words[lang])
}
