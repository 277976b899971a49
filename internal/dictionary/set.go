package dictionary

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"golang.org/x/text/language"

	"github.com/robalobadob/wordscramble/assets"
)

// Set is an in-memory dictionary keyed by base language. Safe for
// concurrent use.
type Set struct {
	mu    sync.RWMutex
	words map[string]map[string]struct{} // base language → word set
}

// NewSet returns an empty Set.
func NewSet() *Set {
	return &Set{words: make(map[string]map[string]struct{})}
}

// Add inserts words for lang. Words go through Normalize; blanks are skipped.
func (s *Set) Add(lang language.Tag, ws ...string) {
	key := baseKey(lang)
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.words[key]
	if !ok {
		m = make(map[string]struct{}, len(ws))
		s.words[key] = m
	}
	for _, w := range ws {
		w = Normalize(lang, w)
		if w == "" {
			continue
		}
		m[w] = struct{}{}
	}
}

// Load reads a newline-delimited word list for lang.
func (s *Set) Load(lang language.Tag, r io.Reader) error {
	ws, err := assets.ReadLines(r)
	if err != nil {
		return fmt.Errorf("dictionary: read word list: %w", err)
	}
	s.Add(lang, ws...)
	return nil
}

// LoadFile reads a word list file for lang.
func (s *Set) LoadFile(lang language.Tag, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("dictionary: open %s: %w", path, err)
	}
	defer f.Close()
	return s.Load(lang, f)
}

// EmbeddedEnglish returns a Set holding the bundled English word list.
func EmbeddedEnglish() (*Set, error) {
	ws, err := assets.EnglishDictionary()
	if err != nil {
		return nil, fmt.Errorf("dictionary: embedded english: %w", err)
	}
	s := NewSet()
	s.Add(language.English, ws...)
	return s, nil
}

// Len reports the number of words held for lang.
func (s *Set) Len(lang language.Tag) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.words[baseKey(lang)])
}

// IsRecognizedWord implements Oracle.
func (s *Set) IsRecognizedWord(ctx context.Context, word string, lang language.Tag) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.words[baseKey(lang)]
	if !ok {
		return false, fmt.Errorf("%w: %w: %s", ErrUnavailable, ErrUnsupportedLanguage, lang)
	}
	_, found := m[word]
	return found, nil
}
