// internal/dictionary/oracle.go
//
// Dictionary oracles answer one question: is this string a word in a
// language? The game engine treats every implementation as a black box.
//
// Implementations in this package:
//   - Set:      in-memory hashed lookup built from word lists.
//   - SQLite:   lookup against a dictionary_words table.
//   - Timeout:  wraps another oracle and bounds how long a call may take.
//
// Any error from IsRecognizedWord means "could not answer". Callers must
// never read an error as acceptance.
package dictionary

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultLanguage is used when no language is configured.
var DefaultLanguage = language.English

var (
	// ErrUnavailable is wrapped by every failure to answer a lookup.
	ErrUnavailable = errors.New("dictionary: oracle unavailable")

	// ErrUnsupportedLanguage means the oracle holds no words for the language.
	ErrUnsupportedLanguage = errors.New("dictionary: unsupported language")
)

// Oracle reports whether word is a recognized word in lang.
type Oracle interface {
	IsRecognizedWord(ctx context.Context, word string, lang language.Tag) (bool, error)
}

// ParseLanguage parses a BCP 47 tag, falling back to DefaultLanguage for an
// empty string.
func ParseLanguage(s string) (language.Tag, error) {
	if s == "" {
		return DefaultLanguage, nil
	}
	tag, err := language.Parse(s)
	if err != nil {
		return language.Und, fmt.Errorf("dictionary: parse language %q: %w", s, err)
	}
	return tag, nil
}

// Normalize trims w and lowercases it with the casing rules of lang, so
// Turkish "I" becomes "ı" while English "I" becomes "i".
func Normalize(lang language.Tag, w string) string {
	return cases.Lower(lang).String(strings.TrimSpace(w))
}

// HasEmbedded reports whether the bundled word list covers lang.
func HasEmbedded(lang language.Tag) bool {
	return baseKey(lang) == baseKey(language.English)
}

// baseKey reduces a tag to its base language ("en-GB" → "en").
func baseKey(lang language.Tag) string {
	base, _ := lang.Base()
	return base.String()
}

// Timeout bounds the time a wrapped oracle may spend on one lookup.
type Timeout struct {
	next Oracle
	d    time.Duration
}

// WithTimeout wraps next so that calls slower than d fail with ErrUnavailable.
// A non-positive d disables the bound.
func WithTimeout(next Oracle, d time.Duration) *Timeout {
	return &Timeout{next: next, d: d}
}

type lookupResult struct {
	ok  bool
	err error
}

// IsRecognizedWord delegates to the wrapped oracle under a deadline. The
// lookup runs on its own goroutine so an oracle that ignores its context
// still cannot stall the caller.
func (t *Timeout) IsRecognizedWord(ctx context.Context, word string, lang language.Tag) (bool, error) {
	if t.d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.d)
		defer cancel()
	}

	done := make(chan lookupResult, 1)
	go func() {
		ok, err := t.next.IsRecognizedWord(ctx, word, lang)
		done <- lookupResult{ok: ok, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil && !errors.Is(res.err, ErrUnavailable) {
			return false, fmt.Errorf("%w: %w", ErrUnavailable, res.err)
		}
		return res.ok, res.err
	case <-ctx.Done():
		return false, fmt.Errorf("%w: %w", ErrUnavailable, ctx.Err())
	}
}
