// internal/game/engine.go
//
// Core game engine for a single word scramble session.
// Responsibilities:
//   - Start (or restart) a game with a root word from a words.Provider.
//   - Validate submissions in a fixed order, cheapest checks first:
//     length/self, originality, letter composition, dictionary.
//   - Track accepted words (newest first) and the running score.
//
// Notes:
//   - A Session is not safe for concurrent use. Hosts give each player their
//     own Session and serialize calls to it (see the store package).
//   - Submissions are never retained; each Submit call stands alone.
package game

import (
	"context"
	"fmt"
	"slices"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"

	"github.com/robalobadob/wordscramble/internal/dictionary"
	"github.com/robalobadob/wordscramble/internal/letters"
	"github.com/robalobadob/wordscramble/internal/words"
)

// maxIgnoredLen is the longest submission that is silently ignored.
const maxIgnoredLen = 2

// Session holds the state of one player's game.
type Session struct {
	id        string
	lang      language.Tag
	provider  words.Provider
	oracle    dictionary.Oracle
	now       func() time.Time
	state     State
	root      string
	used      []string // newest first
	score     int
	startedAt time.Time
}

// Option configures a Session.
type Option func(*Session)

// WithLanguage sets the dictionary language (default English).
func WithLanguage(tag language.Tag) Option {
	return func(s *Session) { s.lang = tag }
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithID sets the session identifier instead of a random UUID.
func WithID(id string) Option {
	return func(s *Session) { s.id = id }
}

// New constructs an Idle session. Call Start before submitting words.
func New(provider words.Provider, oracle dictionary.Oracle, opts ...Option) *Session {
	s := &Session{
		id:       uuid.NewString(),
		lang:     dictionary.DefaultLanguage,
		provider: provider,
		oracle:   oracle,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start begins a new game, discarding any previous one, and returns the new
// root word. If no root word can be obtained the session is left Idle and the
// returned error wraps ErrStartup.
func (s *Session) Start(ctx context.Context) (string, error) {
	s.state = Idle
	s.root = ""
	s.used = nil
	s.score = 0

	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrStartup, err)
	}
	root, err := s.provider.PickRandomWord()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrStartup, err)
	}
	root = s.normalize(root)
	if root == "" {
		return "", fmt.Errorf("%w: provider returned an empty word", ErrStartup)
	}

	s.root = root
	s.state = Active
	s.startedAt = s.now()
	log.Debug().Str("gameId", s.id).Str("rootWord", root).Msg("game started")
	return root, nil
}

// Submit runs a candidate word through the acceptance checks.
//
// Checks, in order (the first failure wins):
//  1. normalized length ≤ 2 or equal to the root word → Ignored, nil error
//  2. already used                                    → ErrDuplicateWord
//  3. not spellable from the root word's letters      → ErrNotComposable
//  4. dictionary cannot answer                        → ErrOracleUnavailable
//     dictionary does not know the word               → ErrNotARealWord
//
// Rejections are returned as *RejectionError and never change the session.
func (s *Session) Submit(ctx context.Context, raw string) (Result, error) {
	if s.state != Active {
		return Result{}, ErrNotStarted
	}

	word := s.normalize(raw)
	if utf8.RuneCountInString(word) <= maxIgnoredLen || word == s.root {
		return Result{Outcome: OutcomeIgnored, Word: word, Score: s.score}, nil
	}

	if slices.Contains(s.used, word) {
		return Result{}, s.rejected(reject(ErrDuplicateWord, word, s.root, nil))
	}

	if !letters.CanForm(word, s.root) {
		log.Debug().Str("gameId", s.id).Str("word", word).
			Interface("missing", runeKeys(letters.Missing(word, s.root))).Msg("missing letters")
		return Result{}, s.rejected(reject(ErrNotComposable, word, s.root, nil))
	}

	ok, err := s.oracle.IsRecognizedWord(ctx, word, s.lang)
	if err != nil {
		return Result{}, s.rejected(reject(ErrOracleUnavailable, word, s.root, err))
	}
	if !ok {
		return Result{}, s.rejected(reject(ErrNotARealWord, word, s.root, nil))
	}

	s.used = slices.Insert(s.used, 0, word)
	s.score += utf8.RuneCountInString(word)
	log.Debug().Str("gameId", s.id).Str("word", word).Int("score", s.score).Msg("word accepted")
	return Result{Outcome: OutcomeAccepted, Word: word, Score: s.score}, nil
}

func (s *Session) rejected(e *RejectionError) error {
	log.Debug().Str("gameId", s.id).Str("word", e.Word).Str("reason", Reason(e)).Msg("word rejected")
	return e
}

// normalize trims surrounding whitespace and lowercases using the rules of
// the session language.
func (s *Session) normalize(w string) string {
	return dictionary.Normalize(s.lang, w)
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// State returns the lifecycle state.
func (s *Session) State() State { return s.state }

// RootWord returns the current root word, or "" when Idle.
func (s *Session) RootWord() string { return s.root }

// UsedWords returns a copy of the accepted words, newest first.
func (s *Session) UsedWords() []string { return slices.Clone(s.used) }

// Score returns the running score.
func (s *Session) Score() int { return s.score }

// Language returns the dictionary language.
func (s *Session) Language() language.Tag { return s.lang }

// Snapshot returns a copy of the session state.
func (s *Session) Snapshot() Snapshot {
	used := s.UsedWords()
	if used == nil {
		used = []string{}
	}
	return Snapshot{
		ID:        s.id,
		State:     s.state,
		RootWord:  s.root,
		UsedWords: used,
		Score:     s.score,
		Language:  s.lang.String(),
		StartedAt: s.startedAt,
	}
}

func runeKeys(m map[rune]int) []string {
	out := make([]string, 0, len(m))
	for r := range m {
		out = append(out, string(r))
	}
	slices.Sort(out)
	return out
}
