// internal/words/words.go
//
// Root word pools for the game engine.
//
// Responsibilities:
//   - Load the pool of candidate root words from a file or the embedded default.
//   - Pick a root word for a new game (random, or fixed per UTC day).
//
// Pool rules:
//   - One word per line; lines are trimmed and lowercased.
//   - Blank lines and "#" comments are dropped here, never handed to the game.
//   - An empty pool is an error; a game cannot start without a root word.
package words

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"os"
	"time"

	"github.com/robalobadob/wordscramble/assets"
	"github.com/robalobadob/wordscramble/internal/daily"
)

// ErrEmptyPool is returned when a provider has no words to offer.
var ErrEmptyPool = errors.New("words: root word pool is empty")

// Provider supplies root words for new games.
type Provider interface {
	PickRandomWord() (string, error)
}

// List is a fixed pool of root words picked uniformly at random.
type List struct {
	words []string
}

// NewList builds a List from words as written. Sessions lowercase the root
// word for their own language.
func NewList(ws []string) *List {
	return &List{words: append([]string(nil), ws...)}
}

// Load reads a newline-delimited word list from path.
func Load(path string) (*List, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("words: open %s: %w", path, err)
	}
	defer f.Close()

	ws, err := assets.ReadLines(f)
	if err != nil {
		return nil, fmt.Errorf("words: read %s: %w", path, err)
	}
	return NewList(ws), nil
}

// Embedded returns the pool bundled with the binary.
func Embedded() (*List, error) {
	ws, err := assets.StartWords()
	if err != nil {
		return nil, fmt.Errorf("words: embedded list: %w", err)
	}
	return NewList(ws), nil
}

// PickRandomWord returns a cryptographically random word from the pool.
func (l *List) PickRandomWord() (string, error) {
	if len(l.words) == 0 {
		return "", ErrEmptyPool
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(l.words))))
	if err != nil {
		return "", fmt.Errorf("words: random pick: %w", err)
	}
	return l.words[n.Int64()], nil
}

// Len reports the number of words in the pool.
func (l *List) Len() int { return len(l.words) }

// Daily picks the same root word for everyone on a given UTC date.
type Daily struct {
	list *List
	salt string
	now  func() time.Time
}

// NewDaily wraps a pool with date-keyed selection. A nil clock means time.Now.
func NewDaily(l *List, salt string, now func() time.Time) *Daily {
	if now == nil {
		now = time.Now
	}
	return &Daily{list: l, salt: salt, now: now}
}

// PickRandomWord returns today's word. The name matches Provider; the choice
// is deterministic for the current date.
func (d *Daily) PickRandomWord() (string, error) {
	if d.list == nil || len(d.list.words) == 0 {
		return "", ErrEmptyPool
	}
	return d.list.words[daily.WordIndex(d.now(), d.salt, len(d.list.words))], nil
}
