package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"golang.org/x/text/language"

	"github.com/robalobadob/wordscramble/internal/game"
)

type oneWord string

func (w oneWord) PickRandomWord() (string, error) { return string(w), nil }

type acceptAll struct{}

func (acceptAll) IsRecognizedWord(context.Context, string, language.Tag) (bool, error) {
	return true, nil
}

func newSession(t *testing.T, id string) *game.Session {
	t.Helper()
	s := game.New(oneWord("attention"), acceptAll{}, game.WithID(id))
	if _, err := s.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	return s
}

func TestSaveUpdateDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore(0)
	defer m.Close()

	if err := m.Save(ctx, newSession(t, "g1")); err != nil {
		t.Fatalf("save: %v", err)
	}
	var root string
	err := m.Update(ctx, "g1", func(s *game.Session) error {
		root = s.RootWord()
		return nil
	})
	if err != nil || root != "attention" {
		t.Fatalf("update = %v root=%q", err, root)
	}

	sentinel := errors.New("boom")
	if err := m.Update(ctx, "g1", func(*game.Session) error { return sentinel }); !errors.Is(err, sentinel) {
		t.Fatalf("update err = %v, want fn error", err)
	}

	if err := m.Delete(ctx, "g1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := m.Update(ctx, "g1", func(*game.Session) error { return nil }); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if m.Len() != 0 {
		t.Fatalf("len = %d, want 0", m.Len())
	}
}

// Concurrent submissions against one session must be serialized; the final
// score is the same as if they ran one after another.
func TestUpdateSerializesSession(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore(0)
	defer m.Close()
	if err := m.Save(ctx, newSession(t, "g1")); err != nil {
		t.Fatalf("save: %v", err)
	}

	candidates := []string{"note", "tone", "tent", "tint", "neat", "into", "anti", "iota"}
	var wg sync.WaitGroup
	for _, w := range candidates {
		wg.Add(1)
		go func(w string) {
			defer wg.Done()
			_ = m.Update(ctx, "g1", func(s *game.Session) error {
				_, err := s.Submit(ctx, w)
				return err
			})
		}(w)
	}
	wg.Wait()

	_ = m.Update(ctx, "g1", func(s *game.Session) error {
		if got := len(s.UsedWords()); got != len(candidates) {
			t.Errorf("used = %d, want %d", got, len(candidates))
		}
		if s.Score() != 4*len(candidates) {
			t.Errorf("score = %d, want %d", s.Score(), 4*len(candidates))
		}
		return nil
	})
}

func TestEvictIdle(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore(0)
	defer m.Close()
	m.ttl = time.Hour

	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	_ = m.Save(ctx, newSession(t, "old"))
	now = now.Add(50 * time.Minute)
	_ = m.Save(ctx, newSession(t, "fresh"))
	now = now.Add(20 * time.Minute)

	if n := m.evictIdle(); n != 1 {
		t.Fatalf("evicted = %d, want 1", n)
	}
	if err := m.Update(ctx, "old", func(*game.Session) error { return nil }); !errors.Is(err, ErrNotFound) {
		t.Fatalf("old err = %v, want ErrNotFound", err)
	}
	if err := m.Update(ctx, "fresh", func(*game.Session) error { return nil }); err != nil {
		t.Fatalf("fresh err = %v", err)
	}
}

func TestUpdateAfterRemovalWhileWaiting(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore(0)
	defer m.Close()
	_ = m.Save(ctx, newSession(t, "g1"))

	m.mu.RLock()
	e := m.entries["g1"]
	m.mu.RUnlock()

	// Hold the session lock so Update queues behind it, then remove the
	// entry before releasing.
	e.mu.Lock()
	called := false
	errc := make(chan error, 1)
	go func() {
		errc <- m.Update(ctx, "g1", func(*game.Session) error {
			called = true
			return nil
		})
	}()
	time.Sleep(20 * time.Millisecond)
	_ = m.Delete(ctx, "g1")
	e.mu.Unlock()

	if err := <-errc; !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if called {
		t.Fatal("fn ran on a removed session")
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	m := NewMemoryStore(time.Minute)
	m.Close()
	m.Close()
}
