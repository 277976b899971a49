// internal/store/memory.go
//
// In-memory registry of game sessions, one per player.
//
// Characteristics:
//   - Sessions are keyed by game.Session.ID.
//   - The map is guarded by an RWMutex; each session additionally has its own
//     mutex so calls against one session never interleave.
//   - Sessions idle longer than the TTL are evicted by a background loop.
//   - State is lost when the process restarts.

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordscramble/internal/game"
)

// ErrNotFound is returned for unknown session IDs.
var ErrNotFound = errors.New("store: session not found")

// Store defines the registry interface for game sessions.
type Store interface {
	// Save adds or replaces a session.
	Save(ctx context.Context, s *game.Session) error

	// Update runs fn with exclusive access to the session.
	// Returns ErrNotFound if the session is missing; otherwise fn's error.
	Update(ctx context.Context, id string, fn func(*game.Session) error) error

	// Delete removes a session. Missing sessions are not an error.
	Delete(ctx context.Context, id string) error

	// Len reports the number of live sessions.
	Len() int
}

type entry struct {
	mu       sync.Mutex // serializes calls against the session
	session  *game.Session
	lastUsed time.Time
}

// Memory is a map-backed Store.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]*entry
	ttl     time.Duration
	now     func() time.Time
	done    chan struct{}
	once    sync.Once
}

// NewMemoryStore constructs an in-memory Store. A positive ttl starts a
// cleanup loop that evicts idle sessions; call Close to stop it.
func NewMemoryStore(ttl time.Duration) *Memory {
	m := &Memory{
		entries: make(map[string]*entry),
		ttl:     ttl,
		now:     time.Now,
		done:    make(chan struct{}),
	}
	if ttl > 0 {
		go m.cleanupLoop(cleanupInterval(ttl))
	}
	return m
}

// Save adds or replaces the session.
func (m *Memory) Save(ctx context.Context, s *game.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[s.ID()] = &entry{session: s, lastUsed: m.now()}
	return nil
}

// Update looks up the session and runs fn under its lock. An entry evicted
// or deleted while waiting for the lock is reported as ErrNotFound.
func (m *Memory) Update(ctx context.Context, id string, fn func(*game.Session) error) error {
	m.mu.RLock()
	e, ok := m.entries[id]
	m.mu.RUnlock()
	if !ok {
		return ErrNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if !m.holds(id, e) {
		return ErrNotFound
	}
	e.lastUsed = m.now()
	return fn(e.session)
}

// holds reports whether e is still the stored entry for id.
func (m *Memory) holds(id string, e *entry) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.entries[id] == e
}

// Delete removes the session.
func (m *Memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, id)
	return nil
}

// Len reports the number of stored sessions.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Close stops the cleanup loop. Safe to call more than once.
func (m *Memory) Close() {
	m.once.Do(func() { close(m.done) })
}

func cleanupInterval(ttl time.Duration) time.Duration {
	if iv := ttl / 4; iv > time.Second {
		return iv
	}
	return time.Second
}

func (m *Memory) cleanupLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			m.evictIdle()
		}
	}
}

// evictIdle removes sessions unused for longer than the TTL and returns how
// many were removed.
func (m *Memory) evictIdle() int {
	cutoff := m.now().Add(-m.ttl)

	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, e := range m.entries {
		// Skip sessions currently in use.
		if !e.mu.TryLock() {
			continue
		}
		idle := e.lastUsed.Before(cutoff)
		e.mu.Unlock()
		if idle {
			delete(m.entries, id)
			n++
			log.Info().Str("gameId", id).Msg("idle game evicted")
		}
	}
	return n
}
