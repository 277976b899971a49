// internal/dictionary/sqlite.go
//
// SQLite-backed dictionary oracle.
// Words live in dictionary_words(lang, word) keyed by base language.
// Schema files are embedded in Migrations and applied by the server at startup.

package dictionary

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"golang.org/x/text/language"
)

// Migrations holds the SQL files that create the dictionary tables.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// SQLite answers lookups from a database handle.
type SQLite struct{ db *sql.DB }

// NewSQLite wraps an open database. The schema must already be migrated.
func NewSQLite(db *sql.DB) *SQLite { return &SQLite{db: db} }

// IsRecognizedWord implements Oracle. Any query failure is reported as
// ErrUnavailable.
func (s *SQLite) IsRecognizedWord(ctx context.Context, word string, lang language.Tag) (bool, error) {
	var cnt int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM dictionary_words WHERE lang=? AND word=?`,
		baseKey(lang), word,
	).Scan(&cnt)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return cnt > 0, nil
}

// Import inserts words for lang inside one transaction and records the
// import. Existing rows are ignored. Returns the number of rows added.
func (s *SQLite) Import(ctx context.Context, lang language.Tag, source string, ws []string) (int, error) {
	key := baseKey(lang)
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("dictionary: begin import: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO dictionary_words (lang, word) VALUES (?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("dictionary: prepare import: %w", err)
	}
	defer stmt.Close()

	added := 0
	for _, w := range ws {
		w = Normalize(lang, w)
		if w == "" {
			continue
		}
		res, err := stmt.ExecContext(ctx, key, w)
		if err != nil {
			return 0, fmt.Errorf("dictionary: insert %q: %w", w, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			added++
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO dictionary_imports (lang, source, words) VALUES (?, ?, ?)`,
		key, source, added,
	); err != nil {
		return 0, fmt.Errorf("dictionary: record import: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("dictionary: commit import: %w", err)
	}
	return added, nil
}

// Count returns how many words are stored for lang.
func (s *SQLite) Count(ctx context.Context, lang language.Tag) (int, error) {
	var cnt int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM dictionary_words WHERE lang=?`, baseKey(lang),
	).Scan(&cnt); err != nil {
		return 0, err
	}
	return cnt, nil
}
