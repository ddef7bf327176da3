// Package store keeps glosses, curated line translations and composite
// titles in a SQLite database and serves them through the lookup interfaces.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/FocuswithJustin/TabletATF/core/atf"
	apperrors "github.com/FocuswithJustin/TabletATF/core/errors"
	"github.com/FocuswithJustin/TabletATF/core/sqlite"
	"github.com/FocuswithJustin/TabletATF/internal/lookup"
)

const schema = `
CREATE TABLE IF NOT EXISTS glosses (
	key   TEXT PRIMARY KEY,
	gloss TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS line_translations (
	tablet  TEXT    NOT NULL,
	surface INTEGER NOT NULL,
	col     INTEGER NOT NULL,
	line    TEXT    NOT NULL,
	text    TEXT    NOT NULL,
	PRIMARY KEY (tablet, surface, col, line)
);
CREATE TABLE IF NOT EXISTS composites (
	id    TEXT PRIMARY KEY,
	title TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS imports (
	kind      TEXT    NOT NULL,
	digest    TEXT    NOT NULL,
	row_count INTEGER NOT NULL,
	PRIMARY KEY (kind, digest)
);
`

// Store is a SQLite-backed lookup store. It implements lookup.Glossary,
// lookup.TranslationStore and lookup.CompositeResolver.
type Store struct {
	db       *sql.DB
	readOnly bool
}

var (
	_ lookup.Glossary          = (*Store)(nil)
	_ lookup.TranslationStore  = (*Store)(nil)
	_ lookup.CompositeResolver = (*Store)(nil)
)

// Open opens (creating if needed) the database at path and applies the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sqlite.Open(path)
	if err != nil {
		return nil, apperrors.NewIO("open", path, err)
	}
	s := &Store{db: db}
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// OpenReadOnly opens an existing database without modifying it.
func OpenReadOnly(path string) (*Store, error) {
	db, err := sqlite.OpenReadOnly(path)
	if err != nil {
		return nil, apperrors.NewIO("open", path, err)
	}
	return &Store{db: db, readOnly: true}, nil
}

// Migrate creates missing tables.
func (s *Store) Migrate(ctx context.Context) error {
	if s.readOnly {
		return apperrors.NewUnsupported("migration", "store is read-only")
	}
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return apperrors.Wrap(err, "store: migrate")
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Gloss implements lookup.Glossary. key must already be normalized.
func (s *Store) Gloss(ctx context.Context, key string) (string, bool, error) {
	return s.queryString(ctx, `SELECT gloss FROM glosses WHERE key = ?`, key)
}

// LineTranslation implements lookup.TranslationStore.
func (s *Store) LineTranslation(ctx context.Context, tabletID string, key lookup.LineKey) (string, bool, error) {
	return s.queryString(ctx,
		`SELECT text FROM line_translations WHERE tablet = ? AND surface = ? AND col = ? AND line = ?`,
		tabletID, key.Surface, key.Column, key.Line)
}

// CompositeTitle implements lookup.CompositeResolver.
func (s *Store) CompositeTitle(ctx context.Context, id string) (string, bool, error) {
	return s.queryString(ctx, `SELECT title FROM composites WHERE id = ?`, id)
}

func (s *Store) queryString(ctx context.Context, query string, args ...any) (string, bool, error) {
	var v string
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, apperrors.Wrap(err, "store: query")
	}
	return v, true, nil
}

// PutGloss stores a gloss under the normalized form of word. Words without a
// lookup key are rejected.
func (s *Store) PutGloss(ctx context.Context, word, gloss string) error {
	key, ok := atf.Normalize(word)
	if !ok {
		return apperrors.NewValidation("key", fmt.Sprintf("%q has no lookup key", word))
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO glosses (key, gloss) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET gloss = excluded.gloss`, key, gloss)
	return apperrors.Wrap(err, "store: put gloss")
}

// PutTranslation stores a curated translation for one line.
func (s *Store) PutTranslation(ctx context.Context, tabletID string, key lookup.LineKey, text string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO line_translations (tablet, surface, col, line, text) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(tablet, surface, col, line) DO UPDATE SET text = excluded.text`,
		tabletID, key.Surface, key.Column, key.Line, text)
	return apperrors.Wrap(err, "store: put translation")
}

// PutComposite stores the title of a composite text.
func (s *Store) PutComposite(ctx context.Context, id, title string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO composites (id, title) VALUES (?, ?)
		 ON CONFLICT(id) DO UPDATE SET title = excluded.title`, id, title)
	return apperrors.Wrap(err, "store: put composite")
}

// Counts reports the number of rows per lookup table.
type Counts struct {
	Glosses      int `json:"glosses"`
	Translations int `json:"translations"`
	Composites   int `json:"composites"`
}

// Counts returns the current row counts.
func (s *Store) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	for _, q := range []struct {
		table string
		dst   *int
	}{
		{"glosses", &c.Glosses},
		{"line_translations", &c.Translations},
		{"composites", &c.Composites},
	} {
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+q.table).Scan(q.dst); err != nil {
			return Counts{}, apperrors.Wrapf(err, "store: count %s", q.table)
		}
	}
	return c, nil
}
