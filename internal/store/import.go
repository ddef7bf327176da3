package store

import (
	"context"
	"database/sql"
	"encoding/csv"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/zeebo/blake3"

	"github.com/FocuswithJustin/TabletATF/core/atf"
	apperrors "github.com/FocuswithJustin/TabletATF/core/errors"
	"github.com/FocuswithJustin/TabletATF/internal/logging"
)

// Import kinds, also used as the imports.kind column.
const (
	KindGlossary     = "glossary"
	KindTranslations = "translations"
	KindComposites   = "composites"
)

// ImportResult summarizes one CSV import.
type ImportResult struct {
	Kind     string `json:"kind"`
	Digest   string `json:"digest"`
	Rows     int    `json:"rows"`
	Skipped  int    `json:"skipped"`
	Repeated bool   `json:"repeated"`
}

// csvSpec describes one import format.
type csvSpec struct {
	kind   string
	header []string
	insert string
	// row converts a record into insert arguments; ok=false skips the record.
	row func(rec []string) (args []any, ok bool, err error)
}

var glossarySpec = csvSpec{
	kind:   KindGlossary,
	header: []string{"key", "gloss"},
	insert: `INSERT INTO glosses (key, gloss) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET gloss = excluded.gloss`,
	row: func(rec []string) ([]any, bool, error) {
		key, ok := atf.Normalize(strings.TrimSpace(rec[0]))
		if !ok {
			return nil, false, nil
		}
		return []any{key, strings.TrimSpace(rec[1])}, true, nil
	},
}

var translationSpec = csvSpec{
	kind:   KindTranslations,
	header: []string{"tablet", "surface", "column", "line", "text"},
	insert: `INSERT INTO line_translations (tablet, surface, col, line, text) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(tablet, surface, col, line) DO UPDATE SET text = excluded.text`,
	row: func(rec []string) ([]any, bool, error) {
		surface, err := strconv.Atoi(strings.TrimSpace(rec[1]))
		if err != nil {
			return nil, false, fmt.Errorf("surface: %w", err)
		}
		column, err := strconv.Atoi(strings.TrimSpace(rec[2]))
		if err != nil {
			return nil, false, fmt.Errorf("column: %w", err)
		}
		line := LineLabel(rec[3])
		if line == "" {
			return nil, false, nil
		}
		return []any{strings.TrimSpace(rec[0]), surface, column, line, strings.TrimSpace(rec[4])}, true, nil
	},
}

var compositeSpec = csvSpec{
	kind:   KindComposites,
	header: []string{"id", "title"},
	insert: `INSERT INTO composites (id, title) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET title = excluded.title`,
	row: func(rec []string) ([]any, bool, error) {
		id := strings.TrimSpace(rec[0])
		if id == "" {
			return nil, false, nil
		}
		return []any{id, strings.TrimSpace(rec[1])}, true, nil
	},
}

// LineLabel brings a line label into the form the parser produces: "3" and
// "3." both become "3.", "3'" becomes "3'.".
func LineLabel(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasSuffix(s, ".") {
		return s
	}
	return s + "."
}

// ImportGlossary loads "key,gloss" rows. Keys are normalized the same way the
// parser normalizes words, and rows whose key normalizes to nothing are skipped.
func (s *Store) ImportGlossary(ctx context.Context, r io.Reader) (ImportResult, error) {
	return s.importCSV(ctx, glossarySpec, r)
}

// ImportTranslations loads "tablet,surface,column,line,text" rows.
func (s *Store) ImportTranslations(ctx context.Context, r io.Reader) (ImportResult, error) {
	return s.importCSV(ctx, translationSpec, r)
}

// ImportComposites loads "id,title" rows.
func (s *Store) ImportComposites(ctx context.Context, r io.Reader) (ImportResult, error) {
	return s.importCSV(ctx, compositeSpec, r)
}

// importCSV reads the whole input, then writes it in one transaction. An
// input whose BLAKE3 digest was already imported for the same kind is not
// written again.
func (s *Store) importCSV(ctx context.Context, spec csvSpec, r io.Reader) (ImportResult, error) {
	res := ImportResult{Kind: spec.kind}
	if s.readOnly {
		return res, apperrors.NewUnsupported("import", "store is read-only")
	}

	h := blake3.New()
	cr := csv.NewReader(io.TeeReader(r, h))
	cr.FieldsPerRecord = len(spec.header)
	cr.TrimLeadingSpace = true

	var rows [][]any
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return res, &apperrors.ParseError{Format: "CSV", Path: spec.kind, Message: err.Error(), Err: err}
		}
		if line == 1 && isHeader(rec, spec.header) {
			continue
		}
		args, ok, err := spec.row(rec)
		if err != nil {
			return res, apperrors.NewParse("CSV", fmt.Sprintf("%s:%d", spec.kind, line), err.Error())
		}
		if !ok {
			res.Skipped++
			continue
		}
		rows = append(rows, args)
	}
	res.Digest = hex.EncodeToString(h.Sum(nil))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return res, apperrors.Wrap(err, "store: begin import")
	}
	defer tx.Rollback()

	var prev int
	err = tx.QueryRowContext(ctx,
		`SELECT row_count FROM imports WHERE kind = ? AND digest = ?`, spec.kind, res.Digest).Scan(&prev)
	switch {
	case err == nil:
		res.Rows = prev
		res.Repeated = true
		return res, nil
	case !errors.Is(err, sql.ErrNoRows):
		return res, apperrors.Wrap(err, "store: check import")
	}

	stmt, err := tx.PrepareContext(ctx, spec.insert)
	if err != nil {
		return res, apperrors.Wrap(err, "store: prepare import")
	}
	defer stmt.Close()

	for _, args := range rows {
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return res, apperrors.Wrapf(err, "store: import %s", spec.kind)
		}
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO imports (kind, digest, row_count) VALUES (?, ?, ?)`, spec.kind, res.Digest, len(rows)); err != nil {
		return res, apperrors.Wrap(err, "store: record import")
	}
	if err := tx.Commit(); err != nil {
		return res, apperrors.Wrap(err, "store: commit import")
	}

	res.Rows = len(rows)
	logging.StoreEvent("import", spec.kind, res.Rows, "skipped", res.Skipped, "digest", res.Digest)
	return res, nil
}

func isHeader(rec, header []string) bool {
	for i, h := range header {
		if !strings.EqualFold(strings.TrimSpace(rec[i]), h) {
			return false
		}
	}
	return true
}
