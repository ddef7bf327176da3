// Package lookup defines the services that enrich a parsed document: the
// dictionary behind word lookup keys, curated line translations and the
// composite text catalog.
//
// Every method reports a miss as ok=false with a nil error; errors are kept
// for failures of the backing store.
package lookup

import (
	"context"
	"fmt"

	"github.com/FocuswithJustin/TabletATF/core/atf"
)

// Glossary maps a normalized lookup key (see atf.Normalize) to a gloss.
type Glossary interface {
	Gloss(ctx context.Context, key string) (string, bool, error)
}

// LineKey addresses one content line of a tablet. Surface and Column are
// zero-based positions in the parsed document, not column numbers.
type LineKey struct {
	Surface int    `json:"surface"`
	Column  int    `json:"column"`
	Line    string `json:"line"`
}

func (k LineKey) String() string {
	return fmt.Sprintf("%d/%d/%s", k.Surface, k.Column, k.Line)
}

// TranslationStore serves curated translations, kept apart from the inline
// "#tr." translations carried by the document itself.
type TranslationStore interface {
	LineTranslation(ctx context.Context, tabletID string, key LineKey) (string, bool, error)
}

// CompositeResolver resolves a composite text ID such as "Q000002" to its title.
type CompositeResolver interface {
	CompositeTitle(ctx context.Context, id string) (string, bool, error)
}

// Keys returns the distinct lookup keys of doc in first-seen order.
func Keys(doc *atf.Document) []string {
	seen := make(map[string]bool)
	var keys []string
	doc.EachContentLine(func(_ *atf.Surface, _ *atf.Column, l *atf.ContentLine) {
		for _, w := range l.Words {
			k := w.Key()
			if k == "" || seen[k] {
				continue
			}
			seen[k] = true
			keys = append(keys, k)
		}
	})
	return keys
}

// Glosses looks up every key of doc and returns the hits. The first store
// error aborts the walk.
func Glosses(ctx context.Context, g Glossary, doc *atf.Document) (map[string]string, error) {
	out := make(map[string]string)
	for _, key := range Keys(doc) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		gloss, ok, err := g.Gloss(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("gloss %q: %w", key, err)
		}
		if ok {
			out[key] = gloss
		}
	}
	return out, nil
}

// LineTranslations fetches curated translations for every content line of doc,
// keyed by LineKey.String().
func LineTranslations(ctx context.Context, ts TranslationStore, doc *atf.Document) (map[string]string, error) {
	out := make(map[string]string)
	for si, s := range doc.Surfaces {
		for ci, c := range s.Columns {
			for _, line := range c.Lines {
				cl, ok := line.(*atf.ContentLine)
				if !ok || cl.Number == "" {
					continue
				}
				if err := ctx.Err(); err != nil {
					return nil, err
				}
				key := LineKey{Surface: si, Column: ci, Line: cl.Number}
				text, found, err := ts.LineTranslation(ctx, doc.Header.CatalogID, key)
				if err != nil {
					return nil, fmt.Errorf("translation %s: %w", key, err)
				}
				if found {
					out[key.String()] = text
				}
			}
		}
	}
	return out, nil
}

// MapGlossary is an in-memory Glossary. Keys are normalized on insert.
type MapGlossary map[string]string

// NewMapGlossary normalizes the keys of entries and drops those without a key.
func NewMapGlossary(entries map[string]string) MapGlossary {
	g := make(MapGlossary, len(entries))
	for k, v := range entries {
		if key, ok := atf.Normalize(k); ok {
			g[key] = v
		}
	}
	return g
}

// Gloss implements Glossary.
func (g MapGlossary) Gloss(_ context.Context, key string) (string, bool, error) {
	v, ok := g[key]
	return v, ok, nil
}
