package source

import (
	"strings"

	"github.com/FocuswithJustin/TabletATF/core/atf"
)

// Text is one "&"-delimited transliteration inside a corpus file.
type Text struct {
	// CatalogID is taken from the "&" line; empty for a leading chunk
	// without one.
	CatalogID string `json:"catalog_id,omitempty"`
	// Line is the 1-based line of the chunk's first line in the file.
	Line int    `json:"line"`
	Body string `json:"-"`
}

// SplitTexts cuts a corpus into one chunk per "&" header line. Text before
// the first header is returned as an anonymous chunk unless it is blank.
// Every chunk can be handed to atf.Parse on its own.
func SplitTexts(corpus string) []Text {
	lines := strings.Split(corpus, "\n")

	var (
		texts []Text
		cur   *Text
		body  strings.Builder
	)
	flush := func() {
		if cur == nil {
			return
		}
		cur.Body = body.String()
		if cur.CatalogID != "" || strings.TrimSpace(cur.Body) != "" {
			texts = append(texts, *cur)
		}
		body.Reset()
	}

	for i, raw := range lines {
		if h, ok := atf.Classify(strings.TrimSpace(raw)).(*atf.HeaderDirective); ok {
			flush()
			cur = &Text{CatalogID: h.CatalogID, Line: i + 1}
		} else if cur == nil {
			cur = &Text{Line: i + 1}
		}
		body.WriteString(raw)
		if i < len(lines)-1 {
			body.WriteByte('\n')
		}
	}
	flush()
	return texts
}
