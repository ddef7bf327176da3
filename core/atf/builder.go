package atf

import (
	"encoding/hex"
	"strings"

	"github.com/zeebo/blake3"
)

// DefaultSurface is the surface created when text appears before any
// surface directive.
const DefaultSurface = "obverse"

// surfaceLabels maps canonical surface names to display labels.
var surfaceLabels = map[string]string{
	"obverse": "Obverse",
	"reverse": "Reverse",
	"left":    "Left Edge",
	"right":   "Right Edge",
	"top":     "Top Edge",
	"bottom":  "Bottom Edge",
	"edge":    "Edge",
	"face":    "Face",
	"seal":    "Seal",
	"surface": "Surface",
}

// SurfaceLabel returns the display label for a surface name and modifier.
func SurfaceLabel(name, modifier string) string {
	label, ok := surfaceLabels[name]
	if !ok {
		label = name
	}
	if modifier != "" {
		label += " " + modifier
	}
	return label
}

// Stats counts what a Builder has seen. Callers use it for logging; the
// parser itself never logs.
type Stats struct {
	Lines    int `json:"lines"`
	Content  int `json:"content"`
	States   int `json:"states"`
	Comments int `json:"comments"`
	Unknown  int `json:"unknown"`
}

// Builder assembles a Document one line at a time.
//
// The zero value is not usable; call NewBuilder. A Builder is owned by a
// single parse and must not be shared between goroutines.
type Builder struct {
	doc *Document

	// currentSurface and currentColumn index into doc.Surfaces and
	// doc.Surfaces[currentSurface].Columns; -1 means none.
	currentSurface int
	currentColumn  int

	// lastLine is the most recent Line added in the active scope. It is reset
	// whenever the surface or column changes.
	lastLine Line

	// implicitSurface is set while the only surface is the default obverse
	// created by ensureSurface.
	implicitSurface bool

	stats Stats
}

// NewBuilder returns a Builder with an empty document.
func NewBuilder() *Builder {
	return &Builder{
		doc: &Document{
			Header:        Header{ObjectType: DefaultObjectType},
			Surfaces:      []*Surface{},
			CompositeRefs: []CompositeRef{},
		},
		currentSurface: -1,
		currentColumn:  -1,
	}
}

// Parse parses a complete transliteration. Blank lines are ignored.
func Parse(text string) *Document {
	doc, _ := ParseStats(text)
	return doc
}

// ParseStats is Parse that also returns the line counters of the run.
func ParseStats(text string) (*Document, Stats) {
	b := NewBuilder()
	for _, line := range strings.Split(text, "\n") {
		b.Feed(line)
	}
	stats := b.Stats()
	doc := b.Finish()
	doc.SourceDigest = Digest(text)
	return doc, stats
}

// Digest returns the hex BLAKE3-256 digest of text.
func Digest(text string) string {
	sum := blake3.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Feed classifies one raw line and applies it. Surrounding whitespace is
// trimmed and blank lines are skipped without being counted.
func (b *Builder) Feed(raw string) {
	line := strings.TrimSpace(raw)
	if line == "" {
		return
	}
	b.stats.Lines++
	b.Apply(Classify(line))
}

// Apply updates the document with an already classified line.
func (b *Builder) Apply(c Classified) {
	switch c := c.(type) {
	case *HeaderDirective:
		b.doc.Header.CatalogID = c.CatalogID
		b.doc.Header.Title = c.Title

	case *LanguageDirective:
		b.doc.Header.Language = c.Code

	case *ObjectDirective:
		b.doc.Header.ObjectType = c.Type

	case *SurfaceDirective:
		b.openSurface(c.Name, c.Modifier)

	case *ColumnDirective:
		s := b.ensureSurface()
		s.Columns = append(s.Columns, newColumn(c.Number))
		b.currentColumn = len(s.Columns) - 1
		b.lastLine = nil

	case *StateDirective:
		b.stats.States++
		s := b.ensureSurface()
		line := &StateLine{Text: c.Text}
		if col := b.column(); col != nil {
			col.Lines = append(col.Lines, line)
		} else {
			s.States = append(s.States, c.Text)
		}
		b.lastLine = line

	case *TextLine:
		b.stats.Content++
		s := b.ensureSurface()
		line := &ContentLine{
			Number:  c.Label,
			IsPrime: c.IsPrime,
			Raw:     c.Raw,
			Words:   Tokenize(c.Raw),
		}
		col := b.column()
		if col == nil {
			if len(s.Columns) == 0 {
				s.Columns = append(s.Columns, newColumn(0))
			}
			col = s.Columns[len(s.Columns)-1]
		}
		col.Lines = append(col.Lines, line)
		b.lastLine = line

	case *CompositeDirective:
		if b.currentSurface < 0 {
			return
		}
		b.doc.CompositeRefs = append(b.doc.CompositeRefs, c.Ref)
		if cl, ok := b.lastLine.(*ContentLine); ok {
			ref := c.Ref
			cl.Composite = &ref
		}

	case *TranslationDirective:
		if b.currentSurface < 0 {
			return
		}
		if cl := b.lastContentLine(); cl != nil {
			if cl.Translations == nil {
				cl.Translations = make(map[string]string)
			}
			cl.Translations[c.Lang] = c.Text
		}

	case *Comment:
		b.stats.Comments++

	case *Unknown:
		b.stats.Unknown++
	}
}

// Stats returns the counters accumulated so far.
func (b *Builder) Stats() Stats {
	return b.stats
}

// Finish computes the summary flags and returns the document. The Builder is
// reset afterwards and may be reused for another text.
func (b *Builder) Finish() *Document {
	doc := b.doc
	doc.HasMultipleSurfaces = len(doc.Surfaces) > 1
	for _, s := range doc.Surfaces {
		if len(s.Columns) > 1 {
			doc.HasMultipleColumns = true
		}
		for _, c := range s.Columns {
			if c.Number > 1 {
				doc.HasMultipleColumns = true
			}
		}
	}

	*b = *NewBuilder()
	return doc
}

// openSurface makes the named surface current. A plain "@obverse" reuses the
// obverse that was created implicitly by earlier text instead of adding a
// second one. An explicit directive always opens a new surface.
func (b *Builder) openSurface(name, modifier string) {
	if b.implicitSurface && name == DefaultSurface && modifier == "" {
		b.currentSurface = 0
	} else {
		b.doc.Surfaces = append(b.doc.Surfaces, newSurface(name, modifier))
		b.currentSurface = len(b.doc.Surfaces) - 1
	}
	b.implicitSurface = false
	b.currentColumn = -1
	b.lastLine = nil
}

// ensureSurface returns the current surface, creating the default obverse
// when there is none yet.
func (b *Builder) ensureSurface() *Surface {
	if b.currentSurface < 0 {
		b.openSurface(DefaultSurface, "")
		b.implicitSurface = true
	}
	return b.doc.Surfaces[b.currentSurface]
}

// column returns the current column, or nil.
func (b *Builder) column() *Column {
	if b.currentSurface < 0 || b.currentColumn < 0 {
		return nil
	}
	return b.doc.Surfaces[b.currentSurface].Columns[b.currentColumn]
}

// lastContentLine finds the last content line of the current column, or of
// the last column when no column is current.
func (b *Builder) lastContentLine() *ContentLine {
	col := b.column()
	if col == nil {
		s := b.doc.Surfaces[b.currentSurface]
		if len(s.Columns) == 0 {
			return nil
		}
		col = s.Columns[len(s.Columns)-1]
	}
	for i := len(col.Lines) - 1; i >= 0; i-- {
		if cl, ok := col.Lines[i].(*ContentLine); ok {
			return cl
		}
	}
	return nil
}

func newSurface(name, modifier string) *Surface {
	return &Surface{
		Name:     name,
		Label:    SurfaceLabel(name, modifier),
		Modifier: modifier,
		Columns:  []*Column{},
		States:   []string{},
	}
}

func newColumn(n int) *Column {
	return &Column{Number: n, Lines: []Line{}}
}
