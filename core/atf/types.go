package atf

// DefaultObjectType is used when no object-type directive appears.
const DefaultObjectType = "tablet"

// Header holds document-level metadata taken from "&", "#atf:" and "@<object>" lines.
type Header struct {
	// CatalogID is the catalog number from the "&" line (e.g., "P123456").
	CatalogID string `json:"catalog_id,omitempty"`

	// Title is the designation after "=" on the "&" line.
	Title string `json:"title,omitempty"`

	// Language is the code from "#atf: lang <code>".
	Language string `json:"language,omitempty"`

	// ObjectType is the inscribed object kind (tablet, prism, ...).
	ObjectType string `json:"object_type"`
}

// Document is the root of one parsed transliteration.
type Document struct {
	Header Header `json:"header"`

	// Surfaces are kept in declaration/creation order.
	Surfaces []*Surface `json:"surfaces"`

	// CompositeRefs logs every composite reference, attached or not.
	CompositeRefs []CompositeRef `json:"composite_refs"`

	HasMultipleSurfaces bool `json:"has_multiple_surfaces"`
	HasMultipleColumns  bool `json:"has_multiple_columns"`

	// SourceDigest is the hex BLAKE3-256 digest of the parsed text.
	SourceDigest string `json:"source_digest,omitempty"`
}

// Empty reports whether the document has no surfaces at all.
func (d *Document) Empty() bool {
	return len(d.Surfaces) == 0
}

// Surface returns the surface at index i, or nil when out of range.
func (d *Document) Surface(i int) *Surface {
	if i < 0 || i >= len(d.Surfaces) {
		return nil
	}
	return d.Surfaces[i]
}

// EachContentLine calls fn for every content line in document order.
func (d *Document) EachContentLine(fn func(s *Surface, c *Column, l *ContentLine)) {
	for _, s := range d.Surfaces {
		for _, c := range s.Columns {
			for _, line := range c.Lines {
				if cl, ok := line.(*ContentLine); ok {
					fn(s, c, cl)
				}
			}
		}
	}
}

// Surface is one physical face of the inscribed object.
type Surface struct {
	// Name is the canonical key ("obverse", "reverse", "surface", ...).
	Name string `json:"name"`

	// Label is the display form, including the modifier when present.
	Label string `json:"label"`

	// Modifier is the free-text sub-label (e.g., "a1").
	Modifier string `json:"modifier,omitempty"`

	Columns []*Column `json:"columns"`

	// States are state lines that appeared while no column was open.
	States []string `json:"states"`
}

// Column is a subdivision of a surface.
type Column struct {
	// Number is the declared column number; 0 for the implicit column.
	Number int `json:"number"`

	Lines []Line `json:"lines"`
}

// CompositeRef points from an exemplar line to a composite text line.
type CompositeRef struct {
	ID      string `json:"id"`
	LineRef string `json:"line_ref"`
}

// LineKind discriminates Line variants in serialized output.
type LineKind string

// Line kinds.
const (
	LineState   LineKind = "state"
	LineContent LineKind = "content"
)

// Line is a StateLine or a ContentLine.
type Line interface {
	Kind() LineKind
	isLine()
}

// StateLine is a free-text description of the object's state ("rest broken").
type StateLine struct {
	Text string `json:"text"`
}

// Kind implements Line.
func (*StateLine) Kind() LineKind { return LineState }
func (*StateLine) isLine()        {}

// ContentLine is a (usually numbered) line of transliterated text.
type ContentLine struct {
	// Number is the display label ("3.", "3'."); empty for unnumbered lines.
	Number string `json:"number"`

	// IsPrime is set when the label carries a prime mark.
	IsPrime bool `json:"is_prime"`

	// Raw is the unparsed text after the label.
	Raw string `json:"raw"`

	Words []Word `json:"words"`

	// Composite is the composite line this line corresponds to, if any.
	Composite *CompositeRef `json:"composite,omitempty"`

	// Translations maps language code to inline translation text.
	Translations map[string]string `json:"translations,omitempty"`
}

// Kind implements Line.
func (*ContentLine) Kind() LineKind { return LineContent }
func (*ContentLine) isLine()        {}

// LegendEntry describes one symbol used when rendering a document.
type LegendEntry struct {
	Class  string `json:"class"`
	Label  string `json:"label"`
	Symbol string `json:"symbol"`
}
