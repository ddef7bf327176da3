package atf

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// compositeGrammar is the participle grammar for composite references.
// Examples: ">>Q000002 014", ">> Q000040 o 12"
//
//nolint:govet // participle grammar tags are not standard struct tags
type compositeGrammar struct {
	ID   string   `parser:"\">>\" @CompositeID"`
	Refs []string `parser:"( @Ref | @CompositeID )+"`
}

// compositeLexer tokenizes composite references. Marker must precede Ref,
// which would otherwise swallow ">>Q000002" whole.
var compositeLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Marker", Pattern: `>>`},
	{Name: "CompositeID", Pattern: `[A-Z][0-9]+`},
	{Name: "Ref", Pattern: `[^\s]+`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var compositeParser = participle.MustBuild[compositeGrammar](
	participle.Lexer(compositeLexer),
	participle.Elide("Whitespace"),
)

// ParseCompositeRef parses a ">>" composite reference line.
// The line reference is every token after the id, joined by single spaces.
func ParseCompositeRef(s string) (CompositeRef, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return CompositeRef{}, fmt.Errorf("empty composite reference")
	}

	parsed, err := compositeParser.ParseString("", s)
	if err != nil {
		return CompositeRef{}, fmt.Errorf("invalid composite reference: %q: %w", s, err)
	}

	return CompositeRef{
		ID:      parsed.ID,
		LineRef: strings.Join(parsed.Refs, " "),
	}, nil
}

// String returns the reference in ATF form.
func (r CompositeRef) String() string {
	return ">>" + r.ID + " " + r.LineRef
}
