package atf

import (
	"regexp"
	"strconv"
	"strings"
)

// Classified is the result of classifying one raw line. The concrete type is
// one of the *Directive types, *TextLine, *Comment or *Unknown.
type Classified interface {
	isClassified()
}

// HeaderDirective is "&<catalog-id> = <title>".
type HeaderDirective struct {
	CatalogID string
	Title     string
}

// LanguageDirective is "#atf: lang <code>".
type LanguageDirective struct {
	Code string
}

// TranslationDirective is "#tr.<lang>: <text>". It annotates the previous
// content line rather than forming a line of its own.
type TranslationDirective struct {
	Lang string
	Text string
}

// Comment is any other "#" line.
type Comment struct {
	Text string
}

// ObjectDirective is "@tablet", "@prism", ...
type ObjectDirective struct {
	Type string
}

// SurfaceDirective is "@obverse", "@reverse a", "@surface b", ...
type SurfaceDirective struct {
	Name     string
	Modifier string
}

// ColumnDirective is "@column <n>".
type ColumnDirective struct {
	Number int
}

// StateDirective is "$ <free text>".
type StateDirective struct {
	Text string
}

// CompositeDirective is ">><Q-id> <line-ref>".
type CompositeDirective struct {
	Ref CompositeRef
}

// TextLine is a content line. Label is "" for unnumbered lines.
type TextLine struct {
	Label   string
	IsPrime bool
	Raw     string
}

// Unknown is a line that matched nothing; it is never rendered.
type Unknown struct {
	Raw string
}

func (*HeaderDirective) isClassified()      {}
func (*LanguageDirective) isClassified()    {}
func (*TranslationDirective) isClassified() {}
func (*Comment) isClassified()              {}
func (*ObjectDirective) isClassified()      {}
func (*SurfaceDirective) isClassified()     {}
func (*ColumnDirective) isClassified()      {}
func (*StateDirective) isClassified()       {}
func (*CompositeDirective) isClassified()   {}
func (*TextLine) isClassified()             {}
func (*Unknown) isClassified()              {}

// Line patterns, tried in the order Classify lists them.
var (
	headerRegex      = regexp.MustCompile(`^&(\S+)\s*=\s*(.*)$`)
	languageRegex    = regexp.MustCompile(`^#atf:\s*lang\s+(\S+)`)
	translationRegex = regexp.MustCompile(`^#tr\.([A-Za-z][A-Za-z0-9-]*):\s*(.*)$`)
	objectRegex      = regexp.MustCompile(`^@(tablet|bulla|envelope|prism|fragment|object)(?:\s.*)?$`)
	surfaceRegex     = regexp.MustCompile(`^@(obverse|reverse|left|right|top|bottom|edge|face|seal)(?:\s+(.*))?$`)
	genericRegex     = regexp.MustCompile(`^@surface\s+(.+)$`)
	columnRegex      = regexp.MustCompile(`^@column\s+(\d+)`)
	lineNumberRegex  = regexp.MustCompile(`^(\d+)(['"]?)(?:\.|\s|$)\s*(.*)$`)
)

// directivePrefixes are the first characters that mark a line as a directive.
const directivePrefixes = "&@#$>"

// Classify decides what kind of line a trimmed, non-empty raw line is.
// The checks run in a fixed priority order and the first match wins.
func Classify(line string) Classified {
	if line == "" {
		return &Unknown{}
	}

	if m := headerRegex.FindStringSubmatch(line); m != nil {
		return &HeaderDirective{CatalogID: m[1], Title: strings.TrimSpace(m[2])}
	}

	if strings.HasPrefix(line, "#") {
		if m := languageRegex.FindStringSubmatch(line); m != nil {
			return &LanguageDirective{Code: m[1]}
		}
		if m := translationRegex.FindStringSubmatch(line); m != nil {
			return &TranslationDirective{Lang: m[1], Text: strings.TrimSpace(m[2])}
		}
		return &Comment{Text: strings.TrimSpace(line[1:])}
	}

	if strings.HasPrefix(line, "@") {
		if m := objectRegex.FindStringSubmatch(line); m != nil {
			return &ObjectDirective{Type: m[1]}
		}
		if m := surfaceRegex.FindStringSubmatch(line); m != nil {
			return &SurfaceDirective{Name: m[1], Modifier: strings.TrimSpace(m[2])}
		}
		if m := genericRegex.FindStringSubmatch(line); m != nil {
			return &SurfaceDirective{Name: "surface", Modifier: strings.TrimSpace(m[1])}
		}
		if m := columnRegex.FindStringSubmatch(line); m != nil {
			n, err := strconv.Atoi(m[1])
			if err == nil {
				return &ColumnDirective{Number: n}
			}
		}
		return &Unknown{Raw: line}
	}

	if strings.HasPrefix(line, "$") {
		return &StateDirective{Text: strings.TrimSpace(line[1:])}
	}

	if strings.HasPrefix(line, ">>") {
		if ref, err := ParseCompositeRef(line); err == nil {
			return &CompositeDirective{Ref: ref}
		}
		return &Unknown{Raw: line}
	}

	if m := lineNumberRegex.FindStringSubmatch(line); m != nil {
		return &TextLine{
			Label:   m[1] + m[2] + ".",
			IsPrime: m[2] != "",
			Raw:     m[3],
		}
	}

	if !strings.ContainsRune(directivePrefixes, rune(line[0])) {
		return &TextLine{Raw: line}
	}

	return &Unknown{Raw: line}
}
