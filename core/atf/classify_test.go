package atf

import (
	"reflect"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		in   string
		want Classified
	}{
		{"&P123456 = CT 50, 12", &HeaderDirective{CatalogID: "P123456", Title: "CT 50, 12"}},
		{"&X001001=", &HeaderDirective{CatalogID: "X001001", Title: ""}},
		{"#atf: lang sux", &LanguageDirective{Code: "sux"}},
		{"#atf:lang akk-x-stdbab", &LanguageDirective{Code: "akk-x-stdbab"}},
		{"#tr.en: the king", &TranslationDirective{Lang: "en", Text: "the king"}},
		{"#tr.de:  der König ", &TranslationDirective{Lang: "de", Text: "der König"}},
		{"# note: collated", &Comment{Text: "note: collated"}},
		{"#tr: missing language", &Comment{Text: "tr: missing language"}},
		{"@tablet", &ObjectDirective{Type: "tablet"}},
		{"@prism", &ObjectDirective{Type: "prism"}},
		{"@obverse", &SurfaceDirective{Name: "obverse"}},
		{"@reverse a", &SurfaceDirective{Name: "reverse", Modifier: "a"}},
		{"@left", &SurfaceDirective{Name: "left"}},
		{"@surface a1", &SurfaceDirective{Name: "surface", Modifier: "a1"}},
		{"@column 2", &ColumnDirective{Number: 2}},
		{"@column", &Unknown{Raw: "@column"}},
		{"@foo", &Unknown{Raw: "@foo"}},
		{"@obversely", &Unknown{Raw: "@obversely"}},
		{"$ rest broken", &StateDirective{Text: "rest broken"}},
		{"$", &StateDirective{Text: ""}},
		{">>Q000002 014", &CompositeDirective{Ref: CompositeRef{ID: "Q000002", LineRef: "014"}}},
		{">> Q000040 o 12", &CompositeDirective{Ref: CompositeRef{ID: "Q000040", LineRef: "o 12"}}},
		{">>bad", &Unknown{Raw: ">>bad"}},
		{"1. lugal e2", &TextLine{Label: "1.", Raw: "lugal e2"}},
		{"3'. [x x]", &TextLine{Label: "3'.", IsPrime: true, Raw: "[x x]"}},
		{`4". sza3`, &TextLine{Label: `4".`, IsPrime: true, Raw: "sza3"}},
		{"12 lugal", &TextLine{Label: "12.", Raw: "lugal"}},
		{"7", &TextLine{Label: "7.", Raw: ""}},
		{"12abc", &TextLine{Raw: "12abc"}},
		{"lugal-e", &TextLine{Raw: "lugal-e"}},
		{"&nope", &Unknown{Raw: "&nope"}},
		{"> single", &Unknown{Raw: "> single"}},
		{"", &Unknown{}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := Classify(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Classify(%q) = %#v, want %#v", tt.in, got, tt.want)
			}
		})
	}
}

func TestClassifyHeaderBeatsComment(t *testing.T) {
	// "&" lines are checked before any "#" handling; a title containing "#"
	// must not turn the line into a comment.
	got := Classify("&P000001 = Tablet #3")
	h, ok := got.(*HeaderDirective)
	if !ok {
		t.Fatalf("Classify returned %T, want *HeaderDirective", got)
	}
	if h.Title != "Tablet #3" {
		t.Errorf("Title = %q, want %q", h.Title, "Tablet #3")
	}
}
