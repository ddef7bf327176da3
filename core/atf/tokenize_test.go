package atf

import (
	"reflect"
	"strings"
	"testing"
)

func TestTokenizeDeterminativePosition(t *testing.T) {
	tests := []struct {
		in       string
		text     string
		code     string
		position Position
		typ      string
	}{
		{"{d}inana", "inana", "d", Prefix, "divine"},
		{"lugal{ki}", "lugal", "ki", Suffix, "place"},
		{"{gesz}tukul", "tukul", "gesz", Prefix, "wood"},
		{"{lu2}ugula", "ugula", "lu2", Prefix, DeterminativeOther},
	}
	for _, tt := range tests {
		words := Tokenize(tt.in)
		if len(words) != 1 {
			t.Fatalf("Tokenize(%q) returned %d words, want 1", tt.in, len(words))
		}
		d, ok := words[0].(*Determinative)
		if !ok {
			t.Fatalf("Tokenize(%q)[0] is %T, want *Determinative", tt.in, words[0])
		}
		if d.Text != tt.text || d.Code != tt.code || d.Position != tt.position {
			t.Errorf("Tokenize(%q) = {%q %q %q}, want {%q %q %q}",
				tt.in, d.Text, d.Code, d.Position, tt.text, tt.code, tt.position)
		}
		if d.Class.Type != tt.typ {
			t.Errorf("Tokenize(%q) class type = %q, want %q", tt.in, d.Class.Type, tt.typ)
		}
		if d.Lookup != tt.text {
			t.Errorf("Tokenize(%q) lookup = %q, want %q", tt.in, d.Lookup, tt.text)
		}
	}
}

func TestUnknownDeterminativeFallback(t *testing.T) {
	c := ResolveDeterminative("lu2")
	want := DeterminativeClass{Type: "other", Label: "lu2", Glyph: "(lu2)"}
	if c != want {
		t.Errorf("ResolveDeterminative(%q) = %+v, want %+v", "lu2", c, want)
	}
	if KnownDeterminative("lu2") {
		t.Error("KnownDeterminative(lu2) = true, want false")
	}
	if !KnownDeterminative("tug2") {
		t.Error("KnownDeterminative(tug2) = false, want true")
	}
}

func TestTokenizeDamageMarkers(t *testing.T) {
	tests := []struct {
		in                            string
		text, lookup                  string
		damaged, uncertain, corrected bool
	}{
		{"foo#?!", "foo", "foo", true, true, true},
		{"foo#", "foo", "foo", true, false, false},
		{"foo?", "foo", "foo", false, true, false},
		{"foo!", "foo", "foo", false, false, true},
		{"foo#!", "foo", "foo", true, false, true},
		{"foo", "foo", "foo", false, false, false},
		// Out of sequence: only the trailing "#" is recognized, the "?" stays
		// in the text and Normalize drops it from the key.
		{"foo?#", "foo?", "foo", true, false, false},
	}
	for _, tt := range tests {
		words := Tokenize(tt.in)
		if len(words) != 1 {
			t.Fatalf("Tokenize(%q) returned %d words, want 1", tt.in, len(words))
		}
		w, ok := words[0].(*PlainWord)
		if !ok {
			t.Fatalf("Tokenize(%q)[0] is %T, want *PlainWord", tt.in, words[0])
		}
		if w.Text != tt.text || w.Lookup != tt.lookup {
			t.Errorf("Tokenize(%q) text/lookup = %q/%q, want %q/%q", tt.in, w.Text, w.Lookup, tt.text, tt.lookup)
		}
		if w.Damaged != tt.damaged || w.Uncertain != tt.uncertain || w.Corrected != tt.corrected {
			t.Errorf("Tokenize(%q) flags = %v/%v/%v, want %v/%v/%v", tt.in,
				w.Damaged, w.Uncertain, w.Corrected, tt.damaged, tt.uncertain, tt.corrected)
		}
	}
}

func TestTokenizeMixedLine(t *testing.T) {
	words := Tokenize("{d}en-lil2 _LUGAL_ [x x], kur{ki} du₃-a#")

	wantKinds := []WordKind{
		WordDeterminative, WordLogogram, WordBroken, WordPunctuation, WordDeterminative, WordPlain,
	}
	if len(words) != len(wantKinds) {
		t.Fatalf("got %d words, want %d: %#v", len(words), len(wantKinds), words)
	}
	for i, w := range words {
		if w.Kind() != wantKinds[i] {
			t.Errorf("word %d kind = %q, want %q", i, w.Kind(), wantKinds[i])
		}
	}

	if lg := words[1].(*Logogram); lg.Text != "LUGAL" || lg.Lookup != "lugal" {
		t.Errorf("logogram = %+v, want text LUGAL lookup lugal", lg)
	}
	if br := words[2].(*Broken); br.Text != "[x x]" || br.Inner != "x x" {
		t.Errorf("broken = %+v, want text [x x] inner x x", br)
	}
	if p := words[3].(*Punctuation); p.Char != "," {
		t.Errorf("punctuation = %q, want ,", p.Char)
	}
	if pw := words[5].(*PlainWord); pw.Text != "du₃-a" || pw.Lookup != "du-a" || !pw.Damaged {
		t.Errorf("plain word = %+v, want du₃-a / du-a damaged", pw)
	}
}

func TestTokenizePunctuationHasNoLookup(t *testing.T) {
	for _, w := range Tokenize("a , b . c ; d : e") {
		if w.Kind() == WordPunctuation && w.Key() != "" {
			t.Errorf("punctuation %+v has lookup %q", w, w.Key())
		}
	}
	for _, w := range Tokenize("[lugal]") {
		if w.Key() != "" {
			t.Errorf("broken span %+v has lookup %q", w, w.Key())
		}
	}
}

func TestTokenizeDegradation(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"[lugal", []string{"lugal"}},
		{"_e2 gal", []string{"e2", "gal"}},
		{"{d inana", []string{"d", "inana"}},
		{"lugal{ki", []string{"lugal", "ki"}},
		{"lugal * e2 < > ( )", []string{"lugal", "e2"}},
		{"", nil},
		{"   ", nil},
	}
	for _, tt := range tests {
		var got []string
		for _, w := range Tokenize(tt.in) {
			pw, ok := w.(*PlainWord)
			if !ok {
				t.Fatalf("Tokenize(%q) produced %T, want only plain words", tt.in, w)
			}
			got = append(got, pw.Text)
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Tokenize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTokenizeSuffixContinues(t *testing.T) {
	words := Tokenize("uri5{ki}-ma")
	if len(words) != 2 {
		t.Fatalf("got %d words, want 2", len(words))
	}
	if d := words[0].(*Determinative); d.Text != "uri5" || d.Position != Suffix {
		t.Errorf("first word = %+v, want suffix determinative on uri5", d)
	}
	if pw := words[1].(*PlainWord); pw.Text != "-ma" {
		t.Errorf("second word text = %q, want -ma", pw.Text)
	}
}

func TestTokenizeSourceOrder(t *testing.T) {
	words := Tokenize("a b c d e")
	var texts []string
	for _, w := range words {
		texts = append(texts, w.(*PlainWord).Text)
	}
	if got := strings.Join(texts, " "); got != "a b c d e" {
		t.Errorf("order = %q, want %q", got, "a b c d e")
	}
}

func TestRetokenizeIsIdempotent(t *testing.T) {
	doc := Parse(sampleTablet)
	doc.EachContentLine(func(_ *Surface, _ *Column, l *ContentLine) {
		again := Tokenize(l.Raw)
		if !reflect.DeepEqual(again, l.Words) {
			t.Errorf("re-tokenizing %q gave %#v, want %#v", l.Raw, again, l.Words)
		}
	})

	var raws []string
	doc.EachContentLine(func(_ *Surface, _ *Column, l *ContentLine) {
		raws = append(raws, l.Raw)
	})
	reparsed := Parse(strings.Join(raws, "\n"))
	var i int
	reparsed.EachContentLine(func(_ *Surface, _ *Column, l *ContentLine) {
		if i >= len(raws) {
			t.Fatalf("reparsed document has more content lines than the original")
		}
		if l.Raw != raws[i] {
			t.Errorf("line %d raw = %q, want %q", i, l.Raw, raws[i])
		}
		i++
	})
	if i != len(raws) {
		t.Errorf("reparsed %d content lines, want %d", i, len(raws))
	}
}
