package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/FocuswithJustin/TabletATF/core/atf"
	"github.com/FocuswithJustin/TabletATF/core/xml"
)

const sample = `&P100001 = Sample tablet
#atf: lang sux
@obverse
1. {d}inana lugal# uru{ki} _e2_ [x x]
#tr.en: Inana, the king
>>Q000001 001
$ rest broken
@reverse
@column 1
1'. a-ša3 <x>
`

func eval(t *testing.T, doc *xml.Document, expr string) string {
	t.Helper()
	e, err := xml.Compile(expr)
	if err != nil {
		t.Fatalf("Compile(%q) error = %v", expr, err)
	}
	return doc.EvalExpr(e)
}

func TestXML(t *testing.T) {
	doc := atf.Parse(sample)

	var buf bytes.Buffer
	if err := XML(&buf, doc); err != nil {
		t.Fatalf("XML() error = %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, `<?xml version="1.0" encoding="UTF-8"?>`+"\n<document ") {
		t.Errorf("missing declaration: %q", out[:60])
	}
	if strings.Count(out, "<?xml") != 1 {
		t.Errorf("declaration repeated:\n%s", out)
	}
	if !strings.Contains(out, "\n  <surface name=\"obverse\"") || !strings.Contains(out, "\n      <line number=\"1.\">\n        <w ") {
		t.Errorf("export is not indented:\n%s", out)
	}

	x, err := xml.Parse(buf.Bytes())
	if err != nil {
		t.Fatalf("export is not well-formed: %v\n%s", err, out)
	}

	tests := []struct {
		expr string
		want string
	}{
		{"/document/@catalog", "P100001"},
		{"/document/@language", "sux"},
		{"count(//surface)", "2"},
		{"//surface[1]/@name", "obverse"},
		{"//w[@kind='determinative'][1]/@code", "d"},
		{"//w[@kind='determinative'][1]/@position", "prefix"},
		{"//w[@kind='determinative'][2]/@position", "suffix"},
		{"//w[@kind='determinative'][2]/@class", "place"},
		{"//w[@damaged='true']", "lugal"},
		{"//w[@kind='logogram']/@lookup", "e2"},
		{"//w[@kind='broken']", "[x x]"},
		{"//line[1]/tr[@lang='en']", "Inana, the king"},
		{"//line[1]/composite/@id", "Q000001"},
		{"//surface[1]/state", "rest broken"},
		{"//surface[2]/column/@number", "1"},
		{"//surface[2]//line/@prime", "true"},
		{"count(/document/composites/composite)", "1"},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			if got := eval(t, x, tt.expr); got != tt.want {
				t.Errorf("Eval(%q) = %q, want %q", tt.expr, got, tt.want)
			}
		})
	}
}

func TestXMLEscapes(t *testing.T) {
	doc := atf.Parse("&P1 = a <b> & \"c\"\n1. x\n#tr.en: <i>&</i>")
	var buf bytes.Buffer
	if err := XML(&buf, doc); err != nil {
		t.Fatal(err)
	}
	x, err := xml.Parse(buf.Bytes())
	if err != nil {
		t.Fatalf("not well-formed: %v", err)
	}
	if got := eval(t, x, "//tr"); got != "<i>&</i>" {
		t.Errorf("translation = %q", got)
	}
	if got := eval(t, x, "/document/@title"); got != `a <b> & "c"` {
		t.Errorf("title = %q", got)
	}
}

func TestXMLEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := XML(&buf, atf.Parse("")); err != nil {
		t.Fatal(err)
	}
	if _, err := xml.Parse(buf.Bytes()); err != nil {
		t.Fatalf("empty export not well-formed: %v", err)
	}
	if !strings.Contains(buf.String(), `object="tablet"`) {
		t.Errorf("default object type missing: %s", buf.String())
	}
}

func TestWordClasses(t *testing.T) {
	glosses := map[string]string{"lugal": "king"}
	words := atf.Tokenize("lugal# {d}inana uru{ki} _e2_ [x] {gesz}tukul ka? :")

	want := []string{
		"has-definition damaged",
		"no-definition det-divine",
		"no-definition det-place",
		"no-definition logogram",
		"broken",
		"no-definition det-wood",
		"no-definition uncertain",
		"punct",
	}
	if len(words) != len(want) {
		t.Fatalf("Tokenize() returned %d words, want %d", len(words), len(want))
	}
	for i, w := range words {
		if got := WordClasses(w, glosses); got != want[i] {
			t.Errorf("word %d (%s): classes = %q, want %q", i, w.Kind(), got, want[i])
		}
	}
}

func TestHTML(t *testing.T) {
	doc, legend := atf.ParseWithLegend(sample)

	var buf bytes.Buffer
	err := HTML(&buf, doc, HTMLOptions{
		Glosses: map[string]string{"lugal": "king <ruler>"},
		Legend:  legend,
	})
	if err != nil {
		t.Fatalf("HTML() error = %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		`data-catalog="P100001"`,
		`<h2>Obverse</h2>`,
		`class="has-definition damaged" title="king &lt;ruler&gt;">lugal</span>`,
		`>ᵈinana</span>`,
		`>uruᵏⁱ</span>`,
		`<span class="tr" lang="en">Inana, the king</span>`,
		`<p class="state">rest broken</p>`,
		`data-column="1"`,
		`class="legend"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("HTML output missing %q\n%s", want, out)
		}
	}
}
