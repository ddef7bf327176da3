package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/FocuswithJustin/TabletATF/core/atf"
)

//go:embed templates/*.html
var templatesFS embed.FS

var templates = template.Must(template.New("").ParseFS(templatesFS, "templates/*.html"))

// HTMLOptions carries lookup results to decorate the page with.
type HTMLOptions struct {
	// Glosses maps lookup keys to dictionary glosses. Words whose key is
	// present get the has-definition class and a title attribute.
	Glosses map[string]string

	// Legend is shown below the text when non-empty.
	Legend []atf.LegendEntry
}

type htmlPage struct {
	Header   atf.Header
	Surfaces []htmlSurface
	Legend   []atf.LegendEntry
}

type htmlSurface struct {
	Name    string
	Label   string
	States  []string
	Columns []htmlColumn
}

type htmlColumn struct {
	Number int
	Lines  []htmlLine
}

type htmlLine struct {
	State        string
	Number       string
	Translated   bool
	Words        []htmlWord
	Translations []xmlTranslation
}

type htmlWord struct {
	Class string
	Text  string
	Gloss string
}

// HTML writes doc as an HTML fragment.
func HTML(w io.Writer, doc *atf.Document, opts HTMLOptions) error {
	if err := templates.ExecuteTemplate(w, "document", toPage(doc, opts)); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	return nil
}

func toPage(doc *atf.Document, opts HTMLOptions) htmlPage {
	page := htmlPage{Header: doc.Header, Legend: opts.Legend}
	for _, s := range doc.Surfaces {
		hs := htmlSurface{Name: s.Name, Label: s.Label, States: s.States}
		for _, c := range s.Columns {
			hc := htmlColumn{Number: c.Number}
			for _, l := range c.Lines {
				switch l := l.(type) {
				case *atf.StateLine:
					hc.Lines = append(hc.Lines, htmlLine{State: l.Text})
				case *atf.ContentLine:
					hl := htmlLine{Number: l.Number, Translated: len(l.Translations) > 0}
					for _, w := range l.Words {
						hl.Words = append(hl.Words, wordHTML(w, opts.Glosses))
					}
					for _, lang := range sortedLangs(l.Translations) {
						hl.Translations = append(hl.Translations, xmlTranslation{Lang: lang, Text: l.Translations[lang]})
					}
					hc.Lines = append(hc.Lines, hl)
				}
			}
			hs.Columns = append(hs.Columns, hc)
		}
		page.Surfaces = append(page.Surfaces, hs)
	}
	return page
}

// WordClasses returns the legend classes that apply to w, space separated.
func WordClasses(w atf.Word, glosses map[string]string) string {
	var classes []string
	if key := w.Key(); key != "" {
		if _, ok := glosses[key]; ok {
			classes = append(classes, atf.LegendDefined)
		} else {
			classes = append(classes, atf.LegendUndefined)
		}
	}
	switch w := w.(type) {
	case *atf.Punctuation:
		classes = append(classes, "punct")
	case *atf.Broken:
		classes = append(classes, atf.LegendBroken)
	case *atf.Logogram:
		classes = append(classes, atf.LegendLogogram)
	case *atf.Determinative:
		switch w.Class.Type {
		case "divine":
			classes = append(classes, atf.LegendDivine)
		case "place":
			classes = append(classes, atf.LegendPlace)
		default:
			classes = append(classes, "det-"+w.Class.Type)
		}
	case *atf.PlainWord:
		if w.Damaged {
			classes = append(classes, atf.LegendDamaged)
		}
		if w.Uncertain {
			classes = append(classes, atf.LegendUncertain)
		}
	}
	return strings.Join(classes, " ")
}

func wordHTML(w atf.Word, glosses map[string]string) htmlWord {
	hw := htmlWord{Class: WordClasses(w, glosses), Gloss: glosses[w.Key()]}
	switch w := w.(type) {
	case *atf.Punctuation:
		hw.Text = w.Char
	case *atf.Broken:
		hw.Text = w.Text
	case *atf.Logogram:
		hw.Text = w.Text
	case *atf.Determinative:
		if w.Position == atf.Suffix {
			hw.Text = w.Text + w.Class.Glyph
		} else {
			hw.Text = w.Class.Glyph + w.Text
		}
	case *atf.PlainWord:
		hw.Text = w.Text
	}
	return hw
}
