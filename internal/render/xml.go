// Package render exports parsed transliterations as XML and HTML.
package render

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"sort"

	"github.com/FocuswithJustin/TabletATF/core/atf"
	corexml "github.com/FocuswithJustin/TabletATF/core/xml"
)

// Element and attribute names of the XML export.
type xmlDocument struct {
	XMLName    xml.Name       `xml:"document"`
	CatalogID  string         `xml:"catalog,attr,omitempty"`
	Title      string         `xml:"title,attr,omitempty"`
	Language   string         `xml:"language,attr,omitempty"`
	ObjectType string         `xml:"object,attr"`
	Digest     string         `xml:"digest,attr,omitempty"`
	Surfaces   []xmlSurface   `xml:"surface"`
	Composites []xmlComposite `xml:"composites>composite,omitempty"`
}

type xmlSurface struct {
	Name     string      `xml:"name,attr"`
	Label    string      `xml:"label,attr"`
	Modifier string      `xml:"modifier,attr,omitempty"`
	States   []string    `xml:"state"`
	Columns  []xmlColumn `xml:"column"`
}

type xmlColumn struct {
	Number int   `xml:"number,attr"`
	Lines  []any `xml:",any"`
}

type xmlState struct {
	XMLName xml.Name `xml:"state"`
	Text    string   `xml:",chardata"`
}

type xmlLine struct {
	XMLName      xml.Name         `xml:"line"`
	Number       string           `xml:"number,attr,omitempty"`
	Prime        bool             `xml:"prime,attr,omitempty"`
	Words        []xmlWord        `xml:"w"`
	Composite    *xmlComposite    `xml:"composite,omitempty"`
	Translations []xmlTranslation `xml:"tr"`
}

type xmlWord struct {
	Kind      atf.WordKind `xml:"kind,attr"`
	Lookup    string       `xml:"lookup,attr,omitempty"`
	Code      string       `xml:"code,attr,omitempty"`
	Position  atf.Position `xml:"position,attr,omitempty"`
	Class     string       `xml:"class,attr,omitempty"`
	Damaged   bool         `xml:"damaged,attr,omitempty"`
	Uncertain bool         `xml:"uncertain,attr,omitempty"`
	Corrected bool         `xml:"corrected,attr,omitempty"`
	Text      string       `xml:",chardata"`
}

type xmlComposite struct {
	ID   string `xml:"id,attr"`
	Line string `xml:"line,attr"`
}

type xmlTranslation struct {
	Lang string `xml:"lang,attr"`
	Text string `xml:",chardata"`
}

// XML writes doc as an indented XML document. Words and translations keep
// their text on one line so whitespace inside them is never altered.
func XML(w io.Writer, doc *atf.Document) error {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	if err := xml.NewEncoder(&buf).Encode(toXML(doc)); err != nil {
		return fmt.Errorf("encode xml: %w", err)
	}
	out, err := corexml.Format(buf.Bytes(), corexml.FormatOptions{Indent: "  "})
	if err != nil {
		return fmt.Errorf("format xml: %w", err)
	}
	_, err = w.Write(out)
	return err
}

func toXML(doc *atf.Document) xmlDocument {
	out := xmlDocument{
		CatalogID:  doc.Header.CatalogID,
		Title:      doc.Header.Title,
		Language:   doc.Header.Language,
		ObjectType: doc.Header.ObjectType,
		Digest:     doc.SourceDigest,
	}
	for _, s := range doc.Surfaces {
		xs := xmlSurface{Name: s.Name, Label: s.Label, Modifier: s.Modifier, States: s.States}
		for _, c := range s.Columns {
			xc := xmlColumn{Number: c.Number}
			for _, l := range c.Lines {
				switch l := l.(type) {
				case *atf.StateLine:
					xc.Lines = append(xc.Lines, xmlState{Text: l.Text})
				case *atf.ContentLine:
					xc.Lines = append(xc.Lines, lineXML(l))
				}
			}
			xs.Columns = append(xs.Columns, xc)
		}
		out.Surfaces = append(out.Surfaces, xs)
	}
	for _, r := range doc.CompositeRefs {
		out.Composites = append(out.Composites, xmlComposite{ID: r.ID, Line: r.LineRef})
	}
	return out
}

func lineXML(l *atf.ContentLine) xmlLine {
	xl := xmlLine{Number: l.Number, Prime: l.IsPrime}
	for _, w := range l.Words {
		xl.Words = append(xl.Words, wordXML(w))
	}
	if l.Composite != nil {
		xl.Composite = &xmlComposite{ID: l.Composite.ID, Line: l.Composite.LineRef}
	}
	for _, lang := range sortedLangs(l.Translations) {
		xl.Translations = append(xl.Translations, xmlTranslation{Lang: lang, Text: l.Translations[lang]})
	}
	return xl
}

func wordXML(w atf.Word) xmlWord {
	xw := xmlWord{Kind: w.Kind(), Lookup: w.Key()}
	switch w := w.(type) {
	case *atf.Punctuation:
		xw.Text = w.Char
	case *atf.Broken:
		xw.Text = w.Text
	case *atf.Logogram:
		xw.Text = w.Text
	case *atf.Determinative:
		xw.Text = w.Text
		xw.Code = w.Code
		xw.Position = w.Position
		xw.Class = w.Class.Type
	case *atf.PlainWord:
		xw.Text = w.Text
		xw.Damaged = w.Damaged
		xw.Uncertain = w.Uncertain
		xw.Corrected = w.Corrected
	}
	return xw
}

func sortedLangs(m map[string]string) []string {
	langs := make([]string, 0, len(m))
	for k := range m {
		langs = append(langs, k)
	}
	sort.Strings(langs)
	return langs
}
