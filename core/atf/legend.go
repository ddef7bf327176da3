package atf

// Legend classes. The first two are always present; the dictionary layer
// decides which words actually have definitions.
const (
	LegendDefined    = "has-definition"
	LegendUndefined  = "no-definition"
	LegendDivine     = "det-divine"
	LegendPlace      = "det-place"
	LegendLogogram   = "logogram"
	LegendDamaged    = "damaged"
	LegendUncertain  = "uncertain"
	LegendBroken     = "broken"
	LegendTranslated = "translated"
)

var (
	legendDefined    = LegendEntry{Class: LegendDefined, Label: "Has dictionary definition", Symbol: "a"}
	legendUndefined  = LegendEntry{Class: LegendUndefined, Label: "No dictionary definition", Symbol: "a"}
	legendDivine     = LegendEntry{Class: LegendDivine, Label: "Divine determinative", Symbol: "ᵈ"}
	legendPlace      = LegendEntry{Class: LegendPlace, Label: "Place determinative", Symbol: "ᵏⁱ"}
	legendLogogram   = LegendEntry{Class: LegendLogogram, Label: "Logogram", Symbol: "LUGAL"}
	legendDamaged    = LegendEntry{Class: LegendDamaged, Label: "Damaged sign", Symbol: "#"}
	legendUncertain  = LegendEntry{Class: LegendUncertain, Label: "Uncertain reading", Symbol: "?"}
	legendBroken     = LegendEntry{Class: LegendBroken, Label: "Broken or restored", Symbol: "[...]"}
	legendTranslated = LegendEntry{Class: LegendTranslated, Label: "Line has a translation", Symbol: "¶"}
)

// features records which legend-worthy features a document uses.
type features struct {
	divine, place, logogram, damaged, uncertain, broken, translated bool
}

// Summarize returns the legend entries that apply to doc, in a fixed order.
func Summarize(doc *Document) []LegendEntry {
	var f features
	doc.EachContentLine(func(_ *Surface, _ *Column, l *ContentLine) {
		if len(l.Translations) > 0 {
			f.translated = true
		}
		for _, w := range l.Words {
			switch w := w.(type) {
			case *Determinative:
				switch w.Class.Type {
				case "divine":
					f.divine = true
				case "place":
					f.place = true
				}
			case *Logogram:
				f.logogram = true
			case *PlainWord:
				f.damaged = f.damaged || w.Damaged
				f.uncertain = f.uncertain || w.Uncertain
			case *Broken:
				f.broken = true
			}
		}
	})

	legend := []LegendEntry{legendDefined, legendUndefined}
	for _, e := range []struct {
		present bool
		entry   LegendEntry
	}{
		{f.divine, legendDivine},
		{f.place, legendPlace},
		{f.logogram, legendLogogram},
		{f.damaged, legendDamaged},
		{f.uncertain, legendUncertain},
		{f.broken, legendBroken},
		{f.translated, legendTranslated},
	} {
		if e.present {
			legend = append(legend, e.entry)
		}
	}
	return legend
}

// ParseWithLegend parses text and summarizes the resulting document.
func ParseWithLegend(text string) (*Document, []LegendEntry) {
	doc := Parse(text)
	return doc, Summarize(doc)
}
