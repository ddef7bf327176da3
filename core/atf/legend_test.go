package atf

import (
	"reflect"
	"testing"
)

func legendClasses(entries []LegendEntry) []string {
	classes := make([]string, len(entries))
	for i, e := range entries {
		classes[i] = e.Class
	}
	return classes
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "empty document",
			in:   "",
			want: []string{LegendDefined, LegendUndefined},
		},
		{
			name: "plain words only",
			in:   "1. lugal e2",
			want: []string{LegendDefined, LegendUndefined},
		},
		{
			name: "every feature",
			in:   "1. [x] kur{ki} e2# _LUGAL_ gal? {d}utu\n#tr.en: sun",
			want: []string{
				LegendDefined, LegendUndefined, LegendDivine, LegendPlace, LegendLogogram,
				LegendDamaged, LegendUncertain, LegendBroken, LegendTranslated,
			},
		},
		{
			name: "other determinatives do not count",
			in:   "1. {gesz}tukul {lu2}ugula",
			want: []string{LegendDefined, LegendUndefined},
		},
		{
			name: "corrected only",
			in:   "1. lugal!",
			want: []string{LegendDefined, LegendUndefined},
		},
		{
			name: "translation only",
			in:   "1. lugal\n#tr.en: king",
			want: []string{LegendDefined, LegendUndefined, LegendTranslated},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := legendClasses(Summarize(Parse(tt.in)))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Summarize = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseWithLegend(t *testing.T) {
	doc, legend := ParseWithLegend(sampleTablet)
	if doc.Empty() {
		t.Fatal("document is empty")
	}
	if legend[0].Class != LegendDefined || legend[1].Class != LegendUndefined {
		t.Errorf("legend does not start with the fixed entries: %v", legendClasses(legend))
	}
	for _, e := range legend {
		if e.Label == "" || e.Symbol == "" {
			t.Errorf("legend entry %+v has empty label or symbol", e)
		}
	}
}
