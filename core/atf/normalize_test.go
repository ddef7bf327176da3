package atf

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		want   string
		wantOK bool
	}{
		{"plain", "lugal", "lugal", true},
		{"uppercase with markers", "LUGAL#?", "lugal", true},
		{"inner markers", "lu#gal!", "lugal", true},
		{"collation star", "e2*", "e2", true},
		{"subscript digits", "du₃", "du", true},
		{"ascii digits kept", "e2", "e2", true},
		{"sign variant tilde", "ka~a", "ka", true},
		{"sign variant at", "sze@g", "sze", true},
		{"complex sign", "|GA₂xAN|", "gaan", true},
		{"uppercase X survives", "X", "x", true},
		{"lowercase x removed", "x", "", false},
		{"only markers", "#?!*", "", false},
		{"empty", "", "", false},
		{"hyphens kept", "lu₂-gal", "lu-gal", true},
		{"diacritics kept", "ŠAR₂", "šar", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Normalize(tt.in)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Normalize(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestNormalizeRoundTrip(t *testing.T) {
	a, _ := Normalize("LUGAL#?")
	b, _ := Normalize("lugal")
	if a != b || a != "lugal" {
		t.Errorf("Normalize(%q) = %q, Normalize(%q) = %q, want both %q", "LUGAL#?", a, "lugal", b, "lugal")
	}
}

func TestNormalizeDeterministic(t *testing.T) {
	inputs := []string{"|GA₂xAN|", "{d}inana", "szu-nu-ti#", "KUR~a@g"}
	for _, in := range inputs {
		first := NormalizeKey(in)
		for i := 0; i < 10; i++ {
			if got := NormalizeKey(in); got != first {
				t.Fatalf("NormalizeKey(%q) changed between calls: %q then %q", in, first, got)
			}
		}
	}
}
