package atf

import "testing"

func TestParseCompositeRef(t *testing.T) {
	tests := []struct {
		input   string
		want    CompositeRef
		wantErr bool
	}{
		{">>Q000002 014", CompositeRef{ID: "Q000002", LineRef: "014"}, false},
		{">> Q000040 o 12", CompositeRef{ID: "Q000040", LineRef: "o 12"}, false},
		{">>Q000001 r ii 3'", CompositeRef{ID: "Q000001", LineRef: "r ii 3'"}, false},
		{">>Q000001 A12", CompositeRef{ID: "Q000001", LineRef: "A12"}, false},
		{"  >>P100 1  ", CompositeRef{ID: "P100", LineRef: "1"}, false},
		{"", CompositeRef{}, true},
		{">>", CompositeRef{}, true},
		{">>Q000002", CompositeRef{}, true},
		{">>bad 1", CompositeRef{}, true},
		{"Q000002 1", CompositeRef{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseCompositeRef(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseCompositeRef(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseCompositeRef(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestCompositeRefString(t *testing.T) {
	ref := CompositeRef{ID: "Q000002", LineRef: "o 14"}
	if got := ref.String(); got != ">>Q000002 o 14" {
		t.Errorf("String() = %q", got)
	}

	back, err := ParseCompositeRef(ref.String())
	if err != nil {
		t.Fatalf("ParseCompositeRef(String()) error = %v", err)
	}
	if back != ref {
		t.Errorf("round trip = %+v, want %+v", back, ref)
	}
}
