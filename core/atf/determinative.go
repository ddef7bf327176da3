package atf

// DeterminativeClass is the resolved meaning of a classifier code.
type DeterminativeClass struct {
	// Type is the semantic category ("divine", "place", ...).
	Type string `json:"type"`

	// Label is a short human-readable description.
	Label string `json:"label"`

	// Glyph is the superscript form used when rendering.
	Glyph string `json:"glyph"`
}

// DeterminativeOther is the Type assigned to codes missing from the table.
const DeterminativeOther = "other"

var determinatives = map[string]DeterminativeClass{
	"d":    {Type: "divine", Label: "Divine name", Glyph: "ᵈ"},
	"f":    {Type: "female", Label: "Female person", Glyph: "ᶠ"},
	"m":    {Type: "male", Label: "Male person", Glyph: "ᵐ"},
	"ki":   {Type: "place", Label: "Place name", Glyph: "ᵏⁱ"},
	"disz": {Type: "count", Label: "Personal name", Glyph: "ᵈⁱˢᶻ"},
	"gesz": {Type: "wood", Label: "Wooden object", Glyph: "ᵍᵉˢᶻ"},
	"gi":   {Type: "reed", Label: "Reed object", Glyph: "ᵍⁱ"},
	"kusz": {Type: "leather", Label: "Leather object", Glyph: "ᵏᵘˢᶻ"},
	"tug2": {Type: "cloth", Label: "Textile", Glyph: "ᵗᵘᵍ²"},
	"urud": {Type: "copper", Label: "Copper object", Glyph: "ᵘʳᵘᵈ"},
	"na4":  {Type: "stone", Label: "Stone object", Glyph: "ⁿᵃ⁴"},
	"id2":  {Type: "water", Label: "River or canal", Glyph: "ⁱᵈ²"},
	"u2":   {Type: "plant", Label: "Plant", Glyph: "ᵘ²"},
	"iri":  {Type: "city", Label: "City", Glyph: "ⁱʳⁱ"},
	"kur":  {Type: "land", Label: "Land or mountain", Glyph: "ᵏᵘʳ"},
}

// ResolveDeterminative returns the class for code. Unknown codes resolve to
// type "other" with the raw code as label and "(code)" as glyph.
func ResolveDeterminative(code string) DeterminativeClass {
	if c, ok := determinatives[code]; ok {
		return c
	}
	return DeterminativeClass{
		Type:  DeterminativeOther,
		Label: code,
		Glyph: "(" + code + ")",
	}
}

// KnownDeterminative reports whether code is in the fixed table.
func KnownDeterminative(code string) bool {
	_, ok := determinatives[code]
	return ok
}
