package atf

// WordKind discriminates Word variants in serialized output.
type WordKind string

// Word kinds.
const (
	WordPunctuation   WordKind = "punctuation"
	WordBroken        WordKind = "broken"
	WordLogogram      WordKind = "logogram"
	WordDeterminative WordKind = "determinative"
	WordPlain         WordKind = "word"
)

// Word is one token of a content line. The concrete type is one of
// *Punctuation, *Broken, *Logogram, *Determinative or *PlainWord.
type Word interface {
	Kind() WordKind

	// Key returns the dictionary lookup key, or "" when the word has none.
	Key() string

	isWord()
}

// Punctuation is a single separator character.
type Punctuation struct {
	Char string `json:"char"`
}

// Broken is a bracket-delimited damaged span.
type Broken struct {
	// Text includes the brackets, e.g. "[x x]".
	Text string `json:"text"`

	// Inner is Text without the enclosing brackets.
	Inner string `json:"inner"`
}

// Logogram is an underscore-delimited span read as a whole word.
type Logogram struct {
	Text   string `json:"text"`
	Lookup string `json:"lookup,omitempty"`
}

// Position tells whether a determinative precedes or follows its word.
type Position string

// Determinative positions.
const (
	Prefix Position = "prefix"
	Suffix Position = "suffix"
)

// Determinative is a word carrying a semantic classifier.
type Determinative struct {
	// Text is the display text of the classified word.
	Text   string `json:"text"`
	Lookup string `json:"lookup,omitempty"`

	// Code is the raw classifier code between braces ("d", "ki", ...).
	Code     string             `json:"code"`
	Position Position           `json:"position"`
	Class    DeterminativeClass `json:"class"`
}

// PlainWord is an ordinary transliterated word.
type PlainWord struct {
	Text   string `json:"text"`
	Lookup string `json:"lookup,omitempty"`

	// Damaged, Uncertain and Corrected come from trailing "#", "?" and "!".
	Damaged   bool `json:"damaged,omitempty"`
	Uncertain bool `json:"uncertain,omitempty"`
	Corrected bool `json:"corrected,omitempty"`
}

func (*Punctuation) Kind() WordKind   { return WordPunctuation }
func (*Broken) Kind() WordKind        { return WordBroken }
func (*Logogram) Kind() WordKind      { return WordLogogram }
func (*Determinative) Kind() WordKind { return WordDeterminative }
func (*PlainWord) Kind() WordKind     { return WordPlain }

func (*Punctuation) Key() string     { return "" }
func (*Broken) Key() string          { return "" }
func (w *Logogram) Key() string      { return w.Lookup }
func (w *Determinative) Key() string { return w.Lookup }
func (w *PlainWord) Key() string     { return w.Lookup }

func (*Punctuation) isWord()   {}
func (*Broken) isWord()        {}
func (*Logogram) isWord()      {}
func (*Determinative) isWord() {}
func (*PlainWord) isWord()     {}
