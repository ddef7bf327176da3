package atf

import "encoding/json"

// The MarshalJSON methods below add a "kind" discriminator so consumers can
// tell Line and Word variants apart.

func (l *StateLine) MarshalJSON() ([]byte, error) {
	type alias StateLine
	return json.Marshal(struct {
		Kind LineKind `json:"kind"`
		*alias
	}{LineState, (*alias)(l)})
}

func (l *ContentLine) MarshalJSON() ([]byte, error) {
	type alias ContentLine
	return json.Marshal(struct {
		Kind LineKind `json:"kind"`
		*alias
	}{LineContent, (*alias)(l)})
}

func (w *Punctuation) MarshalJSON() ([]byte, error) {
	type alias Punctuation
	return json.Marshal(struct {
		Kind WordKind `json:"kind"`
		*alias
	}{WordPunctuation, (*alias)(w)})
}

func (w *Broken) MarshalJSON() ([]byte, error) {
	type alias Broken
	return json.Marshal(struct {
		Kind WordKind `json:"kind"`
		*alias
	}{WordBroken, (*alias)(w)})
}

func (w *Logogram) MarshalJSON() ([]byte, error) {
	type alias Logogram
	return json.Marshal(struct {
		Kind WordKind `json:"kind"`
		*alias
	}{WordLogogram, (*alias)(w)})
}

func (w *Determinative) MarshalJSON() ([]byte, error) {
	type alias Determinative
	return json.Marshal(struct {
		Kind WordKind `json:"kind"`
		*alias
	}{WordDeterminative, (*alias)(w)})
}

func (w *PlainWord) MarshalJSON() ([]byte, error) {
	type alias PlainWord
	return json.Marshal(struct {
		Kind WordKind `json:"kind"`
		*alias
	}{WordPlain, (*alias)(w)})
}
