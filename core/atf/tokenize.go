package atf

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// wordMarkers are the non-alphanumeric characters allowed inside a word:
// syllable joiner, sign-variant and complex-sign notation, and the
// damage/uncertainty/correction marks.
const wordMarkers = "-~@|#?!"

func isPunctuation(r rune) bool {
	return r == ',' || r == '.' || r == ';' || r == ':'
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.Is(unicode.Mn, r) ||
		strings.ContainsRune(wordMarkers, r)
}

// Tokenize splits the text of one content line into words, left to right.
// Characters that cannot start any token are skipped one at a time.
func Tokenize(raw string) []Word {
	words := []Word{}

	i := 0
	for i < len(raw) {
		r, size := utf8.DecodeRuneInString(raw[i:])
		if unicode.IsSpace(r) {
			i += size
			continue
		}

		switch {
		case isPunctuation(r):
			words = append(words, &Punctuation{Char: string(r)})
			i += size
			continue

		case r == '[':
			if end := strings.IndexByte(raw[i+1:], ']'); end >= 0 {
				words = append(words, &Broken{
					Text:  raw[i : i+end+2],
					Inner: raw[i+1 : i+1+end],
				})
				i += end + 2
				continue
			}

		case r == '_':
			if end := strings.IndexByte(raw[i+1:], '_'); end >= 0 {
				inner := raw[i+1 : i+1+end]
				words = append(words, &Logogram{Text: inner, Lookup: NormalizeKey(inner)})
				i += end + 2
				continue
			}

		case r == '{':
			if code, next, ok := scanBraces(raw, i); ok {
				end := scanWord(raw, next)
				words = append(words, newDeterminative(raw[next:end], code, Prefix))
				i = end
				continue
			}
		}

		// Unterminated "[", "_" and "{" fall through to here; none of them is a
		// word rune, so they are skipped like any other stray character.
		end := scanWord(raw, i)
		if end == i {
			i += size
			continue
		}
		text := raw[i:end]

		if code, next, ok := scanBraces(raw, end); ok {
			words = append(words, newDeterminative(text, code, Suffix))
			i = next
			continue
		}

		words = append(words, newPlainWord(text))
		i = end
	}

	return words
}

// scanWord returns the end offset of the run of word runes starting at i.
func scanWord(raw string, i int) int {
	for i < len(raw) {
		r, size := utf8.DecodeRuneInString(raw[i:])
		if !isWordRune(r) {
			break
		}
		i += size
	}
	return i
}

// scanBraces reads a "{code}" group starting at i. It reports the code and
// the offset just past the closing brace.
func scanBraces(raw string, i int) (code string, next int, ok bool) {
	if i >= len(raw) || raw[i] != '{' {
		return "", i, false
	}
	end := strings.IndexByte(raw[i+1:], '}')
	if end < 0 {
		return "", i, false
	}
	return raw[i+1 : i+1+end], i + end + 2, true
}

func newDeterminative(text, code string, pos Position) *Determinative {
	return &Determinative{
		Text:     text,
		Lookup:   NormalizeKey(text),
		Code:     code,
		Position: pos,
		Class:    ResolveDeterminative(code),
	}
}

// newPlainWord strips the trailing marker sequence "#?!" and records which
// marks were present. Each mark is optional but they are only recognized in
// that order; a mark out of sequence stays in Text and is dropped later by
// Normalize.
func newPlainWord(text string) *PlainWord {
	w := &PlainWord{}
	if t, ok := strings.CutSuffix(text, "!"); ok {
		text, w.Corrected = t, true
	}
	if t, ok := strings.CutSuffix(text, "?"); ok {
		text, w.Uncertain = t, true
	}
	if t, ok := strings.CutSuffix(text, "#"); ok {
		text, w.Damaged = t, true
	}
	w.Text = text
	w.Lookup = NormalizeKey(text)
	return w
}
