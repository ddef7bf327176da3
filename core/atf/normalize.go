package atf

import (
	"regexp"
	"strings"
)

// markerStripper removes damage, uncertainty, correction and collation marks
// wherever they occur.
var markerStripper = strings.NewReplacer(
	"#", "",
	"?", "",
	"!", "",
	"*", "",
)

// subscriptStripper removes subscript index digits (du₃ → du).
var subscriptStripper = strings.NewReplacer(
	"\u2080", "", // ₀
	"\u2081", "", // ₁
	"\u2082", "", // ₂
	"\u2083", "", // ₃
	"\u2084", "", // ₄
	"\u2085", "", // ₅
	"\u2086", "", // ₆
	"\u2087", "", // ₇
	"\u2088", "", // ₈
	"\u2089", "", // ₉
)

// signVariant matches sign-variant annotations such as "~a" or "@g".
var signVariant = regexp.MustCompile(`[~@][A-Za-z0-9]+`)

// complexSignStripper removes compound-sign notation ("|GA₂xAN|").
var complexSignStripper = strings.NewReplacer(
	"|", "",
	"x", "",
)

// Normalize maps a word's display text to its dictionary lookup key.
// The second result is false when nothing is left after normalization.
//
// Steps run in a fixed order: stray markers, subscript digits, sign-variant
// annotations, complex-sign notation, then lowercasing. Lowercase "x" is
// removed before lowercasing, so an uppercase "X" survives as "x".
func Normalize(display string) (string, bool) {
	s := markerStripper.Replace(display)
	s = subscriptStripper.Replace(s)
	s = signVariant.ReplaceAllString(s, "")
	s = complexSignStripper.Replace(s)
	s = strings.ToLower(s)
	if s == "" {
		return "", false
	}
	return s, true
}

// NormalizeKey is Normalize without the presence flag; it returns "" for none.
func NormalizeKey(display string) string {
	key, _ := Normalize(display)
	return key
}
