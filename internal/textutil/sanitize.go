package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// asciiFold decomposes compatibility forms and drops every rune outside the
// ASCII range, so accented characters degrade to their base letters.
var asciiFold = transform.Chain(
	norm.NFKD,
	runes.Remove(runes.Predicate(func(r rune) bool { return r > unicode.MaxASCII })),
)

// unsafeChars removes characters that are invalid in filenames on common
// filesystems.
var unsafeChars = strings.NewReplacer(
	"<", "",
	">", "",
	":", "",
	"\"", "",
	"/", "",
	"\\", "",
	"|", "",
	"?", "",
	"*", "",
)

// firstLetterCaser capitalizes the first letter of each word while leaving
// interior casing untouched.
var firstLetterCaser = cases.Title(language.Und, cases.NoLower)

// SafeDisplayName converts an arbitrary title to a readable ASCII form that is
// safe to show and to embed in links: compatibility-decomposed, stripped of
// non-ASCII runes and filesystem-unsafe characters, with whitespace runs
// collapsed to single spaces.
func SafeDisplayName(name string) string {
	folded, _, err := transform.String(asciiFold, name)
	if err != nil {
		folded = name
	}
	cleaned := unsafeChars.Replace(folded)
	return strings.Join(strings.Fields(cleaned), " ")
}

// Identifier converts a title to the compact base name used for every
// artifact written for it: non-alphanumeric characters are dropped, each
// remaining word is capitalized with its interior casing preserved, and the
// words are concatenated without separators.
//
// Identifier("My Video: Intro!") returns "MyVideo". Empty input returns the
// empty string; callers must not write artifacts with an empty base name.
func Identifier(name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	var out strings.Builder
	for _, word := range strings.Fields(b.String()) {
		out.WriteString(firstLetterCaser.String(word))
	}
	return out.String()
}
