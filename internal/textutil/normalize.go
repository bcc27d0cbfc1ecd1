package textutil

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var diacriticStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// FoldDiacritics strips combining marks so "Tiësto" compares equal to "Tiesto".
func FoldDiacritics(s string) string {
	out, _, err := transform.String(diacriticStripper, s)
	if err != nil {
		return s
	}
	return out
}

// NormalizeComparable lowers, folds diacritics, maps common symbols to words,
// and collapses everything that is not a letter or digit into single spaces.
func NormalizeComparable(s string) string {
	s = strings.ToLower(FoldDiacritics(s))
	s = strings.ReplaceAll(s, "&", " and ")
	s = strings.ReplaceAll(s, "+", " and ")

	var b strings.Builder
	lastSpace := true
	for _, r := range s {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
			lastSpace = false
		default:
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}

// TokenSortKey returns the normalized tokens of s sorted and rejoined,
// making comparisons insensitive to token order ("Sia Furler" == "Furler Sia").
func TokenSortKey(s string) string {
	tokens := strings.Fields(NormalizeComparable(s))
	if len(tokens) == 0 {
		return ""
	}
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}
