package search

import (
	"strings"
	"unicode"
)

// SnippetLength is the number of runes kept in a result snippet.
const SnippetLength = 120

// lowerRunes lowercases rune by rune so offsets line up with the input.
func lowerRunes(s string) []rune {
	r := []rune(s)
	for i, c := range r {
		r[i] = unicode.ToLower(c)
	}
	return r
}

// FuzzyMatch reports whether a and b contain one another ignoring case, or
// whether a single forward scan over both finds at most a small number of
// mismatching characters. The scan never backtracks, so it is a typo
// tolerant containment test and not an edit distance.
//
// b is treated as the query: queries shorter than 3 runes must match exactly,
// queries up to 5 runes tolerate one mismatch and longer ones two.
func FuzzyMatch(a, b string) bool {
	if a == "" || b == "" {
		return false
	}

	ar, br := lowerRunes(a), lowerRunes(b)
	la, lb := string(ar), string(br)
	if strings.Contains(la, lb) || strings.Contains(lb, la) {
		return true
	}
	if len(br) < 3 {
		return false
	}

	budget := 1
	if len(br) > 5 {
		budget = 2
	}

	mismatches := 0
	i, j := 0, 0
	for i < len(ar) && j < len(br) {
		if ar[i] == br[j] {
			i++
			j++
			continue
		}

		mismatches++
		if mismatches > budget {
			return false
		}

		switch {
		case len(ar) > len(br):
			i++
		case len(br) > len(ar):
			j++
		default:
			i++
			j++
		}
	}

	return true
}

// MatchIndices returns the rune offsets of every case-insensitive occurrence
// of query in text, left to right and non-overlapping.
func MatchIndices(text, query string) []int {
	indices := []int{}
	if query == "" {
		return indices
	}

	t, q := lowerRunes(text), lowerRunes(query)
	for i := 0; i+len(q) <= len(t); {
		if runesEqual(t[i:i+len(q)], q) {
			indices = append(indices, i)
			i += len(q)
			continue
		}
		i++
	}

	return indices
}

func runesEqual(a, b []rune) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Snippet truncates text to SnippetLength runes, marking the cut with "...".
func Snippet(text string) string {
	r := []rune(text)
	if len(r) <= SnippetLength {
		return text
	}
	return string(r[:SnippetLength]) + "..."
}
