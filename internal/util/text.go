package util

import (
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var markStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))

// Normalize performs basic string normalization (lowercase + trim).
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// FoldUnicode canonically decomposes s and strips combining marks, so that
// composed and decomposed forms of the same text compare equal.
func FoldUnicode(s string) string {
	folded, _, err := transform.String(markStripper, s)
	if err != nil {
		return s
	}
	return folded
}

// CollapseWhitespace replaces runs of whitespace with a single space.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeForMatch applies the full matching normalization: case fold,
// Unicode decompose + mark strip, whitespace collapse. Indexed phrases and
// query text go through the same path so equivalent forms compare equal.
func NormalizeForMatch(s string) string {
	return CollapseWhitespace(FoldUnicode(Normalize(s)))
}

// Tokenize splits normalized text into word tokens, treating any non-letter,
// non-digit rune as a separator.
func Tokenize(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// TokenSet returns the distinct tokens of s.
func TokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range Tokenize(s) {
		set[tok] = struct{}{}
	}
	return set
}

// Similarity is a Levenshtein ratio in [0, 1]: identical strings score 1.
func Similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	ra, rb := []rune(a), []rune(b)
	maxLen := len(ra)
	if len(rb) > maxLen {
		maxLen = len(rb)
	}
	if maxLen == 0 {
		return 0.0
	}
	distance := levenshtein.ComputeDistance(a, b)
	return 1.0 - float64(distance)/float64(maxLen)
}

// HasCyrillic reports whether s contains at least one Cyrillic rune. Used as
// the cheap script heuristic for language-partitioning the fuzzy index.
func HasCyrillic(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Cyrillic, r) {
			return true
		}
	}
	return false
}

// ContainsWord reports whether phrase occurs in text bounded at token edges:
// the runes adjacent to the occurrence must not be letters or digits.
func ContainsWord(text, phrase string) bool {
	if phrase == "" {
		return false
	}
	for start := 0; ; {
		idx := strings.Index(text[start:], phrase)
		if idx < 0 {
			return false
		}
		idx += start
		if boundedAt(text, idx, len(phrase)) {
			return true
		}
		start = idx + 1
	}
}

func boundedAt(text string, idx, length int) bool {
	if idx > 0 {
		before, _ := lastRune(text[:idx])
		if unicode.IsLetter(before) || unicode.IsDigit(before) {
			return false
		}
	}
	if end := idx + length; end < len(text) {
		after, _ := firstRune(text[end:])
		if unicode.IsLetter(after) || unicode.IsDigit(after) {
			return false
		}
	}
	return true
}

func firstRune(s string) (rune, bool) {
	for _, r := range s {
		return r, true
	}
	return 0, false
}

func lastRune(s string) (rune, bool) {
	var last rune
	found := false
	for _, r := range s {
		last = r
		found = true
	}
	return last, found
}

// TruncateString truncates a string to maxRunes characters (rune-based).
// If truncated, appends "..." to the result.
func TruncateString(s string, maxRunes int) string {
	r := []rune(s)
	if len(r) <= maxRunes {
		return s
	}
	return string(r[:maxRunes]) + "..."
}
