package filter

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	startupRegex = regexp.MustCompile(`\b(founder|co-?founder|ceo|building|startup|launched)\b`)
	spaceRegex   = regexp.MustCompile(`\s+`)
)

// Normalize lowercases text, strips diacritics and collapses whitespace.
func Normalize(text string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, text)
	if err != nil {
		out = text
	}
	return strings.TrimSpace(spaceRegex.ReplaceAllString(strings.ToLower(out), " "))
}

// HasStartupKeywords reports whether a bio or post reads like someone building a company.
func HasStartupKeywords(text string) bool {
	if text == "" {
		return false
	}
	return startupRegex.MatchString(Normalize(text))
}

// SameIdentity compares two names or emails after trimming and case folding.
// Empty values never match.
func SameIdentity(a, b string) bool {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	if a == "" || b == "" {
		return false
	}
	return strings.EqualFold(a, b)
}
