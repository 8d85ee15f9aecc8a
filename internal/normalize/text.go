// Package normalize cleans scraped text and compares strings for fuzzy
// matching against the canonical registry.
package normalize

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/unicode/norm"
)

var (
	spaceRun = regexp.MustCompile(`\s+`)
	dmyDate  = regexp.MustCompile(`(\d{1,2})/(\d{1,2})/(\d{4})`)
)

// Text returns s in NFC with whitespace runs (including non-breaking
// spaces) collapsed to one space and trimmed.
// Portal markup mixes precomposed and combining Vietnamese diacritics.
func Text(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = norm.NFC.String(s)
	return strings.TrimSpace(spaceRun.ReplaceAllString(s, " "))
}

// Key is Text lowercased, the form compared by Ratio.
func Key(s string) string {
	return strings.ToLower(Text(s))
}

// Ratio is the Levenshtein similarity of a and b after Key normalization:
// 1 - distance / max(len(a), len(b)), counted in runes. Two empty strings
// are identical.
func Ratio(a, b string) float64 {
	a, b = Key(a), Key(b)
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}

// Similar reports whether Ratio(a, b) reaches threshold.
func Similar(a, b string, threshold float64) bool {
	if strings.TrimSpace(a) == "" || strings.TrimSpace(b) == "" {
		return false
	}
	return Ratio(a, b) >= threshold
}

// ParseDMY parses the first dd/mm/yyyy date found in s. Anything
// unparsable yields nil; the portals publish placeholders such as "..."
// or "Không xác định".
func ParseDMY(s string) *time.Time {
	m := dmyDate.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	t, err := time.Parse("2/1/2006", m[1]+"/"+m[2]+"/"+m[3])
	if err != nil {
		return nil
	}
	return &t
}

// ParseISODate parses "YYYY-MM-DD", optionally followed by a time part.
func ParseISODate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if len(s) < 10 {
		return nil
	}
	t, err := time.Parse("2006-01-02", s[:10])
	if err != nil {
		return nil
	}
	return &t
}
