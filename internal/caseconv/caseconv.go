// Package caseconv derives camelCase identifiers from server-side keys such
// as "given_name" or "BANK_ACCOUNT_NUMBER".
package caseconv

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// CamelCase converts s to lower camel case. Word boundaries are any
// non-alphanumeric rune and every lower-to-upper transition.
func CamelCase(s string) string {
	words := splitWords(s)
	if len(words) == 0 {
		return ""
	}

	// cases.Caser is stateful, one per call.
	lower := cases.Lower(language.Und)
	title := cases.Title(language.Und)

	var b strings.Builder
	b.WriteString(lower.String(words[0]))
	for _, w := range words[1:] {
		b.WriteString(title.String(w))
	}
	return b.String()
}

// CamelKeys returns a copy of m with every top-level key camel-cased.
// Nested values are kept as they are.
func CamelKeys(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[CamelCase(k)] = v
	}
	return out
}

func splitWords(s string) []string {
	var (
		words []string
		cur   []rune
		prev  rune
	)
	flush := func() {
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = cur[:0]
		}
	}
	for _, r := range s {
		switch {
		case !unicode.IsLetter(r) && !unicode.IsDigit(r):
			flush()
		case unicode.IsUpper(r) && (unicode.IsLower(prev) || unicode.IsDigit(prev)):
			flush()
			cur = append(cur, r)
		default:
			cur = append(cur, r)
		}
		prev = r
	}
	flush()
	return words
}
