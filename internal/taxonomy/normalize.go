package taxonomy

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// maxNormalizePasses bounds the fixed-point loop in Normalize. Every known
// input settles within two passes.
const maxNormalizePasses = 8

// Normalize canonicalizes a category or interest string for comparison.
// It applies NFKC compatibility folding, lowercases, trims, and collapses
// internal whitespace runs to a single space. Lowercasing can leave text
// that NFKC recomposes into an uppercase letter, so the steps repeat until
// the string stops changing, which makes Normalize idempotent. Garbage in
// yields "", which never matches anything.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	for i := 0; i < maxNormalizePasses; i++ {
		next := normalizePass(s)
		if next == s {
			break
		}
		s = next
	}
	return s
}

func normalizePass(s string) string {
	s = strings.ToLower(norm.NFKC.String(s))
	return strings.Join(strings.Fields(s), " ")
}
