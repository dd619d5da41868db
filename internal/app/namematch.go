/**
 * @description
 * This file implements the fuzzy beneficiary-name match used to verify that a
 * resolved account holder name plausibly belongs to the claimed beneficiary
 * before a transfer is submitted.
 *
 * The predicate is intentionally order-insensitive and tolerant of missing
 * middle names or initials. It is not an edit-distance or phonetic matcher and
 * will accept some false positives, e.g. a single shared common token between
 * two short names. That is a known limitation of the check, not a bug.
 */

package app

import (
	"sort"
	"strings"
)

// nameMatchThreshold is the minimum fraction of the shorter name's tokens that
// must appear in the longer name for the names to be considered a match.
const nameMatchThreshold = 0.66

// NormalizeName lowercases the input, strips every character outside
// [a-z0-9 ], collapses whitespace runs to single spaces, and trims the ends.
// Normalization is idempotent.
func NormalizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '\t', r == '\n', r == '\r':
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// NamesMatch reports whether two free-text names likely refer to the same
// person. Both names are normalized and tokenized; the shorter token list is
// checked for membership in the longer one, and the names match when at least
// 66% of the shorter list's tokens are found. An empty token list never
// matches.
func NamesMatch(a, b string) bool {
	tokensA := tokenizeName(a)
	tokensB := tokenizeName(b)

	shorter, longer := tokensB, tokensA
	if len(tokensA) < len(tokensB) {
		shorter, longer = tokensA, tokensB
	}
	if len(shorter) == 0 {
		return false
	}

	longerSet := make(map[string]struct{}, len(longer))
	for _, tok := range longer {
		longerSet[tok] = struct{}{}
	}

	found := 0
	for _, tok := range shorter {
		if _, ok := longerSet[tok]; ok {
			found++
		}
	}

	return float64(found)/float64(len(shorter)) >= nameMatchThreshold
}

func tokenizeName(name string) []string {
	normalized := NormalizeName(name)
	if normalized == "" {
		return nil
	}
	tokens := strings.Split(normalized, " ")
	sort.Strings(tokens)
	return tokens
}
