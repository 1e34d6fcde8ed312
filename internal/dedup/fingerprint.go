// Package dedup implements the near-duplicate detection engine that gates
// both refill-time scheduling and commit-time posting. It is intentionally
// small and dependency-free, but engineered with production-grade ergonomics:
//
//   - No logging in the library (callers decide how/what to log)
//   - Pure, total, deterministic functions (safe for concurrent use)
//   - Absent inputs degrade to "maximally distant" / "no similarity" so a
//     missing fingerprint can never produce a false duplicate match
//
// This file holds the fingerprint primitives: caption normalization,
// bit-level Hamming distance between fixed-width hex hashes, and
// token-multiset cosine similarity between normalized captions.
package dedup

import (
	"math"
	"math/bits"
	"regexp"
	"strings"
)

// MaxDistance is the sentinel returned by HammingDistance when either hash
// is absent or the two hashes are not comparable. It is far beyond any
// plausible bit distance, so absence never trips the visual-duplicate rule.
const MaxDistance = math.MaxInt32

var (
	// urlRE strips http(s) links before character filtering.
	urlRE = regexp.MustCompile(`https?://\S+`)
	// whitespaceRE collapses consecutive whitespace to a single space.
	whitespaceRE = regexp.MustCompile(`\s+`)
)

// NormalizeCaption canonicalizes a caption for similarity comparison:
// lowercase, URLs removed, emoji and every character outside [a-z0-9 #]
// dropped, whitespace collapsed, result trimmed.
//
// The function is idempotent: NormalizeCaption(NormalizeCaption(s)) ==
// NormalizeCaption(s).
func NormalizeCaption(s string) string {
	s = strings.ToLower(s)
	s = urlRE.ReplaceAllString(s, " ")

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '#':
			b.WriteRune(r)
		default:
			// Everything else (emoji blocks, punctuation, non-ASCII)
			// becomes a separator.
			b.WriteByte(' ')
		}
	}
	return strings.TrimSpace(whitespaceRE.ReplaceAllString(b.String(), " "))
}

// HammingDistance returns the number of differing bits between two hex
// strings of matching width (popcount of the XOR).
//
// Contract: if either input is absent/empty, or the inputs are not
// comparable (width mismatch, non-hex digit), the result is MaxDistance so
// that a candidate missing a visual hash is never flagged as a visual
// duplicate.
func HammingDistance(hexA, hexB string) int {
	a := strings.TrimSpace(hexA)
	b := strings.TrimSpace(hexB)
	if a == "" || b == "" || len(a) != len(b) {
		return MaxDistance
	}

	dist := 0
	for i := 0; i < len(a); i++ {
		na, okA := hexNibble(a[i])
		nb, okB := hexNibble(b[i])
		if !okA || !okB {
			return MaxDistance
		}
		dist += bits.OnesCount8(na ^ nb)
	}
	return dist
}

// hexNibble decodes a single hex digit (case-insensitive).
func hexNibble(c byte) (uint8, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	default:
		return 0, false
	}
}

// TokenCosineSimilarity computes the cosine similarity in [0, 1] between
// the whitespace-token multisets of two normalized captions.
//
// Returns 0 when either side tokenizes to the empty multiset (this also
// avoids division by zero), and 1 for identical non-empty inputs.
func TokenCosineSimilarity(textA, textB string) float64 {
	ta := termCounts(textA)
	tb := termCounts(textB)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	// Iterate the smaller map for the dot product.
	if len(ta) > len(tb) {
		ta, tb = tb, ta
	}
	var dot float64
	for term, ca := range ta {
		if cb, ok := tb[term]; ok {
			dot += float64(ca) * float64(cb)
		}
	}
	if dot == 0 {
		return 0
	}

	// Single sqrt keeps identical inputs at exactly 1.0: for equal
	// multisets the radicand is a perfect square.
	sim := dot / math.Sqrt(normSq(ta)*normSq(tb))
	if sim > 1 {
		sim = 1
	}
	return sim
}

// termCounts splits a normalized caption on whitespace into a term → count
// multiset.
func termCounts(s string) map[string]int {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil
	}
	m := make(map[string]int, len(fields))
	for _, f := range fields {
		m[f]++
	}
	return m
}

// normSq returns the squared Euclidean norm of a term-count vector.
func normSq(m map[string]int) float64 {
	var sum float64
	for _, c := range m {
		sum += float64(c) * float64(c)
	}
	return sum
}
