package text

import (
	"math"
	"strings"
)

// Overlap is |query ∩ doc| / |query|. An empty query scores 0.
func Overlap(query, doc TokenSet) float64 {
	if len(query) == 0 {
		return 0
	}
	hits := 0
	for t := range query {
		if doc.Contains(t) {
			hits++
		}
	}
	return float64(hits) / float64(len(query))
}

// Cosine returns the cosine similarity of a and b in [-1, 1].
// Mismatched lengths or zero vectors score 0.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	sim := dot / (math.Sqrt(na) * math.Sqrt(nb))
	return math.Max(-1, math.Min(1, sim))
}

const ellipsis = "..."

// Snippet bounds s to n characters, cutting at the last word boundary and
// appending an ellipsis when truncated.
func Snippet(s string, n int) string {
	runes := []rune(s)
	if n <= 0 || len(runes) <= n {
		return s
	}
	cut := string(runes[:n])
	if i := strings.LastIndexAny(cut, " \t\n"); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " \t\n,;:") + ellipsis
}

// Prefix returns the first n characters of s.
func Prefix(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
