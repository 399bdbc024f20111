// Package text is the deterministic text engine behind heuristic mode:
// tokenization, extractive summarization, keyword tagging, overlap scoring
// and keyword classification. It performs no I/O.
package text

import (
	"regexp"
	"strings"
	"unicode"
)

var tokenSplit = regexp.MustCompile(`[^a-z0-9]+`)

var stopwords = map[string]struct{}{}

func init() {
	for _, w := range strings.Fields(`
		the and a an in on for of to is are was were be been being
		with by as at that this these those it its from or we our you
		your their they he she his her i me my mine but not no yes can
		will would could should may might into about over under between among than
		such more most least also using use used via per each both if then else`) {
		stopwords[w] = struct{}{}
	}
}

// IsStopword reports whether w is excluded from scoring.
func IsStopword(w string) bool {
	_, ok := stopwords[w]
	return ok
}

// Tokens case-folds s, splits on non-alphanumerics and drops stop-words and
// single-character tokens. Order and duplicates are kept.
func Tokens(s string) []string {
	raw := tokenSplit.Split(strings.ToLower(s), -1)
	out := make([]string, 0, len(raw))
	for _, t := range raw {
		if len(t) <= 1 {
			continue
		}
		if IsStopword(t) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// TokenSet is a deduplicated token bag.
type TokenSet map[string]struct{}

// NewTokenSet tokenizes s into a set.
func NewTokenSet(s string) TokenSet {
	set := make(TokenSet)
	for _, t := range Tokens(s) {
		set[t] = struct{}{}
	}
	return set
}

// Contains reports whether t is in the set.
func (s TokenSet) Contains(t string) bool {
	_, ok := s[t]
	return ok
}

// Intersects reports whether the sets share any token.
func (s TokenSet) Intersects(other TokenSet) bool {
	small, large := s, other
	if len(small) > len(large) {
		small, large = large, small
	}
	for t := range small {
		if large.Contains(t) {
			return true
		}
	}
	return false
}

// Sentences splits s after '.', '!' or '?' followed by whitespace.
// Blank fragments are dropped; each sentence is trimmed.
func Sentences(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	runes := []rune(s)
	var out []string
	start := 0
	for i := 0; i < len(runes)-1; i++ {
		switch runes[i] {
		case '.', '!', '?':
		default:
			continue
		}
		if !unicode.IsSpace(runes[i+1]) {
			continue
		}
		if sent := strings.TrimSpace(string(runes[start : i+1])); sent != "" {
			out = append(out, sent)
		}
		start = i + 1
	}
	if sent := strings.TrimSpace(string(runes[start:])); sent != "" {
		out = append(out, sent)
	}
	return out
}
