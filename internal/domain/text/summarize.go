package text

import (
	"sort"
	"strings"

	"github.com/kailas-cloud/astrobio/internal/domain/summary"
)

// Summarization bounds.
const (
	LeadSentences    = 2
	MaxAbstractChars = 480
	FallbackPrefix   = 280
	MaxTags          = 5
)

// Summarize builds an extractive summary: the leading sentences as abstract,
// the top-scoring sentences as takeaways (in original order) and the most
// frequent tokens as tags.
func Summarize(s string, takeaways int) summary.Summary {
	if takeaways <= 0 {
		takeaways = summary.DefaultTakeaways
	}
	if takeaways > summary.MaxTakeaways {
		takeaways = summary.MaxTakeaways
	}

	sents := Sentences(s)
	return summary.Summary{
		Abstract:     leadAbstract(s, sents),
		KeyTakeaways: Takeaways(sents, takeaways),
		Tags:         Tags(s, MaxTags),
	}
}

func leadAbstract(s string, sents []string) string {
	if len(sents) == 0 {
		return Prefix(strings.TrimSpace(s), FallbackPrefix)
	}
	n := LeadSentences
	if n > len(sents) {
		n = len(sents)
	}
	return Snippet(strings.Join(sents[:n], " "), MaxAbstractChars)
}

// Takeaways ranks distinct sentences by summed term frequency and returns the
// top k in their original order. Ties keep the earlier sentence.
func Takeaways(sents []string, k int) []string {
	freq := make(map[string]int)
	for _, s := range sents {
		for _, t := range Tokens(s) {
			freq[t]++
		}
	}

	type scored struct {
		pos   int
		score int
	}
	seen := make(map[string]struct{}, len(sents))
	candidates := make([]scored, 0, len(sents))
	for i, s := range sents {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		score := 0
		for _, t := range Tokens(s) {
			score += freq[t]
		}
		candidates = append(candidates, scored{pos: i, score: score})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	if len(candidates) > k {
		candidates = candidates[:k]
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].pos < candidates[j].pos
	})

	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = sents[c.pos]
	}
	return out
}

// Keywords returns up to k most frequent tokens; ties go to the first occurrence.
func Keywords(s string, k int) []string {
	toks := Tokens(s)
	freq := make(map[string]int)
	order := make([]string, 0)
	for _, t := range toks {
		if freq[t] == 0 {
			order = append(order, t)
		}
		freq[t]++
	}
	sort.SliceStable(order, func(i, j int) bool {
		return freq[order[i]] > freq[order[j]]
	})
	if len(order) > k {
		order = order[:k]
	}
	return order
}

// Tags returns Keywords title-cased.
func Tags(s string, k int) []string {
	kws := Keywords(s, k)
	out := make([]string, len(kws))
	for i, w := range kws {
		out[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return out
}
