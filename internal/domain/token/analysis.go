// Package token contains domain types for token analysis results.
// All types are plain values computed once and treated as read-only by
// consumers; the presentation layer must not mutate them.
package token

import (
	"sort"
	"time"
	"unicode/utf8"
)

// Analysis captures the raw result of running one tokenizer over a text.
// IDs and Tokens are parallel sequences: len(IDs) == len(Tokens) always.
type Analysis struct {
	Text      string        `json:"-"`
	Tokenizer string        `json:"tokenizer"`
	IDs       []int         `json:"ids"`
	Tokens    []string      `json:"tokens"`
	Elapsed   time.Duration `json:"elapsed_ns"`
}

// FrequencyEntry is one token string with its occurrence count.
type FrequencyEntry struct {
	Token string `json:"token"`
	Count int    `json:"count"`
}

// Frequency is the occurrence count per distinct token string, with a stable
// rank order: descending count, ties broken by first occurrence in the token
// sequence.
type Frequency struct {
	Counts map[string]int   `json:"counts"`
	Ranked []FrequencyEntry `json:"ranked"`
}

// Summary holds aggregate statistics for one tokenization run.
// Ratios are reported as 0 when TotalTokens is 0.
type Summary struct {
	TotalTokens      int     `json:"total_tokens"`
	DistinctTokens   int     `json:"distinct_tokens"`
	TypeTokenRatio   float64 `json:"type_token_ratio"`
	AvgTokenLength   float64 `json:"avg_token_length"`
	CompressionRatio float64 `json:"compression_ratio"`
}

// NewFrequency counts occurrences in the ordered token sequence and ranks
// them per the stable order above.
func NewFrequency(tokens []string) *Frequency {
	counts := make(map[string]int, len(tokens))
	firstSeen := make(map[string]int, len(tokens))

	for i, tok := range tokens {
		if _, seen := counts[tok]; !seen {
			firstSeen[tok] = i
		}
		counts[tok]++
	}

	ranked := make([]FrequencyEntry, 0, len(counts))
	for tok, count := range counts {
		ranked = append(ranked, FrequencyEntry{Token: tok, Count: count})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return firstSeen[ranked[i].Token] < firstSeen[ranked[j].Token]
	})

	return &Frequency{Counts: counts, Ranked: ranked}
}

// Len returns the number of distinct tokens.
func (f *Frequency) Len() int {
	return len(f.Counts)
}

// Top returns the n highest-ranked entries (all of them when n exceeds the
// distinct count or is negative).
func (f *Frequency) Top(n int) []FrequencyEntry {
	if n < 0 || n > len(f.Ranked) {
		n = len(f.Ranked)
	}
	out := make([]FrequencyEntry, n)
	copy(out, f.Ranked[:n])
	return out
}

// NewSummary computes aggregate statistics from the token sequence and the
// raw input text. The compression ratio uses the text's rune count so
// multi-byte input is not overweighted.
func NewSummary(text string, tokens []string) *Summary {
	s := &Summary{TotalTokens: len(tokens)}
	if s.TotalTokens == 0 {
		return s
	}

	distinct := make(map[string]struct{}, len(tokens))
	totalChars := 0
	for _, tok := range tokens {
		distinct[tok] = struct{}{}
		totalChars += utf8.RuneCountInString(tok)
	}

	s.DistinctTokens = len(distinct)
	s.TypeTokenRatio = float64(s.DistinctTokens) / float64(s.TotalTokens)
	s.AvgTokenLength = float64(totalChars) / float64(s.TotalTokens)
	s.CompressionRatio = float64(utf8.RuneCountInString(text)) / float64(s.TotalTokens)
	return s
}

// Report bundles the three result types for a single tokenizer.
type Report struct {
	Analysis  *Analysis  `json:"analysis"`
	Frequency *Frequency `json:"frequency"`
	Summary   *Summary   `json:"summary"`
}

// RankedVariant is one entry in the cross-tokenizer efficiency ranking.
type RankedVariant struct {
	Tokenizer   string `json:"tokenizer"`
	TotalTokens int    `json:"total_tokens"`
}

// RankByEfficiency orders analyzed variants by ascending total token count,
// ties broken by tokenizer name. The first entry is the most token-efficient
// variant for the analyzed text. Purely informational.
func RankByEfficiency(reports map[string]*Report) []RankedVariant {
	ranked := make([]RankedVariant, 0, len(reports))
	for name, r := range reports {
		ranked = append(ranked, RankedVariant{
			Tokenizer:   name,
			TotalTokens: r.Summary.TotalTokens,
		})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].TotalTokens != ranked[j].TotalTokens {
			return ranked[i].TotalTokens < ranked[j].TotalTokens
		}
		return ranked[i].Tokenizer < ranked[j].Tokenizer
	})
	return ranked
}
