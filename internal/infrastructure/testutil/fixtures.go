// Package testutil provides test fixtures and helpers for testing.
package testutil

import (
	"time"

	"github.com/ducktyper-ai/quacktokenscope/internal/domain/pricing"
	"github.com/ducktyper-ai/quacktokenscope/internal/domain/token"
)

// SampleText is a short text with repeated words, convenient for asserting
// frequency counts.
const SampleText = "the quick brown fox the quick fox"

// NewTestReport builds a full analysis report for SampleText under the given
// tokenizer name, tokenized on whitespace.
func NewTestReport(tokenizer string) *token.Report {
	tokens := []string{"the", "quick", "brown", "fox", "the", "quick", "fox"}
	ids := []int{0, 1, 2, 3, 0, 1, 3}

	return &token.Report{
		Analysis: &token.Analysis{
			Text:      SampleText,
			Tokenizer: tokenizer,
			IDs:       ids,
			Tokens:    tokens,
			Elapsed:   time.Millisecond,
		},
		Frequency: token.NewFrequency(tokens),
		Summary:   token.NewSummary(SampleText, tokens),
	}
}

// NewTestRate creates a pricing rate for testing.
func NewTestRate(model string, inputRate, outputRate float64) pricing.Rate {
	return pricing.Rate{Model: model, InputRate: inputRate, OutputRate: outputRate}
}

// NewTestCalculator creates a calculator holding only the given rates, in
// order.
func NewTestCalculator(rates ...pricing.Rate) *pricing.Calculator {
	calc := pricing.NewCalculator()
	for _, r := range rates {
		_ = calc.Register(r)
	}
	return calc
}
