// Package scenario generates and evaluates what-if cost parameter sweeps.
// Explore is a pure function of its inputs: identical base, sweep, and
// pricing table always produce an identical, identically-ordered result.
package scenario

import (
	"fmt"
	"math"

	"github.com/ducktyper-ai/quacktokenscope/internal/domain/pricing"
)

// Kind identifies which parameter a scenario varies.
type Kind string

const (
	KindOutputMultiplier Kind = "output_multiplier"
	KindTokenizer        Kind = "tokenizer"
	KindModel            Kind = "model"
)

// Scenario pairs a descriptive label with the cost computed for one point in
// a parameter sweep.
type Scenario struct {
	Label string                 `json:"label"`
	Kind  Kind                   `json:"kind"`
	Cost  *pricing.CostBreakdown `json:"cost"`
}

// Base is the reference point a sweep varies around.
type Base struct {
	Tokenizer    string
	Model        string
	InputTokens  int
	OutputTokens int
}

// Alternative is a tokenizer substitution: the same text counted by a
// different tokenizer, with the input token count that tokenizer produced.
type Alternative struct {
	Tokenizer   string
	InputTokens int
}

// Sweep declares which points to evaluate. Ordering in each slice is
// preserved in the output: multipliers first, then tokenizer substitutions,
// then model substitutions.
type Sweep struct {
	OutputMultipliers []float64
	AltTokenizers     []Alternative
	AltModels         []string
}

// DefaultSweep returns the standard what-if sweep: output token counts of
// 0, half, equal, and double the input count.
func DefaultSweep() Sweep {
	return Sweep{OutputMultipliers: []float64{0, 0.5, 1, 2}}
}

// Explore evaluates every point of the sweep against the pricing table and
// returns the ordered scenario sequence. An unknown model anywhere in the
// sweep fails the whole exploration; a partially-priced sweep would be
// misleading.
func Explore(base Base, sweep Sweep, calc *pricing.Calculator) ([]Scenario, error) {
	scenarios := make([]Scenario, 0,
		len(sweep.OutputMultipliers)+len(sweep.AltTokenizers)+len(sweep.AltModels))

	for _, mult := range sweep.OutputMultipliers {
		outputTokens := int(math.Round(mult * float64(base.InputTokens)))
		cost, err := calc.Compute(base.Model, base.InputTokens, outputTokens)
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, Scenario{
			Label: fmt.Sprintf("output = %gx input (%d tokens)", mult, outputTokens),
			Kind:  KindOutputMultiplier,
			Cost:  cost,
		})
	}

	for _, alt := range sweep.AltTokenizers {
		cost, err := calc.Compute(base.Model, alt.InputTokens, base.OutputTokens)
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, Scenario{
			Label: fmt.Sprintf("tokenizer = %s (%d input tokens)", alt.Tokenizer, alt.InputTokens),
			Kind:  KindTokenizer,
			Cost:  cost,
		})
	}

	for _, model := range sweep.AltModels {
		cost, err := calc.Compute(model, base.InputTokens, base.OutputTokens)
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, Scenario{
			Label: fmt.Sprintf("model = %s", model),
			Kind:  KindModel,
			Cost:  cost,
		})
	}

	return scenarios, nil
}
