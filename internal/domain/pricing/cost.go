// Package pricing contains the static pricing reference table and pure cost
// arithmetic for token-based model billing.
package pricing

// CostBreakdown represents the cost breakdown for processing a token count
// under one model's rates. All cost fields are non-negative; TotalCost is
// always InputCost + OutputCost.
type CostBreakdown struct {
	InputCost    float64 `json:"input_cost"`
	OutputCost   float64 `json:"output_cost"`
	TotalCost    float64 `json:"total_cost"`
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	Model        string  `json:"model"`
}

// breakdown computes the cost of a token count under the given per-1K rates.
// Zero token counts yield exactly zero cost.
func breakdown(model string, rate Rate, inputTokens, outputTokens int) *CostBreakdown {
	inputCost := float64(inputTokens) / 1000.0 * rate.InputRate
	outputCost := float64(outputTokens) / 1000.0 * rate.OutputRate

	return &CostBreakdown{
		InputCost:    inputCost,
		OutputCost:   outputCost,
		TotalCost:    inputCost + outputCost,
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		Model:        model,
	}
}
