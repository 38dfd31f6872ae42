package pricing

import (
	"fmt"
	"sort"
	"sync"

	domainerrors "github.com/ducktyper-ai/quacktokenscope/internal/domain/errors"
)

// Rate holds the per-1000-token rates for one model. Both rates are in
// currency units (USD) per 1K tokens and must be non-negative.
type Rate struct {
	Model      string  `json:"model"`
	InputRate  float64 `json:"input_rate"`
	OutputRate float64 `json:"output_rate"`
}

// Calculator manages the pricing reference table and cost arithmetic.
// Rates are registered during load; afterwards the table is used read-only.
// Registration order is preserved and used as the tie-break in Compare.
type Calculator struct {
	mu    sync.RWMutex
	rates map[string]Rate
	order []string
}

// NewCalculator creates a Calculator with an empty pricing table.
func NewCalculator() *Calculator {
	return &Calculator{
		rates: make(map[string]Rate),
		order: make([]string, 0),
	}
}

// NewDefaultCalculator creates a Calculator pre-populated with the default
// pricing table.
func NewDefaultCalculator() *Calculator {
	calc := NewCalculator()
	for _, r := range DefaultRates() {
		// Default rates are vetted at compile time; Register cannot fail here.
		_ = calc.Register(r)
	}
	return calc
}

// Register adds a model's rates to the table. Re-registering an existing
// model updates its rates but keeps its original position in the order.
func (c *Calculator) Register(rate Rate) error {
	if rate.Model == "" {
		return fmt.Errorf("model name cannot be empty")
	}
	if rate.InputRate < 0 || rate.OutputRate < 0 {
		return fmt.Errorf("rates for %s must be non-negative", rate.Model)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.rates[rate.Model]; !exists {
		c.order = append(c.order, rate.Model)
	}
	c.rates[rate.Model] = rate
	return nil
}

// Lookup retrieves the rates for a model.
func (c *Calculator) Lookup(model string) (Rate, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.rates[model]
	return r, ok
}

// Has checks whether a model is present in the table.
func (c *Calculator) Has(model string) bool {
	_, ok := c.Lookup(model)
	return ok
}

// Models returns all model names in registration order.
func (c *Calculator) Models() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Len returns the number of models in the table.
func (c *Calculator) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.rates)
}

// Compute calculates the cost breakdown for the given token counts under the
// named model. Fails with ErrUnknownModel when the model is absent; an
// unknown model is never silently defaulted since that would corrupt the
// estimate.
func (c *Calculator) Compute(model string, inputTokens, outputTokens int) (*CostBreakdown, error) {
	c.mu.RLock()
	rate, ok := c.rates[model]
	c.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", domainerrors.ErrUnknownModel, model)
	}

	return breakdown(model, rate, inputTokens, outputTokens), nil
}

// Compare computes a breakdown for every model in the table, ordered by
// ascending total cost with ties broken by registration order.
func (c *Calculator) Compare(inputTokens, outputTokens int) []*CostBreakdown {
	c.mu.RLock()
	results := make([]*CostBreakdown, 0, len(c.order))
	for _, model := range c.order {
		results = append(results, breakdown(model, c.rates[model], inputTokens, outputTokens))
	}
	c.mu.RUnlock()

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].TotalCost < results[j].TotalCost
	})
	return results
}

// Clone creates a deep copy of the Calculator with all registered rates.
// Used when building an updated table from a reloaded pricing file so the
// original stays immutable for in-flight readers.
func (c *Calculator) Clone() *Calculator {
	c.mu.RLock()
	defer c.mu.RUnlock()

	clone := NewCalculator()
	clone.order = make([]string, len(c.order))
	copy(clone.order, c.order)
	for model, rate := range c.rates {
		clone.rates[model] = rate
	}
	return clone
}
