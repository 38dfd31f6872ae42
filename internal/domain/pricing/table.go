package pricing

// DefaultRates returns the built-in pricing table. Rates are per 1000 tokens
// in USD. To convert from provider pricing (typically per million tokens):
//
//	rate_per_1k = price_per_million / 1000
//
// Example: Claude Sonnet at $3/MTok input = 0.003 per 1K tokens.
// Additional models can be added through configuration without code changes.
func DefaultRates() []Rate {
	return []Rate{
		// OpenAI
		// GPT-4 Turbo: $10/MTok input, $30/MTok output
		{Model: "gpt-4-turbo", InputRate: 0.01, OutputRate: 0.03},
		// GPT-4: $30/MTok input, $60/MTok output
		{Model: "gpt-4", InputRate: 0.03, OutputRate: 0.06},
		// GPT-4o: $2.50/MTok input, $10/MTok output
		{Model: "gpt-4o", InputRate: 0.0025, OutputRate: 0.01},
		// GPT-4o mini: $0.15/MTok input, $0.60/MTok output
		{Model: "gpt-4o-mini", InputRate: 0.00015, OutputRate: 0.0006},
		// GPT-3.5 Turbo: $0.50/MTok input, $1.50/MTok output
		{Model: "gpt-3.5-turbo", InputRate: 0.0005, OutputRate: 0.0015},

		// Anthropic
		// Opus 3: $15/MTok input, $75/MTok output
		{Model: "claude-3-opus", InputRate: 0.015, OutputRate: 0.075},
		// Sonnet 3.5: $3/MTok input, $15/MTok output
		{Model: "claude-3-5-sonnet", InputRate: 0.003, OutputRate: 0.015},
		// Haiku 3: $0.25/MTok input, $1.25/MTok output
		{Model: "claude-3-haiku", InputRate: 0.00025, OutputRate: 0.00125},

		// Google
		// Gemini 1.5 Pro: $1.25/MTok input, $5/MTok output
		{Model: "gemini-1.5-pro", InputRate: 0.00125, OutputRate: 0.005},
		// Gemini 1.5 Flash: $0.075/MTok input, $0.30/MTok output
		{Model: "gemini-1.5-flash", InputRate: 0.000075, OutputRate: 0.0003},

		// Mistral
		// Mistral Large: $2/MTok input, $6/MTok output
		{Model: "mistral-large", InputRate: 0.002, OutputRate: 0.006},
	}
}
