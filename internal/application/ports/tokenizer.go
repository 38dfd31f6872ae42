// Package ports defines the application layer port interfaces following hexagonal architecture.
// Ports are abstractions that allow the application core to interact with external systems
// (adapters) without knowing their implementation details.
package ports

import "context"

// TokenizerInfo describes a tokenizer variant for listings and report output.
type TokenizerInfo struct {
	Name        string // Registry key, e.g. "tiktoken"
	Description string // One-line description of the tokenization scheme
	Emoji       string // Display glyph used in tables and the explorer
	Guild       string // Thematic grouping label, display only
}

// TokenizerPort defines the interface every tokenizer variant implements.
// Implementations might wrap a BPE library, a trained subword model, or a
// plain word splitter.
type TokenizerPort interface {
	// Info returns static metadata about the variant. Safe to call before
	// Initialize.
	Info() TokenizerInfo

	// Initialize prepares the tokenizer for use, trying its initialization
	// strategies in order until one succeeds. Calling Initialize on an
	// already-initialized tokenizer is a no-op returning nil.
	Initialize(ctx context.Context) error

	// Initialized reports whether a prior Initialize succeeded.
	Initialized() bool

	// WinningStrategy returns the name of the initialization strategy that
	// succeeded, or an empty string before initialization.
	WinningStrategy() string

	// Tokenize splits text into token IDs and their string forms. The two
	// slices are parallel and equal in length.
	Tokenize(ctx context.Context, text string) (ids []int, tokens []string, err error)

	// Decode reconstructs text from token IDs.
	Decode(ctx context.Context, ids []int) (string, error)

	// VocabSize returns the number of entries in the tokenizer's vocabulary.
	VocabSize() (int, error)
}
