// Package tiktoken wraps the tiktoken-go BPE library as tokenizer variants.
package tiktoken

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"github.com/ducktyper-ai/quacktokenscope/internal/application/ports"
	domainerrors "github.com/ducktyper-ai/quacktokenscope/internal/domain/errors"
)

// Vocabulary sizes of the encodings this package knows how to load,
// including special tokens.
var vocabSizes = map[string]int{
	"cl100k_base": 100277,
	"o200k_base":  200019,
	"p50k_base":   50281,
	"r50k_base":   50257,
}

// strategy is one way of obtaining an encoding. Strategies are tried in
// order; the first success wins.
type strategy struct {
	name string
	load func() (*tiktoken.Tiktoken, error)
}

// Tokenizer is a BPE tokenizer backed by a tiktoken encoding.
type Tokenizer struct {
	info     ports.TokenizerInfo
	encoding string

	mu         sync.RWMutex
	strategies []strategy
	winning    string
	enc        *tiktoken.Tiktoken
}

// NewCL100K creates the cl100k_base variant, the encoding used by GPT-4 era
// models. When model is non-empty the encoding is resolved from the model
// name first, falling back to loading cl100k_base directly.
func NewCL100K(model string) *Tokenizer {
	t := &Tokenizer{
		info: ports.TokenizerInfo{
			Name:        "tiktoken",
			Description: "OpenAI cl100k_base byte pair encoding",
			Emoji:       "🧠",
			Guild:       "Neural Lexicon",
		},
		encoding: "cl100k_base",
	}
	if model != "" {
		t.strategies = append(t.strategies, strategy{
			name: "encoding_for_model",
			load: func() (*tiktoken.Tiktoken, error) {
				return tiktoken.EncodingForModel(model)
			},
		})
	}
	t.strategies = append(t.strategies, strategy{
		name: "get_encoding",
		load: func() (*tiktoken.Tiktoken, error) {
			return tiktoken.GetEncoding("cl100k_base")
		},
	})
	return t
}

// NewO200K creates the o200k_base variant, the encoding used by GPT-4o
// family models.
func NewO200K() *Tokenizer {
	return &Tokenizer{
		info: ports.TokenizerInfo{
			Name:        "o200k",
			Description: "OpenAI o200k_base byte pair encoding",
			Emoji:       "🔭",
			Guild:       "Neural Lexicon",
		},
		encoding: "o200k_base",
		strategies: []strategy{
			{
				name: "get_encoding",
				load: func() (*tiktoken.Tiktoken, error) {
					return tiktoken.GetEncoding("o200k_base")
				},
			},
		},
	}
}

// Info returns static metadata about the variant.
func (t *Tokenizer) Info() ports.TokenizerInfo {
	return t.info
}

// Initialize loads the encoding, trying each strategy in order. The
// encoding data may be fetched over the network on first use, so loading
// runs in a goroutine and respects ctx cancellation.
func (t *Tokenizer) Initialize(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.enc != nil {
		return nil
	}

	var lastErr error
	for _, s := range t.strategies {
		type loadResult struct {
			enc *tiktoken.Tiktoken
			err error
		}
		done := make(chan loadResult, 1)
		go func() {
			enc, err := s.load()
			done <- loadResult{enc, err}
		}()

		select {
		case <-ctx.Done():
			return domainerrors.NewError(domainerrors.CodeInitialization,
				fmt.Sprintf("loading encoding %s interrupted", t.encoding), ctx.Err())
		case res := <-done:
			if res.err == nil {
				t.enc = res.enc
				t.winning = s.name
				return nil
			}
			lastErr = res.err
		}
	}

	return domainerrors.NewError(domainerrors.CodeInitialization,
		fmt.Sprintf("all strategies failed for encoding %s", t.encoding),
		fmt.Errorf("%w: %v", domainerrors.ErrInitialization, lastErr))
}

// Initialized reports whether an encoding has been loaded.
func (t *Tokenizer) Initialized() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enc != nil
}

// WinningStrategy returns the name of the strategy that loaded the encoding.
func (t *Tokenizer) WinningStrategy() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.winning
}

// Tokenize encodes text into BPE token IDs and decodes each ID back to its
// string form so the parallel slices line up one to one.
func (t *Tokenizer) Tokenize(ctx context.Context, text string) ([]int, []string, error) {
	enc, err := t.ready()
	if err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	ids := enc.Encode(text, nil, nil)
	tokens := make([]string, len(ids))
	for i, id := range ids {
		tokens[i] = enc.Decode([]int{id})
	}
	return ids, tokens, nil
}

// Decode reconstructs text from token IDs.
func (t *Tokenizer) Decode(ctx context.Context, ids []int) (string, error) {
	enc, err := t.ready()
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return enc.Decode(ids), nil
}

// VocabSize returns the vocabulary size of the loaded encoding.
func (t *Tokenizer) VocabSize() (int, error) {
	if _, err := t.ready(); err != nil {
		return 0, err
	}
	size, ok := vocabSizes[t.encoding]
	if !ok {
		return 0, domainerrors.NewError(domainerrors.CodeNotFound,
			fmt.Sprintf("unknown vocabulary size for encoding %s", t.encoding), nil)
	}
	return size, nil
}

func (t *Tokenizer) ready() (*tiktoken.Tiktoken, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.enc == nil {
		return nil, domainerrors.NewError(domainerrors.CodeLifecycle,
			fmt.Sprintf("tokenizer %s is not initialized", t.info.Name),
			domainerrors.ErrNotInitialized)
	}
	return t.enc, nil
}
