// Package words implements a whitespace word-splitting tokenizer. It exists
// as a dependency-free baseline that is always available, so analysis can
// proceed even when every trained tokenizer fails to load.
package words

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/ducktyper-ai/quacktokenscope/internal/application/ports"
	domainerrors "github.com/ducktyper-ai/quacktokenscope/internal/domain/errors"
)

// Tokenizer splits text on whitespace and interns each distinct word as a
// token ID. IDs are assigned in first-seen order and are stable for the
// lifetime of the instance, so Decode can round-trip any IDs this instance
// produced.
type Tokenizer struct {
	mu          sync.Mutex
	initialized bool
	ids         map[string]int
	words       []string // index is the interned ID
}

// New creates a word tokenizer with an empty vocabulary.
func New() *Tokenizer {
	return &Tokenizer{
		ids: make(map[string]int),
	}
}

// Info returns static metadata about the variant.
func (t *Tokenizer) Info() ports.TokenizerInfo {
	return ports.TokenizerInfo{
		Name:        "words",
		Description: "whitespace word splitting with interned IDs",
		Emoji:       "📏",
		Guild:       "Word Reckoners",
	}
}

// Initialize is trivial for the word splitter; there is nothing to load.
func (t *Tokenizer) Initialize(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.mu.Lock()
	t.initialized = true
	t.mu.Unlock()
	return nil
}

// Initialized reports whether Initialize has been called.
func (t *Tokenizer) Initialized() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.initialized
}

// WinningStrategy returns the single strategy this variant has.
func (t *Tokenizer) WinningStrategy() string {
	if t.Initialized() {
		return "whitespace"
	}
	return ""
}

// Tokenize splits text into whitespace-delimited words, interning each
// distinct word into the vocabulary.
func (t *Tokenizer) Tokenize(ctx context.Context, text string) ([]int, []string, error) {
	if err := t.requireInit(); err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	tokens := strings.Fields(text)
	if len(tokens) == 0 && text != "" {
		// Whitespace-only input interns the run itself as a single token,
		// so non-empty text always decodes back to a non-empty string.
		tokens = []string{text}
	}
	ids := make([]int, len(tokens))

	t.mu.Lock()
	for i, word := range tokens {
		id, ok := t.ids[word]
		if !ok {
			id = len(t.words)
			t.ids[word] = id
			t.words = append(t.words, word)
		}
		ids[i] = id
	}
	t.mu.Unlock()

	return ids, tokens, nil
}

// Decode joins the words for the given IDs with single spaces. Runs of
// whitespace in the original text are not recoverable.
func (t *Tokenizer) Decode(ctx context.Context, ids []int) (string, error) {
	if err := t.requireInit(); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	words := make([]string, len(ids))
	for i, id := range ids {
		if id < 0 || id >= len(t.words) {
			return "", domainerrors.NewError(domainerrors.CodeValidation,
				fmt.Sprintf("token ID %d is not in the vocabulary", id), nil)
		}
		words[i] = t.words[id]
	}
	return strings.Join(words, " "), nil
}

// VocabSize returns the number of distinct words interned so far. The
// vocabulary grows as texts are tokenized, so the size reflects everything
// this instance has seen.
func (t *Tokenizer) VocabSize() (int, error) {
	if err := t.requireInit(); err != nil {
		return 0, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.words), nil
}

func (t *Tokenizer) requireInit() error {
	if !t.Initialized() {
		return domainerrors.NewError(domainerrors.CodeLifecycle,
			"tokenizer words is not initialized", domainerrors.ErrNotInitialized)
	}
	return nil
}
