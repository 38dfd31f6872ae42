// Package unigram implements a trained-vocabulary subword tokenizer in the
// sentencepiece style: words carry a "▁" boundary marker and text is
// segmented by greedy longest-match against a fixed vocabulary.
package unigram

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/ducktyper-ai/quacktokenscope/internal/application/ports"
	domainerrors "github.com/ducktyper-ai/quacktokenscope/internal/domain/errors"
)

const (
	// boundaryMarker replaces the space before each word, sentencepiece style.
	boundaryMarker = "▁"

	// unknownToken is the vocabulary entry for characters no other entry covers.
	unknownToken = "<unk>"

	// artifactHeader is the first line of a persisted vocabulary file.
	artifactHeader = "quacktokenscope-unigram-v1"

	// artifactFile is the vocabulary file name inside the models directory.
	artifactFile = "unigram.vocab"

	// maxVocab bounds the trained vocabulary size.
	maxVocab = 4096
)

// Tokenizer is a subword tokenizer with a fixed, persistable vocabulary.
// Initialization tries loading a persisted vocabulary artifact first and
// falls back to training one from the embedded corpus, persisting the
// result for the next run.
type Tokenizer struct {
	store     ports.FileStorePort
	modelsDir string

	mu      sync.RWMutex
	winning string
	vocab   []string       // index is the token ID
	ids     map[string]int // token to ID
	maxLen  int            // longest vocabulary entry in runes
}

// New creates a unigram tokenizer that persists its vocabulary through store
// under modelsDir.
func New(store ports.FileStorePort, modelsDir string) *Tokenizer {
	return &Tokenizer{
		store:     store,
		modelsDir: modelsDir,
	}
}

// Info returns static metadata about the variant.
func (t *Tokenizer) Info() ports.TokenizerInfo {
	return ports.TokenizerInfo{
		Name:        "unigram",
		Description: "trained subword vocabulary with greedy longest match",
		Emoji:       "🧩",
		Guild:       "Subword Artisans",
	}
}

// Initialize makes the vocabulary available, trying each strategy in order:
// load a persisted artifact, then train from the embedded corpus. Training
// persists the artifact on a best-effort basis; a write failure does not
// fail initialization.
func (t *Tokenizer) Initialize(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.vocab != nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	path := t.store.JoinPath(t.modelsDir, artifactFile)

	vocab, loadErr := t.loadArtifact(path)
	if loadErr == nil {
		t.install(vocab, "load_artifact")
		return nil
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	vocab = train(trainingCorpus, maxVocab)
	if len(vocab) == 0 {
		return domainerrors.NewError(domainerrors.CodeInitialization,
			"unigram training produced an empty vocabulary",
			fmt.Errorf("%w: artifact load also failed: %v", domainerrors.ErrInitialization, loadErr))
	}
	t.install(vocab, "train_embedded_corpus")
	t.persist(path)
	return nil
}

// Initialized reports whether a vocabulary is available.
func (t *Tokenizer) Initialized() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.vocab != nil
}

// WinningStrategy returns the name of the strategy that produced the
// vocabulary.
func (t *Tokenizer) WinningStrategy() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.winning
}

// Tokenize segments text by greedy longest-match against the vocabulary.
// Characters no entry covers map to the <unk> token.
func (t *Tokenizer) Tokenize(ctx context.Context, text string) ([]int, []string, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.vocab == nil {
		return nil, nil, notInitialized()
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	marked := markBoundaries(text)
	var ids []int
	var tokens []string

	runes := []rune(marked)
	for pos := 0; pos < len(runes); {
		matchLen := 0
		matchID := 0
		limit := len(runes) - pos
		if limit > t.maxLen {
			limit = t.maxLen
		}
		for l := limit; l >= 1; l-- {
			if id, ok := t.ids[string(runes[pos:pos+l])]; ok {
				matchLen, matchID = l, id
				break
			}
		}
		if matchLen == 0 {
			ids = append(ids, t.ids[unknownToken])
			tokens = append(tokens, unknownToken)
			pos++
			continue
		}
		ids = append(ids, matchID)
		tokens = append(tokens, t.vocab[matchID])
		pos += matchLen
	}

	return ids, tokens, nil
}

// Decode reconstructs text from token IDs, turning boundary markers back
// into spaces. Unknown-token IDs decode to the literal <unk> placeholder.
func (t *Tokenizer) Decode(ctx context.Context, ids []int) (string, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.vocab == nil {
		return "", notInitialized()
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var b strings.Builder
	for _, id := range ids {
		if id < 0 || id >= len(t.vocab) {
			return "", domainerrors.NewError(domainerrors.CodeValidation,
				fmt.Sprintf("token ID %d is not in the vocabulary", id), nil)
		}
		b.WriteString(t.vocab[id])
	}
	text := strings.ReplaceAll(b.String(), boundaryMarker, " ")
	// A lone marker stays a space; otherwise the leading marker is dropped.
	if len(text) > 1 {
		text = strings.TrimPrefix(text, " ")
	}
	return text, nil
}

// VocabSize returns the fixed vocabulary size.
func (t *Tokenizer) VocabSize() (int, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.vocab == nil {
		return 0, notInitialized()
	}
	return len(t.vocab), nil
}

// install sets the vocabulary and derived lookup structures. Caller holds
// the write lock.
func (t *Tokenizer) install(vocab []string, strategy string) {
	t.vocab = vocab
	t.ids = make(map[string]int, len(vocab))
	t.maxLen = 0
	for i, tok := range vocab {
		t.ids[tok] = i
		if n := utf8.RuneCountInString(tok); n > t.maxLen {
			t.maxLen = n
		}
	}
	t.winning = strategy
}

func (t *Tokenizer) loadArtifact(path string) ([]string, error) {
	content, err := t.store.ReadText(path)
	if err != nil {
		return nil, err
	}

	lines := strings.Split(strings.TrimRight(content, "\n"), "\n")
	if len(lines) < 2 || lines[0] != artifactHeader {
		return nil, domainerrors.NewError(domainerrors.CodeValidation,
			fmt.Sprintf("vocabulary artifact %s has an unrecognized format", path), nil)
	}
	vocab := lines[1:]
	if vocab[0] != unknownToken {
		return nil, domainerrors.NewError(domainerrors.CodeValidation,
			fmt.Sprintf("vocabulary artifact %s does not begin with %s", path, unknownToken), nil)
	}
	return vocab, nil
}

// persist writes the vocabulary artifact. Errors are swallowed; the trained
// vocabulary works without persistence, training just repeats next run.
func (t *Tokenizer) persist(path string) {
	if err := t.store.CreateDirectory(t.modelsDir); err != nil {
		return
	}
	var b strings.Builder
	b.WriteString(artifactHeader)
	for _, tok := range t.vocab {
		b.WriteByte('\n')
		b.WriteString(tok)
	}
	_ = t.store.WriteText(path, b.String())
}

func notInitialized() error {
	return domainerrors.NewError(domainerrors.CodeLifecycle,
		"tokenizer unigram is not initialized", domainerrors.ErrNotInitialized)
}

// markBoundaries prefixes each whitespace-delimited word with the boundary
// marker, collapsing whitespace runs. Whitespace-only input keeps a lone
// marker so it still produces a token.
func markBoundaries(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		if text == "" {
			return ""
		}
		return boundaryMarker
	}
	return boundaryMarker + strings.Join(fields, boundaryMarker)
}

// train builds a vocabulary from the corpus: the unknown token, every
// distinct character, then whole marked words and their subword prefixes by
// descending frequency until the size bound is hit. Ties break
// lexicographically so training is deterministic.
func train(corpus string, limit int) []string {
	freq := make(map[string]int)
	chars := make(map[string]struct{})

	for _, word := range strings.Fields(corpus) {
		marked := boundaryMarker + word
		runes := []rune(marked)
		for _, r := range runes {
			chars[string(r)] = struct{}{}
		}
		freq[marked]++
		// Prefixes give the greedy matcher partial-word coverage.
		for l := 2; l < len(runes); l++ {
			freq[string(runes[:l])]++
		}
	}

	vocab := []string{unknownToken}
	charList := make([]string, 0, len(chars))
	for c := range chars {
		charList = append(charList, c)
	}
	sort.Strings(charList)
	vocab = append(vocab, charList...)

	seen := make(map[string]struct{}, len(vocab))
	for _, tok := range vocab {
		seen[tok] = struct{}{}
	}

	type entry struct {
		token string
		count int
	}
	entries := make([]entry, 0, len(freq))
	for tok, n := range freq {
		if _, ok := seen[tok]; ok {
			continue
		}
		entries = append(entries, entry{tok, n})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].token < entries[j].token
	})

	for _, e := range entries {
		if len(vocab) >= limit {
			break
		}
		vocab = append(vocab, e.token)
	}
	return vocab
}
