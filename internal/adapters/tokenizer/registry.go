// Package tokenizer provides the registry for managing tokenizer variants.
package tokenizer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ducktyper-ai/quacktokenscope/internal/application/ports"
	domainerrors "github.com/ducktyper-ai/quacktokenscope/internal/domain/errors"
)

// InitResult records the outcome of one variant's initialization attempt.
type InitResult struct {
	Name     string
	Strategy string // winning strategy, empty on failure
	Err      error
	Elapsed  time.Duration
}

// Registry manages the registration and lifecycle of tokenizer variants.
// Initialization failures are isolated per variant: a variant that fails to
// initialize stays registered but is excluded from the ready set.
type Registry struct {
	mu         sync.RWMutex
	tokenizers map[string]ports.TokenizerPort
	order      []string // maintains registration order
	failures   map[string]error
}

// NewRegistry creates a new empty tokenizer registry.
func NewRegistry() *Registry {
	return &Registry{
		tokenizers: make(map[string]ports.TokenizerPort),
		order:      make([]string, 0),
		failures:   make(map[string]error),
	}
}

// Register adds a tokenizer variant to the registry.
// Re-registering an existing name replaces the variant but keeps its
// position in the registration order.
func (r *Registry) Register(tok ports.TokenizerPort) error {
	if tok == nil {
		return fmt.Errorf("tokenizer cannot be nil")
	}

	info := tok.Info()
	if info.Name == "" {
		return fmt.Errorf("tokenizer name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tokenizers[info.Name]; !exists {
		r.order = append(r.order, info.Name)
	}

	r.tokenizers[info.Name] = tok
	delete(r.failures, info.Name)
	return nil
}

// Get retrieves a variant by name regardless of initialization state.
// Returns nil if the variant is not registered.
func (r *Registry) Get(name string) ports.TokenizerPort {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tokenizers[name]
}

// GetReady retrieves a variant by name, requiring that it initialized
// successfully.
func (r *Registry) GetReady(name string) (ports.TokenizerPort, error) {
	r.mu.RLock()
	tok, exists := r.tokenizers[name]
	failure := r.failures[name]
	r.mu.RUnlock()

	if !exists {
		return nil, domainerrors.NewError(domainerrors.CodeNotFound,
			fmt.Sprintf("tokenizer not registered: %s", name),
			domainerrors.ErrUnknownTokenizer)
	}
	if failure != nil {
		return nil, domainerrors.NewError(domainerrors.CodeInitialization,
			fmt.Sprintf("tokenizer %s failed to initialize", name), failure)
	}
	if !tok.Initialized() {
		return nil, domainerrors.NewError(domainerrors.CodeLifecycle,
			fmt.Sprintf("tokenizer %s is not initialized", name),
			domainerrors.ErrNotInitialized)
	}
	return tok, nil
}

// List returns all registered variant names in registration order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]string, len(r.order))
	copy(result, r.order)
	return result
}

// ListReady returns the names of variants that initialized successfully,
// in registration order.
func (r *Registry) ListReady() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]string, 0, len(r.order))
	for _, name := range r.order {
		if tok := r.tokenizers[name]; tok != nil && tok.Initialized() && r.failures[name] == nil {
			result = append(result, name)
		}
	}
	return result
}

// Ready reports whether at least one variant initialized successfully.
func (r *Registry) Ready() bool {
	return len(r.ListReady()) > 0
}

// Failure returns the initialization error recorded for a variant, or nil.
func (r *Registry) Failure(name string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.failures[name]
}

// Count returns the number of registered variants.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tokenizers)
}

// InitializeAll initializes every registered variant concurrently, applying
// the per-variant timeout when it is positive. Each variant's failure is
// recorded in the registry without affecting the others. The returned error
// is non-nil only when no variant at all became ready.
func (r *Registry) InitializeAll(ctx context.Context, timeout time.Duration) ([]InitResult, error) {
	r.mu.RLock()
	names := make([]string, len(r.order))
	copy(names, r.order)
	toks := make([]ports.TokenizerPort, len(names))
	for i, name := range names {
		toks[i] = r.tokenizers[name]
	}
	r.mu.RUnlock()

	results := make([]InitResult, len(names))
	g, gctx := errgroup.WithContext(ctx)
	for i := range names {
		i := i
		g.Go(func() error {
			initCtx := gctx
			if timeout > 0 {
				var cancel context.CancelFunc
				initCtx, cancel = context.WithTimeout(gctx, timeout)
				defer cancel()
			}

			start := time.Now()
			err := toks[i].Initialize(initCtx)
			results[i] = InitResult{
				Name:     names[i],
				Strategy: toks[i].WinningStrategy(),
				Err:      err,
				Elapsed:  time.Since(start),
			}
			// Failures are isolated; never propagate through the group.
			return nil
		})
	}
	_ = g.Wait()

	r.mu.Lock()
	for _, res := range results {
		if res.Err != nil {
			r.failures[res.Name] = res.Err
		} else {
			delete(r.failures, res.Name)
		}
	}
	r.mu.Unlock()

	if !r.Ready() {
		return results, domainerrors.NewError(domainerrors.CodeInitialization,
			"no tokenizer variant could be initialized",
			domainerrors.ErrInitialization)
	}
	return results, nil
}
