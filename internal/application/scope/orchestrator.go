// Package scope manages the tokenizer fleet lifecycle.
package scope

import (
	"context"
	"sync"
	"time"

	"github.com/ducktyper-ai/quacktokenscope/internal/adapters/tokenizer"
	domainerrors "github.com/ducktyper-ai/quacktokenscope/internal/domain/errors"
	"github.com/ducktyper-ai/quacktokenscope/internal/infrastructure/logging"
)

// State is the orchestrator lifecycle state.
type State string

const (
	StateUninitialized State = "uninitialized"
	StateInitializing  State = "initializing"
	StateReady         State = "ready"
	StateFailed        State = "failed"
)

// Orchestrator drives tokenizer fleet initialization and gates analysis on
// readiness. State moves Uninitialized to Initializing to a terminal Ready
// or Failed.
type Orchestrator struct {
	registry    *tokenizer.Registry
	initTimeout time.Duration
	logger      *logging.Logger

	mu      sync.Mutex
	state   State
	results []tokenizer.InitResult
	initErr error
}

// NewOrchestrator creates an orchestrator over the registry. initTimeout is
// the per-variant initialization budget; zero means no limit.
func NewOrchestrator(registry *tokenizer.Registry, initTimeout time.Duration, logger *logging.Logger) *Orchestrator {
	if logger == nil {
		logger = logging.Default()
	}
	return &Orchestrator{
		registry:    registry,
		initTimeout: initTimeout,
		logger:      logger,
		state:       StateUninitialized,
	}
}

// Initialize brings the fleet up. Calling it again after the fleet settled
// is a no-op: a Ready fleet returns nil and a Failed fleet returns its
// recorded error without retrying. Concurrent callers serialize, and late
// arrivals observe the first caller's outcome.
func (o *Orchestrator) Initialize(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch o.state {
	case StateReady:
		return nil
	case StateFailed:
		return o.initErr
	}

	o.state = StateInitializing
	o.logger.InfoContext(ctx, "initializing tokenizer fleet",
		"variants", o.registry.Count(),
		"timeout", o.initTimeout.String(),
	)

	results, err := o.registry.InitializeAll(ctx, o.initTimeout)
	o.results = results

	for _, res := range results {
		if res.Err != nil {
			logging.LogTokenizerInitFailed(ctx, o.logger, res.Name, res.Err, res.Elapsed)
			continue
		}
		logging.LogTokenizerInitComplete(ctx, o.logger, res.Name, res.Strategy, res.Elapsed)
	}

	if err != nil {
		o.state = StateFailed
		o.initErr = err
		return err
	}

	o.state = StateReady
	o.initErr = nil
	o.logger.InfoContext(ctx, "tokenizer fleet ready",
		"ready", len(o.registry.ListReady()),
		"registered", o.registry.Count(),
	)
	return nil
}

// State returns the current lifecycle state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Ready reports whether the fleet reached the ready state.
func (o *Orchestrator) Ready() bool {
	return o.State() == StateReady
}

// RequireReady returns nil when the fleet is ready, and a lifecycle error
// naming the current state otherwise.
func (o *Orchestrator) RequireReady() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch o.state {
	case StateReady:
		return nil
	case StateFailed:
		return domainerrors.NewError(domainerrors.CodeLifecycle,
			"tokenizer fleet failed to initialize", o.initErr)
	default:
		return domainerrors.NewError(domainerrors.CodeLifecycle,
			"tokenizer fleet is not initialized", domainerrors.ErrNotInitialized)
	}
}

// InitResults returns the per-variant outcomes of the last initialization
// attempt, in registration order.
func (o *Orchestrator) InitResults() []tokenizer.InitResult {
	o.mu.Lock()
	defer o.mu.Unlock()

	results := make([]tokenizer.InitResult, len(o.results))
	copy(results, o.results)
	return results
}
