package rates

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ducktyper-ai/quacktokenscope/internal/domain/pricing"
	"github.com/ducktyper-ai/quacktokenscope/internal/infrastructure/config"
	"github.com/ducktyper-ai/quacktokenscope/internal/infrastructure/logging"
)

// WatcherConfig holds configuration for the rate file watcher.
type WatcherConfig struct {
	DebounceDuration time.Duration
	BufferSize       int
}

// DefaultWatcherConfig returns sensible default configuration.
func DefaultWatcherConfig() WatcherConfig {
	return WatcherConfig{
		DebounceDuration: 100 * time.Millisecond,
		BufferSize:       16,
	}
}

// SwapFunc receives the freshly built calculator after a reload.
type SwapFunc func(*pricing.Calculator)

// Watcher monitors a pricing rate file and rebuilds the calculator when the
// file changes. Each reload produces a brand-new calculator handed to the
// swap callback; calculators already handed out are never mutated.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	cfg       WatcherConfig
	pricing   config.PricingConfig
	swap      SwapFunc
	logger    *logging.Logger
	errors    chan error

	// Debouncing state
	pendingAt time.Time
	pendingMu sync.Mutex

	// Lifecycle
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	closed bool
	mu     sync.Mutex
}

// NewWatcher creates a watcher over the rate file named in pricingCfg.
func NewWatcher(cfg WatcherConfig, pricingCfg config.PricingConfig, swap SwapFunc, logger *logging.Logger) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 16
	}
	if cfg.DebounceDuration <= 0 {
		cfg.DebounceDuration = 100 * time.Millisecond
	}
	if logger == nil {
		logger = logging.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Watcher{
		fsWatcher: fsWatcher,
		cfg:       cfg,
		pricing:   pricingCfg,
		swap:      swap,
		logger:    logger,
		errors:    make(chan error, cfg.BufferSize),
		ctx:       ctx,
		cancel:    cancel,
	}, nil
}

// Watch starts watching the rate file's directory. Watching the directory
// instead of the file itself survives editors that replace the file by
// rename.
func (w *Watcher) Watch() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.mu.Unlock()

	dir := filepath.Dir(w.pricing.File)
	if _, err := os.Stat(dir); err != nil {
		return err
	}
	if err := w.fsWatcher.Add(dir); err != nil {
		return err
	}

	w.wg.Add(1)
	go w.processEvents()

	w.wg.Add(1)
	go w.debounceProcessor()

	return nil
}

// Errors returns the channel for receiving watcher and reload errors.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Close stops the watcher and releases resources.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	w.cancel()
	err := w.fsWatcher.Close()
	w.wg.Wait()

	close(w.errors)
	return err
}

// processEvents reads from fsnotify and marks the rate file dirty.
func (w *Watcher) processEvents() {
	defer w.wg.Done()

	target := filepath.Clean(w.pricing.File)
	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			w.pendingMu.Lock()
			w.pendingAt = time.Now()
			w.pendingMu.Unlock()

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			default:
				// Drop error if channel is full
			}
		}
	}
}

// debounceProcessor reloads once the file has been stable long enough.
func (w *Watcher) debounceProcessor() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.cfg.DebounceDuration / 2)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return

		case <-ticker.C:
			w.reloadIfStable()
		}
	}
}

func (w *Watcher) reloadIfStable() {
	w.pendingMu.Lock()
	if w.pendingAt.IsZero() || time.Since(w.pendingAt) < w.cfg.DebounceDuration {
		w.pendingMu.Unlock()
		return
	}
	w.pendingAt = time.Time{}
	w.pendingMu.Unlock()

	calc, err := BuildCalculator(w.pricing)
	if err != nil {
		w.logger.Warn("pricing reload failed, keeping previous table",
			"path", w.pricing.File,
			"error", err.Error(),
		)
		select {
		case w.errors <- err:
		default:
		}
		return
	}

	w.swap(calc)
	logging.LogPricingReloaded(w.ctx, w.logger, w.pricing.File, calc.Len())
}
