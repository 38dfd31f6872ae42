package rates

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/ducktyper-ai/quacktokenscope/internal/domain/pricing"
	"github.com/ducktyper-ai/quacktokenscope/internal/infrastructure/config"
)

func TestWatcherReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pricing.yaml")
	initial := `
models:
  - model: watched-model
    input_rate: 0.001
    output_rate: 0.002
`
	if err := os.WriteFile(path, []byte(initial), 0644); err != nil {
		t.Fatal(err)
	}

	var mu sync.Mutex
	var swapped *pricing.Calculator
	swap := func(calc *pricing.Calculator) {
		mu.Lock()
		swapped = calc
		mu.Unlock()
	}

	cfg := WatcherConfig{DebounceDuration: 20 * time.Millisecond, BufferSize: 4}
	w, err := NewWatcher(cfg, config.PricingConfig{File: path}, swap, nil)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Close()

	if err := w.Watch(); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	updated := `
models:
  - model: watched-model
    input_rate: 0.01
    output_rate: 0.02
`
	if err := os.WriteFile(path, []byte(updated), 0644); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(3 * time.Second)
	for {
		mu.Lock()
		calc := swapped
		mu.Unlock()
		if calc != nil {
			rate, ok := calc.Lookup("watched-model")
			if !ok {
				t.Fatal("Lookup() did not find watched-model after reload")
			}
			if rate.InputRate != 0.01 {
				t.Fatalf("reloaded input rate = %v, want 0.01", rate.InputRate)
			}
			return
		}
		select {
		case <-deadline:
			t.Fatal("watcher did not reload within deadline")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pricing.yaml")
	if err := os.WriteFile(path, []byte("models: []\n"), 0644); err != nil {
		t.Fatal(err)
	}

	var mu sync.Mutex
	swaps := 0
	swap := func(*pricing.Calculator) {
		mu.Lock()
		swaps++
		mu.Unlock()
	}

	cfg := WatcherConfig{DebounceDuration: 20 * time.Millisecond}
	w, err := NewWatcher(cfg, config.PricingConfig{File: path}, swap, nil)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Close()

	if err := w.Watch(); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	other := filepath.Join(dir, "notes.yaml")
	if err := os.WriteFile(other, []byte("irrelevant"), 0644); err != nil {
		t.Fatal(err)
	}

	time.Sleep(200 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	if swaps != 0 {
		t.Errorf("swap called %d times for an unrelated file, want 0", swaps)
	}
}

func TestWatcherKeepsTableOnBadReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pricing.yaml")
	if err := os.WriteFile(path, []byte("models: []\n"), 0644); err != nil {
		t.Fatal(err)
	}

	var mu sync.Mutex
	swaps := 0
	swap := func(*pricing.Calculator) {
		mu.Lock()
		swaps++
		mu.Unlock()
	}

	cfg := WatcherConfig{DebounceDuration: 20 * time.Millisecond, BufferSize: 4}
	w, err := NewWatcher(cfg, config.PricingConfig{File: path}, swap, nil)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Close()

	if err := w.Watch(); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	if err := os.WriteFile(path, []byte("models: [broken: {yaml"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case err := <-w.Errors():
		if err == nil {
			t.Error("expected reload error, got nil")
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no reload error reported within deadline")
	}

	mu.Lock()
	defer mu.Unlock()
	if swaps != 0 {
		t.Errorf("swap called %d times on failed reload, want 0", swaps)
	}
}

func TestWatcherCloseIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pricing.yaml")
	if err := os.WriteFile(path, []byte("models: []\n"), 0644); err != nil {
		t.Fatal(err)
	}

	w, err := NewWatcher(DefaultWatcherConfig(), config.PricingConfig{File: path}, func(*pricing.Calculator) {}, nil)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	if err := w.Watch(); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	if err := w.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}
