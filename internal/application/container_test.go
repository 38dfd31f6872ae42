package application

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/ducktyper-ai/quacktokenscope/internal/application/scope"
	"github.com/ducktyper-ai/quacktokenscope/internal/domain/pricing"
	"github.com/ducktyper-ai/quacktokenscope/internal/infrastructure/config"
)

// offlineConfig returns a config that avoids network access and the user's
// home directory.
func offlineConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.NewDefaultConfig()
	cfg.Tokenizers.Enabled = []string{"words", "unigram"}
	cfg.Tokenizers.ModelsDir = t.TempDir()
	return cfg
}

func TestNewContainerDefaults(t *testing.T) {
	c, err := NewContainer(offlineConfig(t), false)
	if err != nil {
		t.Fatalf("NewContainer() error = %v", err)
	}
	defer c.Close()

	if c.Registry() == nil || c.Registry().Count() != 2 {
		t.Errorf("registry should hold the 2 configured variants")
	}
	if c.Orchestrator() == nil || c.Orchestrator().State() != scope.StateUninitialized {
		t.Error("orchestrator should start uninitialized")
	}
	if c.Analyzer() == nil {
		t.Error("analyzer should be constructed")
	}
	if c.Logger() == nil || c.Tracer() == nil {
		t.Error("logger and tracer should be constructed")
	}
	if c.AnalysisCache() == nil {
		t.Error("cache is enabled by default, AnalysisCache() should not be nil")
	}
	if c.RatesWatcher() != nil {
		t.Error("watcher should be nil when pricing.watch is disabled")
	}
}

func TestNewContainerNilConfig(t *testing.T) {
	c, err := NewContainer(nil, false)
	if err != nil {
		t.Fatalf("NewContainer(nil) error = %v", err)
	}
	defer c.Close()

	if c.Config() == nil {
		t.Fatal("nil config should be replaced with defaults")
	}
	if c.Registry().Count() != len(config.BuiltinTokenizers) {
		t.Errorf("all built-in variants should be registered, got %d", c.Registry().Count())
	}
}

func TestContainerDefaultPricingTable(t *testing.T) {
	c, err := NewContainer(offlineConfig(t), false)
	if err != nil {
		t.Fatalf("NewContainer() error = %v", err)
	}
	defer c.Close()

	calc := c.Calculator()
	if calc == nil {
		t.Fatal("Calculator() = nil")
	}
	cost, err := calc.Compute("gpt-4-turbo", 1000, 500)
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	if cost.TotalCost != 0.025 {
		t.Errorf("TotalCost = %v, want 0.025", cost.TotalCost)
	}
}

func TestContainerCacheDisabled(t *testing.T) {
	cfg := offlineConfig(t)
	cfg.Cache.Enabled = false

	c, err := NewContainer(cfg, false)
	if err != nil {
		t.Fatalf("NewContainer() error = %v", err)
	}
	defer c.Close()

	if c.AnalysisCache() != nil {
		t.Error("AnalysisCache() should be nil when caching is disabled")
	}
	if c.MemoryCache() != nil {
		t.Error("MemoryCache() should be nil when caching is disabled")
	}
}

func TestContainerPersistentCache(t *testing.T) {
	cfg := offlineConfig(t)
	cfg.Cache.Persistent = true
	cfg.Cache.DatabasePath = filepath.Join(t.TempDir(), "cache.db")

	c, err := NewContainer(cfg, false)
	if err != nil {
		t.Fatalf("NewContainer() error = %v", err)
	}
	defer c.Close()

	if c.DB() == nil {
		t.Error("DB() should be open when persistent cache is enabled")
	}
	if c.CompositeCache() == nil {
		t.Error("CompositeCache() should be constructed")
	}
	if c.AnalysisCache() != c.CompositeCache() {
		t.Error("AnalysisCache() should be the composite when persistent")
	}
}

func TestContainerInitializeAndAnalyze(t *testing.T) {
	c, err := NewContainer(offlineConfig(t), false)
	if err != nil {
		t.Fatalf("NewContainer() error = %v", err)
	}
	defer c.Close()

	ctx := context.Background()
	if err := c.InitializeTokenizers(ctx); err != nil {
		t.Fatalf("InitializeTokenizers() error = %v", err)
	}
	if c.Orchestrator().State() != scope.StateReady {
		t.Fatalf("orchestrator state = %v, want ready", c.Orchestrator().State())
	}

	result, err := c.Analyzer().Analyze(ctx, "the quick brown fox the quick fox")
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	report, ok := result.Reports["words"]
	if !ok {
		t.Fatal("expected a words report")
	}
	if report.Summary.TotalTokens != 7 || report.Summary.DistinctTokens != 4 {
		t.Errorf("summary = %d/%d, want 7/4",
			report.Summary.TotalTokens, report.Summary.DistinctTokens)
	}
}

func TestContainerCalculatorSwap(t *testing.T) {
	c, err := NewContainer(offlineConfig(t), false)
	if err != nil {
		t.Fatalf("NewContainer() error = %v", err)
	}
	defer c.Close()

	replacement := pricing.NewCalculator()
	_ = replacement.Register(pricing.Rate{Model: "house-model", InputRate: 0.001, OutputRate: 0.002})

	c.swapCalculator(replacement)

	if !c.Calculator().Has("house-model") {
		t.Error("swapped calculator should be visible through Calculator()")
	}
}

func TestContainerClose(t *testing.T) {
	c, err := NewContainer(offlineConfig(t), false)
	if err != nil {
		t.Fatalf("NewContainer() error = %v", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
