// Package e2e provides end-to-end integration tests for quacktokenscope.
package e2e

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/ducktyper-ai/quacktokenscope/internal/application"
	domainerrors "github.com/ducktyper-ai/quacktokenscope/internal/domain/errors"
	"github.com/ducktyper-ai/quacktokenscope/internal/domain/scenario"
	"github.com/ducktyper-ai/quacktokenscope/internal/infrastructure/config"
	"github.com/ducktyper-ai/quacktokenscope/internal/presentation/cli/commands"
)

// executeCommand executes a cobra command with the given args and captures output.
func executeCommand(root *cobra.Command, args ...string) (string, error) {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

// offlineContainer builds a container restricted to variants that need no
// network access.
func offlineContainer(t *testing.T, persistent bool) *application.Container {
	t.Helper()

	cfg := config.NewDefaultConfig()
	cfg.Tokenizers.Enabled = []string{"words", "unigram"}
	cfg.Tokenizers.ModelsDir = t.TempDir()
	if persistent {
		cfg.Cache.Persistent = true
		cfg.Cache.DatabasePath = filepath.Join(t.TempDir(), "cache.db")
	}

	c, err := application.NewContainer(cfg, false)
	if err != nil {
		t.Fatalf("NewContainer() error = %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

// TestE2E_CLICommands tests that offline-safe CLI commands execute without error.
func TestE2E_CLICommands(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{"version", []string{"version"}, false},
		{"version short", []string{"version", "--short"}, false},
		{"version json", []string{"version", "-o", "json"}, false},
		{"help", []string{"--help"}, false},
		{"analyze help", []string{"analyze", "--help"}, false},
		{"cost help", []string{"cost", "--help"}, false},
		{"unknown command", []string{"quack"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := executeCommand(commands.NewRootCmd(), tt.args...)
			if (err != nil) != tt.wantErr {
				t.Errorf("args %v: error = %v, wantErr %v", tt.args, err, tt.wantErr)
			}
		})
	}
}

// TestE2E_AnalysisPipeline runs the full flow: initialize the fleet, analyze
// a text, and verify the cache serves the repeat call.
func TestE2E_AnalysisPipeline(t *testing.T) {
	c := offlineContainer(t, false)
	ctx := context.Background()

	if err := c.InitializeTokenizers(ctx); err != nil {
		t.Fatalf("InitializeTokenizers() error = %v", err)
	}

	text := "the quick brown fox the quick fox"
	result, err := c.Analyzer().Analyze(ctx, text)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	words, ok := result.Reports["words"]
	if !ok {
		t.Fatal("missing words report")
	}
	if words.Summary.TotalTokens != 7 || words.Summary.DistinctTokens != 4 {
		t.Errorf("words summary = %d/%d, want 7/4",
			words.Summary.TotalTokens, words.Summary.DistinctTokens)
	}
	if words.Frequency.Counts["the"] != 2 {
		t.Errorf(`count("the") = %d, want 2`, words.Frequency.Counts["the"])
	}
	if len(result.Ranking) != 2 {
		t.Fatalf("ranking entries = %d, want 2", len(result.Ranking))
	}

	// Repeat analysis should be served from the cache.
	if _, err := c.Analyzer().Analyze(ctx, text); err != nil {
		t.Fatalf("second Analyze() error = %v", err)
	}
	stats, err := c.AnalysisCache().Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.HitCount == 0 {
		t.Error("second analysis should have hit the cache")
	}
}

// TestE2E_PersistentCache verifies the SQLite-backed cache layer survives a
// fresh memory layer.
func TestE2E_PersistentCache(t *testing.T) {
	c := offlineContainer(t, true)
	ctx := context.Background()

	if err := c.InitializeTokenizers(ctx); err != nil {
		t.Fatalf("InitializeTokenizers() error = %v", err)
	}
	if _, err := c.Analyzer().Analyze(ctx, "persistent analysis"); err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	stats, err := c.AnalysisCache().Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.TotalEntries == 0 {
		t.Error("persistent cache should hold the analyzed reports")
	}
}

// TestE2E_CostEstimation covers pricing: direct computation, model
// comparison, and the what-if sweep over a real analysis.
func TestE2E_CostEstimation(t *testing.T) {
	c := offlineContainer(t, false)
	ctx := context.Background()

	if err := c.InitializeTokenizers(ctx); err != nil {
		t.Fatalf("InitializeTokenizers() error = %v", err)
	}

	result, err := c.Analyzer().Analyze(ctx, "the quick brown fox jumps over the lazy dog")
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	calc := c.Calculator()
	cost, err := calc.Compute("gpt-4-turbo", 1000, 500)
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	if cost.TotalCost != 0.025 {
		t.Errorf("TotalCost = %v, want 0.025", cost.TotalCost)
	}

	if _, err := calc.Compute("unknown-model", 10, 10); !errors.Is(err, domainerrors.ErrUnknownModel) {
		t.Errorf("unknown model error = %v, want ErrUnknownModel", err)
	}

	comparison := calc.Compare(1000, 500)
	if len(comparison) != calc.Len() {
		t.Errorf("Compare() entries = %d, want %d", len(comparison), calc.Len())
	}
	for i := 1; i < len(comparison); i++ {
		if comparison[i].TotalCost < comparison[i-1].TotalCost {
			t.Error("Compare() should order by ascending total cost")
			break
		}
	}

	// What-if sweep using the words variant as base and unigram as the
	// alternative.
	base := scenario.Base{
		Tokenizer:    "words",
		Model:        "gpt-4-turbo",
		InputTokens:  result.Reports["words"].Summary.TotalTokens,
		OutputTokens: 100,
	}
	sweep := scenario.DefaultSweep()
	sweep.AltTokenizers = []scenario.Alternative{
		{Tokenizer: "unigram", InputTokens: result.Reports["unigram"].Summary.TotalTokens},
	}
	scenarios, err := scenario.Explore(base, sweep, calc)
	if err != nil {
		t.Fatalf("Explore() error = %v", err)
	}
	if len(scenarios) != len(sweep.OutputMultipliers)+1 {
		t.Errorf("scenarios = %d, want %d", len(scenarios), len(sweep.OutputMultipliers)+1)
	}
}
