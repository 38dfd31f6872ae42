package rates

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/ducktyper-ai/quacktokenscope/internal/infrastructure/config"
)

func writeRateFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pricing.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func floatEquals(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestLoadFile(t *testing.T) {
	path := writeRateFile(t, `
models:
  - model: custom-model
    input_rate: 0.002
    output_rate: 0.004
  - model: gpt-4-turbo
    input_rate: 0.02
    output_rate: 0.06
`)

	rates, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if len(rates) != 2 {
		t.Fatalf("LoadFile() returned %d rates, want 2", len(rates))
	}
	if rates[0].Model != "custom-model" || !floatEquals(rates[0].InputRate, 0.002) {
		t.Errorf("first rate = %+v, want custom-model at 0.002", rates[0])
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("LoadFile() on missing file should return an error")
	}
}

func TestLoadFileMalformed(t *testing.T) {
	path := writeRateFile(t, "models: [not: {valid")
	if _, err := LoadFile(path); err == nil {
		t.Error("LoadFile() on malformed YAML should return an error")
	}
}

func TestBuildCalculatorDefaultsOnly(t *testing.T) {
	calc, err := BuildCalculator(config.PricingConfig{})
	if err != nil {
		t.Fatalf("BuildCalculator() error = %v", err)
	}

	cost, err := calc.Compute("gpt-4-turbo", 1000, 500)
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	if !floatEquals(cost.TotalCost, 0.025) {
		t.Errorf("total = %v, want 0.025 from built-in rates", cost.TotalCost)
	}
}

func TestBuildCalculatorFileOverridesDefaults(t *testing.T) {
	path := writeRateFile(t, `
models:
  - model: gpt-4-turbo
    input_rate: 0.02
    output_rate: 0.06
  - model: house-model
    input_rate: 0.001
    output_rate: 0.001
`)

	calc, err := BuildCalculator(config.PricingConfig{File: path})
	if err != nil {
		t.Fatalf("BuildCalculator() error = %v", err)
	}

	// File doubles the built-in gpt-4-turbo rate.
	cost, err := calc.Compute("gpt-4-turbo", 1000, 500)
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	if !floatEquals(cost.TotalCost, 0.05) {
		t.Errorf("total = %v, want 0.05 from file rates", cost.TotalCost)
	}

	// New models from the file are registered too.
	if !calc.Has("house-model") {
		t.Error("house-model from rate file not registered")
	}
}

func TestBuildCalculatorInlineOverridesFile(t *testing.T) {
	path := writeRateFile(t, `
models:
  - model: gpt-4-turbo
    input_rate: 0.02
    output_rate: 0.06
`)

	cfg := config.PricingConfig{
		File: path,
		Models: []config.ModelRateConfig{
			{Model: "gpt-4-turbo", InputRate: 0.05, OutputRate: 0.05},
		},
	}
	calc, err := BuildCalculator(cfg)
	if err != nil {
		t.Fatalf("BuildCalculator() error = %v", err)
	}

	rate, ok := calc.Lookup("gpt-4-turbo")
	if !ok {
		t.Fatal("Lookup() did not find gpt-4-turbo")
	}
	if !floatEquals(rate.InputRate, 0.05) {
		t.Errorf("input rate = %v, want inline override 0.05", rate.InputRate)
	}
}

func TestBuildCalculatorBadFile(t *testing.T) {
	cfg := config.PricingConfig{File: filepath.Join(t.TempDir(), "missing.yaml")}
	if _, err := BuildCalculator(cfg); err == nil {
		t.Error("BuildCalculator() with missing file should return an error")
	}
}
