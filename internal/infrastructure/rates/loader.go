// Package rates loads pricing tables from YAML files and keeps them fresh.
package rates

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ducktyper-ai/quacktokenscope/internal/domain/pricing"
	"github.com/ducktyper-ai/quacktokenscope/internal/infrastructure/config"
)

// rateFile is the on-disk shape of a pricing rate file.
type rateFile struct {
	Models []config.ModelRateConfig `yaml:"models"`
}

// LoadFile reads per-1K-token rates from a YAML file, preserving the file's
// model order.
func LoadFile(path string) ([]pricing.Rate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rate file: %w", err)
	}

	var rf rateFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("failed to parse rate file %s: %w", path, err)
	}

	result := make([]pricing.Rate, 0, len(rf.Models))
	for _, m := range rf.Models {
		result = append(result, pricing.Rate{
			Model:      m.Model,
			InputRate:  m.InputRate,
			OutputRate: m.OutputRate,
		})
	}
	return result, nil
}

// BuildCalculator assembles a calculator from the pricing configuration:
// the built-in table first, then the rate file, then inline overrides.
// Later sources override earlier ones model by model.
func BuildCalculator(cfg config.PricingConfig) (*pricing.Calculator, error) {
	calc := pricing.NewDefaultCalculator()

	if cfg.File != "" {
		fileRates, err := LoadFile(cfg.File)
		if err != nil {
			return nil, err
		}
		for _, r := range fileRates {
			if err := calc.Register(r); err != nil {
				return nil, fmt.Errorf("rate file %s: %w", cfg.File, err)
			}
		}
	}

	for _, m := range cfg.Models {
		rate := pricing.Rate{Model: m.Model, InputRate: m.InputRate, OutputRate: m.OutputRate}
		if err := calc.Register(rate); err != nil {
			return nil, fmt.Errorf("inline rate for %s: %w", m.Model, err)
		}
	}

	return calc, nil
}
