package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
	if cfg.Logging.Level != DefaultLogLevel {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, DefaultLogLevel)
	}
	if cfg.Tokenizers.InitTimeout != DefaultInitTimeout {
		t.Errorf("Tokenizers.InitTimeout = %v, want %v", cfg.Tokenizers.InitTimeout, DefaultInitTimeout)
	}
	if !cfg.Cache.Enabled {
		t.Error("Cache.Enabled = false, want true by default")
	}
	if cfg.Observability.Tracing.Enabled {
		t.Error("Tracing.Enabled = true, want false by default")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid default",
			mutate: func(c *Config) {},
		},
		{
			name: "unknown tokenizer",
			mutate: func(c *Config) {
				c.Tokenizers.Enabled = []string{"tiktoken", "mystery"}
			},
			wantErr: "unknown tokenizer",
		},
		{
			name: "negative init timeout",
			mutate: func(c *Config) {
				c.Tokenizers.InitTimeout = -time.Second
			},
			wantErr: "init_timeout",
		},
		{
			name: "watch without file",
			mutate: func(c *Config) {
				c.Pricing.Watch = true
			},
			wantErr: "file is required",
		},
		{
			name: "rate entry without model",
			mutate: func(c *Config) {
				c.Pricing.Models = []ModelRateConfig{{InputRate: 0.1, OutputRate: 0.1}}
			},
			wantErr: "model name is required",
		},
		{
			name: "negative rate",
			mutate: func(c *Config) {
				c.Pricing.Models = []ModelRateConfig{{Model: "m", InputRate: -0.1}}
			},
			wantErr: "must be non-negative",
		},
		{
			name: "bad log level",
			mutate: func(c *Config) {
				c.Logging.Level = "verbose"
			},
			wantErr: "invalid log level",
		},
		{
			name: "bad log format",
			mutate: func(c *Config) {
				c.Logging.Format = "xml"
			},
			wantErr: "invalid log format",
		},
		{
			name: "cache cleanup period zero",
			mutate: func(c *Config) {
				c.Cache.CleanupPeriod = 0
			},
			wantErr: "cleanup_period",
		},
		{
			name: "otlp without endpoint",
			mutate: func(c *Config) {
				c.Observability.Tracing.Enabled = true
				c.Observability.Tracing.ExporterType = "otlp"
			},
			wantErr: "otlp_endpoint is required",
		},
		{
			name: "bad sample rate",
			mutate: func(c *Config) {
				c.Observability.Tracing.Enabled = true
				c.Observability.Tracing.ExporterType = "stdout"
				c.Observability.Tracing.SampleRate = 1.5
			},
			wantErr: "sample_rate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestEnabledTokenizers(t *testing.T) {
	cfg := NewDefaultConfig()

	got := cfg.Tokenizers.EnabledTokenizers()
	if len(got) != len(BuiltinTokenizers) {
		t.Errorf("EnabledTokenizers() = %v, want all built-ins", got)
	}

	cfg.Tokenizers.Enabled = []string{"words"}
	got = cfg.Tokenizers.EnabledTokenizers()
	if len(got) != 1 || got[0] != "words" {
		t.Errorf("EnabledTokenizers() = %v, want [words]", got)
	}

	// The returned slice is a copy.
	got[0] = "mutated"
	if cfg.Tokenizers.Enabled[0] != "words" {
		t.Error("EnabledTokenizers() exposed internal state")
	}
}

func TestLoaderLoadMissingReturnsDefaults(t *testing.T) {
	loader, err := NewLoader(t.TempDir())
	if err != nil {
		t.Fatalf("NewLoader() error = %v", err)
	}

	cfg, err := loader.Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Logging.Level != DefaultLogLevel {
		t.Errorf("missing file should yield defaults, got level %q", cfg.Logging.Level)
	}
}

func TestLoaderLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
tokenizers:
  enabled: [words, tiktoken]
  init_timeout: 5s
pricing:
  models:
    - model: custom
      input_rate: 0.003
      output_rate: 0.006
logging:
  level: debug
  format: json
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	loader, err := NewLoader(dir)
	if err != nil {
		t.Fatalf("NewLoader() error = %v", err)
	}
	cfg, err := loader.LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}

	if len(cfg.Tokenizers.Enabled) != 2 {
		t.Errorf("Tokenizers.Enabled = %v, want 2 entries", cfg.Tokenizers.Enabled)
	}
	if cfg.Tokenizers.InitTimeout != 5*time.Second {
		t.Errorf("InitTimeout = %v, want 5s", cfg.Tokenizers.InitTimeout)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("logging = %+v, want debug/json", cfg.Logging)
	}
	// Absent sections keep defaults.
	if !cfg.Cache.Enabled {
		t.Error("absent cache section should keep default Enabled=true")
	}
	if len(cfg.Pricing.Models) != 1 || cfg.Pricing.Models[0].Model != "custom" {
		t.Errorf("Pricing.Models = %v, want the custom entry", cfg.Pricing.Models)
	}
}

func TestLoaderLoadFromFileMissing(t *testing.T) {
	loader, err := NewLoader(t.TempDir())
	if err != nil {
		t.Fatalf("NewLoader() error = %v", err)
	}
	if _, err := loader.LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("LoadFromFile() on missing file should return an error")
	}
}

func TestLoaderSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	loader, err := NewLoader(dir)
	if err != nil {
		t.Fatalf("NewLoader() error = %v", err)
	}

	cfg := NewDefaultConfig()
	cfg.Logging.Level = "warn"
	cfg.Tokenizers.Enabled = []string{"unigram"}

	if err := loader.Save(cfg, ""); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := loader.Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Logging.Level != "warn" {
		t.Errorf("round-tripped level = %q, want warn", loaded.Logging.Level)
	}
	if len(loaded.Tokenizers.Enabled) != 1 || loaded.Tokenizers.Enabled[0] != "unigram" {
		t.Errorf("round-tripped tokenizers = %v, want [unigram]", loaded.Tokenizers.Enabled)
	}
}
