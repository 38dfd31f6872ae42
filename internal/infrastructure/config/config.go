// Package config provides configuration structs and utilities for the quacktokenscope application.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config represents the root configuration for the quacktokenscope application.
type Config struct {
	Tokenizers    TokenizersConfig    `yaml:"tokenizers"`
	Pricing       PricingConfig       `yaml:"pricing"`
	Cache         CacheConfig         `yaml:"cache"`
	Logging       LoggingConfig       `yaml:"logging"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// TokenizersConfig holds configuration for the tokenizer fleet.
type TokenizersConfig struct {
	Enabled       []string      `yaml:"enabled"`        // Variant names to register; empty means all built-ins
	ModelsDir     string        `yaml:"models_dir"`     // Directory for trained model artifacts
	InitTimeout   time.Duration `yaml:"init_timeout"`   // Per-variant initialization budget
	TiktokenModel string        `yaml:"tiktoken_model"` // Model name used to resolve the cl100k encoding
}

// PricingConfig holds configuration for the pricing table.
type PricingConfig struct {
	File   string            `yaml:"file"`   // Optional YAML rate file overriding the built-in table
	Watch  bool              `yaml:"watch"`  // Reload the rate file when it changes on disk
	Models []ModelRateConfig `yaml:"models"` // Inline rate overrides, applied after File
}

// ModelRateConfig is one model's per-1K-token rates.
type ModelRateConfig struct {
	Model      string  `yaml:"model"`
	InputRate  float64 `yaml:"input_rate"`
	OutputRate float64 `yaml:"output_rate"`
}

// CacheConfig holds configuration for analysis report caching.
type CacheConfig struct {
	Enabled       bool          `yaml:"enabled"`
	DefaultTTL    time.Duration `yaml:"default_ttl"`
	Persistent    bool          `yaml:"persistent"`     // Layer a SQLite cache behind the in-memory one
	DatabasePath  string        `yaml:"database_path"`  // SQLite file path; empty uses the default location
	CleanupPeriod time.Duration `yaml:"cleanup_period"` // How often to sweep expired entries
}

// LoggingConfig holds configuration for application logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// ObservabilityConfig holds configuration for observability features.
type ObservabilityConfig struct {
	Tracing TracingConfig `yaml:"tracing"`
}

// TracingConfig holds configuration for distributed tracing.
type TracingConfig struct {
	Enabled      bool    `yaml:"enabled"`       // Whether tracing is enabled
	ExporterType string  `yaml:"exporter_type"` // none, stdout, otlp
	OTLPEndpoint string  `yaml:"otlp_endpoint"` // OTLP collector endpoint
	SampleRate   float64 `yaml:"sample_rate"`   // Sampling rate (0.0 to 1.0)
	ServiceName  string  `yaml:"service_name"`  // Service name for traces
}

// Default configuration values.
const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"

	DefaultInitTimeout   = 30 * time.Second
	DefaultTiktokenModel = "gpt-4"

	// Cache defaults
	DefaultCacheEnabled       = true
	DefaultCacheTTL           = 24 * time.Hour
	DefaultCacheCleanupPeriod = 1 * time.Hour

	// Observability defaults
	DefaultTracingEnabled      = false
	DefaultTracingExporterType = "none"
	DefaultTracingSampleRate   = 1.0
	DefaultTracingServiceName  = "quacktokenscope"
)

// BuiltinTokenizers are the variant names registered when tokenizers.enabled
// is empty.
var BuiltinTokenizers = []string{"tiktoken", "o200k", "words", "unigram"}

// Valid log levels.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Valid log formats.
var validLogFormats = map[string]bool{
	"json": true,
	"text": true,
}

// Valid tracing exporter types.
var validTracingExporterTypes = map[string]bool{
	"none":   true,
	"stdout": true,
	"otlp":   true,
}

var knownTokenizers = map[string]bool{
	"tiktoken": true,
	"o200k":    true,
	"words":    true,
	"unigram":  true,
}

// NewDefaultConfig creates a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		Tokenizers: TokenizersConfig{
			Enabled:       nil, // all built-ins
			InitTimeout:   DefaultInitTimeout,
			TiktokenModel: DefaultTiktokenModel,
		},
		Pricing: PricingConfig{
			Watch: false,
		},
		Cache: CacheConfig{
			Enabled:       DefaultCacheEnabled,
			DefaultTTL:    DefaultCacheTTL,
			Persistent:    false,
			CleanupPeriod: DefaultCacheCleanupPeriod,
		},
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Observability: ObservabilityConfig{
			Tracing: TracingConfig{
				Enabled:      DefaultTracingEnabled,
				ExporterType: DefaultTracingExporterType,
				SampleRate:   DefaultTracingSampleRate,
				ServiceName:  DefaultTracingServiceName,
			},
		},
	}
}

// Validate checks if the configuration is valid and returns an error if not.
func (c *Config) Validate() error {
	var errs []error

	if err := c.Tokenizers.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("tokenizers: %w", err))
	}

	if err := c.Pricing.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("pricing: %w", err))
	}

	if err := c.Cache.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("cache: %w", err))
	}

	if err := c.Logging.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("logging: %w", err))
	}

	if err := c.Observability.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("observability: %w", err))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Validate checks if the TokenizersConfig is valid.
func (t *TokenizersConfig) Validate() error {
	var errs []error

	for _, name := range t.Enabled {
		if !knownTokenizers[name] {
			errs = append(errs, fmt.Errorf("unknown tokenizer %q: must be one of tiktoken, o200k, words, unigram", name))
		}
	}

	if t.InitTimeout < 0 {
		errs = append(errs, errors.New("init_timeout must be non-negative"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Validate checks if the PricingConfig is valid.
func (p *PricingConfig) Validate() error {
	var errs []error

	if p.Watch && p.File == "" {
		errs = append(errs, errors.New("file is required when watch is enabled"))
	}

	for _, m := range p.Models {
		if m.Model == "" {
			errs = append(errs, errors.New("model name is required for every rate entry"))
			continue
		}
		if m.InputRate < 0 || m.OutputRate < 0 {
			errs = append(errs, fmt.Errorf("%s: rates must be non-negative", m.Model))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Validate checks if the CacheConfig is valid.
func (c *CacheConfig) Validate() error {
	var errs []error

	if c.Enabled {
		if c.DefaultTTL < 0 {
			errs = append(errs, errors.New("default_ttl must be non-negative"))
		}
		if c.CleanupPeriod <= 0 {
			errs = append(errs, errors.New("cleanup_period must be positive when cache is enabled"))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Validate checks if the LoggingConfig is valid.
func (l *LoggingConfig) Validate() error {
	var errs []error

	if l.Level != "" && !validLogLevels[l.Level] {
		errs = append(errs, fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", l.Level))
	}

	if l.Format != "" && !validLogFormats[l.Format] {
		errs = append(errs, fmt.Errorf("invalid log format %q: must be one of json, text", l.Format))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Validate checks if the ObservabilityConfig is valid.
func (o *ObservabilityConfig) Validate() error {
	if err := o.Tracing.Validate(); err != nil {
		return fmt.Errorf("tracing: %w", err)
	}
	return nil
}

// Validate checks if the TracingConfig is valid.
func (t *TracingConfig) Validate() error {
	var errs []error

	if t.Enabled {
		if t.ExporterType != "" && !validTracingExporterTypes[t.ExporterType] {
			errs = append(errs, fmt.Errorf("invalid exporter_type %q: must be one of none, stdout, otlp", t.ExporterType))
		}
		if t.ExporterType == "otlp" && t.OTLPEndpoint == "" {
			errs = append(errs, errors.New("otlp_endpoint is required when exporter_type is 'otlp'"))
		}
		if t.SampleRate < 0 || t.SampleRate > 1 {
			errs = append(errs, errors.New("sample_rate must be between 0.0 and 1.0"))
		}
		if t.ServiceName == "" {
			errs = append(errs, errors.New("service_name is required when tracing is enabled"))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// EnabledTokenizers returns the configured variant list, defaulting to every
// built-in when none is set.
func (t *TokenizersConfig) EnabledTokenizers() []string {
	if len(t.Enabled) == 0 {
		return append([]string(nil), BuiltinTokenizers...)
	}
	return append([]string(nil), t.Enabled...)
}
