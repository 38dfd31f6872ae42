// Package application provides application-level services and dependency injection.
package application

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/ducktyper-ai/quacktokenscope/internal/adapters/cache"
	"github.com/ducktyper-ai/quacktokenscope/internal/adapters/tokenizer"
	"github.com/ducktyper-ai/quacktokenscope/internal/adapters/tokenizer/tiktoken"
	"github.com/ducktyper-ai/quacktokenscope/internal/adapters/tokenizer/unigram"
	"github.com/ducktyper-ai/quacktokenscope/internal/adapters/tokenizer/words"
	"github.com/ducktyper-ai/quacktokenscope/internal/application/analyzer"
	"github.com/ducktyper-ai/quacktokenscope/internal/application/ports"
	"github.com/ducktyper-ai/quacktokenscope/internal/application/scope"
	"github.com/ducktyper-ai/quacktokenscope/internal/domain/pricing"
	"github.com/ducktyper-ai/quacktokenscope/internal/infrastructure/config"
	"github.com/ducktyper-ai/quacktokenscope/internal/infrastructure/filesystem"
	"github.com/ducktyper-ai/quacktokenscope/internal/infrastructure/logging"
	"github.com/ducktyper-ai/quacktokenscope/internal/infrastructure/rates"
	"github.com/ducktyper-ai/quacktokenscope/internal/infrastructure/storage"
	"github.com/ducktyper-ai/quacktokenscope/internal/infrastructure/tracing"
)

// Container holds all application dependencies and provides a central
// point for dependency injection. It manages the lifecycle of services
// and ensures proper initialization order.
type Container struct {
	// Configuration
	config  *config.Config
	verbose bool // Override log level to debug when true

	// Database connection (persistent cache only)
	dbConn *storage.Connection
	db     *sql.DB

	// Tokenizer fleet
	fileStore    *filesystem.FileStore
	registry     *tokenizer.Registry
	orchestrator *scope.Orchestrator

	// Caching
	memoryCache    *cache.MemoryCache
	sqliteCache    *cache.SQLiteCache
	compositeCache *cache.CompositeCache
	analysisCache  ports.AnalysisCachePort

	// Application services
	analyzer *analyzer.Analyzer

	// Pricing table. The watcher swaps in a fresh calculator on reload,
	// so reads go through calcMu.
	calcMu       sync.RWMutex
	calculator   *pricing.Calculator
	ratesWatcher *rates.Watcher

	// Observability
	logger *logging.Logger
	tracer *tracing.Tracer
}

// NewContainer creates a new dependency injection container with all services
// initialized based on the provided configuration.
func NewContainer(cfg *config.Config, verbose bool) (*Container, error) {
	if cfg == nil {
		cfg = config.NewDefaultConfig()
	}

	c := &Container{
		config:  cfg,
		verbose: verbose,
	}

	if err := c.initObservability(); err != nil {
		return nil, fmt.Errorf("failed to initialize observability: %w", err)
	}

	if err := c.initPricing(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to initialize pricing: %w", err)
	}

	if err := c.initCache(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to initialize cache: %w", err)
	}

	if err := c.initTokenizers(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to initialize tokenizers: %w", err)
	}

	c.initServices()

	return c, nil
}

// initObservability initializes the logging and tracing subsystem.
func (c *Container) initObservability() error {
	ctx := context.Background()

	logLevel := logging.LevelInfo
	if c.verbose {
		logLevel = logging.LevelDebug
	} else {
		switch c.config.Logging.Level {
		case "debug":
			logLevel = logging.LevelDebug
		case "info":
			logLevel = logging.LevelInfo
		case "warn":
			logLevel = logging.LevelWarn
		case "error":
			logLevel = logging.LevelError
		}
	}

	logFormat := logging.FormatText
	if c.config.Logging.Format == "json" {
		logFormat = logging.FormatJSON
	}

	logCfg := logging.DefaultConfig()
	logCfg.Level = logLevel
	logCfg.Format = logFormat
	c.logger = logging.New(logCfg)

	if c.config.Observability.Tracing.Enabled {
		tracingCfg := tracing.Config{
			Enabled:      true,
			ExporterType: tracing.ExporterType(c.config.Observability.Tracing.ExporterType),
			OTLPEndpoint: c.config.Observability.Tracing.OTLPEndpoint,
			ServiceName:  c.config.Observability.Tracing.ServiceName,
			Environment:  "production",
			SampleRate:   c.config.Observability.Tracing.SampleRate,
		}
		tracer, err := tracing.New(ctx, tracingCfg)
		if err != nil {
			return fmt.Errorf("failed to create tracer: %w", err)
		}
		c.tracer = tracer
	} else {
		c.tracer = tracing.Default()
	}

	return nil
}

// initPricing builds the pricing calculator and, when configured, the rate
// file watcher. The watcher is created here but only starts watching when
// StartPricingWatch is called.
func (c *Container) initPricing() error {
	calc, err := rates.BuildCalculator(c.config.Pricing)
	if err != nil {
		return fmt.Errorf("failed to build pricing table: %w", err)
	}
	c.calculator = calc

	if c.config.Pricing.Watch {
		watcher, err := rates.NewWatcher(rates.DefaultWatcherConfig(), c.config.Pricing, c.swapCalculator, c.logger)
		if err != nil {
			return fmt.Errorf("failed to create rate watcher: %w", err)
		}
		c.ratesWatcher = watcher
	}

	return nil
}

// initCache initializes the analysis report caching subsystem.
func (c *Container) initCache() error {
	if !c.config.Cache.Enabled {
		return nil
	}

	c.memoryCache = cache.NewMemoryCache(c.config.Cache.CleanupPeriod)
	c.analysisCache = c.memoryCache

	if !c.config.Cache.Persistent {
		return nil
	}

	conn, err := storage.NewConnection(c.config.Cache.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to create database connection: %w", err)
	}
	if err := conn.Open(); err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	db, err := conn.DB()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("failed to get database handle: %w", err)
	}
	c.dbConn = conn
	c.db = db

	sqliteCache, err := cache.NewSQLiteCache(db)
	if err != nil {
		return fmt.Errorf("failed to create persistent cache: %w", err)
	}
	c.sqliteCache = sqliteCache

	// Memory in front, SQLite behind. Persistent hits are promoted into
	// memory with the configured TTL.
	c.compositeCache = cache.NewCompositeCache(c.memoryCache, c.sqliteCache, c.config.Cache.DefaultTTL)
	c.analysisCache = c.compositeCache

	return nil
}

// initTokenizers builds the registry and registers the configured variants.
// Registration does not initialize them; call InitializeTokenizers for that.
func (c *Container) initTokenizers() error {
	c.fileStore = filesystem.NewFileStore()

	modelsDir := c.config.Tokenizers.ModelsDir
	if modelsDir == "" {
		modelsDir = filesystem.DefaultModelsDir()
	}

	c.registry = tokenizer.NewRegistry()
	for _, name := range c.config.Tokenizers.EnabledTokenizers() {
		var tok ports.TokenizerPort
		switch name {
		case "tiktoken":
			tok = tiktoken.NewCL100K(c.config.Tokenizers.TiktokenModel)
		case "o200k":
			tok = tiktoken.NewO200K()
		case "words":
			tok = words.New()
		case "unigram":
			tok = unigram.New(c.fileStore, modelsDir)
		default:
			return fmt.Errorf("unknown tokenizer %q", name)
		}
		if err := c.registry.Register(tok); err != nil {
			return fmt.Errorf("failed to register tokenizer %q: %w", name, err)
		}
	}

	return nil
}

// initServices initializes application services.
func (c *Container) initServices() {
	c.orchestrator = scope.NewOrchestrator(c.registry, c.config.Tokenizers.InitTimeout, c.logger)
	c.analyzer = analyzer.New(c.registry, c.analysisCache, c.config.Cache.DefaultTTL, c.logger, c.tracer)
}

// swapCalculator installs a freshly built pricing table. Used by the rate
// watcher on hot reload.
func (c *Container) swapCalculator(calc *pricing.Calculator) {
	c.calcMu.Lock()
	defer c.calcMu.Unlock()
	c.calculator = calc
}

// InitializeTokenizers runs every registered variant's initialization.
// Safe to call more than once.
func (c *Container) InitializeTokenizers(ctx context.Context) error {
	return c.orchestrator.Initialize(ctx)
}

// StartPricingWatch starts watching the pricing rate file for changes.
// No-op when pricing.watch is not enabled.
func (c *Container) StartPricingWatch() error {
	if c.ratesWatcher == nil {
		return nil
	}
	return c.ratesWatcher.Watch()
}

// Close releases all resources held by the container.
func (c *Container) Close() error {
	ctx := context.Background()

	if c.ratesWatcher != nil {
		_ = c.ratesWatcher.Close()
	}

	if c.tracer != nil {
		_ = c.tracer.Shutdown(ctx)
	}

	if c.memoryCache != nil {
		_ = c.memoryCache.Close()
	}

	if c.dbConn != nil {
		return c.dbConn.Close()
	}
	return nil
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// DB returns the database connection backing the persistent cache.
// Returns nil when the persistent cache is not enabled.
func (c *Container) DB() *sql.DB {
	return c.db
}

// Registry returns the tokenizer registry.
func (c *Container) Registry() *tokenizer.Registry {
	return c.registry
}

// Orchestrator returns the tokenizer lifecycle orchestrator.
func (c *Container) Orchestrator() *scope.Orchestrator {
	return c.orchestrator
}

// Analyzer returns the token analysis service.
func (c *Container) Analyzer() *analyzer.Analyzer {
	return c.analyzer
}

// Calculator returns the current pricing calculator. When hot reload is
// enabled the returned table is a snapshot; call again for the latest.
func (c *Container) Calculator() *pricing.Calculator {
	c.calcMu.RLock()
	defer c.calcMu.RUnlock()
	return c.calculator
}

// RatesWatcher returns the pricing rate file watcher.
// Returns nil when pricing.watch is not enabled.
func (c *Container) RatesWatcher() *rates.Watcher {
	return c.ratesWatcher
}

// AnalysisCache returns the active analysis cache.
// Returns nil if caching is not enabled.
func (c *Container) AnalysisCache() ports.AnalysisCachePort {
	return c.analysisCache
}

// MemoryCache returns the in-memory cache layer.
// Returns nil if caching is not enabled.
func (c *Container) MemoryCache() *cache.MemoryCache {
	return c.memoryCache
}

// CompositeCache returns the layered cache (memory + SQLite).
// Returns nil unless the persistent cache is enabled.
func (c *Container) CompositeCache() *cache.CompositeCache {
	return c.compositeCache
}

// FileStore returns the file store used for model artifacts.
func (c *Container) FileStore() *filesystem.FileStore {
	return c.fileStore
}

// Logger returns the structured logger.
func (c *Container) Logger() *logging.Logger {
	return c.logger
}

// Tracer returns the OpenTelemetry tracer.
func (c *Container) Tracer() *tracing.Tracer {
	return c.tracer
}
