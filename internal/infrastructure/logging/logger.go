// Package logging provides structured logging infrastructure for quacktokenscope.
// It wraps Go's standard log/slog package with context-aware logging, correlation IDs,
// and domain-specific log attributes.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"
)

// contextKey is used for storing logger-related values in context.
type contextKey string

const (
	// CorrelationIDKey is the context key for correlation IDs.
	CorrelationIDKey contextKey = "correlation_id"
	// TokenizerKey is the context key for tokenizer variant names.
	TokenizerKey contextKey = "tokenizer"
	// ModelKey is the context key for pricing model names.
	ModelKey contextKey = "model"
	// StrategyKey is the context key for initialization strategy names.
	StrategyKey contextKey = "strategy"
)

// Level represents log levels.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Format represents log output formats.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// Config holds logging configuration.
type Config struct {
	Level      Level
	Format     Format
	Output     io.Writer
	AddSource  bool
	TimeFormat string
}

// DefaultConfig returns sensible default logging configuration.
func DefaultConfig() Config {
	return Config{
		Level:      LevelInfo,
		Format:     FormatText,
		Output:     os.Stderr,
		AddSource:  false,
		TimeFormat: time.RFC3339,
	}
}

// Logger wraps slog.Logger with additional functionality for quacktokenscope.
type Logger struct {
	slogger *slog.Logger
	level   slog.Level
	mu      sync.RWMutex
}

// global is the package-level default logger.
var (
	global     *Logger
	globalOnce sync.Once
)

// Init initializes the global logger with the provided configuration.
func Init(cfg Config) *Logger {
	globalOnce.Do(func() {
		global = New(cfg)
	})
	return global
}

// Default returns the global logger, initializing it with defaults if necessary.
func Default() *Logger {
	if global == nil {
		Init(DefaultConfig())
	}
	return global
}

// New creates a new Logger with the provided configuration.
func New(cfg Config) *Logger {
	level := parseLevel(cfg.Level)

	var handler slog.Handler
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: cfg.AddSource,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Customize time format
			if a.Key == slog.TimeKey && cfg.TimeFormat != "" {
				if t, ok := a.Value.Any().(time.Time); ok {
					return slog.String(slog.TimeKey, t.Format(cfg.TimeFormat))
				}
			}
			return a
		},
	}

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	switch cfg.Format {
	case FormatJSON:
		handler = slog.NewJSONHandler(output, opts)
	default:
		handler = slog.NewTextHandler(output, opts)
	}

	return &Logger{
		slogger: slog.New(handler),
		level:   level,
	}
}

// parseLevel converts a Level to slog.Level.
func parseLevel(l Level) slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SetLevel dynamically changes the log level.
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = parseLevel(level)
}

// With returns a new Logger with the given attributes.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		slogger: l.slogger.With(args...),
		level:   l.level,
	}
}

// WithGroup returns a new Logger with the given group name.
func (l *Logger) WithGroup(name string) *Logger {
	return &Logger{
		slogger: l.slogger.WithGroup(name),
		level:   l.level,
	}
}

// Debug logs at debug level.
func (l *Logger) Debug(msg string, args ...any) {
	l.slogger.Debug(msg, args...)
}

// Info logs at info level.
func (l *Logger) Info(msg string, args ...any) {
	l.slogger.Info(msg, args...)
}

// Warn logs at warn level.
func (l *Logger) Warn(msg string, args ...any) {
	l.slogger.Warn(msg, args...)
}

// Error logs at error level.
func (l *Logger) Error(msg string, args ...any) {
	l.slogger.Error(msg, args...)
}

// DebugContext logs at debug level with context.
func (l *Logger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.slogger.DebugContext(ctx, msg, l.enrichArgs(ctx, args)...)
}

// InfoContext logs at info level with context.
func (l *Logger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.slogger.InfoContext(ctx, msg, l.enrichArgs(ctx, args)...)
}

// WarnContext logs at warn level with context.
func (l *Logger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.slogger.WarnContext(ctx, msg, l.enrichArgs(ctx, args)...)
}

// ErrorContext logs at error level with context.
func (l *Logger) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.slogger.ErrorContext(ctx, msg, l.enrichArgs(ctx, args)...)
}

// enrichArgs extracts context values and adds them as log attributes.
func (l *Logger) enrichArgs(ctx context.Context, args []any) []any {
	enriched := make([]any, 0, len(args)+8)

	if v := ctx.Value(CorrelationIDKey); v != nil {
		enriched = append(enriched, "correlation_id", v)
	}
	if v := ctx.Value(TokenizerKey); v != nil {
		enriched = append(enriched, "tokenizer", v)
	}
	if v := ctx.Value(ModelKey); v != nil {
		enriched = append(enriched, "model", v)
	}
	if v := ctx.Value(StrategyKey); v != nil {
		enriched = append(enriched, "strategy", v)
	}

	enriched = append(enriched, args...)
	return enriched
}

// Underlying returns the underlying slog.Logger.
func (l *Logger) Underlying() *slog.Logger {
	return l.slogger
}

// --- Context helpers ---

// WithCorrelationID adds a correlation ID to the context.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, CorrelationIDKey, id)
}

// WithTokenizer adds a tokenizer variant name to the context.
func WithTokenizer(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, TokenizerKey, name)
}

// WithModel adds a pricing model name to the context.
func WithModel(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, ModelKey, name)
}

// WithStrategy adds an initialization strategy name to the context.
func WithStrategy(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, StrategyKey, name)
}

// CorrelationID extracts the correlation ID from context.
func CorrelationID(ctx context.Context) string {
	if v := ctx.Value(CorrelationIDKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// --- Domain-specific logging helpers ---

// LogTokenizerInitStart logs the start of tokenizer initialization.
func LogTokenizerInitStart(ctx context.Context, logger *Logger, name string) {
	logger.DebugContext(ctx, "tokenizer initialization started",
		"tokenizer", name,
	)
}

// LogTokenizerInitComplete logs a successful tokenizer initialization.
func LogTokenizerInitComplete(ctx context.Context, logger *Logger, name, strategy string, duration time.Duration) {
	logger.InfoContext(ctx, "tokenizer initialized",
		"tokenizer", name,
		"strategy", strategy,
		"duration_ms", duration.Milliseconds(),
	)
}

// LogTokenizerInitFailed logs a failed tokenizer initialization.
func LogTokenizerInitFailed(ctx context.Context, logger *Logger, name string, err error, duration time.Duration) {
	logger.WarnContext(ctx, "tokenizer initialization failed",
		"tokenizer", name,
		"error", err.Error(),
		"duration_ms", duration.Milliseconds(),
	)
}

// LogAnalysisComplete logs a completed token analysis.
func LogAnalysisComplete(ctx context.Context, logger *Logger, tokenizer string, totalTokens, distinctTokens int, duration time.Duration, cacheHit bool) {
	logger.InfoContext(ctx, "token analysis completed",
		"tokenizer", tokenizer,
		"total_tokens", totalTokens,
		"distinct_tokens", distinctTokens,
		"duration_ms", duration.Milliseconds(),
		"cache_hit", cacheHit,
	)
}

// LogAnalysisFailed logs a failed token analysis.
func LogAnalysisFailed(ctx context.Context, logger *Logger, tokenizer string, err error) {
	logger.ErrorContext(ctx, "token analysis failed",
		"tokenizer", tokenizer,
		"error", err.Error(),
	)
}

// LogCostComputed logs a cost computation.
func LogCostComputed(ctx context.Context, logger *Logger, model string, inputTokens, outputTokens int, total float64) {
	logger.InfoContext(ctx, "cost computed",
		"model", model,
		"input_tokens", inputTokens,
		"output_tokens", outputTokens,
		"total_usd", total,
	)
}

// LogCacheHit logs a cache hit.
func LogCacheHit(ctx context.Context, logger *Logger, fingerprint string) {
	logger.DebugContext(ctx, "cache hit",
		"fingerprint", fingerprint,
	)
}

// LogCacheMiss logs a cache miss.
func LogCacheMiss(ctx context.Context, logger *Logger, fingerprint string) {
	logger.DebugContext(ctx, "cache miss",
		"fingerprint", fingerprint,
	)
}

// LogPricingReloaded logs a pricing table hot reload.
func LogPricingReloaded(ctx context.Context, logger *Logger, path string, models int) {
	logger.InfoContext(ctx, "pricing table reloaded",
		"path", path,
		"models", models,
	)
}
