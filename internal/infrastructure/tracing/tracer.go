// Package tracing provides OpenTelemetry-based distributed tracing infrastructure.
// It supports multiple exporters (stdout, OTLP) and provides domain-specific
// span helpers for analysis, tokenization, and cost computation.
package tracing

import (
	"context"
	"fmt"
	"io"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const (
	// TracerName is the name used for the quacktokenscope tracer.
	TracerName = "github.com/ducktyper-ai/quacktokenscope"

	// Version is the semantic version of the tracer.
	Version = "1.0.0"
)

// ExporterType defines the type of trace exporter.
type ExporterType string

const (
	ExporterNone   ExporterType = "none"
	ExporterStdout ExporterType = "stdout"
	ExporterOTLP   ExporterType = "otlp"
)

// Config holds tracing configuration.
type Config struct {
	Enabled      bool         // Whether tracing is enabled
	ExporterType ExporterType // Type of exporter to use
	OTLPEndpoint string       // OTLP collector endpoint (for OTLP exporter)
	ServiceName  string       // Service name for traces
	Environment  string       // Deployment environment (development, production)
	SampleRate   float64      // Sampling rate (0.0 to 1.0)
	Output       io.Writer    // Output for stdout exporter (defaults to os.Stdout)
}

// DefaultConfig returns sensible default tracing configuration.
func DefaultConfig() Config {
	return Config{
		Enabled:      false,
		ExporterType: ExporterNone,
		ServiceName:  "quacktokenscope",
		Environment:  "development",
		SampleRate:   1.0,
	}
}

// Tracer wraps an OpenTelemetry tracer with domain-specific functionality.
type Tracer struct {
	tracer   trace.Tracer
	provider *sdktrace.TracerProvider
	config   Config
}

// global is the package-level default tracer.
var (
	global     *Tracer
	globalOnce sync.Once
)

// Init initializes the global tracer with the provided configuration.
func Init(ctx context.Context, cfg Config) (*Tracer, error) {
	var err error
	globalOnce.Do(func() {
		global, err = New(ctx, cfg)
	})
	return global, err
}

// Default returns the global tracer, or a no-op tracer if not initialized.
func Default() *Tracer {
	if global == nil {
		return &Tracer{
			tracer: otel.Tracer(TracerName),
			config: DefaultConfig(),
		}
	}
	return global
}

// New creates a new Tracer with the provided configuration.
func New(ctx context.Context, cfg Config) (*Tracer, error) {
	if !cfg.Enabled || cfg.ExporterType == ExporterNone {
		return &Tracer{
			tracer: noop.NewTracerProvider().Tracer(TracerName),
			config: cfg,
		}, nil
	}

	exporter, err := createExporter(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create exporter: %w", err)
	}

	// Create resource without merging with Default() to avoid schema URL conflicts.
	// The default resource's schema URL may conflict with our semconv version.
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(Version),
			attribute.String("deployment.environment", cfg.Environment),
		),
		resource.WithHost(),
		resource.WithTelemetrySDK(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	var sampler sdktrace.Sampler
	if cfg.SampleRate >= 1.0 {
		sampler = sdktrace.AlwaysSample()
	} else if cfg.SampleRate <= 0.0 {
		sampler = sdktrace.NeverSample()
	} else {
		sampler = sdktrace.TraceIDRatioBased(cfg.SampleRate)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler),
	)

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	otel.SetTracerProvider(provider)

	return &Tracer{
		tracer:   provider.Tracer(TracerName, trace.WithInstrumentationVersion(Version)),
		provider: provider,
		config:   cfg,
	}, nil
}

// createExporter creates the appropriate exporter based on configuration.
func createExporter(ctx context.Context, cfg Config) (sdktrace.SpanExporter, error) {
	switch cfg.ExporterType {
	case ExporterStdout:
		opts := []stdouttrace.Option{
			stdouttrace.WithPrettyPrint(),
		}
		if cfg.Output != nil {
			opts = append(opts, stdouttrace.WithWriter(cfg.Output))
		}
		return stdouttrace.New(opts...)

	case ExporterOTLP:
		opts := []otlptracehttp.Option{
			otlptracehttp.WithInsecure(),
		}
		if cfg.OTLPEndpoint != "" {
			opts = append(opts, otlptracehttp.WithEndpoint(cfg.OTLPEndpoint))
		}
		return otlptracehttp.New(ctx, opts...)

	default:
		return nil, fmt.Errorf("unsupported exporter type: %s", cfg.ExporterType)
	}
}

// Shutdown gracefully shuts down the tracer provider.
func (t *Tracer) Shutdown(ctx context.Context) error {
	if t.provider != nil {
		return t.provider.Shutdown(ctx)
	}
	return nil
}

// Start starts a new span with the given name.
func (t *Tracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, name, opts...)
}

// SpanFromContext returns the current span from context.
func SpanFromContext(ctx context.Context) trace.Span {
	return trace.SpanFromContext(ctx)
}

// --- Domain-specific span helpers ---

// AnalysisSpan represents a multi-variant analysis span.
type AnalysisSpan struct {
	span trace.Span
	ctx  context.Context
}

// StartAnalysisSpan starts a span covering the analysis of one text across
// every ready tokenizer variant.
func (t *Tracer) StartAnalysisSpan(ctx context.Context, textLength, variants int) (context.Context, *AnalysisSpan) {
	ctx, span := t.tracer.Start(ctx, "analysis.run",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.Int("analysis.text_length", textLength),
			attribute.Int("analysis.variants", variants),
		),
	)

	return ctx, &AnalysisSpan{span: span, ctx: ctx}
}

// SetCacheStats sets cache hit/miss statistics.
func (as *AnalysisSpan) SetCacheStats(hits, misses int) {
	total := hits + misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total)
	}
	as.span.SetAttributes(
		attribute.Int("analysis.cache.hits", hits),
		attribute.Int("analysis.cache.misses", misses),
		attribute.Float64("analysis.cache.hit_rate", hitRate),
	)
}

// SetWinner records the most token-efficient variant.
func (as *AnalysisSpan) SetWinner(name string, tokens int) {
	as.span.SetAttributes(
		attribute.String("analysis.winner", name),
		attribute.Int("analysis.winner_tokens", tokens),
	)
}

// End ends the analysis span with success status.
func (as *AnalysisSpan) End() {
	as.span.SetStatus(codes.Ok, "analysis completed successfully")
	as.span.End()
}

// EndWithError ends the analysis span with error status.
func (as *AnalysisSpan) EndWithError(err error) {
	as.span.RecordError(err)
	as.span.SetStatus(codes.Error, err.Error())
	as.span.End()
}

// TokenizeSpan represents a single-variant tokenization span.
type TokenizeSpan struct {
	span trace.Span
	ctx  context.Context
}

// StartTokenizeSpan starts a span for one variant tokenizing one text.
func (t *Tracer) StartTokenizeSpan(ctx context.Context, tokenizer string) (context.Context, *TokenizeSpan) {
	ctx, span := t.tracer.Start(ctx, "tokenizer.tokenize",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("tokenizer.name", tokenizer),
		),
	)

	return ctx, &TokenizeSpan{span: span, ctx: ctx}
}

// SetTokenCounts sets the token totals produced by the variant.
func (ts *TokenizeSpan) SetTokenCounts(total, distinct int) {
	ts.span.SetAttributes(
		attribute.Int("tokenizer.tokens.total", total),
		attribute.Int("tokenizer.tokens.distinct", distinct),
	)
}

// SetCacheHit marks whether the report came from cache.
func (ts *TokenizeSpan) SetCacheHit(hit bool) {
	ts.span.SetAttributes(attribute.Bool("tokenizer.cache_hit", hit))
}

// End ends the tokenize span with success status.
func (ts *TokenizeSpan) End() {
	ts.span.SetStatus(codes.Ok, "tokenization completed successfully")
	ts.span.End()
}

// EndWithError ends the tokenize span with error status.
func (ts *TokenizeSpan) EndWithError(err error) {
	ts.span.RecordError(err)
	ts.span.SetStatus(codes.Error, err.Error())
	ts.span.End()
}

// CostSpan represents a cost computation span.
type CostSpan struct {
	span trace.Span
	ctx  context.Context
}

// StartCostSpan starts a span for a cost computation.
func (t *Tracer) StartCostSpan(ctx context.Context, model string) (context.Context, *CostSpan) {
	ctx, span := t.tracer.Start(ctx, "pricing.compute",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("pricing.model", model),
		),
	)

	return ctx, &CostSpan{span: span, ctx: ctx}
}

// SetTokens sets the token counts priced by this computation.
func (cs *CostSpan) SetTokens(input, output int) {
	cs.span.SetAttributes(
		attribute.Int("pricing.tokens.input", input),
		attribute.Int("pricing.tokens.output", output),
	)
}

// SetCost sets the computed total cost.
func (cs *CostSpan) SetCost(cost float64) {
	cs.span.SetAttributes(attribute.Float64("pricing.cost_usd", cost))
}

// End ends the cost span with success status.
func (cs *CostSpan) End() {
	cs.span.SetStatus(codes.Ok, "cost computed successfully")
	cs.span.End()
}

// EndWithError ends the cost span with error status.
func (cs *CostSpan) EndWithError(err error) {
	cs.span.RecordError(err)
	cs.span.SetStatus(codes.Error, err.Error())
	cs.span.End()
}

// AddEvent adds an event to the current span.
func AddEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

// RecordError records an error on the current span.
func RecordError(ctx context.Context, err error) {
	span := trace.SpanFromContext(ctx)
	span.RecordError(err)
}

// SetAttribute sets an attribute on the current span.
func SetAttribute(ctx context.Context, key string, value any) {
	span := trace.SpanFromContext(ctx)
	switch v := value.(type) {
	case string:
		span.SetAttributes(attribute.String(key, v))
	case int:
		span.SetAttributes(attribute.Int(key, v))
	case int64:
		span.SetAttributes(attribute.Int64(key, v))
	case float64:
		span.SetAttributes(attribute.Float64(key, v))
	case bool:
		span.SetAttributes(attribute.Bool(key, v))
	}
}
