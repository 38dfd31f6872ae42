// Package analyzer runs token analysis across tokenizer variants.
package analyzer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ducktyper-ai/quacktokenscope/internal/application/ports"
	domainerrors "github.com/ducktyper-ai/quacktokenscope/internal/domain/errors"
	"github.com/ducktyper-ai/quacktokenscope/internal/domain/token"
	"github.com/ducktyper-ai/quacktokenscope/internal/infrastructure/logging"
	"github.com/ducktyper-ai/quacktokenscope/internal/infrastructure/tracing"
)

// VariantSource supplies ready tokenizer variants. The registry adapter
// satisfies this.
type VariantSource interface {
	ListReady() []string
	GetReady(name string) (ports.TokenizerPort, error)
}

// Result holds the per-variant outcomes of analyzing one text. A variant
// appears in Reports or in Errors, never both.
type Result struct {
	Text    string
	Reports map[string]*token.Report
	Errors  map[string]error
	Ranking []token.RankedVariant
}

// Analyzer coordinates tokenization, statistics, caching, and ranking for a
// text across every ready variant. Variants run concurrently and fail
// independently.
type Analyzer struct {
	source   VariantSource
	cache    ports.AnalysisCachePort
	cacheTTL time.Duration
	logger   *logging.Logger
	tracer   *tracing.Tracer
}

// New creates an Analyzer. cache may be nil to disable caching.
func New(source VariantSource, cache ports.AnalysisCachePort, cacheTTL time.Duration, logger *logging.Logger, tracer *tracing.Tracer) *Analyzer {
	if logger == nil {
		logger = logging.Default()
	}
	if tracer == nil {
		tracer = tracing.Default()
	}
	return &Analyzer{
		source:   source,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
		tracer:   tracer,
	}
}

// Fingerprint derives the cache key for one variant analyzing one text.
func Fingerprint(tokenizer, text string) string {
	sum := sha256.Sum256([]byte(tokenizer + "\x00" + text))
	return hex.EncodeToString(sum[:])
}

// Analyze runs every ready variant against text. It returns ErrNotReady
// when no variant is available; individual variant failures land in the
// result's Errors map without failing the call.
func (a *Analyzer) Analyze(ctx context.Context, text string) (*Result, error) {
	return a.AnalyzeWith(ctx, text, a.source.ListReady())
}

// AnalyzeWith runs the named variants against text. Every name must refer
// to a ready variant; an unknown or not-ready name fails the whole call with
// ErrUnknownTokenizer before anything is tokenized. The result's Errors map
// holds tokenize-time failures only.
func (a *Analyzer) AnalyzeWith(ctx context.Context, text string, names []string) (*Result, error) {
	if len(names) == 0 {
		return nil, domainerrors.NewError(domainerrors.CodeLifecycle,
			"no tokenizer variant is ready", domainerrors.ErrNotReady)
	}
	for _, name := range names {
		if _, err := a.source.GetReady(name); err != nil {
			return nil, err
		}
	}

	if logging.CorrelationID(ctx) == "" {
		ctx = logging.WithCorrelationID(ctx, uuid.NewString())
	}

	ctx, span := a.tracer.StartAnalysisSpan(ctx, len(text), len(names))

	result := &Result{
		Text:    text,
		Reports: make(map[string]*token.Report, len(names)),
		Errors:  make(map[string]error),
	}

	type outcome struct {
		name     string
		report   *token.Report
		cacheHit bool
		err      error
	}
	outcomes := make([]outcome, len(names))

	g, gctx := errgroup.WithContext(ctx)
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			report, hit, err := a.analyzeOne(gctx, name, text)
			outcomes[i] = outcome{name: name, report: report, cacheHit: hit, err: err}
			return nil
		})
	}
	_ = g.Wait()

	var hits, misses int
	for _, o := range outcomes {
		if o.err != nil {
			result.Errors[o.name] = o.err
			logging.LogAnalysisFailed(ctx, a.logger, o.name, o.err)
			continue
		}
		result.Reports[o.name] = o.report
		if o.cacheHit {
			hits++
		} else {
			misses++
		}
		logging.LogAnalysisComplete(ctx, a.logger, o.name,
			o.report.Summary.TotalTokens, o.report.Summary.DistinctTokens,
			o.report.Analysis.Elapsed, o.cacheHit)
	}

	span.SetCacheStats(hits, misses)

	if len(result.Reports) == 0 {
		err := domainerrors.NewError(domainerrors.CodeLifecycle,
			"every tokenizer variant failed", domainerrors.ErrNotReady)
		span.EndWithError(err)
		return nil, err
	}

	result.Ranking = token.RankByEfficiency(result.Reports)
	if len(result.Ranking) > 0 {
		winner := result.Ranking[0]
		span.SetWinner(winner.Tokenizer, winner.TotalTokens)
	}
	span.End()

	return result, nil
}

// analyzeOne produces the report for a single variant, consulting the cache
// first.
func (a *Analyzer) analyzeOne(ctx context.Context, name, text string) (*token.Report, bool, error) {
	ctx = logging.WithTokenizer(ctx, name)
	ctx, span := a.tracer.StartTokenizeSpan(ctx, name)

	fingerprint := Fingerprint(name, text)
	if a.cache != nil {
		if report, found := a.cache.Get(ctx, fingerprint); found {
			logging.LogCacheHit(ctx, a.logger, fingerprint)
			span.SetCacheHit(true)
			span.SetTokenCounts(report.Summary.TotalTokens, report.Summary.DistinctTokens)
			span.End()
			return report, true, nil
		}
		logging.LogCacheMiss(ctx, a.logger, fingerprint)
	}

	tok, err := a.source.GetReady(name)
	if err != nil {
		span.EndWithError(err)
		return nil, false, err
	}

	start := time.Now()
	ids, tokens, err := tok.Tokenize(ctx, text)
	if err != nil {
		span.EndWithError(err)
		return nil, false, err
	}
	elapsed := time.Since(start)

	report := &token.Report{
		Analysis: &token.Analysis{
			Text:      text,
			Tokenizer: name,
			IDs:       ids,
			Tokens:    tokens,
			Elapsed:   elapsed,
		},
		Frequency: token.NewFrequency(tokens),
		Summary:   token.NewSummary(text, tokens),
	}

	if a.cache != nil {
		if err := a.cache.Set(ctx, fingerprint, report, a.cacheTTL); err != nil {
			a.logger.WarnContext(ctx, "failed to cache analysis report",
				"fingerprint", fingerprint, "error", err.Error())
		}
	}

	span.SetCacheHit(false)
	span.SetTokenCounts(report.Summary.TotalTokens, report.Summary.DistinctTokens)
	span.End()
	return report, false, nil
}
