package cache

import (
	"context"
	"time"

	"github.com/ducktyper-ai/quacktokenscope/internal/application/ports"
	"github.com/ducktyper-ai/quacktokenscope/internal/domain/token"
)

// CompositeCache layers a fast cache in front of a persistent one. Reads
// check the fast layer first and promote persistent hits into it; writes go
// to both layers.
type CompositeCache struct {
	fast       ports.AnalysisCachePort
	persistent ports.AnalysisCachePort
	promoteTTL time.Duration
}

// NewCompositeCache creates a two-layer cache. promoteTTL is the TTL used
// when promoting a persistent hit into the fast layer.
func NewCompositeCache(fast, persistent ports.AnalysisCachePort, promoteTTL time.Duration) *CompositeCache {
	return &CompositeCache{
		fast:       fast,
		persistent: persistent,
		promoteTTL: promoteTTL,
	}
}

// Get checks the fast layer, then the persistent one.
func (c *CompositeCache) Get(ctx context.Context, fingerprint string) (*token.Report, bool) {
	if report, found := c.fast.Get(ctx, fingerprint); found {
		return report, true
	}
	report, found := c.persistent.Get(ctx, fingerprint)
	if !found {
		return nil, false
	}
	_ = c.fast.Set(ctx, fingerprint, report, c.promoteTTL)
	return report, true
}

// Set writes to both layers. The persistent write decides success; the fast
// layer is best effort.
func (c *CompositeCache) Set(ctx context.Context, fingerprint string, report *token.Report, ttl time.Duration) error {
	_ = c.fast.Set(ctx, fingerprint, report, ttl)
	return c.persistent.Set(ctx, fingerprint, report, ttl)
}

// Delete removes the entry from both layers.
func (c *CompositeCache) Delete(ctx context.Context, fingerprint string) error {
	fastErr := c.fast.Delete(ctx, fingerprint)
	if err := c.persistent.Delete(ctx, fingerprint); err != nil {
		return err
	}
	return fastErr
}

// Clear empties both layers.
func (c *CompositeCache) Clear(ctx context.Context) error {
	fastErr := c.fast.Clear(ctx)
	if err := c.persistent.Clear(ctx); err != nil {
		return err
	}
	return fastErr
}

// Has reports whether either layer holds the fingerprint.
func (c *CompositeCache) Has(ctx context.Context, fingerprint string) bool {
	return c.fast.Has(ctx, fingerprint) || c.persistent.Has(ctx, fingerprint)
}

// Stats reports the persistent layer's statistics, which cover everything
// ever cached; fast-layer stats only describe the current process.
func (c *CompositeCache) Stats(ctx context.Context) (*ports.CacheStats, error) {
	return c.persistent.Stats(ctx)
}

// Cleanup sweeps both layers and returns the combined count.
func (c *CompositeCache) Cleanup(ctx context.Context) (int64, error) {
	fastRemoved, fastErr := c.fast.Cleanup(ctx)
	persistentRemoved, err := c.persistent.Cleanup(ctx)
	if err != nil {
		return fastRemoved + persistentRemoved, err
	}
	return fastRemoved + persistentRemoved, fastErr
}

// Ensure CompositeCache implements AnalysisCachePort
var _ ports.AnalysisCachePort = (*CompositeCache)(nil)
