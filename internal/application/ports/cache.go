package ports

import (
	"context"
	"time"

	"github.com/ducktyper-ai/quacktokenscope/internal/domain/token"
)

// CacheStats summarizes analysis cache activity.
type CacheStats struct {
	TotalEntries int64     `json:"total_entries"`
	HitCount     int64     `json:"hit_count"`
	MissCount    int64     `json:"miss_count"`
	HitRate      float64   `json:"hit_rate"` // Percentage
	ExpiredCount int64     `json:"expired_count"`
	OldestEntry  time.Time `json:"oldest_entry"`
	NewestEntry  time.Time `json:"newest_entry"`
}

// AnalysisCachePort caches completed token analysis reports keyed by a
// fingerprint of the tokenizer variant and input text. Tokenization of a
// fixed text by a fixed variant is deterministic, so entries never go stale;
// the TTL only bounds cache growth.
type AnalysisCachePort interface {
	// Get retrieves a cached report. Returns the report and true if found
	// and not expired.
	Get(ctx context.Context, fingerprint string) (*token.Report, bool)

	// Set stores a report with the specified TTL. A zero TTL means the
	// entry never expires.
	Set(ctx context.Context, fingerprint string, report *token.Report, ttl time.Duration) error

	// Delete removes an entry.
	Delete(ctx context.Context, fingerprint string) error

	// Clear removes all entries.
	Clear(ctx context.Context) error

	// Has checks whether a fingerprint is cached without counting a hit
	// or miss.
	Has(ctx context.Context, fingerprint string) bool

	// Stats returns cache statistics.
	Stats(ctx context.Context) (*CacheStats, error)

	// Cleanup removes expired entries. Returns the number removed.
	Cleanup(ctx context.Context) (int64, error)
}
