// Package cache provides cache adapters for token analysis reports.
package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ducktyper-ai/quacktokenscope/internal/application/ports"
	"github.com/ducktyper-ai/quacktokenscope/internal/domain/token"
)

// memoryEntry holds one cached report with its expiry metadata.
type memoryEntry struct {
	report    *token.Report
	createdAt time.Time
	expiresAt time.Time // zero means never
}

func (e *memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// MemoryCache implements AnalysisCachePort with an in-memory map and TTL
// support. Suitable as the default cache and as the fast layer in front of
// the SQLite cache.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]*memoryEntry

	hitCount     int64
	missCount    int64
	expiredCount int64

	cleanupTicker *time.Ticker
	stopCleanup   chan struct{}
	closeOnce     sync.Once
}

// NewMemoryCache creates an in-memory analysis cache. When cleanupPeriod is
// positive a background goroutine sweeps expired entries at that interval;
// call Close to stop it.
func NewMemoryCache(cleanupPeriod time.Duration) *MemoryCache {
	mc := &MemoryCache{
		entries:     make(map[string]*memoryEntry),
		stopCleanup: make(chan struct{}),
	}

	if cleanupPeriod > 0 {
		mc.cleanupTicker = time.NewTicker(cleanupPeriod)
		go mc.cleanupLoop()
	}

	return mc
}

func (m *MemoryCache) cleanupLoop() {
	for {
		select {
		case <-m.cleanupTicker.C:
			_, _ = m.Cleanup(context.Background())
		case <-m.stopCleanup:
			m.cleanupTicker.Stop()
			return
		}
	}
}

// Close stops the cleanup goroutine. Safe to call more than once.
func (m *MemoryCache) Close() error {
	if m.cleanupTicker != nil {
		m.closeOnce.Do(func() {
			close(m.stopCleanup)
		})
	}
	return nil
}

// Get retrieves a cached report.
func (m *MemoryCache) Get(ctx context.Context, fingerprint string) (*token.Report, bool) {
	m.mu.RLock()
	entry, exists := m.entries[fingerprint]
	m.mu.RUnlock()

	if !exists {
		atomic.AddInt64(&m.missCount, 1)
		return nil, false
	}
	if entry.expired(time.Now()) {
		atomic.AddInt64(&m.missCount, 1)
		atomic.AddInt64(&m.expiredCount, 1)
		go func() {
			_ = m.Delete(context.Background(), fingerprint)
		}()
		return nil, false
	}

	atomic.AddInt64(&m.hitCount, 1)
	return entry.report, true
}

// Set stores a report with the specified TTL. A zero TTL never expires.
func (m *MemoryCache) Set(ctx context.Context, fingerprint string, report *token.Report, ttl time.Duration) error {
	now := time.Now()
	entry := &memoryEntry{
		report:    report,
		createdAt: now,
	}
	if ttl > 0 {
		entry.expiresAt = now.Add(ttl)
	}

	m.mu.Lock()
	m.entries[fingerprint] = entry
	m.mu.Unlock()
	return nil
}

// Delete removes an entry.
func (m *MemoryCache) Delete(ctx context.Context, fingerprint string) error {
	m.mu.Lock()
	delete(m.entries, fingerprint)
	m.mu.Unlock()
	return nil
}

// Clear removes all entries.
func (m *MemoryCache) Clear(ctx context.Context) error {
	m.mu.Lock()
	m.entries = make(map[string]*memoryEntry)
	m.mu.Unlock()
	return nil
}

// Has checks whether a fingerprint is cached and unexpired without touching
// the hit and miss counters.
func (m *MemoryCache) Has(ctx context.Context, fingerprint string) bool {
	m.mu.RLock()
	entry, exists := m.entries[fingerprint]
	m.mu.RUnlock()

	return exists && !entry.expired(time.Now())
}

// Stats returns cache statistics.
func (m *MemoryCache) Stats(ctx context.Context) (*ports.CacheStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	hits := atomic.LoadInt64(&m.hitCount)
	misses := atomic.LoadInt64(&m.missCount)

	stats := &ports.CacheStats{
		TotalEntries: int64(len(m.entries)),
		HitCount:     hits,
		MissCount:    misses,
		ExpiredCount: atomic.LoadInt64(&m.expiredCount),
	}
	if hits+misses > 0 {
		stats.HitRate = float64(hits) / float64(hits+misses) * 100
	}

	for _, entry := range m.entries {
		if stats.OldestEntry.IsZero() || entry.createdAt.Before(stats.OldestEntry) {
			stats.OldestEntry = entry.createdAt
		}
		if stats.NewestEntry.IsZero() || entry.createdAt.After(stats.NewestEntry) {
			stats.NewestEntry = entry.createdAt
		}
	}

	return stats, nil
}

// Cleanup removes expired entries. Returns the number removed.
func (m *MemoryCache) Cleanup(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	var removed int64
	for fingerprint, entry := range m.entries {
		if entry.expired(now) {
			delete(m.entries, fingerprint)
			removed++
		}
	}

	atomic.AddInt64(&m.expiredCount, removed)
	return removed, nil
}

// Ensure MemoryCache implements AnalysisCachePort
var _ ports.AnalysisCachePort = (*MemoryCache)(nil)
