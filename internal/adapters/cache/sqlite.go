package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/ducktyper-ai/quacktokenscope/internal/application/ports"
	"github.com/ducktyper-ai/quacktokenscope/internal/domain/token"
)

const analysisSchema = `
CREATE TABLE IF NOT EXISTS analysis_cache (
	fingerprint      TEXT PRIMARY KEY,
	tokenizer        TEXT NOT NULL,
	report_json      TEXT NOT NULL,
	ttl_seconds      INTEGER NOT NULL,
	created_at       TIMESTAMP NOT NULL,
	expires_at       TIMESTAMP,
	last_accessed_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_analysis_cache_expires ON analysis_cache(expires_at);
`

// SQLiteCache implements AnalysisCachePort using SQLite, so reports survive
// across runs. A NULL expires_at marks a never-expiring entry.
type SQLiteCache struct {
	db *sql.DB

	hitCount  int64
	missCount int64
}

// NewSQLiteCache creates a SQLite-backed analysis cache, creating the schema
// if it does not exist.
func NewSQLiteCache(db *sql.DB) (*SQLiteCache, error) {
	if _, err := db.Exec(analysisSchema); err != nil {
		return nil, err
	}
	return &SQLiteCache{db: db}, nil
}

// Get retrieves a cached report.
func (s *SQLiteCache) Get(ctx context.Context, fingerprint string) (*token.Report, bool) {
	row := s.db.QueryRowContext(ctx, `
		SELECT report_json FROM analysis_cache
		WHERE fingerprint = ?
		  AND (expires_at IS NULL OR expires_at > datetime('now'))
	`, fingerprint)

	var reportJSON string
	if err := row.Scan(&reportJSON); err != nil {
		atomic.AddInt64(&s.missCount, 1)
		return nil, false
	}

	var report token.Report
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		atomic.AddInt64(&s.missCount, 1)
		return nil, false
	}

	atomic.AddInt64(&s.hitCount, 1)
	_, _ = s.db.ExecContext(ctx, `
		UPDATE analysis_cache SET last_accessed_at = datetime('now')
		WHERE fingerprint = ?
	`, fingerprint)

	return &report, true
}

// Set stores a report with the specified TTL. A zero TTL never expires.
func (s *SQLiteCache) Set(ctx context.Context, fingerprint string, report *token.Report, ttl time.Duration) error {
	data, err := json.Marshal(report)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	var expiresAt any
	if ttl > 0 {
		expiresAt = now.Add(ttl)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO analysis_cache
		(fingerprint, tokenizer, report_json, ttl_seconds, created_at, expires_at, last_accessed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, fingerprint, report.Analysis.Tokenizer, string(data),
		int64(ttl.Seconds()), now, expiresAt, now)
	return err
}

// Delete removes an entry.
func (s *SQLiteCache) Delete(ctx context.Context, fingerprint string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM analysis_cache WHERE fingerprint = ?`, fingerprint)
	return err
}

// Clear removes all entries.
func (s *SQLiteCache) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM analysis_cache`)
	return err
}

// Has checks whether a fingerprint is cached without counting a hit or miss.
func (s *SQLiteCache) Has(ctx context.Context, fingerprint string) bool {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM analysis_cache
		WHERE fingerprint = ?
		  AND (expires_at IS NULL OR expires_at > datetime('now'))
	`, fingerprint).Scan(&count)
	return err == nil && count > 0
}

// Stats returns cache statistics.
func (s *SQLiteCache) Stats(ctx context.Context) (*ports.CacheStats, error) {
	stats := &ports.CacheStats{
		HitCount:  atomic.LoadInt64(&s.hitCount),
		MissCount: atomic.LoadInt64(&s.missCount),
	}
	if total := stats.HitCount + stats.MissCount; total > 0 {
		stats.HitRate = float64(stats.HitCount) / float64(total) * 100
	}

	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM analysis_cache
		WHERE expires_at IS NULL OR expires_at > datetime('now')
	`).Scan(&stats.TotalEntries)
	if err != nil {
		return nil, err
	}

	var oldest, newest sql.NullTime
	err = s.db.QueryRowContext(ctx, `
		SELECT MIN(created_at), MAX(created_at) FROM analysis_cache
		WHERE expires_at IS NULL OR expires_at > datetime('now')
	`).Scan(&oldest, &newest)
	if err == nil {
		if oldest.Valid {
			stats.OldestEntry = oldest.Time
		}
		if newest.Valid {
			stats.NewestEntry = newest.Time
		}
	}

	return stats, nil
}

// Cleanup removes expired entries. Returns the number removed.
func (s *SQLiteCache) Cleanup(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM analysis_cache
		WHERE expires_at IS NOT NULL AND expires_at <= datetime('now')
	`)
	if err != nil {
		return 0, err
	}
	removed, _ := result.RowsAffected()
	return removed, nil
}

// Ensure SQLiteCache implements AnalysisCachePort
var _ ports.AnalysisCachePort = (*SQLiteCache)(nil)
