package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ducktyper-ai/quacktokenscope/internal/presentation/cli/output"
)

// NewCacheCmd creates the cache management command.
func NewCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the analysis report cache",
		Long: `Manage the analysis report cache.

The cache stores per-tokenizer analysis reports keyed by a fingerprint of
the tokenizer name and the text, so repeated analyses of the same input
are served without re-tokenizing.`,
	}

	cmd.AddCommand(NewCacheStatsCmd())
	cmd.AddCommand(NewCacheClearCmd())
	cmd.AddCommand(NewCacheCleanupCmd())

	return cmd
}

// NewCacheStatsCmd creates the cache stats command.
func NewCacheStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show cache statistics",
		Long:  `Display statistics about the analysis cache including hit rate and entry counts.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			container := GetContainer()
			if container == nil {
				return fmt.Errorf("application not initialized")
			}
			formatter := GetFormatter()

			cache := container.AnalysisCache()
			if cache == nil {
				formatter.Warning("Cache is not enabled")
				return nil
			}

			stats, err := cache.Stats(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to get cache stats: %w", err)
			}

			if formatter.Format() == output.FormatJSON {
				return formatter.JSON(stats)
			}

			formatter.Header("Cache Statistics")
			formatter.Item("Entries", fmt.Sprintf("%d", stats.TotalEntries))
			formatter.Item("Hits", fmt.Sprintf("%d", stats.HitCount))
			formatter.Item("Misses", fmt.Sprintf("%d", stats.MissCount))
			formatter.Item("Hit Rate", fmt.Sprintf("%.1f%%", stats.HitRate))
			formatter.Item("Expired", fmt.Sprintf("%d", stats.ExpiredCount))

			if !stats.OldestEntry.IsZero() {
				formatter.Item("Oldest", fmt.Sprintf("%s ago", formatCacheDuration(time.Since(stats.OldestEntry))))
				formatter.Item("Newest", fmt.Sprintf("%s ago", formatCacheDuration(time.Since(stats.NewestEntry))))
			}

			return nil
		},
	}
}

// NewCacheClearCmd creates the cache clear command.
func NewCacheClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached report",
		RunE: func(cmd *cobra.Command, args []string) error {
			container := GetContainer()
			if container == nil {
				return fmt.Errorf("application not initialized")
			}
			formatter := GetFormatter()

			cache := container.AnalysisCache()
			if cache == nil {
				formatter.Warning("Cache is not enabled")
				return nil
			}

			if err := cache.Clear(cmd.Context()); err != nil {
				return fmt.Errorf("failed to clear cache: %w", err)
			}

			formatter.Success("Cache cleared")
			return nil
		},
	}
}

// NewCacheCleanupCmd creates the cache cleanup command.
func NewCacheCleanupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Remove expired cache entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			container := GetContainer()
			if container == nil {
				return fmt.Errorf("application not initialized")
			}
			formatter := GetFormatter()

			cache := container.AnalysisCache()
			if cache == nil {
				formatter.Warning("Cache is not enabled")
				return nil
			}

			removed, err := cache.Cleanup(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to clean up cache: %w", err)
			}

			formatter.Success("Removed %d expired entries", removed)
			return nil
		},
	}
}

// formatCacheDuration renders a duration in coarse human units.
func formatCacheDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%.1fh", d.Hours())
	default:
		return fmt.Sprintf("%.1fd", d.Hours()/24)
	}
}
