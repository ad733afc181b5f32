package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/acklang/ack/internal/cache"
	"github.com/acklang/ack/internal/cli/output"
	"github.com/spf13/cobra"
)

// NewCacheCommand creates the cache command and its subcommands.
func NewCacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the build cache",
	}
	cmd.AddCommand(newCacheStatsCommand(), newCachePruneCommand(), newCacheClearCommand())
	return cmd
}

func withCache(cmd *cobra.Command, fn func(*CommandContext, *cache.Store) error) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	store := cache.NewStore(cmdCtx.Logger)
	if err := store.Open(cmdCtx.Cfg.CachePath); err != nil {
		return fmt.Errorf("failed to open build cache: %w", err)
	}
	defer func() { _ = store.Close() }()
	return fn(cmdCtx, store)
}

func newCacheStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show build cache statistics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withCache(cmd, func(c *CommandContext, store *cache.Store) error {
				stats, err := store.Stats(cmd.Context())
				if err != nil {
					return err
				}
				r := c.Renderer
				if r.EffectiveMode() == output.ModeJSON {
					return r.JSON(stats)
				}
				r.Header(1, "Build Cache")
				r.Table([]string{"Path", "Entries", "Bytes", "Hits"}, [][]string{{
					c.displayPath(store.Path()),
					strconv.Itoa(stats.Entries),
					strconv.FormatInt(stats.Bytes, 10),
					strconv.FormatInt(stats.Hits, 10),
				}})
				return nil
			})
		},
	}
}

func newCachePruneCommand() *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Remove cache entries not used recently",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withCache(cmd, func(c *CommandContext, store *cache.Store) error {
				n, err := store.Prune(cmd.Context(), time.Now().Add(-olderThan))
				if err != nil {
					return err
				}
				c.Renderer.Success(fmt.Sprintf("removed %d entries unused for %s", n, olderThan))
				return nil
			})
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 30*24*time.Hour, "Remove entries unused for this long")
	return cmd
}

func newCacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cache entry",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withCache(cmd, func(c *CommandContext, store *cache.Store) error {
				n, err := store.Clear(cmd.Context())
				if err != nil {
					return err
				}
				c.Renderer.Success(fmt.Sprintf("removed %d entries", n))
				return nil
			})
		},
	}
}
