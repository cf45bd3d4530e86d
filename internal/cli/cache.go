package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/octowire/pkg/cache"
	"github.com/matzehuels/octowire/pkg/config"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the ETag store",
		Long: `Manage the persistent ETag store.

With [etag] backend = "file" or "redis" octowire remembers the validator of
every GET, so watch and api --cached resume conditional requests across runs.`,
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Forget all stored ETags",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.config()
			if err != nil {
				return err
			}

			switch cfg.ETag.Backend {
			case config.BackendRedis:
				rc, err := cache.NewRedisCache(ctx, redisConfig(cfg))
				if err != nil {
					return err
				}
				defer rc.Close()
				if err := rc.Clear(ctx); err != nil {
					return fmt.Errorf("clear redis: %w", err)
				}
				printSuccess("Cleared ETag store")
				printDetail("Redis: %s (prefix %s)", cfg.Redis.Addr, cfg.Redis.Prefix)
			default:
				dir, err := etagDir(cfg)
				if err != nil {
					return fmt.Errorf("get cache dir: %w", err)
				}
				fc, err := cache.NewFileCache(dir)
				if err != nil {
					return err
				}
				if err := fc.Clear(ctx); err != nil {
					return fmt.Errorf("clear cache: %w", err)
				}
				printSuccess("Cleared ETag store")
				printDetail("Directory: %s", dir)
			}
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the ETag store directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			dir, err := etagDir(cfg)
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
}
