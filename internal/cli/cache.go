package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/topfloor/pkg/cache"
	"github.com/matzehuels/topfloor/pkg/config"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the result cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached results and graphs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			store, err := newCache(cmd.Context(), cfg.Cache)
			if err != nil {
				return fmt.Errorf("open cache: %w", err)
			}
			defer store.Close()

			clearer, ok := store.(cache.Clearer)
			if !ok {
				printInfo("Cache backend %q has nothing to clear", cfg.Cache.Backend)
				return nil
			}
			if err := clearer.Clear(cmd.Context()); err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}

			printSuccess("Cleared cache")
			printDetail("Backend: %s", describeCache(cfg.Cache))
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache location",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			fmt.Println(describeCache(cfg.Cache))
			return nil
		},
	}
}

// describeCache names where the configured cache lives.
func describeCache(cfg config.Cache) string {
	switch cfg.Backend {
	case config.CacheNone:
		return "disabled"
	case config.CacheRedis:
		return "redis://" + cfg.RedisAddr
	case config.CacheMongo:
		return cfg.MongoURI
	}
	if cfg.Dir != "" {
		return cfg.Dir
	}
	dir, err := cacheDir()
	if err != nil {
		return "disabled"
	}
	return dir
}
