package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/semaphore"

	"github.com/matzehuels/topfloor/internal/server"
	"github.com/matzehuels/topfloor/pkg/cache"
	"github.com/matzehuels/topfloor/pkg/config"
	"github.com/matzehuels/topfloor/pkg/pipeline"
)

// apiKeyPrefix separates HTTP service cache entries from CLI entries.
const apiKeyPrefix = "api:"

// serveCommand creates the serve command for running the HTTP service.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP solve service",
		Long: `Run an HTTP service that solves floorplans posted as JSON.

Endpoints:
  POST /v1/solve   solve a design, returns the result report
  POST /v1/graph   export the vertical constraint graph
  GET  /healthz    liveness probe

Options a request leaves unset come from the configuration file.`,
		Example: `  topfloor serve --addr :8080 -c topfloor.toml`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if noCache {
				cfg.Cache.Backend = config.CacheNone
			}
			store, err := newCache(cmd.Context(), cfg.Cache)
			if err != nil {
				return fmt.Errorf("open cache: %w", err)
			}

			runner := pipeline.NewRunner(store, cache.NewScopedKeyer(nil, apiKeyPrefix), c.Logger)
			if ttl := cfg.Cache.TTL.Std(); ttl > 0 {
				runner.TTL = ttl
			}
			runner.Searches = semaphore.NewWeighted(int64(cfg.Solver.MaxSearches))
			defer runner.Close()

			c.Logger.Debug("cache", "backend", describeCache(cfg.Cache))
			return server.New(runner, cfg, c.Logger).ListenAndServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}
