package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/topfloor/pkg/pipeline"
)

// graphCommand creates the graph command for exporting the vertical
// constraint graph.
func (c *CLI) graphCommand() *cobra.Command {
	var (
		flags     inputFlags
		format    string
		output    string
		noCache   bool
		edgesOnly bool
	)

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Export the vertical constraint graph",
		Long: `Export the vertical ordering constraints between pins as a Graphviz graph.

Each node is a participating pin, clustered by its cell. An edge p -> q means
pin q must sit above pin p. Pins at the same topological level share a rank.
Every participating pin is drawn; --edges-only leaves out pins without any
ordering constraint. Cyclic graphs are exported without ranks so the cycle can be inspected.`,
		Example: `  topfloor graph -d opamp.json -s opamp.sym -o opamp.dot
  topfloor graph -d opamp.json -f svg -o opamp.svg`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := pipeline.ValidateFormat(format); err != nil {
				return err
			}
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			opts := pipeline.FromConfig(cfg)
			opts.DesignPath = flags.design
			opts.SymNetPath = flags.symnet
			opts.Format = format
			opts.EdgesOnly = edgesOnly
			opts.Logger = c.Logger

			runner, err := c.newRunner(cmd.Context(), cfg, noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()
			return c.runGraph(cmd.Context(), runner, opts, output)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", pipeline.FormatDOT, "output format: dot, svg")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&edgesOnly, "edges-only", false, "omit pins without ordering constraints")
	completeValues(cmd)

	return cmd
}

func (c *CLI) runGraph(ctx context.Context, runner *pipeline.Runner, opts pipeline.Options, output string) error {
	res, err := runner.Graph(ctx, opts)
	if err != nil {
		return err
	}

	if output == "" {
		_, err := os.Stdout.Write(res.Data)
		return err
	}
	if err := os.WriteFile(output, res.Data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	printSuccess("Exported constraint graph")
	printFile(output)
	printStats(res.Nodes, res.Edges, res.CacheHit)
	return nil
}
