package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/topfloor/pkg/config"
	tfio "github.com/matzehuels/topfloor/pkg/io"
	"github.com/matzehuels/topfloor/pkg/pipeline"
)

// inputFlags are the design inputs shared by solve and graph.
type inputFlags struct {
	design string
	symnet string
}

func (f *inputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.design, "design", "d", "", "design file (JSON)")
	cmd.Flags().StringVarP(&f.symnet, "symnet", "s", "", "symmetric-net file (one 'primary secondary' pair per line)")
	_ = cmd.MarkFlagRequired("design")
}

// solveFlags are the solve command options that override the config file.
type solveFlags struct {
	inputFlags
	backend           string
	objective         string
	timeout           time.Duration
	resourcePerLength int64
	symmetryAxis      int64
	maxNodes          int
	output            string
	noCache           bool
	refresh           bool
	table             bool
}

// solveCommand creates the solve command.
func (c *CLI) solveCommand() *cobra.Command {
	var flags solveFlags

	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Assign pins to cell boundaries",
		Long: `Assign every participating pin to a left or right boundary slot of its cell.

Symmetric pairs from the --symnet file are mirrored around the symmetry axis,
pins of overlapping cells keep a consistent vertical order and each net stays
within its routing capacity. Results are cached locally; use --refresh to
solve again or --no-cache to bypass the cache entirely.

The command exits with status 2 when no floorplan satisfies the constraints.`,
		Example: `  topfloor solve -d opamp.json -s opamp.sym
  topfloor solve -d opamp.json -s opamp.sym --backend bnb -o result.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			opts, err := solveOptions(cmd, cfg, &flags)
			if err != nil {
				return err
			}
			opts.Logger = c.Logger
			runner, err := c.newRunner(cmd.Context(), cfg, flags.noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()
			return c.runSolve(cmd.Context(), runner, opts, flags)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&flags.backend, "backend", "", "solver backend: pb (default), bnb")
	cmd.Flags().StringVar(&flags.objective, "objective", "", "objective: total-resource (default), baseline-deviation, feasibility")
	cmd.Flags().DurationVar(&flags.timeout, "timeout", 0, "solver timeout (0 keeps the configured value)")
	cmd.Flags().Int64Var(&flags.resourcePerLength, "resource-per-length", 0, "length units per resource unit")
	cmd.Flags().Int64Var(&flags.symmetryAxis, "symmetry-axis", 0, "x coordinate of the symmetry axis (default: center of all cells)")
	cmd.Flags().IntVar(&flags.maxNodes, "max-nodes", 0, "branch-and-bound node limit (bnb backend)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "write the result report (JSON) to this file")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&flags.refresh, "refresh", false, "ignore cached results")
	cmd.Flags().BoolVar(&flags.table, "table", true, "print the placement table")
	completeValues(cmd)

	return cmd
}

// solveOptions merges the configuration with the flags that were set.
func solveOptions(cmd *cobra.Command, cfg config.Config, flags *solveFlags) (pipeline.Options, error) {
	opts := pipeline.FromConfig(cfg)
	opts.DesignPath = flags.design
	opts.SymNetPath = flags.symnet
	opts.Refresh = flags.refresh

	set := cmd.Flags().Changed
	if set("backend") {
		opts.Backend = flags.backend
	}
	if set("objective") {
		opts.Objective = flags.objective
	}
	if set("timeout") {
		opts.Timeout = flags.timeout
	}
	if set("resource-per-length") {
		opts.ResourcePerLength = flags.resourcePerLength
	}
	if set("symmetry-axis") {
		axis := flags.symmetryAxis
		opts.SymmetryAxis = &axis
	}
	if set("max-nodes") {
		opts.MaxNodes = flags.maxNodes
	}
	return opts, nil
}

// runSolve executes the pipeline and reports the outcome.
func (c *CLI) runSolve(ctx context.Context, runner *pipeline.Runner, opts pipeline.Options, flags solveFlags) error {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	prog := newProgress(c.Logger)
	spinner := newSolveSpinner(ctx, os.Stderr, opts.Backend, opts.Timeout)
	spinner.Start()

	res, err := runner.Execute(ctx, opts)
	spinner.StopWithOutcome(err)
	if err != nil {
		return err
	}
	prog.done("Solved " + res.Design)

	if flags.output != "" {
		if err := tfio.ExportReport(&res.Report, flags.output); err != nil {
			return err
		}
	}

	printReport(&res.Report, res.CacheInfo.Hit, flags.table)
	if flags.output != "" {
		printFile(flags.output)
	}
	if !res.Feasible() {
		return ErrInfeasible
	}
	if flags.output != "" {
		printNewline()
		printNextStep("Browse", appName+" view "+flags.output)
	}
	return nil
}

// printReport prints the outcome line, statistics and placement table.
func printReport(r *tfio.Report, cached bool, table bool) {
	if !r.Feasible() {
		printError("%s: no floorplan satisfies the constraints (%s)", r.Design, r.Outcome)
		printStats(r.Counts.Participating(), r.Stats.Edges, cached)
		return
	}
	printSuccess("%s: %s with objective %s", r.Design, r.Outcome, StyleNumber.Render(fmt.Sprint(r.Assignment.Objective)))
	printStats(r.Counts.Participating(), r.Stats.Edges, cached)
	if table {
		printNewline()
		fmt.Println(placementTable(r.Assignment.Placements, -1))
		if len(r.Assignment.Nets) > 0 {
			fmt.Println(netTable(r.Assignment.Nets))
		}
	}
}
