// Package pipeline runs the complete floorplanning flow for the CLI and the
// HTTP service.
//
// The flow has three stages:
//
//  1. Parse: read the design and the symmetric-net declaration, either from
//     files or from values supplied inline
//  2. Initialize: classify pins and build the immutable problem
//  3. Solve: build the constraint graph and the ILP and run a backend
//
// Results are cached by a content hash of the inputs together with every
// option that changes the answer, so repeated runs on unchanged inputs skip
// the solver. Infeasible outcomes are cached as well; graph and solver
// errors are not.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	opts := pipeline.Options{
//	    DesignPath: "opamp.json",
//	    SymNetPath: "opamp.sym",
//	    Backend:    "pb",
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if result.Feasible() {
//	    fmt.Println(result.Assignment.Objective)
//	}
//
// [Runner.Graph] exports the vertical constraint graph as DOT or SVG
// without solving.
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/topfloor/pkg/cache"
	"github.com/matzehuels/topfloor/pkg/config"
	"github.com/matzehuels/topfloor/pkg/design"
	"github.com/matzehuels/topfloor/pkg/errors"
	"github.com/matzehuels/topfloor/pkg/floorplan"
	tfio "github.com/matzehuels/topfloor/pkg/io"
)

// =============================================================================
// Default Values
// =============================================================================

// DefaultBackend is the solver backend used when none is configured.
const DefaultBackend = config.BackendPB

// Graph export formats.
const (
	FormatDOT = "dot"
	FormatSVG = "svg"
)

// ValidFormats is the set of supported graph export formats.
var ValidFormats = map[string]bool{
	FormatDOT: true,
	FormatSVG: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one pipeline run. Inputs come
// either from files (DesignPath, SymNetPath) or inline (Design, Pairs);
// inline values win. The JSON form is the HTTP request body.
type Options struct {
	// Inputs
	DesignPath string           `json:"-"`
	SymNetPath string           `json:"-"`
	Design     *design.Design   `json:"design,omitempty"`
	Pairs      []design.SymPair `json:"pairs,omitempty"`

	// Problem options
	ResourcePerLength int64  `json:"resource_per_length,omitempty"`
	Objective         string `json:"objective,omitempty"`
	SymmetryAxis      *int64 `json:"symmetry_axis,omitempty"`

	// Solver options
	Backend  string        `json:"backend,omitempty"`
	Timeout  time.Duration `json:"-"`
	MaxNodes int           `json:"max_nodes,omitempty"`

	// Graph export
	Format string `json:"format,omitempty"`
	// EdgesOnly leaves pins without ordering constraints out of the export.
	EdgesOnly bool `json:"edges_only,omitempty"`

	// Refresh bypasses cached results (the new result is still stored).
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// FromConfig returns options initialized from a loaded configuration.
func FromConfig(cfg config.Config) Options {
	return Options{
		ResourcePerLength: cfg.Problem.ResourcePerLength,
		Objective:         cfg.Problem.Objective,
		SymmetryAxis:      cfg.Problem.SymmetryAxis,
		Backend:           cfg.Solver.Backend,
		Timeout:           cfg.Solver.Timeout.Std(),
		MaxNodes:          cfg.Solver.MaxNodes,
	}
}

// Result contains the outputs of a pipeline run.
type Result struct {
	tfio.Report

	// CacheInfo tells whether the report came from the cache.
	CacheInfo CacheInfo `json:"cache"`
}

// CacheInfo describes the cache lookup of a run.
type CacheInfo struct {
	Hit bool   `json:"hit"`
	Key string `json:"key"`
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a graph export format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidConfig, "invalid format: %q (must be one of: dot, svg)", format)
	}
	return nil
}

// ValidateBackend checks that a solver backend is known.
func ValidateBackend(backend string) error {
	if _, err := NewSolverFactory(backend, 0, nil); err != nil {
		return err
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks the options and applies defaults. It is
// idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Design == nil && o.DesignPath == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "design or design path is required")
	}
	if o.Backend == "" {
		o.Backend = DefaultBackend
	}
	if err := ValidateBackend(o.Backend); err != nil {
		return err
	}
	if o.MaxNodes < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "max nodes must not be negative, got %d", o.MaxNodes)
	}
	if o.Format == "" {
		o.Format = FormatDOT
	}
	if err := ValidateFormat(o.Format); err != nil {
		return err
	}

	cfg := o.FloorplanConfig()
	if err := cfg.ValidateAndSetDefaults(); err != nil {
		return err
	}
	o.ResourcePerLength = cfg.ResourcePerLength
	o.Objective = cfg.Objective

	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// FloorplanConfig returns the problem configuration for these options.
func (o *Options) FloorplanConfig() floorplan.Config {
	return floorplan.Config{
		ResourcePerLength: o.ResourcePerLength,
		Objective:         o.Objective,
		SymmetryAxis:      o.SymmetryAxis,
		Timeout:           o.Timeout,
	}
}

// ResultKeyOpts returns cache key options for solve results.
func (o *Options) ResultKeyOpts() cache.ResultKeyOpts {
	opts := cache.ResultKeyOpts{
		Backend:           o.Backend,
		Objective:         o.Objective,
		ResourcePerLength: o.ResourcePerLength,
		SymmetryAxis:      o.SymmetryAxis,
	}
	if o.Backend == config.BackendBnB {
		opts.MaxNodes = o.MaxNodes
	}
	return opts
}
