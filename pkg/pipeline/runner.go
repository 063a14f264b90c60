package pipeline

import (
	"bytes"
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/matzehuels/topfloor/pkg/cache"
	"github.com/matzehuels/topfloor/pkg/errors"
	"github.com/matzehuels/topfloor/pkg/floorplan"
	tfio "github.com/matzehuels/topfloor/pkg/io"
	"github.com/matzehuels/topfloor/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and HTTP service use it so that caching behaves the same.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
	// TTL is the lifetime of cached results.
	TTL time.Duration
	// Searches bounds concurrent pseudo-boolean searches across all runs.
	// A search abandoned on timeout keeps its slot until it ends. Nil
	// means no bound.
	Searches *semaphore.Weighted
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
		TTL:    cache.DefaultTTL,
	}
}

// Execute runs parse, initialize and solve with result caching.
//
// A feasible or infeasible outcome is returned as a Result. Configuration
// errors, graph inconsistencies and solver failures are returned as errors
// carrying their pkg/errors code.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	in, err := Parse(opts)
	if err != nil {
		return nil, err
	}
	hash, err := in.Hash()
	if err != nil {
		return nil, err
	}
	key := r.Keyer.ResultKey(hash, opts.ResultKeyOpts())

	if !opts.Refresh {
		if res, ok := r.cached(ctx, key); ok {
			opts.Logger.Info("using cached result", "design", res.Design, "outcome", res.Outcome)
			return res, nil
		}
	}

	p, err := r.initProblem(ctx, in, opts)
	if err != nil {
		return nil, err
	}

	newSolver, err := NewSolverFactory(opts.Backend, opts.MaxNodes, r.Searches)
	if err != nil {
		return nil, err
	}
	drv := floorplan.NewDriver(p, newSolver, floorplan.WithLogger(opts.Logger))

	hooks := observability.Pipeline()
	hooks.OnSolveStart(ctx, opts.Backend, p.NumNodes())
	start := time.Now()
	_, err = drv.Solve(ctx)
	stats := drv.Stats()
	if drv.Outcome() != floorplan.OutcomeNone {
		var graphErr error
		if drv.Outcome() == floorplan.OutcomeGraphInconsistent {
			graphErr = err
		}
		hooks.OnGraphBuilt(ctx, p.NumNodes(), stats.Edges, stats.GraphTime, graphErr)
	}
	hooks.OnSolveComplete(ctx, opts.Backend, drv.Outcome().String(), time.Since(start), err)
	if err != nil {
		opts.Logger.Warn("solve failed", "outcome", drv.Outcome(), "code", errors.GetCode(err))
		return nil, err
	}

	res := &Result{
		Report: tfio.Report{
			RunID:     uuid.NewString(),
			Design:    in.Design.Name,
			Backend:   opts.Backend,
			Objective: opts.Objective,
			Outcome:   drv.Outcome(),
			Counts:    p.Counts(),
			Pairs:     len(p.Pairs()),
			Stats:     stats,
			CreatedAt: time.Now().UTC(),
		},
		CacheInfo: CacheInfo{Key: key},
	}
	if asg, ok := drv.Assignment(); ok {
		res.Assignment = asg
	}
	opts.Logger.Info("solved floorplan",
		"design", res.Design,
		"outcome", res.Outcome,
		"edges", stats.Edges,
		"constraints", stats.Constraints,
		"duration", stats.SolveTime)

	r.store(ctx, key, &res.Report)
	return res, nil
}

// initProblem classifies pins and builds the problem.
func (r *Runner) initProblem(ctx context.Context, in Inputs, opts Options) (*floorplan.Problem, error) {
	hooks := observability.Pipeline()
	hooks.OnInitStart(ctx, in.Design.Name, in.Design.NumPins())
	start := time.Now()

	p, err := floorplan.InitProblem(in.Design, in.Design, in.Pairs, opts.FloorplanConfig())
	participating := 0
	if err == nil {
		participating = p.Counts().Participating()
	}
	hooks.OnInitComplete(ctx, in.Design.Name, participating, time.Since(start), err)
	if err != nil {
		return nil, err
	}

	c := p.Counts()
	opts.Logger.Debug("classified pins",
		"asym", c.Asym,
		"sym_primary", c.SymPrimary,
		"sym_secondary", c.SymSecondary,
		"other", c.Other,
		"nets", len(p.Nets()))
	return p, nil
}

// cached returns the stored result for key, if any. Read errors and
// corrupt entries count as misses.
func (r *Runner) cached(ctx context.Context, key string) (*Result, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Debug("cache read failed", "err", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, "result")
		return nil, false
	}
	report, err := tfio.ReadReport(bytes.NewReader(data))
	if err != nil {
		observability.Cache().OnCacheMiss(ctx, "result")
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, "result")
	return &Result{Report: *report, CacheInfo: CacheInfo{Hit: true, Key: key}}, true
}

// store writes report to the cache, retrying transient network errors.
// Failures are logged and otherwise ignored.
func (r *Runner) store(ctx context.Context, key string, report *tfio.Report) {
	var buf bytes.Buffer
	if err := tfio.WriteReport(report, &buf); err != nil {
		return
	}
	err := cache.RetryWithBackoff(ctx, func() error {
		return r.Cache.Set(ctx, key, buf.Bytes(), r.TTL)
	})
	if err != nil {
		r.Logger.Warn("cache write failed", "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, "result", buf.Len())
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
