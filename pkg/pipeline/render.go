package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/topfloor/pkg/constraint"
	"github.com/matzehuels/topfloor/pkg/errors"
	"github.com/matzehuels/topfloor/pkg/floorplan"
	"github.com/matzehuels/topfloor/pkg/observability"
)

// GraphResult is an exported vertical constraint graph.
type GraphResult struct {
	Format   string
	Data     []byte
	Nodes    int
	Edges    int
	CacheHit bool
}

// Graph builds the vertical constraint graph of the inputs and renders it
// in opts.Format. The graph is exported even when it has a cycle, so that
// the cycle can be inspected; a contradictory edge found during the sweep
// fails with GRAPH_INCONSISTENT.
func (r *Runner) Graph(ctx context.Context, opts Options) (*GraphResult, error) {
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
	variant := opts.Format
	if opts.EdgesOnly {
		variant += "/edges"
	}
	key := r.Keyer.GraphKey(hash, variant)

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "graph")
			return &GraphResult{Format: opts.Format, Data: data, CacheHit: true}, nil
		}
		observability.Cache().OnCacheMiss(ctx, "graph")
	}

	p, err := r.initProblem(ctx, in, opts)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	g, _, err := floorplan.BuildGraph(p)
	observability.Pipeline().OnGraphBuilt(ctx, p.NumNodes(), edgeCount(g), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	if cycle := g.FindCycle(); cycle != nil {
		opts.Logger.Warn("constraint graph has a cycle", "length", len(cycle))
	}

	data, err := Render(ctx, g, p, opts.Format, !opts.EdgesOnly)
	if err != nil {
		return nil, err
	}

	if err := r.Cache.Set(ctx, key, data, r.TTL); err == nil {
		observability.Cache().OnCacheSet(ctx, "graph", len(data))
	}
	return &GraphResult{
		Format: opts.Format,
		Data:   data,
		Nodes:  g.NodeCount(),
		Edges:  g.EdgeCount(),
	}, nil
}

// Render converts g into the given export format. With isolated set, pins
// without any ordering constraint are drawn as well.
func Render(ctx context.Context, g *constraint.Graph, p *floorplan.Problem, format string, isolated bool) ([]byte, error) {
	dot := constraint.ToDOT(g, constraint.DOTOptions{
		Isolated: isolated,
		Groups:   p.GraphGroups(),
	})
	switch format {
	case FormatDOT:
		return []byte(dot), nil
	case FormatSVG:
		svg, err := constraint.RenderSVG(ctx, dot)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "render svg")
		}
		return svg, nil
	default:
		return nil, ValidateFormat(format)
	}
}

func edgeCount(g *constraint.Graph) int {
	if g == nil {
		return 0
	}
	return g.EdgeCount()
}
