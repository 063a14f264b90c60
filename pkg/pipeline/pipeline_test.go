package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/semaphore"

	"github.com/matzehuels/topfloor/pkg/cache"
	"github.com/matzehuels/topfloor/pkg/config"
	"github.com/matzehuels/topfloor/pkg/design"
	"github.com/matzehuels/topfloor/pkg/errors"
	"github.com/matzehuels/topfloor/pkg/floorplan"
	"github.com/matzehuels/topfloor/pkg/geom"
	"github.com/matzehuels/topfloor/pkg/observability"
)

func fileOpts() Options {
	return Options{
		DesignPath: "testdata/mirror.json",
		SymNetPath: "testdata/mirror.sym",
	}
}

func stackDesign() *design.Design {
	return &design.Design{
		Name: "stack",
		Cells: []design.Cell{
			{Name: "a", BBox: geom.NewBox(0, 0, 4000, 4000)},
			{Name: "b", BBox: geom.NewBox(0, 2000, 4000, 6000)},
		},
		Pins: []design.Pin{
			{Name: "a.p", Cell: "a", Net: "n"},
			{Name: "b.p", Cell: "b", Net: "n"},
		},
	}
}

func newFileRunner(t *testing.T) *Runner {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)
	r := NewRunner(c, nil, nil)
	t.Cleanup(func() { r.Close() })
	return r
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"dot", false},
		{"svg", false},
		{"png", true},
		{"DOT", true},
		{"", true},
	}
	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestNewSolverFactory(t *testing.T) {
	for _, b := range config.Backends() {
		f, err := NewSolverFactory(b, 10, semaphore.NewWeighted(1))
		if err != nil || f == nil {
			t.Errorf("NewSolverFactory(%q) = %v, %v", b, f, err)
		}
	}
	_, err := NewSolverFactory("cplex", 0, nil)
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("NewSolverFactory(cplex) = %v, want INVALID_CONFIG", err)
	}
}

func TestOptionsValidateAndSetDefaults(t *testing.T) {
	opts := fileOpts()
	require.NoError(t, opts.ValidateAndSetDefaults())
	assert.Equal(t, DefaultBackend, opts.Backend)
	assert.Equal(t, FormatDOT, opts.Format)
	assert.Equal(t, int64(floorplan.DefaultResourcePerLength), opts.ResourcePerLength)
	assert.Equal(t, floorplan.ObjectiveTotalResource, opts.Objective)
	assert.NotNil(t, opts.Logger)

	// Idempotent
	opts.Backend = "bogus"
	assert.NoError(t, opts.ValidateAndSetDefaults())
}

func TestOptionsValidationErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Options)
	}{
		{"no design", func(o *Options) { o.DesignPath = "" }},
		{"bad backend", func(o *Options) { o.Backend = "cplex" }},
		{"bad format", func(o *Options) { o.Format = "png" }},
		{"bad objective", func(o *Options) { o.Objective = "area" }},
		{"negative scale", func(o *Options) { o.ResourcePerLength = -1 }},
		{"negative nodes", func(o *Options) { o.MaxNodes = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := fileOpts()
			tt.mutate(&opts)
			err := opts.ValidateAndSetDefaults()
			assert.True(t, errors.Is(err, errors.ErrCodeInvalidConfig), "got %v", err)
		})
	}
}

func TestFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Solver.Backend = config.BackendBnB
	cfg.Solver.Timeout = config.Duration(5 * time.Second)

	opts := FromConfig(cfg)
	assert.Equal(t, config.BackendBnB, opts.Backend)
	assert.Equal(t, 5*time.Second, opts.Timeout)
	assert.Equal(t, cfg.Solver.MaxNodes, opts.ResultKeyOpts().MaxNodes)

	opts.Backend = config.BackendPB
	assert.Zero(t, opts.ResultKeyOpts().MaxNodes, "max nodes only matters for bnb")
}

func TestExecuteFeasibleAndCached(t *testing.T) {
	ctx := context.Background()
	r := newFileRunner(t)

	res, err := r.Execute(ctx, fileOpts())
	require.NoError(t, err)
	assert.False(t, res.CacheInfo.Hit)
	assert.True(t, res.Feasible())
	assert.Equal(t, "mirror", res.Design)
	assert.Equal(t, 1, res.Pairs)
	assert.Equal(t, floorplan.RoleCounts{Asym: 2, SymPrimary: 1, SymSecondary: 1, Other: 1}, res.Counts)
	assert.NotEmpty(t, res.RunID)
	require.Len(t, res.Assignment.Placements, 4)

	again, err := r.Execute(ctx, fileOpts())
	require.NoError(t, err)
	assert.True(t, again.CacheInfo.Hit)
	assert.Equal(t, res.CacheInfo.Key, again.CacheInfo.Key)
	assert.Equal(t, res.RunID, again.RunID)
	assert.Equal(t, res.Assignment.Placements, again.Assignment.Placements)

	opts := fileOpts()
	opts.Refresh = true
	fresh, err := r.Execute(ctx, opts)
	require.NoError(t, err)
	assert.False(t, fresh.CacheInfo.Hit)
	assert.NotEqual(t, res.RunID, fresh.RunID)
	assert.Equal(t, res.Assignment.Placements, fresh.Assignment.Placements)
}

func TestExecuteKeyDependsOnOptions(t *testing.T) {
	ctx := context.Background()
	r := newFileRunner(t)

	pb, err := r.Execute(ctx, fileOpts())
	require.NoError(t, err)

	opts := fileOpts()
	opts.Backend = config.BackendBnB
	bb, err := r.Execute(ctx, opts)
	require.NoError(t, err)

	assert.False(t, bb.CacheInfo.Hit)
	assert.NotEqual(t, pb.CacheInfo.Key, bb.CacheInfo.Key)
	assert.Equal(t, pb.Assignment.Objective, bb.Assignment.Objective)
}

func TestExecuteInfeasible(t *testing.T) {
	d := &design.Design{
		Name: "tight",
		Cells: []design.Cell{
			{Name: "m1", BBox: geom.NewBox(0, 0, 10000, 4000)},
			{Name: "m2", BBox: geom.NewBox(20000, 0, 30000, 4000)},
		},
		Pins: []design.Pin{
			{Name: "m1.g", Cell: "m1", Net: "sig"},
			{Name: "m2.g", Cell: "m2", Net: "sig"},
			{Name: "m1.d", Cell: "m1", Net: "bias"},
			{Name: "m2.d", Cell: "m2", Net: "bias"},
		},
		Nets: []design.Net{{Name: "bias", Capacity: 1}},
	}

	c, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)
	r := NewRunner(c, nil, nil)
	opts := Options{Design: d, Pairs: []design.SymPair{{Primary: "m1.g", Secondary: "m2.g"}}}

	res, err := r.Execute(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, floorplan.OutcomeInfeasible, res.Outcome)
	assert.False(t, res.Feasible())
	assert.Nil(t, res.Assignment)

	again, err := r.Execute(context.Background(), opts)
	require.NoError(t, err)
	assert.True(t, again.CacheInfo.Hit, "infeasible outcomes are cached")
	assert.Equal(t, floorplan.OutcomeInfeasible, again.Outcome)
}

func TestExecuteConfigErrors(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	ctx := context.Background()

	_, err := r.Execute(ctx, Options{
		Design: stackDesign(),
		Pairs:  []design.SymPair{{Primary: "a.p", Secondary: "ghost"}},
	})
	assert.True(t, errors.Is(err, errors.ErrCodeUnresolvedPin), "got %v", err)

	_, err = r.Execute(ctx, Options{DesignPath: "testdata/absent.json"})
	assert.True(t, errors.Is(err, errors.ErrCodeFileNotFound), "got %v", err)
}

func TestExecuteTimeout(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRunner(nil, nil, nil).Execute(ctx, fileOpts())
	assert.True(t, errors.Is(err, errors.ErrCodeTimeout), "got %v", err)
}

func TestExecuteWaitsForSearchSlot(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	r.Searches = semaphore.NewWeighted(1)
	require.True(t, r.Searches.TryAcquire(1))

	opts := Options{Design: stackDesign(), Backend: config.BackendPB, Timeout: 50 * time.Millisecond}
	_, err := r.Execute(context.Background(), opts)
	assert.True(t, errors.Is(err, errors.ErrCodeTimeout), "got %v", err)

	r.Searches.Release(1)
	res, err := r.Execute(context.Background(), opts)
	require.NoError(t, err)
	assert.True(t, res.Feasible())

	require.Eventually(t, func() bool {
		if r.Searches.TryAcquire(1) {
			r.Searches.Release(1)
			return true
		}
		return false
	}, 5*time.Second, 5*time.Millisecond)
}

func TestGraph(t *testing.T) {
	ctx := context.Background()
	r := newFileRunner(t)
	opts := Options{Design: stackDesign()}

	g, err := r.Graph(ctx, opts)
	require.NoError(t, err)
	assert.False(t, g.CacheHit)
	assert.Equal(t, 2, g.Nodes)
	assert.Equal(t, 1, g.Edges)
	dot := string(g.Data)
	assert.True(t, strings.HasPrefix(dot, "digraph constraints {"), dot)
	assert.Contains(t, dot, `label="a.p"`)
	assert.Contains(t, dot, "n0 -> n1;")

	cached, err := r.Graph(ctx, Options{Design: stackDesign()})
	require.NoError(t, err)
	assert.True(t, cached.CacheHit)
	assert.Equal(t, g.Data, cached.Data)
}

func TestGraphIncludesUnconstrainedPins(t *testing.T) {
	ctx := context.Background()
	r := newFileRunner(t)

	all, err := r.Graph(ctx, fileOpts())
	require.NoError(t, err)
	assert.Equal(t, 0, all.Edges)
	for _, pin := range []string{"m1.g", "m2.g", "m1.d", "m2.d"} {
		assert.Contains(t, string(all.Data), fmt.Sprintf("label=%q", pin))
	}
	assert.NotContains(t, string(all.Data), `label="m1.b"`, "ignored pins are not participating")

	opts := fileOpts()
	opts.EdgesOnly = true
	edges, err := r.Graph(ctx, opts)
	require.NoError(t, err)
	assert.False(t, edges.CacheHit, "edges-only export is cached separately")
	assert.NotContains(t, string(edges.Data), "label=")
}

type recordingHooks struct {
	observability.NoopPipelineHooks
	mu     sync.Mutex
	events []string
}

func (h *recordingHooks) record(e string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, e)
}

func (h *recordingHooks) OnInitStart(context.Context, string, int) { h.record("init") }
func (h *recordingHooks) OnGraphBuilt(context.Context, int, int, time.Duration, error) {
	h.record("graph")
}
func (h *recordingHooks) OnSolveStart(context.Context, string, int) { h.record("solve") }
func (h *recordingHooks) OnSolveComplete(_ context.Context, _, outcome string, _ time.Duration, _ error) {
	h.record("done:" + outcome)
}

func TestExecuteEmitsHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetPipelineHooks(hooks)
	defer observability.Reset()

	_, err := NewRunner(nil, nil, nil).Execute(context.Background(), fileOpts())
	require.NoError(t, err)
	assert.Equal(t, []string{"init", "solve", "graph", "done:feasible"}, hooks.events)
}
