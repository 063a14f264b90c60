package floorplan

import (
	"testing"

	"github.com/matzehuels/topfloor/pkg/constraint"
	"github.com/matzehuels/topfloor/pkg/errors"
	"github.com/matzehuels/topfloor/pkg/geom"
)

func TestCellSlots(t *testing.T) {
	slots := cellSlots(3, geom.NewBox(0, 100, 10000, 4100), 1000)
	if len(slots) != 8 {
		t.Fatalf("len = %d, want 8", len(slots))
	}
	tests := []struct {
		i    int
		want Slot
	}{
		{0, Slot{Cell: 3, Side: SideLeft, Track: 0, Pos: geom.Point{X: 0, Y: 600}}},
		{3, Slot{Cell: 3, Side: SideLeft, Track: 3, Pos: geom.Point{X: 0, Y: 3600}}},
		{4, Slot{Cell: 3, Side: SideRight, Track: 0, Pos: geom.Point{X: 10000, Y: 600}}},
	}
	for _, tt := range tests {
		if got := slots[tt.i]; got != tt.want {
			t.Errorf("slots[%d] = %+v, want %+v", tt.i, got, tt.want)
		}
	}

	if got := cellSlots(0, geom.NewBox(0, 0, 10, 999), 1000); len(got) != 0 {
		t.Errorf("short cell has %d slots, want 0", len(got))
	}
}

func TestNetCost(t *testing.T) {
	p := mustInit(t, mirrorDesign(t), mirrorPairs, DefaultConfig())
	// sig spans both cells; its reference point is (15000, 2000).
	s := Slot{Pos: geom.Point{X: 10000, Y: 1500}}
	if got := p.NetCost(0, s); got != 6 {
		t.Errorf("NetCost = %d, want 6", got)
	}
}

func TestBuildGraph(t *testing.T) {
	p := mustInit(t, stackDesign(t), nil, DefaultConfig())
	g, stats, err := BuildGraph(p)
	if err != nil {
		t.Fatal(err)
	}
	if !g.HasEdge(0, 1) || g.EdgeCount() != 1 {
		t.Errorf("edges = %v, want [0->1]", g.Edges())
	}
	if got := g.Label(1); got != "b.p" {
		t.Errorf("Label(1) = %q, want b.p", got)
	}
	if stats.Edges != 1 {
		t.Errorf("stats.Edges = %d", stats.Edges)
	}
	if groups := p.GraphGroups(); groups[0] != "a" || groups[1] != "b" {
		t.Errorf("GraphGroups = %v", groups)
	}

	mirror := mustInit(t, mirrorDesign(t), mirrorPairs, DefaultConfig())
	g, _, err = BuildGraph(mirror)
	if err != nil {
		t.Fatal(err)
	}
	if g.EdgeCount() != 0 {
		t.Errorf("disjoint cells produced edges %v", g.Edges())
	}

	if _, _, err := BuildGraph(nil); !errors.Is(err, errors.ErrCodeNotInitialized) {
		t.Errorf("BuildGraph(nil) = %v", err)
	}
}

func TestFormulateStats(t *testing.T) {
	p := mustInit(t, mirrorDesign(t), mirrorPairs, DefaultConfig())
	g, _, err := BuildGraph(p)
	if err != nil {
		t.Fatal(err)
	}
	obj, _ := LookupObjective(ObjectiveTotalResource)
	enc, err := Formulate(p, g, obj)
	if err != nil {
		t.Fatal(err)
	}
	want := FormulationStats{Vars: 32, Assignment: 4, Capacity: 16, Budget: 0, Symmetry: 8, Ordering: 0}
	if enc.Stats != want {
		t.Errorf("Stats = %+v, want %+v", enc.Stats, want)
	}
	if len(enc.Model.Objective) == 0 {
		t.Error("total-resource objective is empty")
	}

	none, _ := LookupObjective(ObjectiveFeasibility)
	enc, err = Formulate(p, g, none)
	if err != nil {
		t.Fatal(err)
	}
	if len(enc.Model.Objective) != 0 {
		t.Errorf("feasibility objective has %d terms", len(enc.Model.Objective))
	}
}

func TestFormulateRejectsCycle(t *testing.T) {
	p := mustInit(t, mirrorDesign(t), mirrorPairs, DefaultConfig())
	g := constraint.New(p.NumNodes())
	_ = g.AddEdge(0, 1)
	_ = g.AddEdge(1, 2)
	_ = g.AddEdge(2, 0)

	obj, _ := LookupObjective(ObjectiveTotalResource)
	enc, err := Formulate(p, g, obj)
	if !errors.Is(err, errors.ErrCodeGraphInconsistent) {
		t.Fatalf("err = %v, want GRAPH_INCONSISTENT", err)
	}
	if enc != nil {
		t.Error("no encoding should be returned")
	}

	if _, err := Formulate(p, constraint.New(1), obj); !errors.Is(err, errors.ErrCodeInternal) {
		t.Errorf("mismatched graph: err = %v", err)
	}
}

func TestReduce(t *testing.T) {
	p := mustInit(t, stackDesign(t), nil, DefaultConfig())
	g, _, _ := BuildGraph(p)
	obj, _ := LookupObjective(ObjectiveFeasibility)
	enc, err := Formulate(p, g, obj)
	if err != nil {
		t.Fatal(err)
	}
	order := enc.Model.Constraints[len(enc.Model.Constraints)-1]
	// Heights 500, 1500, ... share the divisor 500.
	if order.Terms[0].Coeff != 1 {
		t.Errorf("first ordering coefficient = %d, want 1 (%s)", order.Terms[0].Coeff, order)
	}
}

func TestLookupObjective(t *testing.T) {
	for _, name := range Objectives() {
		obj, err := LookupObjective(name)
		if err != nil {
			t.Errorf("LookupObjective(%q): %v", name, err)
			continue
		}
		if obj.Name() != name {
			t.Errorf("Name() = %q, want %q", obj.Name(), name)
		}
	}
	if _, err := LookupObjective("Bad Name"); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("err = %v, want INVALID_CONFIG", err)
	}
}
