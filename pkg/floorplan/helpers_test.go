package floorplan

import (
	"testing"

	"github.com/matzehuels/topfloor/pkg/design"
	"github.com/matzehuels/topfloor/pkg/geom"
)

// mirrorDesign has two cells placed symmetrically around x = 15000, a
// symmetric pin pair on net "sig" and an asymmetric net "bias".
func mirrorDesign(t *testing.T) *design.Design {
	t.Helper()
	d := &design.Design{
		Name: "mirror",
		Cells: []design.Cell{
			{Name: "m1", BBox: geom.NewBox(0, 0, 10000, 4000)},
			{Name: "m2", BBox: geom.NewBox(20000, 0, 30000, 4000)},
		},
		Pins: []design.Pin{
			{Name: "m1.g", Cell: "m1", Net: "sig"},
			{Name: "m2.g", Cell: "m2", Net: "sig"},
			{Name: "m1.d", Cell: "m1", Net: "bias"},
			{Name: "m2.d", Cell: "m2", Net: "bias"},
			{Name: "m1.b", Cell: "m1", Net: "vss", Ignored: true},
			{Name: "m2.s", Cell: "m2", Net: "lonely"},
		},
	}
	if err := d.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	return d
}

var mirrorPairs = []design.SymPair{{Primary: "m1.g", Secondary: "m2.g"}}

// stackDesign has two horizontally overlapping cells, B starting above A,
// whose pins share a net. Baselines pull A's pin up and B's pin down.
func stackDesign(t *testing.T) *design.Design {
	t.Helper()
	d := &design.Design{
		Name: "stack",
		Cells: []design.Cell{
			{Name: "a", BBox: geom.NewBox(0, 0, 4000, 4000)},
			{Name: "b", BBox: geom.NewBox(0, 2000, 4000, 6000)},
		},
		Pins: []design.Pin{
			{Name: "a.p", Cell: "a", Net: "n", Baseline: &geom.Point{X: 0, Y: 3500}},
			{Name: "b.p", Cell: "b", Net: "n", Baseline: &geom.Point{X: 0, Y: 2500}},
		},
	}
	if err := d.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	return d
}

func mustInit(t *testing.T, d *design.Design, pairs []design.SymPair, cfg Config) *Problem {
	t.Helper()
	p, err := InitProblem(d, d, pairs, cfg)
	if err != nil {
		t.Fatalf("InitProblem: %v", err)
	}
	return p
}
