package constraint

import (
	"errors"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/matzehuels/topfloor/pkg/geom"
)

// net is a shorthand for a pin related through a single key.
func net(id, key int) Pin { return Pin{ID: id, Keys: []int{key}} }

func TestSweep(t *testing.T) {
	tests := []struct {
		name  string
		cells []Cell
		want  []Edge
	}{
		{
			name: "overlapping stack",
			cells: []Cell{
				{Box: geom.NewBox(0, 0, 10, 10), Pins: []Pin{net(0, 7)}},
				{Box: geom.NewBox(5, 5, 15, 15), Pins: []Pin{net(1, 7)}},
			},
			want: []Edge{{0, 1}},
		},
		{
			name: "horizontally disjoint",
			cells: []Cell{
				{Box: geom.NewBox(0, 0, 10, 10), Pins: []Pin{net(0, 7)}},
				{Box: geom.NewBox(20, 5, 30, 15), Pins: []Pin{net(1, 7)}},
			},
		},
		{
			name: "horizontally abutting",
			cells: []Cell{
				{Box: geom.NewBox(0, 0, 10, 10), Pins: []Pin{net(0, 7)}},
				{Box: geom.NewBox(10, 5, 20, 15), Pins: []Pin{net(1, 7)}},
			},
		},
		{
			name: "vertically abutting still constrain",
			cells: []Cell{
				{Box: geom.NewBox(0, 10, 10, 20), Pins: []Pin{net(1, 7)}},
				{Box: geom.NewBox(0, 0, 10, 10), Pins: []Pin{net(0, 7)}},
			},
			want: []Edge{{0, 1}},
		},
		{
			name: "vertically separated",
			cells: []Cell{
				{Box: geom.NewBox(0, 0, 10, 10), Pins: []Pin{net(0, 7)}},
				{Box: geom.NewBox(0, 11, 10, 20), Pins: []Pin{net(1, 7)}},
			},
		},
		{
			name: "same bottom",
			cells: []Cell{
				{Box: geom.NewBox(0, 0, 10, 10), Pins: []Pin{net(0, 7)}},
				{Box: geom.NewBox(5, 0, 15, 20), Pins: []Pin{net(1, 7)}},
			},
		},
		{
			name: "unrelated pins",
			cells: []Cell{
				{Box: geom.NewBox(0, 0, 10, 10), Pins: []Pin{net(0, 1)}},
				{Box: geom.NewBox(0, 5, 10, 15), Pins: []Pin{net(1, 2)}},
			},
		},
		{
			name: "zero height cell inside taller cell",
			cells: []Cell{
				{Box: geom.NewBox(0, 0, 10, 10), Pins: []Pin{net(0, 7)}},
				{Box: geom.NewBox(2, 5, 8, 5), Pins: []Pin{net(1, 7)}},
			},
			want: []Edge{{0, 1}},
		},
		{
			name: "zero width cell on edge",
			cells: []Cell{
				{Box: geom.NewBox(0, 0, 10, 10), Pins: []Pin{net(0, 7)}},
				{Box: geom.NewBox(10, 5, 10, 15), Pins: []Pin{net(1, 7)}},
			},
			want: []Edge{{0, 1}},
		},
		{
			name: "multiple keys and pins",
			cells: []Cell{
				{Box: geom.NewBox(0, 0, 10, 10), Pins: []Pin{net(0, 1), {ID: 1, Keys: []int{2, 3}}}},
				{Box: geom.NewBox(0, 5, 10, 15), Pins: []Pin{net(2, 3), net(3, 1), net(4, 9)}},
			},
			want: []Edge{{0, 3}, {1, 2}},
		},
		{
			name: "chain of three",
			cells: []Cell{
				{Box: geom.NewBox(0, 10, 10, 30), Pins: []Pin{net(1, 7)}},
				{Box: geom.NewBox(0, 0, 10, 15), Pins: []Pin{net(0, 7)}},
				{Box: geom.NewBox(0, 20, 10, 40), Pins: []Pin{net(2, 7)}},
			},
			want: []Edge{{0, 1}, {1, 2}},
		},
		{
			name: "closed cell is not revisited",
			cells: []Cell{
				{Box: geom.NewBox(0, 0, 100, 10), Pins: []Pin{net(0, 7)}},
				{Box: geom.NewBox(0, 5, 10, 50), Pins: []Pin{net(1, 7)}},
				{Box: geom.NewBox(0, 20, 100, 30), Pins: []Pin{net(2, 7)}},
			},
			want: []Edge{{0, 1}, {1, 2}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := 0
			for _, c := range tt.cells {
				n += len(c.Pins)
			}
			g, stats, err := Sweep(n, tt.cells)
			if err != nil {
				t.Fatalf("Sweep: %v", err)
			}
			if g.EdgeCount() != len(tt.want) {
				t.Fatalf("edges = %v, want %v", g.Edges(), tt.want)
			}
			for _, e := range tt.want {
				if !g.HasEdge(e.From, e.To) {
					t.Errorf("missing edge %v in %v", e, g.Edges())
				}
			}
			if stats.Edges != len(tt.want) {
				t.Errorf("stats.Edges = %d, want %d", stats.Edges, len(tt.want))
			}
		})
	}
}

func TestSweepContradiction(t *testing.T) {
	// Pin 0 appears in two cells, one below and one above the cell owning
	// pin 1, so it must be both below and above pin 1.
	cells := []Cell{
		{Box: geom.NewBox(0, 0, 10, 7), Pins: []Pin{net(0, 7)}},
		{Box: geom.NewBox(0, 5, 10, 15), Pins: []Pin{net(1, 7)}},
		{Box: geom.NewBox(0, 8, 10, 20), Pins: []Pin{net(0, 7)}},
	}
	_, _, err := Sweep(2, cells)
	if !errors.Is(err, ErrContradictoryEdge) {
		t.Fatalf("Sweep = %v, want ErrContradictoryEdge", err)
	}
}

func TestSweepRejectsInvertedBox(t *testing.T) {
	cells := []Cell{{Box: geom.Box{Left: 0, Bottom: 10, Right: 10, Top: 0}, Pins: []Pin{net(0, 1)}}}
	if _, _, err := Sweep(1, cells); err == nil {
		t.Fatal("expected error for inverted box")
	}
}

func TestSweepDeterministic(t *testing.T) {
	cells := []Cell{
		{Box: geom.NewBox(0, 0, 50, 10), Pins: []Pin{net(0, 1), net(1, 2)}},
		{Box: geom.NewBox(10, 5, 20, 25), Pins: []Pin{net(2, 1)}},
		{Box: geom.NewBox(30, 5, 40, 25), Pins: []Pin{net(3, 2)}},
		{Box: geom.NewBox(0, 20, 50, 30), Pins: []Pin{net(4, 1), net(5, 2)}},
	}
	g1, _, err := Sweep(6, cells)
	if err != nil {
		t.Fatal(err)
	}
	g2, _, err := Sweep(6, cells)
	if err != nil {
		t.Fatal(err)
	}
	e1, e2 := g1.Edges(), g2.Edges()
	if len(e1) != len(e2) {
		t.Fatalf("edge counts differ: %d vs %d", len(e1), len(e2))
	}
	for i := range e1 {
		if e1[i] != e2[i] {
			t.Errorf("edge %d: %v vs %v", i, e1[i], e2[i])
		}
	}
	if err := g1.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestSweepVisitsOnlyOverlapping(t *testing.T) {
	// A row of vertically overlapping but horizontally disjoint cells must
	// not cost a comparison per active pair.
	const n = 2000
	cells := make([]Cell, n)
	for i := range cells {
		x := int64(i) * 20
		cells[i] = Cell{Box: geom.NewBox(x, int64(i), x+10, int64(i)+n), Pins: []Pin{net(i, 7)}}
	}
	g, stats, err := Sweep(n, cells)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if g.EdgeCount() != 0 {
		t.Errorf("edges = %d, want 0", g.EdgeCount())
	}
	if stats.Visited != 0 {
		t.Errorf("Visited = %d, want 0", stats.Visited)
	}

	// Cells abutting their neighbour are candidates but still linear.
	for i := range cells {
		x := int64(i) * 10
		cells[i].Box = geom.NewBox(x, int64(i), x+10, int64(i)+n)
	}
	_, stats, err = Sweep(n, cells)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if stats.Visited > n {
		t.Errorf("Visited = %d, want at most %d", stats.Visited, n)
	}
}

func TestSweepMatchesPairwise(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	const n = 300
	cells := make([]Cell, n)
	for i := range cells {
		x, y := rng.Int64N(1000), rng.Int64N(1000)
		w, h := rng.Int64N(80), rng.Int64N(80)
		cells[i] = Cell{Box: geom.NewBox(x, y, x+w, y+h), Pins: []Pin{net(i, i%3)}}
	}

	g, _, err := Sweep(n, cells)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}

	var want []Edge
	for b := range cells {
		for a := range cells {
			bb, ab := cells[b].Box, cells[a].Box
			if b == a || b%3 != a%3 {
				continue
			}
			if bb.Bottom < ab.Bottom && ab.Bottom <= bb.Top && bb.OverlapsX(ab) {
				want = append(want, Edge{From: b, To: a})
			}
		}
	}
	cmpEdge := func(x, y Edge) int {
		if x.From != y.From {
			return x.From - y.From
		}
		return x.To - y.To
	}
	got := g.Edges()
	slices.SortFunc(got, cmpEdge)
	slices.SortFunc(want, cmpEdge)
	if !slices.Equal(got, want) {
		t.Errorf("Sweep found %d edges, pairwise check %d", len(got), len(want))
	}
}
