package constraint

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/matzehuels/topfloor/pkg/geom"
)

// Pin is a participating pin as seen by the sweep: its graph node ID and
// the relation keys (net and symmetry-pair identifiers) it belongs to. Two
// pins are related when their key sets intersect.
type Pin struct {
	ID   int
	Keys []int
}

// Cell is a fixed cell box with the pins it owns.
type Cell struct {
	Box  geom.Box
	Pins []Pin
}

// SweepStats reports the work done by [Sweep].
type SweepStats struct {
	Events  int // open and close events processed
	Visited int // horizontally overlapping active cells inspected across all opens
	Pairs   int // overlapping cell pairs that produced at least one edge
	Edges   int // distinct edges in the resulting graph
}

type eventKind int

const (
	eventOpen eventKind = iota // opens sort first at equal y
	eventClose
)

type event struct {
	y    int64
	kind eventKind
	cell int
}

// Sweep builds the constraint graph for numNodes pins from the given cells.
//
// Sweep returns an error wrapping [ErrContradictoryEdge] when two pins would
// each have to lie below the other, or [ErrUnknownNode] when a pin ID is out
// of range. Cells with inverted boxes are rejected.
func Sweep(numNodes int, cells []Cell) (*Graph, SweepStats, error) {
	g := New(numNodes)
	var stats SweepStats

	events := make([]event, 0, 2*len(cells))
	for i, c := range cells {
		if !c.Box.Valid() {
			return nil, stats, fmt.Errorf("cell %d: inverted box %v", i, c.Box)
		}
		if len(c.Pins) == 0 {
			continue
		}
		events = append(events,
			event{y: c.Box.Bottom, kind: eventOpen, cell: i},
			event{y: c.Box.Top, kind: eventClose, cell: i},
		)
	}
	slices.SortFunc(events, func(a, b event) int {
		return cmp.Or(
			cmp.Compare(a.y, b.y),
			cmp.Compare(a.kind, b.kind),
			cmp.Compare(a.cell, b.cell),
		)
	})
	stats.Events = len(events)

	var active activeSet

	for _, ev := range events {
		a := &cells[ev.cell]
		switch ev.kind {
		case eventOpen:
			err := active.overlapping(a.Box.Left, a.Box.Right, func(b int) error {
				cb := &cells[b]
				stats.Visited++
				if !cb.Box.OverlapsX(a.Box) || cb.Box.Bottom >= a.Box.Bottom {
					return nil
				}
				added, err := link(g, cb.Pins, a.Pins)
				if added {
					stats.Pairs++
				}
				return err
			})
			if err != nil {
				return nil, stats, err
			}
			active.insert(ev.cell, a.Box.Left, a.Box.Right)

		case eventClose:
			active.remove(ev.cell, a.Box.Left)
		}
	}

	stats.Edges = g.EdgeCount()
	return g, stats, nil
}

// link adds below → above for every related pin pair and reports whether
// any pair was related.
func link(g *Graph, below, above []Pin) (bool, error) {
	related := false
	for _, p := range below {
		for _, q := range above {
			if !shareKey(p.Keys, q.Keys) {
				continue
			}
			related = true
			if err := g.AddEdge(p.ID, q.ID); err != nil {
				return related, err
			}
		}
	}
	return related, nil
}

func shareKey(a, b []int) bool {
	for _, k := range a {
		if slices.Contains(b, k) {
			return true
		}
	}
	return false
}
