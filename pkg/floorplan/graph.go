package floorplan

import (
	"github.com/matzehuels/topfloor/pkg/constraint"
	"github.com/matzehuels/topfloor/pkg/errors"
)

// BuildGraph runs the vertical sweep over the problem's cells and returns
// the ordering constraint graph. Nodes are the participating pins in
// [Problem.NodePin] order and carry the pin names as labels.
//
// A contradictory edge fails with GRAPH_INCONSISTENT.
func BuildGraph(p *Problem) (*constraint.Graph, constraint.SweepStats, error) {
	if p == nil {
		return nil, constraint.SweepStats{}, errors.New(errors.ErrCodeNotInitialized, "problem is not initialized")
	}

	cells := make([]constraint.Cell, len(p.cells))
	for i, c := range p.cells {
		cells[i].Box = c.Box
	}
	for n, pin := range p.nodes {
		cell := p.pins[pin].Cell
		cells[cell].Pins = append(cells[cell].Pins, constraint.Pin{ID: n, Keys: p.relationKeys(pin)})
	}

	g, stats, err := constraint.Sweep(len(p.nodes), cells)
	if err != nil {
		return nil, stats, errors.Wrap(errors.ErrCodeGraphInconsistent, err, "build vertical constraint graph")
	}
	for n, pin := range p.nodes {
		g.SetLabel(n, p.pins[pin].Name)
	}
	return g, stats, nil
}

// GraphGroups maps every graph node to its cell name, for [constraint.ToDOT].
func (p *Problem) GraphGroups() map[int]string {
	groups := make(map[int]string, len(p.nodes))
	for n, pin := range p.nodes {
		groups[n] = p.cells[p.pins[pin].Cell].Name
	}
	return groups
}
