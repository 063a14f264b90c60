package floorplan

import (
	"fmt"

	"github.com/matzehuels/topfloor/pkg/design"
	"github.com/matzehuels/topfloor/pkg/errors"
	"github.com/matzehuels/topfloor/pkg/geom"
)

const (
	// NoNet marks a pin outside every kept net.
	NoNet = -1
	// NoPair marks a pin outside every symmetry pair.
	NoPair = -1
	// NoNode marks a pin that is not a constraint graph node.
	NoNode = -1
)

// Cell is a fixed cell of the problem.
type Cell struct {
	Name string
	Box  geom.Box
}

// Pin is a classified pin.
type Pin struct {
	Name string
	Role Role
	// Index is the role-local index: the asymmetric pin counter for
	// RoleAsym, the pair index for the symmetric roles, -1 otherwise.
	Index int
	Cell  int
	// Net is the index into [Problem.Nets] or NoNet.
	Net int
	// Pair is the index into [Problem.Pairs] or NoPair.
	Pair     int
	Baseline *geom.Point
}

// Net is a kept net: at least two participating pins.
type Net struct {
	Name string
	// Capacity is the routing budget in resource units; 0 means unbounded.
	Capacity int64
	// Pins are indices into the problem's pins.
	Pins []int
}

// Pair is a resolved symmetry pair of pin indices.
type Pair struct {
	Primary   int
	Secondary int
}

// Problem is an immutable, fully classified floorplan instance. It is only
// created by [InitProblem]; a nil *Problem is an uninitialized problem.
type Problem struct {
	cfg    Config
	cells  []Cell
	pins   []Pin
	nets   []Net
	pairs  []Pair
	counts RoleCounts

	nodes  []int // graph node -> pin
	nodeOf []int // pin -> graph node or NoNode
	slots  [][]Slot
	bounds geom.Box
	axis2  int64
	netRef []geom.Point // doubled reference point per kept net
}

// InitProblem builds a problem from the design database, the circuit graph
// and the resolved symmetry declarations.
//
// Every failure is a configuration error (INVALID_INPUT, INVALID_CONFIG or
// UNRESOLVED_PIN) and no problem is returned.
func InitProblem(db design.DesignDB, ckt design.CircuitGraph, pairs []design.SymPair, cfg Config) (*Problem, error) {
	if db == nil || ckt == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "design database and circuit graph are required")
	}
	if err := cfg.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	p := &Problem{cfg: cfg}
	p.cells = make([]Cell, db.NumCells())
	boxes := make([]geom.Box, len(p.cells))
	for i := range p.cells {
		box := db.CellBBox(i)
		if !box.Valid() {
			return nil, errors.New(errors.ErrCodeInvalidInput, "cell %q has inverted bounding box %v", db.CellName(i), box)
		}
		p.cells[i] = Cell{Name: db.CellName(i), Box: box}
		boxes[i] = box
	}
	p.bounds = geom.Bounds(boxes)

	c, err := classify(ckt, len(p.cells), pairs)
	if err != nil {
		return nil, err
	}
	p.pins, p.nets, p.pairs, p.counts = c.pins, c.nets, c.pairs, c.counts

	p.nodeOf = make([]int, len(p.pins))
	for i, pin := range p.pins {
		p.nodeOf[i] = NoNode
		if pin.Role.Participates() {
			p.nodeOf[i] = len(p.nodes)
			p.nodes = append(p.nodes, i)
		}
	}

	if cfg.SymmetryAxis != nil {
		p.axis2 = 2 * *cfg.SymmetryAxis
	} else {
		p.axis2 = p.bounds.Left + p.bounds.Right
	}

	p.slots = make([][]Slot, len(p.cells))
	for i, cell := range p.cells {
		p.slots[i] = cellSlots(i, cell.Box, cfg.ResourcePerLength)
	}

	p.netRef = make([]geom.Point, len(p.nets))
	for i, net := range p.nets {
		var box geom.Box
		for j, pin := range net.Pins {
			cb := p.cells[p.pins[pin].Cell].Box
			if j == 0 {
				box = cb
			} else {
				box = box.Union(cb)
			}
		}
		p.netRef[i] = box.Center2()
	}
	return p, nil
}

// Config returns the problem configuration with defaults applied.
func (p *Problem) Config() Config { return p.cfg }

// NumCells returns the number of cells.
func (p *Problem) NumCells() int { return len(p.cells) }

// Cell returns cell i.
func (p *Problem) Cell(i int) Cell { return p.cells[i] }

// NumPins returns the number of pins of every role.
func (p *Problem) NumPins() int { return len(p.pins) }

// Pin returns pin i.
func (p *Problem) Pin(i int) Pin { return p.pins[i] }

// Nets returns the kept nets.
func (p *Problem) Nets() []Net { return p.nets }

// Pairs returns the symmetry pairs in declaration order.
func (p *Problem) Pairs() []Pair { return p.pairs }

// Counts returns the number of pins per role.
func (p *Problem) Counts() RoleCounts { return p.counts }

// Bounds returns the union of all cell boxes.
func (p *Problem) Bounds() geom.Box { return p.bounds }

// Axis2 returns twice the x coordinate of the symmetry axis.
func (p *Problem) Axis2() int64 { return p.axis2 }

// NumNodes returns the number of participating pins, which are the nodes
// of the constraint graph.
func (p *Problem) NumNodes() int { return len(p.nodes) }

// NodePin returns the pin index of graph node n.
func (p *Problem) NodePin(n int) int { return p.nodes[n] }

// PinNode returns the graph node of pin i, or NoNode.
func (p *Problem) PinNode(i int) int { return p.nodeOf[i] }

// Slots returns the candidate slots of cell i.
func (p *Problem) Slots(cell int) []Slot { return p.slots[cell] }

// relationKeys returns the keys relating pin i to other pins: its kept net
// and its symmetry pair, offset past the net ids.
func (p *Problem) relationKeys(i int) []int {
	pin := p.pins[i]
	var keys []int
	if pin.Net != NoNet {
		keys = append(keys, pin.Net)
	}
	if pin.Pair != NoPair {
		keys = append(keys, len(p.nets)+pin.Pair)
	}
	return keys
}

// Reflect mirrors pt across the symmetry axis.
func (p *Problem) Reflect(pt geom.Point) geom.Point {
	return geom.Point{X: p.axis2 - pt.X, Y: pt.Y}
}

func (p *Problem) String() string {
	return fmt.Sprintf("problem{cells=%d pins=%d asym=%d pairs=%d nets=%d}",
		len(p.cells), len(p.pins), p.counts.Asym, len(p.pairs), len(p.nets))
}
