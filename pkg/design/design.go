package design

import (
	"fmt"

	"github.com/matzehuels/topfloor/pkg/errors"
	"github.com/matzehuels/topfloor/pkg/geom"
)

// NoNet marks a pin that is not connected to any net.
const NoNet = -1

// DesignDB is the read-only view of the fixed cell placement.
type DesignDB interface {
	NumCells() int
	CellName(i int) string
	CellBBox(i int) geom.Box
}

// CircuitGraph is the read-only view of pins and nets.
type CircuitGraph interface {
	NumPins() int
	Pin(i int) PinInfo
	NumNets() int
	Net(i int) NetInfo
}

// PinInfo describes one pin in circuit-native form.
type PinInfo struct {
	Name string
	Cell int // index into the DesignDB cells
	Net  int // index into the CircuitGraph nets, or NoNet
	// Ignored pins (supplies, bulk ties) never take part in the floorplan.
	Ignored bool
	// Baseline is the pin's location in the original layout, if known.
	Baseline *geom.Point
}

// NetInfo describes one net.
type NetInfo struct {
	Name string
	// Capacity is the routing budget in resource units; 0 means unbounded.
	Capacity int64
}

// SymPair declares two pins that must be mirror images of each other.
type SymPair struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
}

func (p SymPair) String() string { return p.Primary + "<->" + p.Secondary }

// =============================================================================
// Design - JSON-backed implementation
// =============================================================================

// Cell is a placed sub-block.
type Cell struct {
	Name string   `json:"name"`
	BBox geom.Box `json:"bbox"`
}

// Pin is a sub-block pin. Cell and Net refer to entries by name.
type Pin struct {
	Name     string      `json:"name"`
	Cell     string      `json:"cell"`
	Net      string      `json:"net,omitempty"`
	Ignored  bool        `json:"ignored,omitempty"`
	Baseline *geom.Point `json:"baseline,omitempty"`
}

// Net is a named net with an optional capacity.
type Net struct {
	Name     string `json:"name"`
	Capacity int64  `json:"capacity,omitempty"`
}

// Design is the serializable design description. Call [Design.Validate]
// after decoding and before using it as a [DesignDB] or
// [CircuitGraph].
type Design struct {
	Name  string `json:"name,omitempty"`
	Cells []Cell `json:"cells"`
	Pins  []Pin  `json:"pins"`
	Nets  []Net  `json:"nets,omitempty"`

	cellIdx map[string]int
	netIdx  map[string]int
	pins    []PinInfo
}

// Validate checks names, boxes and references, and builds the lookup
// indices. Nets referenced by pins but not declared in Nets are added with
// unbounded capacity. Returns an INVALID_INPUT error on the first problem.
func (d *Design) Validate() error {
	d.cellIdx = make(map[string]int, len(d.Cells))
	for i, c := range d.Cells {
		if err := errors.ValidateName("cell", c.Name); err != nil {
			return err
		}
		if _, dup := d.cellIdx[c.Name]; dup {
			return errors.New(errors.ErrCodeInvalidInput, "duplicate cell %q", c.Name)
		}
		if !c.BBox.Valid() {
			return errors.New(errors.ErrCodeInvalidInput, "cell %q has inverted bounding box %v", c.Name, c.BBox)
		}
		d.cellIdx[c.Name] = i
	}

	d.netIdx = make(map[string]int, len(d.Nets))
	for i, n := range d.Nets {
		if err := errors.ValidateName("net", n.Name); err != nil {
			return err
		}
		if _, dup := d.netIdx[n.Name]; dup {
			return errors.New(errors.ErrCodeInvalidInput, "duplicate net %q", n.Name)
		}
		if n.Capacity < 0 {
			return errors.New(errors.ErrCodeInvalidInput, "net %q has negative capacity", n.Name)
		}
		d.netIdx[n.Name] = i
	}

	d.pins = make([]PinInfo, len(d.Pins))
	for i, p := range d.Pins {
		if err := errors.ValidateName("pin", p.Name); err != nil {
			return err
		}
		cell, ok := d.cellIdx[p.Cell]
		if !ok {
			return errors.New(errors.ErrCodeInvalidInput, "pin %q references unknown cell %q", p.Name, p.Cell)
		}
		net := NoNet
		if p.Net != "" {
			if net, ok = d.netIdx[p.Net]; !ok {
				if err := errors.ValidateName("net", p.Net); err != nil {
					return err
				}
				d.Nets = append(d.Nets, Net{Name: p.Net})
				net = len(d.Nets) - 1
				d.netIdx[p.Net] = net
			}
		}
		d.pins[i] = PinInfo{
			Name:     p.Name,
			Cell:     cell,
			Net:      net,
			Ignored:  p.Ignored,
			Baseline: p.Baseline,
		}
	}
	return nil
}

func (d *Design) mustIndexed() {
	if d.pins == nil && len(d.Pins) > 0 {
		panic(fmt.Sprintf("design %q used before Validate", d.Name))
	}
}

// NumCells implements DesignDB.
func (d *Design) NumCells() int { return len(d.Cells) }

// CellName implements DesignDB.
func (d *Design) CellName(i int) string { return d.Cells[i].Name }

// CellBBox implements DesignDB.
func (d *Design) CellBBox(i int) geom.Box { return d.Cells[i].BBox }

// NumPins implements CircuitGraph.
func (d *Design) NumPins() int { return len(d.Pins) }

// Pin implements CircuitGraph.
func (d *Design) Pin(i int) PinInfo {
	d.mustIndexed()
	return d.pins[i]
}

// NumNets implements CircuitGraph.
func (d *Design) NumNets() int { return len(d.Nets) }

// Net implements CircuitGraph.
func (d *Design) Net(i int) NetInfo {
	return NetInfo{Name: d.Nets[i].Name, Capacity: d.Nets[i].Capacity}
}

var (
	_ DesignDB     = (*Design)(nil)
	_ CircuitGraph = (*Design)(nil)
)
