package floorplan

import (
	"slices"

	"github.com/matzehuels/topfloor/pkg/errors"
	"github.com/matzehuels/topfloor/pkg/geom"
)

// Objective policy names.
const (
	ObjectiveTotalResource     = "total-resource"
	ObjectiveBaselineDeviation = "baseline-deviation"
	ObjectiveFeasibility       = "feasibility"
)

// Objective prices placing a pin in a slot. The ILP minimizes the sum of the
// prices of the chosen slots. Prices must be non-negative.
type Objective interface {
	Name() string
	Cost(p *Problem, pin int, s Slot) int64
}

var objectives = map[string]Objective{
	ObjectiveTotalResource:     totalResource{},
	ObjectiveBaselineDeviation: baselineDeviation{},
	ObjectiveFeasibility:       feasibility{},
}

// LookupObjective returns the policy registered under name.
func LookupObjective(name string) (Objective, error) {
	if err := errors.ValidatePolicyName("objective", name); err != nil {
		return nil, err
	}
	obj, ok := objectives[name]
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown objective %q (available: %v)", name, Objectives())
	}
	return obj, nil
}

// Objectives lists the available policy names in sorted order.
func Objectives() []string {
	names := make([]string, 0, len(objectives))
	for name := range objectives {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// NetCost returns the resource cost of connecting slot s to the reference
// point of net, rounded to the nearest resource unit.
func (p *Problem) NetCost(net int, s Slot) int64 {
	ref := p.netRef[net]
	d2 := geom.Manhattan(geom.Point{X: 2 * s.Pos.X, Y: 2 * s.Pos.Y}, ref)
	return p.toResource(d2)
}

// toResource converts a doubled length into resource units.
func (p *Problem) toResource(d2 int64) int64 {
	r := p.cfg.ResourcePerLength
	return (d2 + r) / (2 * r)
}

// totalResource minimizes the summed distance of every pin to its net's
// reference point.
type totalResource struct{}

func (totalResource) Name() string { return ObjectiveTotalResource }

func (totalResource) Cost(p *Problem, pin int, s Slot) int64 {
	net := p.pins[pin].Net
	if net == NoNet {
		return 0
	}
	return p.NetCost(net, s)
}

// baselineDeviation keeps pins close to their location in the original
// layout. Pins without a baseline are free.
type baselineDeviation struct{}

func (baselineDeviation) Name() string { return ObjectiveBaselineDeviation }

func (baselineDeviation) Cost(p *Problem, pin int, s Slot) int64 {
	b := p.pins[pin].Baseline
	if b == nil {
		return 0
	}
	return p.toResource(2 * geom.Manhattan(*b, s.Pos))
}

// feasibility accepts any feasible assignment.
type feasibility struct{}

func (feasibility) Name() string { return ObjectiveFeasibility }

func (feasibility) Cost(*Problem, int, Slot) int64 { return 0 }
