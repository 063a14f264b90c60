package floorplan

import (
	"fmt"

	"github.com/matzehuels/topfloor/pkg/constraint"
	"github.com/matzehuels/topfloor/pkg/errors"
	"github.com/matzehuels/topfloor/pkg/geom"
	"github.com/matzehuels/topfloor/pkg/ilp"
)

// FormulationStats counts the constraints per family.
type FormulationStats struct {
	Vars       int `json:"vars"`
	Assignment int `json:"assignment"`
	Capacity   int `json:"capacity"`
	Budget     int `json:"budget"`
	Symmetry   int `json:"symmetry"`
	Ordering   int `json:"ordering"`
}

// Encoding is a formulated ILP together with the mapping from its variables
// back to pin placements.
type Encoding struct {
	Model ilp.Model
	Stats FormulationStats

	problem *Problem
	// vars[n][k] selects slot k of node n's cell.
	vars [][]ilp.Var
}

// Formulate validates the constraint graph and encodes the problem as an
// ILP. A cyclic graph fails with GRAPH_INCONSISTENT before any variable is
// created.
func Formulate(p *Problem, g *constraint.Graph, obj Objective) (*Encoding, error) {
	if p == nil {
		return nil, errors.New(errors.ErrCodeNotInitialized, "problem is not initialized")
	}
	if g == nil || g.NodeCount() != len(p.nodes) {
		return nil, errors.New(errors.ErrCodeInternal, "constraint graph does not match the problem's %d pins", len(p.nodes))
	}
	if err := g.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeGraphInconsistent, err, "validate vertical constraint graph")
	}
	if obj == nil {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "objective is required")
	}

	e := &Encoding{problem: p, vars: make([][]ilp.Var, len(p.nodes))}
	steps := []func() error{
		e.addVariables,
		e.addAssignment,
		e.addCapacity,
		e.addBudgets,
		e.addSymmetry,
		func() error { return e.addOrdering(g) },
		func() error { return e.setObjective(obj) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "formulate")
		}
	}
	e.Stats.Vars = len(e.Model.Vars)
	return e, nil
}

func (e *Encoding) add(c ilp.Constraint, counter *int) error {
	*counter++
	return e.Model.AddConstraint(c)
}

func (e *Encoding) addVariables() error {
	p := e.problem
	for n, pin := range p.nodes {
		slots := p.slots[p.pins[pin].Cell]
		e.vars[n] = make([]ilp.Var, len(slots))
		for k, s := range slots {
			v, err := e.Model.AddVariable(fmt.Sprintf("x[%s@%s]", p.pins[pin].Name, s), 0, 1)
			if err != nil {
				return err
			}
			e.vars[n][k] = v
		}
	}
	return nil
}

// addAssignment places every pin in exactly one slot.
func (e *Encoding) addAssignment() error {
	for n, vars := range e.vars {
		terms := make([]ilp.Term, len(vars))
		for k, v := range vars {
			terms[k] = ilp.Term{Var: v, Coeff: 1}
		}
		c := ilp.Constraint{Name: "assign[" + e.name(n) + "]", Terms: terms, Sense: ilp.Equal, RHS: 1}
		if err := e.add(c, &e.Stats.Assignment); err != nil {
			return err
		}
	}
	return nil
}

// addCapacity allows at most one pin per slot.
func (e *Encoding) addCapacity() error {
	p := e.problem
	byCell := make([][]int, len(p.cells))
	for n, pin := range p.nodes {
		cell := p.pins[pin].Cell
		byCell[cell] = append(byCell[cell], n)
	}
	for cell, nodes := range byCell {
		if len(nodes) < 2 {
			continue
		}
		for k, s := range p.slots[cell] {
			terms := make([]ilp.Term, len(nodes))
			for i, n := range nodes {
				terms[i] = ilp.Term{Var: e.vars[n][k], Coeff: 1}
			}
			c := ilp.Constraint{Name: fmt.Sprintf("slot[%s.%s]", p.cells[cell].Name, s), Terms: terms, Sense: ilp.LessEq, RHS: 1}
			if err := e.add(c, &e.Stats.Capacity); err != nil {
				return err
			}
		}
	}
	return nil
}

// addBudgets caps the resource consumption of every bounded net.
func (e *Encoding) addBudgets() error {
	p := e.problem
	for id, net := range p.nets {
		if net.Capacity <= 0 {
			continue
		}
		var terms []ilp.Term
		for _, pin := range net.Pins {
			n := p.nodeOf[pin]
			for k, s := range p.slots[p.pins[pin].Cell] {
				if cost := p.NetCost(id, s); cost != 0 {
					terms = append(terms, ilp.Term{Var: e.vars[n][k], Coeff: cost})
				}
			}
		}
		c := ilp.Constraint{Name: "budget[" + net.Name + "]", Terms: terms, Sense: ilp.LessEq, RHS: net.Capacity}
		if err := e.add(c, &e.Stats.Budget); err != nil {
			return err
		}
	}
	return nil
}

// addSymmetry ties each secondary slot choice to the mirrored primary
// choice. Slots without a mirror partner are forbidden.
func (e *Encoding) addSymmetry() error {
	p := e.problem
	for k, pair := range p.pairs {
		pn, sn := p.nodeOf[pair.Primary], p.nodeOf[pair.Secondary]
		pSlots := p.slots[p.pins[pair.Primary].Cell]
		sSlots := p.slots[p.pins[pair.Secondary].Cell]

		at := make(map[geom.Point]int, len(sSlots))
		for j, s := range sSlots {
			if _, dup := at[s.Pos]; !dup {
				at[s.Pos] = j
			}
		}
		mirrored := make([]bool, len(sSlots))
		for i, s := range pSlots {
			name := fmt.Sprintf("sym[%d:%s]", k, s)
			j, ok := at[p.Reflect(s.Pos)]
			var c ilp.Constraint
			if ok {
				mirrored[j] = true
				c = ilp.Constraint{Name: name, Terms: []ilp.Term{
					{Var: e.vars[sn][j], Coeff: 1},
					{Var: e.vars[pn][i], Coeff: -1},
				}, Sense: ilp.Equal}
			} else {
				c = ilp.Constraint{Name: name, Terms: []ilp.Term{{Var: e.vars[pn][i], Coeff: 1}}, Sense: ilp.Equal}
			}
			if err := e.add(c, &e.Stats.Symmetry); err != nil {
				return err
			}
		}
		for j, s := range sSlots {
			if mirrored[j] {
				continue
			}
			c := ilp.Constraint{Name: fmt.Sprintf("sym[%d:~%s]", k, s), Terms: []ilp.Term{{Var: e.vars[sn][j], Coeff: 1}}, Sense: ilp.Equal}
			if err := e.add(c, &e.Stats.Symmetry); err != nil {
				return err
			}
		}
	}
	return nil
}

// addOrdering enforces y(from) <= y(to) for every graph edge. Heights are
// taken relative to the lowest cell and scaled down by their common divisor.
func (e *Encoding) addOrdering(g *constraint.Graph) error {
	p := e.problem
	base := p.bounds.Bottom
	for _, edge := range g.Edges() {
		var terms []ilp.Term
		for _, side := range []struct {
			node int
			sign int64
		}{{edge.From, 1}, {edge.To, -1}} {
			slots := p.slots[p.pins[p.nodes[side.node]].Cell]
			for k, s := range slots {
				if y := s.Pos.Y - base; y != 0 {
					terms = append(terms, ilp.Term{Var: e.vars[side.node][k], Coeff: side.sign * y})
				}
			}
		}
		reduce(terms)
		c := ilp.Constraint{Name: fmt.Sprintf("order[%s<%s]", e.name(edge.From), e.name(edge.To)), Terms: terms, Sense: ilp.LessEq}
		if err := e.add(c, &e.Stats.Ordering); err != nil {
			return err
		}
	}
	return nil
}

func (e *Encoding) setObjective(obj Objective) error {
	p := e.problem
	var terms []ilp.Term
	for n, pin := range p.nodes {
		for k, s := range p.slots[p.pins[pin].Cell] {
			if cost := obj.Cost(p, pin, s); cost != 0 {
				terms = append(terms, ilp.Term{Var: e.vars[n][k], Coeff: cost})
			}
		}
	}
	return e.Model.SetObjective(terms)
}

func (e *Encoding) name(node int) string {
	return e.problem.pins[e.problem.nodes[node]].Name
}

// reduce divides all coefficients by their greatest common divisor.
func reduce(terms []ilp.Term) {
	var g int64
	for _, t := range terms {
		g = gcd(g, abs(t.Coeff))
	}
	if g <= 1 {
		return
	}
	for i := range terms {
		terms[i].Coeff /= g
	}
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

// Decode turns solved variable values (in model order) into slot choices
// per graph node.
func (e *Encoding) Decode(values []int64) ([]Slot, error) {
	if len(values) != len(e.Model.Vars) {
		return nil, fmt.Errorf("got %d values for %d variables", len(values), len(e.Model.Vars))
	}
	p := e.problem
	out := make([]Slot, len(e.vars))
	for n, vars := range e.vars {
		chosen := -1
		for k, v := range vars {
			if values[v] == 1 {
				if chosen >= 0 {
					return nil, fmt.Errorf("pin %s assigned to two slots", e.name(n))
				}
				chosen = k
			}
		}
		if chosen < 0 {
			return nil, fmt.Errorf("pin %s has no slot", e.name(n))
		}
		out[n] = p.slots[p.pins[p.nodes[n]].Cell][chosen]
	}
	return out, nil
}
