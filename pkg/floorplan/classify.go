package floorplan

import (
	"github.com/matzehuels/topfloor/pkg/design"
	"github.com/matzehuels/topfloor/pkg/errors"
)

// classification is the output of the pin classifier.
type classification struct {
	pins   []Pin
	nets   []Net
	pairs  []Pair
	counts RoleCounts
}

// classify assigns roles, role-local indices and kept nets. Errors are
// configuration errors and abort problem initialization.
func classify(ckt design.CircuitGraph, numCells int, decl []design.SymPair) (*classification, error) {
	n := ckt.NumPins()
	pins := make([]Pin, n)
	byName := make(map[string]int, n)

	for i := range n {
		info := ckt.Pin(i)
		if _, dup := byName[info.Name]; dup {
			return nil, errors.New(errors.ErrCodeInvalidInput, "duplicate pin name %q", info.Name)
		}
		byName[info.Name] = i
		if info.Cell < 0 || info.Cell >= numCells {
			return nil, errors.New(errors.ErrCodeInvalidInput, "pin %q references cell %d of %d", info.Name, info.Cell, numCells)
		}
		if info.Net != design.NoNet && (info.Net < 0 || info.Net >= ckt.NumNets()) {
			return nil, errors.New(errors.ErrCodeInvalidInput, "pin %q references net %d of %d", info.Name, info.Net, ckt.NumNets())
		}
		pins[i] = Pin{
			Name:     info.Name,
			Role:     RoleOther,
			Index:    -1,
			Cell:     info.Cell,
			Net:      NoNet,
			Pair:     NoPair,
			Baseline: info.Baseline,
		}
	}

	c := &classification{pins: pins}

	// Symmetry pairs first: they take their roles regardless of nets.
	claimed := make(map[int]string, 2*len(decl))
	claim := func(name string, pair design.SymPair) (int, error) {
		idx, ok := byName[name]
		if !ok {
			return 0, errors.New(errors.ErrCodeUnresolvedPin, "symmetry pair %s references unknown pin %q", pair, name)
		}
		if prev, dup := claimed[idx]; dup {
			return 0, errors.New(errors.ErrCodeInvalidConfig, "pin %q is declared symmetric twice (%s and %s)", name, prev, pair)
		}
		if ckt.Pin(idx).Ignored {
			return 0, errors.New(errors.ErrCodeInvalidConfig, "ignored pin %q cannot be declared symmetric", name)
		}
		claimed[idx] = pair.String()
		return idx, nil
	}
	for k, sp := range decl {
		if sp.Primary == sp.Secondary {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "pin %q is paired with itself", sp.Primary)
		}
		p, err := claim(sp.Primary, sp)
		if err != nil {
			return nil, err
		}
		s, err := claim(sp.Secondary, sp)
		if err != nil {
			return nil, err
		}
		pins[p].Role, pins[p].Index, pins[p].Pair = RoleSymPrimary, k, k
		pins[s].Role, pins[s].Index, pins[s].Pair = RoleSymSecondary, k, k
		c.pairs = append(c.pairs, Pair{Primary: p, Secondary: s})
	}
	c.counts.SymPrimary = len(decl)
	c.counts.SymSecondary = len(decl)

	// Nets keep their non-ignored pins; nets with fewer than two are dropped.
	members := make([][]int, ckt.NumNets())
	for i := range n {
		info := ckt.Pin(i)
		if info.Net != design.NoNet && !info.Ignored {
			members[info.Net] = append(members[info.Net], i)
		}
	}
	for id, m := range members {
		if len(m) < 2 {
			continue
		}
		info := ckt.Net(id)
		if info.Capacity < 0 {
			return nil, errors.New(errors.ErrCodeInvalidInput, "net %q has negative capacity", info.Name)
		}
		kept := len(c.nets)
		c.nets = append(c.nets, Net{Name: info.Name, Capacity: info.Capacity, Pins: m})
		for _, pin := range m {
			pins[pin].Net = kept
		}
	}

	for i := range pins {
		switch pins[i].Role {
		case RoleSymPrimary, RoleSymSecondary:
		case RoleOther:
			if pins[i].Net != NoNet {
				pins[i].Role = RoleAsym
				pins[i].Index = c.counts.Asym
				c.counts.Asym++
			} else {
				c.counts.Other++
			}
		case RoleAsym:
			return nil, errors.New(errors.ErrCodeInternal, "pin %q classified twice", pins[i].Name)
		}
	}
	return c, nil
}
