package bnb

import (
	"context"
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/matzehuels/topfloor/pkg/ilp"
)

// DefaultMaxNodes bounds the search tree when no limit is configured.
const DefaultMaxNodes = 200_000

// ErrNodeLimit is returned by Solve when the search tree exceeds the node
// limit before optimality is proven.
var ErrNodeLimit = errors.New("branch and bound node limit reached")

const (
	intTol = 1e-6
	lpTol  = 1e-9
)

// Stats describes the search performed by the last Solve.
type Stats struct {
	Nodes    int // relaxations solved
	Pruned   int // nodes cut by bound or infeasibility
	MaxDepth int
}

// Option configures a Solver.
type Option func(*Solver)

// WithMaxNodes caps the number of search nodes. Non-positive values select
// DefaultMaxNodes.
func WithMaxNodes(n int) Option {
	return func(s *Solver) {
		if n > 0 {
			s.maxNodes = n
		}
	}
}

// Solver is a single-use branch and bound session.
type Solver struct {
	vars        []ilp.Variable
	constraints []ilp.Constraint
	objective   []ilp.Term
	maxNodes    int

	status ilp.Status
	values []int64
	stats  Stats
}

// New returns an empty session.
func New(opts ...Option) *Solver {
	s := &Solver{maxNodes: DefaultMaxNodes}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Factory returns an [ilp.Factory] producing branch and bound sessions.
func Factory(opts ...Option) ilp.Factory {
	return func() ilp.Solver { return New(opts...) }
}

// AddVariable implements ilp.Solver.
func (s *Solver) AddVariable(name string, lower, upper int64) (ilp.Var, error) {
	if lower > upper {
		return 0, fmt.Errorf("%w: %s [%d, %d]", ilp.ErrInvalidBounds, name, lower, upper)
	}
	s.vars = append(s.vars, ilp.Variable{Name: name, Lower: lower, Upper: upper})
	return ilp.Var(len(s.vars) - 1), nil
}

// AddConstraint implements ilp.Solver.
func (s *Solver) AddConstraint(c ilp.Constraint) error {
	if err := ilp.CheckTerms(c.Terms, len(s.vars)); err != nil {
		return fmt.Errorf("constraint %q: %w", c.Name, err)
	}
	s.constraints = append(s.constraints, c)
	return nil
}

// SetObjective implements ilp.Solver.
func (s *Solver) SetObjective(terms []ilp.Term) error {
	if err := ilp.CheckTerms(terms, len(s.vars)); err != nil {
		return fmt.Errorf("objective: %w", err)
	}
	s.objective = terms
	return nil
}

// Status implements ilp.Solver.
func (s *Solver) Status() ilp.Status { return s.status }

// Stats returns search statistics of the last Solve.
func (s *Solver) Stats() Stats { return s.stats }

// Value implements ilp.Solver.
func (s *Solver) Value(v ilp.Var) (int64, error) {
	if s.status != ilp.StatusOptimal {
		return 0, ilp.ErrNotSolved
	}
	if v < 0 || int(v) >= len(s.values) {
		return 0, fmt.Errorf("%w: x%d", ilp.ErrUnknownVar, v)
	}
	return s.values[v], nil
}

// row is a constraint with merged, non-zero coefficients.
type row struct {
	coeffs map[int]float64
	sense  ilp.Sense
	rhs    float64
}

// Solve implements ilp.Solver.
func (s *Solver) Solve(ctx context.Context) error {
	s.status = ilp.StatusUnknown
	s.values = nil
	s.stats = Stats{}

	rows, feasible := s.rows()
	if !feasible {
		s.status = ilp.StatusInfeasible
		return nil
	}
	cost := make([]float64, len(s.vars))
	for _, t := range s.objective {
		cost[t.Var] += float64(t.Coeff)
	}

	lo := make([]int64, len(s.vars))
	hi := make([]int64, len(s.vars))
	for i, v := range s.vars {
		lo[i], hi[i] = v.Lower, v.Upper
	}

	search := &search{ctx: ctx, solver: s, rows: rows, cost: cost, best: math.Inf(1)}
	if err := search.node(lo, hi, 0); err != nil {
		s.status = ilp.StatusError
		return err
	}
	if search.incumbent == nil {
		s.status = ilp.StatusInfeasible
		return nil
	}
	s.values = search.incumbent
	s.status = ilp.StatusOptimal
	return nil
}

// rows merges terms and resolves constraints without variables. It reports
// false when such a constraint is violated.
func (s *Solver) rows() ([]row, bool) {
	out := make([]row, 0, len(s.constraints))
	for _, c := range s.constraints {
		coeffs := make(map[int]float64, len(c.Terms))
		for _, t := range c.Terms {
			coeffs[int(t.Var)] += float64(t.Coeff)
		}
		for v, a := range coeffs {
			if a == 0 {
				delete(coeffs, v)
			}
		}
		if len(coeffs) == 0 {
			if !c.Holds(0) {
				return nil, false
			}
			continue
		}
		switch c.Sense {
		case ilp.Equal:
			out = append(out,
				row{coeffs: coeffs, sense: ilp.LessEq, rhs: float64(c.RHS)},
				row{coeffs: coeffs, sense: ilp.GreaterEq, rhs: float64(c.RHS)},
			)
		default:
			out = append(out, row{coeffs: coeffs, sense: c.Sense, rhs: float64(c.RHS)})
		}
	}
	return out, true
}

type search struct {
	ctx       context.Context
	solver    *Solver
	rows      []row
	cost      []float64
	best      float64
	incumbent []int64
}

func (sr *search) node(lo, hi []int64, depth int) error {
	if err := sr.ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ilp.ErrTimeout, err)
	}
	st := &sr.solver.stats
	if st.Nodes >= sr.solver.maxNodes {
		return fmt.Errorf("%w (%d nodes)", ErrNodeLimit, st.Nodes)
	}
	st.Nodes++
	st.MaxDepth = max(st.MaxDepth, depth)

	obj, x, err := sr.relax(lo, hi)
	switch {
	case errors.Is(err, lp.ErrInfeasible):
		st.Pruned++
		return nil
	case err != nil:
		return fmt.Errorf("lp relaxation: %w", err)
	}
	// Integral coefficients give integral objectives, so a relaxation that
	// rounds up to the incumbent cannot improve it.
	if sr.incumbent != nil && math.Ceil(obj-intTol) >= sr.best {
		st.Pruned++
		return nil
	}

	branch := -1
	for i, v := range x {
		if math.Abs(v-math.Round(v)) > intTol {
			branch = i
			break
		}
	}
	if branch < 0 {
		sol := make([]int64, len(x))
		for i, v := range x {
			sol[i] = int64(math.Round(v))
		}
		sr.incumbent = sol
		sr.best = math.Round(obj)
		return nil
	}

	floor := int64(math.Floor(x[branch]))

	down := clone(hi)
	down[branch] = floor
	if err := sr.node(lo, down, depth+1); err != nil {
		return err
	}
	up := clone(lo)
	up[branch] = floor + 1
	return sr.node(up, hi, depth+1)
}

// relax solves the LP relaxation within [lo, hi] and returns the objective
// and the unshifted variable values.
func (sr *search) relax(lo, hi []int64) (obj float64, x []float64, err error) {
	n := len(lo)
	for i := range n {
		if lo[i] > hi[i] {
			return 0, nil, lp.ErrInfeasible
		}
	}
	if n == 0 {
		return 0, nil, nil
	}

	m := n + len(sr.rows)
	cols := n + m
	a := mat.NewDense(m, cols, nil)
	b := make([]float64, m)
	c := make([]float64, cols)
	copy(c, sr.cost)

	var shift float64
	for i := range n {
		shift += sr.cost[i] * float64(lo[i])
		a.Set(i, i, 1)
		a.Set(i, n+i, 1)
		b[i] = float64(hi[i] - lo[i])
	}
	for k, r := range sr.rows {
		ri := n + k
		rhs := r.rhs
		for v, coeff := range r.coeffs {
			a.Set(ri, v, coeff)
			rhs -= coeff * float64(lo[v])
		}
		slack := 1.0
		if r.sense == ilp.GreaterEq {
			slack = -1
		}
		a.Set(ri, n+ri, slack)
		b[ri] = rhs
		if rhs < 0 {
			for j := range cols {
				a.Set(ri, j, -a.At(ri, j))
			}
			b[ri] = -rhs
		}
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("simplex panic: %v", r)
		}
	}()
	opt, sol, err := lp.Simplex(c, a, b, lpTol, nil)
	if err != nil {
		return 0, nil, err
	}
	x = make([]float64, n)
	for i := range n {
		x[i] = sol[i] + float64(lo[i])
	}
	return opt + shift, x, nil
}

func clone(v []int64) []int64 {
	out := make([]int64, len(v))
	copy(out, v)
	return out
}

var _ ilp.Solver = (*Solver)(nil)
