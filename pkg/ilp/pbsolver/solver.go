package pbsolver

import (
	"context"
	"fmt"
	"math/bits"
	"slices"

	"github.com/crillab/gophersat/maxsat"
	"golang.org/x/sync/semaphore"

	"github.com/matzehuels/topfloor/pkg/ilp"
)

type intVar struct {
	name  string
	lower int64
	upper int64
	bits  []string
}

// Stats describes the pseudo-boolean encoding of the last Solve.
type Stats struct {
	Bits        int // boolean variables after binary expansion
	HardConstrs int // hard PB constraints handed to gophersat
	SoftClauses int // weighted soft clauses encoding the objective
	Cost        int // optimizer cost of the returned model
}

// Solver is a single-use gophersat session.
type Solver struct {
	vars        []intVar
	constraints []ilp.Constraint
	objective   []ilp.Term
	searches    *semaphore.Weighted
	search      func([]maxsat.Constr) (maxsat.Model, int)

	status ilp.Status
	values []int64
	stats  Stats
}

// Option configures a session.
type Option func(*Solver)

// WithSearchLimit makes every search hold one unit of sem from start to
// finish, including the part that outlives a cancelled Solve. Sessions
// sharing sem never run more concurrent searches than its size.
func WithSearchLimit(sem *semaphore.Weighted) Option {
	return func(s *Solver) { s.searches = sem }
}

// New returns an empty session.
func New(opts ...Option) *Solver {
	s := &Solver{search: optimize}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Factory returns an [ilp.Factory] producing gophersat sessions.
func Factory(opts ...Option) ilp.Factory {
	return func() ilp.Solver { return New(opts...) }
}

// AddVariable implements ilp.Solver.
func (s *Solver) AddVariable(name string, lower, upper int64) (ilp.Var, error) {
	if lower > upper {
		return 0, fmt.Errorf("%w: %s [%d, %d]", ilp.ErrInvalidBounds, name, lower, upper)
	}
	id := len(s.vars)
	span := uint64(upper - lower)
	nbits := bits.Len64(span)
	v := intVar{name: name, lower: lower, upper: upper, bits: make([]string, nbits)}
	for k := range nbits {
		v.bits[k] = fmt.Sprintf("x%d.%d", id, k)
	}
	s.vars = append(s.vars, v)
	return ilp.Var(id), nil
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

// Stats returns encoding statistics of the last Solve.
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

type outcome struct {
	model maxsat.Model
	cost  int
	err   error
}

// Solve implements ilp.Solver.
func (s *Solver) Solve(ctx context.Context) error {
	s.status = ilp.StatusUnknown
	s.values = nil
	s.stats = Stats{}

	if err := ctx.Err(); err != nil {
		s.status = ilp.StatusError
		return fmt.Errorf("%w: %w", ilp.ErrTimeout, err)
	}

	constrs, feasible := s.encode()
	if !feasible {
		s.status = ilp.StatusInfeasible
		return nil
	}

	if len(constrs) == 0 {
		s.values = s.decode(nil)
		s.status = ilp.StatusOptimal
		return nil
	}

	sem := s.searches
	if sem != nil {
		if err := sem.Acquire(ctx, 1); err != nil {
			s.status = ilp.StatusError
			return fmt.Errorf("%w: waiting for a search slot: %w", ilp.ErrTimeout, err)
		}
	}

	done := make(chan outcome, 1)
	go func() {
		if sem != nil {
			defer sem.Release(1)
		}
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("gophersat panic: %v", r)}
			}
		}()
		model, cost := s.search(constrs)
		done <- outcome{model: model, cost: cost}
	}()

	select {
	case <-ctx.Done():
		s.status = ilp.StatusError
		return fmt.Errorf("%w: %w", ilp.ErrTimeout, ctx.Err())
	case out := <-done:
		if out.err != nil {
			s.status = ilp.StatusError
			return out.err
		}
		if out.model == nil {
			s.status = ilp.StatusInfeasible
			return nil
		}
		s.stats.Cost = out.cost
		s.values = s.decode(out.model)
		s.status = ilp.StatusOptimal
		return nil
	}
}

func optimize(constrs []maxsat.Constr) (maxsat.Model, int) {
	return maxsat.New(constrs...).Solve()
}

// encode translates the session into gophersat constraints. It reports
// false when some constraint can never be satisfied.
func (s *Solver) encode() ([]maxsat.Constr, bool) {
	var constrs []maxsat.Constr

	hard := func(terms []bitTerm, atLeast int64) bool {
		c, ok, trivial := geConstr(terms, atLeast)
		if !ok {
			return false
		}
		if !trivial {
			constrs = append(constrs, c)
			s.stats.HardConstrs++
		}
		return true
	}

	for i, v := range s.vars {
		s.stats.Bits += len(v.bits)
		span := v.upper - v.lower
		if len(v.bits) == 0 || span == int64(1)<<len(v.bits)-1 {
			continue
		}
		// Σ 2^k b_k <= span
		terms := s.expand([]ilp.Term{{Var: ilp.Var(i), Coeff: -1}})
		if !hard(terms, -span) {
			return nil, false
		}
	}

	for _, c := range s.constraints {
		terms := s.expand(c.Terms)
		rhs := c.RHS - s.offset(c.Terms)
		switch c.Sense {
		case ilp.GreaterEq:
			if !hard(terms, rhs) {
				return nil, false
			}
		case ilp.LessEq:
			if !hard(negate(terms), -rhs) {
				return nil, false
			}
		case ilp.Equal:
			if !hard(terms, rhs) || !hard(negate(terms), -rhs) {
				return nil, false
			}
		}
	}

	for _, t := range s.expand(s.objective) {
		switch {
		case t.coeff > 0:
			constrs = append(constrs, maxsat.WeightedClause([]maxsat.Lit{maxsat.Not(t.bit)}, int(t.coeff)))
		case t.coeff < 0:
			constrs = append(constrs, maxsat.WeightedClause([]maxsat.Lit{maxsat.Var(t.bit)}, int(-t.coeff)))
		default:
			continue
		}
		s.stats.SoftClauses++
	}
	return constrs, true
}

// decode rebuilds integer values from a model. Bits the model does not
// mention are false. A nil model selects, for every bit, the value that
// minimizes the objective.
func (s *Solver) decode(model maxsat.Model) []int64 {
	var weight map[string]int64
	if model == nil {
		weight = make(map[string]int64)
		for _, t := range s.expand(s.objective) {
			weight[t.bit] += t.coeff
		}
	}
	values := make([]int64, len(s.vars))
	for i, v := range s.vars {
		val := v.lower
		for k, b := range v.bits {
			set := model[b]
			if model == nil {
				set = weight[b] < 0
			}
			if set {
				val += int64(1) << k
			}
		}
		values[i] = val
	}
	return values
}

type bitTerm struct {
	bit   string
	coeff int64
}

// expand rewrites integer terms over bits, merging repeated variables. The
// constant part is returned by offset.
func (s *Solver) expand(terms []ilp.Term) []bitTerm {
	merged := make(map[ilp.Var]int64, len(terms))
	order := make([]ilp.Var, 0, len(terms))
	for _, t := range terms {
		if _, ok := merged[t.Var]; !ok {
			order = append(order, t.Var)
		}
		merged[t.Var] += t.Coeff
	}
	var out []bitTerm
	for _, id := range order {
		c := merged[id]
		if c == 0 {
			continue
		}
		for k, b := range s.vars[id].bits {
			out = append(out, bitTerm{bit: b, coeff: c << k})
		}
	}
	return out
}

func (s *Solver) offset(terms []ilp.Term) int64 {
	var sum int64
	for _, t := range terms {
		sum += t.Coeff * s.vars[t.Var].lower
	}
	return sum
}

func negate(terms []bitTerm) []bitTerm {
	out := slices.Clone(terms)
	for i := range out {
		out[i].coeff = -out[i].coeff
	}
	return out
}

// geConstr builds Σ coeff*bit >= atLeast with positive coefficients only.
// ok is false when the constraint is unsatisfiable; trivial is true when it
// always holds and can be dropped.
func geConstr(terms []bitTerm, atLeast int64) (c maxsat.Constr, ok, trivial bool) {
	lits := make([]maxsat.Lit, 0, len(terms))
	coeffs := make([]int, 0, len(terms))
	var sum int64
	for _, t := range terms {
		switch {
		case t.coeff > 0:
			lits = append(lits, maxsat.Var(t.bit))
			coeffs = append(coeffs, int(t.coeff))
			sum += t.coeff
		case t.coeff < 0:
			// c*b == c + |c|*(not b)
			lits = append(lits, maxsat.Not(t.bit))
			coeffs = append(coeffs, int(-t.coeff))
			sum -= t.coeff
			atLeast -= t.coeff
		}
	}
	if atLeast <= 0 {
		return c, true, true
	}
	if sum < atLeast {
		return c, false, false
	}
	return maxsat.HardPBConstr(lits, coeffs, int(atLeast)), true, false
}

var _ ilp.Solver = (*Solver)(nil)
