package ilp

import (
	"fmt"
)

// Builder is the model-construction half of [Solver]. Both [Model] and every
// Solver implement it.
type Builder interface {
	AddVariable(name string, lower, upper int64) (Var, error)
	AddConstraint(c Constraint) error
	SetObjective(terms []Term) error
}

// Variable is a recorded variable declaration.
type Variable struct {
	Name  string
	Lower int64
	Upper int64
}

// Model records an ILP without solving it. The zero value is an empty model.
type Model struct {
	Vars        []Variable
	Constraints []Constraint
	Objective   []Term
}

// ModelStats summarizes a model's size.
type ModelStats struct {
	Vars           int
	Constraints    int
	ObjectiveTerms int
}

// AddVariable implements Builder.
func (m *Model) AddVariable(name string, lower, upper int64) (Var, error) {
	if lower > upper {
		return 0, fmt.Errorf("%w: %s [%d, %d]", ErrInvalidBounds, name, lower, upper)
	}
	m.Vars = append(m.Vars, Variable{Name: name, Lower: lower, Upper: upper})
	return Var(len(m.Vars) - 1), nil
}

// AddConstraint implements Builder.
func (m *Model) AddConstraint(c Constraint) error {
	if err := CheckTerms(c.Terms, len(m.Vars)); err != nil {
		return fmt.Errorf("constraint %q: %w", c.Name, err)
	}
	m.Constraints = append(m.Constraints, c)
	return nil
}

// SetObjective implements Builder.
func (m *Model) SetObjective(terms []Term) error {
	if err := CheckTerms(terms, len(m.Vars)); err != nil {
		return fmt.Errorf("objective: %w", err)
	}
	m.Objective = terms
	return nil
}

// Stats returns the size of the model.
func (m *Model) Stats() ModelStats {
	return ModelStats{
		Vars:           len(m.Vars),
		Constraints:    len(m.Constraints),
		ObjectiveTerms: len(m.Objective),
	}
}

// Load replays the model into b. Variables keep their indices when b is a
// fresh session; the returned slice maps model variables to b's variables
// for sessions that were not empty.
func (m *Model) Load(b Builder) ([]Var, error) {
	mapping := make([]Var, len(m.Vars))
	for i, v := range m.Vars {
		sv, err := b.AddVariable(v.Name, v.Lower, v.Upper)
		if err != nil {
			return nil, err
		}
		mapping[i] = sv
	}
	remap := func(terms []Term) []Term {
		out := make([]Term, len(terms))
		for i, t := range terms {
			out[i] = Term{Var: mapping[t.Var], Coeff: t.Coeff}
		}
		return out
	}
	for _, c := range m.Constraints {
		c.Terms = remap(c.Terms)
		if err := b.AddConstraint(c); err != nil {
			return nil, err
		}
	}
	if err := b.SetObjective(remap(m.Objective)); err != nil {
		return nil, err
	}
	return mapping, nil
}

// Eval returns Σ coeff*value for terms.
func Eval(terms []Term, values []int64) int64 {
	var sum int64
	for _, t := range terms {
		sum += t.Coeff * values[t.Var]
	}
	return sum
}

// ObjectiveValue evaluates the objective at values.
func (m *Model) ObjectiveValue(values []int64) int64 {
	return Eval(m.Objective, values)
}

// Check verifies that values satisfies every bound and constraint and
// returns the first violation.
func (m *Model) Check(values []int64) error {
	if len(values) != len(m.Vars) {
		return fmt.Errorf("got %d values for %d variables", len(values), len(m.Vars))
	}
	for i, v := range m.Vars {
		if values[i] < v.Lower || values[i] > v.Upper {
			return fmt.Errorf("variable %s = %d outside [%d, %d]", v.Name, values[i], v.Lower, v.Upper)
		}
	}
	for _, c := range m.Constraints {
		if lhs := Eval(c.Terms, values); !c.Holds(lhs) {
			return fmt.Errorf("constraint violated (lhs %d): %s", lhs, c)
		}
	}
	return nil
}

// CheckTerms returns ErrUnknownVar if any term references a variable
// outside [0, n).
func CheckTerms(terms []Term, n int) error {
	for _, t := range terms {
		if t.Var < 0 || int(t.Var) >= n {
			return fmt.Errorf("%w: x%d", ErrUnknownVar, t.Var)
		}
	}
	return nil
}

// Values reads every variable of a solved session, in model order.
func Values(s Solver, vars []Var) ([]int64, error) {
	out := make([]int64, len(vars))
	for i, v := range vars {
		val, err := s.Value(v)
		if err != nil {
			return nil, err
		}
		out[i] = val
	}
	return out, nil
}

var _ Builder = (*Model)(nil)
