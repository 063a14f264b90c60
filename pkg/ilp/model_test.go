package ilp

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder is a Builder that records calls in order.
type recorder struct {
	calls []string
	n     int
}

func (r *recorder) AddVariable(name string, lower, upper int64) (Var, error) {
	r.calls = append(r.calls, "var "+name)
	r.n++
	return Var(r.n - 1 + 100), nil
}

func (r *recorder) AddConstraint(c Constraint) error {
	r.calls = append(r.calls, "con "+c.String())
	return nil
}

func (r *recorder) SetObjective(terms []Term) error {
	r.calls = append(r.calls, "obj "+Constraint{Terms: terms}.String())
	return nil
}

func TestModelLoad(t *testing.T) {
	var m Model
	x, err := m.AddVariable("x", 0, 1)
	require.NoError(t, err)
	y, err := m.AddVariable("y", 0, 3)
	require.NoError(t, err)
	require.NoError(t, m.AddConstraint(Constraint{Name: "c", Terms: []Term{{x, 1}, {y, 2}}, Sense: LessEq, RHS: 4}))
	require.NoError(t, m.SetObjective([]Term{{y, -1}}))

	r := &recorder{}
	mapping, err := m.Load(r)
	require.NoError(t, err)

	assert.Equal(t, []Var{100, 101}, mapping)
	assert.Equal(t, []string{
		"var x",
		"var y",
		"con c: 1*x100 + 2*x101 <= 4",
		"obj -1*x101 <= 0",
	}, r.calls)
	assert.Equal(t, ModelStats{Vars: 2, Constraints: 1, ObjectiveTerms: 1}, m.Stats())
}

func TestModelValidation(t *testing.T) {
	var m Model
	_, err := m.AddVariable("bad", 2, 1)
	assert.True(t, errors.Is(err, ErrInvalidBounds))

	err = m.AddConstraint(Constraint{Terms: []Term{{Var: 0, Coeff: 1}}})
	assert.True(t, errors.Is(err, ErrUnknownVar))

	err = m.SetObjective([]Term{{Var: -1, Coeff: 1}})
	assert.True(t, errors.Is(err, ErrUnknownVar))
}

func TestModelCheck(t *testing.T) {
	var m Model
	a, _ := m.AddVariable("a", 0, 1)
	b, _ := m.AddVariable("b", 0, 1)
	require.NoError(t, m.AddConstraint(Constraint{Name: "one", Terms: []Term{{a, 1}, {b, 1}}, Sense: Equal, RHS: 1}))
	require.NoError(t, m.SetObjective([]Term{{a, 5}, {b, 3}}))

	assert.NoError(t, m.Check([]int64{0, 1}))
	assert.Equal(t, int64(3), m.ObjectiveValue([]int64{0, 1}))

	err := m.Check([]int64{1, 1})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "one:"))

	assert.Error(t, m.Check([]int64{2, 0}))
	assert.Error(t, m.Check([]int64{0}))
}

func TestConstraintHolds(t *testing.T) {
	tests := []struct {
		sense Sense
		lhs   int64
		want  bool
	}{
		{LessEq, 3, true},
		{LessEq, 4, false},
		{GreaterEq, 3, true},
		{GreaterEq, 2, false},
		{Equal, 3, true},
		{Equal, 2, false},
	}
	for _, tt := range tests {
		c := Constraint{Sense: tt.sense, RHS: 3}
		if got := c.Holds(tt.lhs); got != tt.want {
			t.Errorf("(%s 3).Holds(%d) = %v, want %v", tt.sense, tt.lhs, got, tt.want)
		}
	}
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "optimal", StatusOptimal.String())
	assert.Equal(t, "infeasible", StatusInfeasible.String())
	assert.Equal(t, "Status(9)", Status(9).String())
	assert.Equal(t, "Sense(7)", Sense(7).String())
}
