package bnb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/topfloor/pkg/ilp"
	"github.com/matzehuels/topfloor/pkg/ilp/ilptest"
)

func TestConformance(t *testing.T) {
	ilptest.Run(t, Factory())
}

func TestBranching(t *testing.T) {
	// maximize 5x + 4y subject to 6x + 4y <= 24, x + 2y <= 6, integers.
	// The relaxation optimum (3, 1.5) is fractional; the integer optimum is
	// (4, 0) with value 20.
	var m ilp.Model
	x, _ := m.AddVariable("x", 0, 10)
	y, _ := m.AddVariable("y", 0, 10)
	require.NoError(t, m.AddConstraint(ilp.Constraint{Terms: []ilp.Term{{Var: x, Coeff: 6}, {Var: y, Coeff: 4}}, Sense: ilp.LessEq, RHS: 24}))
	require.NoError(t, m.AddConstraint(ilp.Constraint{Terms: []ilp.Term{{Var: x, Coeff: 1}, {Var: y, Coeff: 2}}, Sense: ilp.LessEq, RHS: 6}))
	require.NoError(t, m.SetObjective([]ilp.Term{{Var: x, Coeff: -5}, {Var: y, Coeff: -4}}))

	s, values := ilptest.Solve(t, Factory(), &m)
	require.Equal(t, ilp.StatusOptimal, s.Status())
	assert.Equal(t, int64(-20), m.ObjectiveValue(values))

	st := s.(*Solver).Stats()
	assert.Greater(t, st.Nodes, 1)
	assert.Greater(t, st.MaxDepth, 0)
}

func TestNodeLimit(t *testing.T) {
	var m ilp.Model
	x, _ := m.AddVariable("x", 0, 3)
	y, _ := m.AddVariable("y", 0, 3)
	require.NoError(t, m.AddConstraint(ilp.Constraint{Terms: []ilp.Term{{Var: x, Coeff: 2}, {Var: y, Coeff: 2}}, Sense: ilp.LessEq, RHS: 3}))
	require.NoError(t, m.SetObjective([]ilp.Term{{Var: x, Coeff: -1}, {Var: y, Coeff: -1}}))

	s := New(WithMaxNodes(1))
	_, err := m.Load(s)
	require.NoError(t, err)

	err = s.Solve(context.Background())
	assert.ErrorIs(t, err, ErrNodeLimit)
	assert.Equal(t, ilp.StatusError, s.Status())
}

func TestNegativeRHS(t *testing.T) {
	// x - y <= -2 forces y >= x + 2.
	var m ilp.Model
	x, _ := m.AddVariable("x", 0, 5)
	y, _ := m.AddVariable("y", 0, 5)
	require.NoError(t, m.AddConstraint(ilp.Constraint{Terms: []ilp.Term{{Var: x, Coeff: 1}, {Var: y, Coeff: -1}}, Sense: ilp.LessEq, RHS: -2}))
	require.NoError(t, m.SetObjective([]ilp.Term{{Var: x, Coeff: -1}, {Var: y, Coeff: 1}}))

	_, values := ilptest.Solve(t, Factory(), &m)
	require.Len(t, values, 2)
	assert.Equal(t, values[0]+2, values[1])
}

func TestNoVariables(t *testing.T) {
	var m ilp.Model
	s, values := ilptest.Solve(t, Factory(), &m)
	assert.Equal(t, ilp.StatusOptimal, s.Status())
	assert.Empty(t, values)
}
