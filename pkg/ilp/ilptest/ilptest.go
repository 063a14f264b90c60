// Package ilptest provides a conformance suite for [ilp.Solver]
// implementations.
package ilptest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/topfloor/pkg/ilp"
)

// Solve loads m into a fresh session from factory, solves it and, when the
// result is optimal, checks the returned values against m.
func Solve(t testing.TB, factory ilp.Factory, m *ilp.Model) (ilp.Solver, []int64) {
	t.Helper()
	s := factory()
	vars, err := m.Load(s)
	require.NoError(t, err)
	require.NoError(t, s.Solve(context.Background()))
	if s.Status() != ilp.StatusOptimal {
		return s, nil
	}
	values, err := ilp.Values(s, vars)
	require.NoError(t, err)
	require.NoError(t, m.Check(values))
	return s, values
}

// Run exercises the behavior every backend must share.
func Run(t *testing.T, factory ilp.Factory) {
	t.Run("Knapsack", func(t *testing.T) {
		// maximize 10a + 7b + 4c subject to 5a + 4b + 3c <= 8
		var m ilp.Model
		a, _ := m.AddVariable("a", 0, 1)
		b, _ := m.AddVariable("b", 0, 1)
		c, _ := m.AddVariable("c", 0, 1)
		require.NoError(t, m.AddConstraint(ilp.Constraint{
			Terms: []ilp.Term{{Var: a, Coeff: 5}, {Var: b, Coeff: 4}, {Var: c, Coeff: 3}},
			Sense: ilp.LessEq,
			RHS:   8,
		}))
		require.NoError(t, m.SetObjective([]ilp.Term{{Var: a, Coeff: -10}, {Var: b, Coeff: -7}, {Var: c, Coeff: -4}}))

		s, values := Solve(t, factory, &m)
		require.Equal(t, ilp.StatusOptimal, s.Status())
		assert.Equal(t, []int64{1, 0, 1}, values)
		assert.Equal(t, int64(-14), m.ObjectiveValue(values))
	})

	t.Run("OneHot", func(t *testing.T) {
		var m ilp.Model
		var sum, obj []ilp.Term
		for i, c := range []int64{4, 2, 9} {
			v, _ := m.AddVariable(fmt.Sprintf("x%d", i), 0, 1)
			sum = append(sum, ilp.Term{Var: v, Coeff: 1})
			obj = append(obj, ilp.Term{Var: v, Coeff: c})
		}
		require.NoError(t, m.AddConstraint(ilp.Constraint{Terms: sum, Sense: ilp.Equal, RHS: 1}))
		require.NoError(t, m.SetObjective(obj))

		_, values := Solve(t, factory, &m)
		assert.Equal(t, []int64{0, 1, 0}, values)
	})

	t.Run("IntegerVariables", func(t *testing.T) {
		// minimize x - 2y, x in [-3, 4], y in [0, 5], x + y >= 2, y - x <= 1.
		// Along y = x + 1 the objective is -x - 2, so x = 4, y = 5.
		var m ilp.Model
		x, _ := m.AddVariable("x", -3, 4)
		y, _ := m.AddVariable("y", 0, 5)
		require.NoError(t, m.AddConstraint(ilp.Constraint{Terms: []ilp.Term{{Var: x, Coeff: 1}, {Var: y, Coeff: 1}}, Sense: ilp.GreaterEq, RHS: 2}))
		require.NoError(t, m.AddConstraint(ilp.Constraint{Terms: []ilp.Term{{Var: y, Coeff: 1}, {Var: x, Coeff: -1}}, Sense: ilp.LessEq, RHS: 1}))
		require.NoError(t, m.SetObjective([]ilp.Term{{Var: x, Coeff: 1}, {Var: y, Coeff: -2}}))

		s, values := Solve(t, factory, &m)
		require.Equal(t, ilp.StatusOptimal, s.Status())
		assert.Equal(t, []int64{4, 5}, values)
	})

	t.Run("FractionalRelaxation", func(t *testing.T) {
		// maximize x + y subject to 2x + 2y <= 3: the relaxation allows 1.5.
		var m ilp.Model
		x, _ := m.AddVariable("x", 0, 3)
		y, _ := m.AddVariable("y", 0, 3)
		require.NoError(t, m.AddConstraint(ilp.Constraint{Terms: []ilp.Term{{Var: x, Coeff: 2}, {Var: y, Coeff: 2}}, Sense: ilp.LessEq, RHS: 3}))
		require.NoError(t, m.SetObjective([]ilp.Term{{Var: x, Coeff: -1}, {Var: y, Coeff: -1}}))

		_, values := Solve(t, factory, &m)
		require.Len(t, values, 2)
		assert.Equal(t, int64(1), values[0]+values[1])
	})

	t.Run("BoundsRespected", func(t *testing.T) {
		var m ilp.Model
		x, _ := m.AddVariable("x", 0, 5)
		require.NoError(t, m.SetObjective([]ilp.Term{{Var: x, Coeff: -1}}))

		_, values := Solve(t, factory, &m)
		assert.Equal(t, []int64{5}, values)
	})

	t.Run("Infeasible", func(t *testing.T) {
		var m ilp.Model
		a, _ := m.AddVariable("a", 0, 1)
		b, _ := m.AddVariable("b", 0, 1)
		sum := []ilp.Term{{Var: a, Coeff: 1}, {Var: b, Coeff: 1}}
		require.NoError(t, m.AddConstraint(ilp.Constraint{Terms: sum, Sense: ilp.GreaterEq, RHS: 2}))
		require.NoError(t, m.AddConstraint(ilp.Constraint{Terms: sum, Sense: ilp.LessEq, RHS: 1}))

		s, values := Solve(t, factory, &m)
		assert.Equal(t, ilp.StatusInfeasible, s.Status())
		assert.Nil(t, values)

		_, err := s.Value(a)
		assert.ErrorIs(t, err, ilp.ErrNotSolved)
	})

	t.Run("EmptyConstraint", func(t *testing.T) {
		var m ilp.Model
		_, _ = m.AddVariable("a", 0, 1)
		require.NoError(t, m.AddConstraint(ilp.Constraint{Name: "zero", Sense: ilp.Equal, RHS: 0}))
		s, values := Solve(t, factory, &m)
		assert.Equal(t, ilp.StatusOptimal, s.Status())
		assert.Len(t, values, 1)

		var bad ilp.Model
		_, _ = bad.AddVariable("a", 0, 1)
		require.NoError(t, bad.AddConstraint(ilp.Constraint{Name: "one", Sense: ilp.Equal, RHS: 1}))
		s, _ = Solve(t, factory, &bad)
		assert.Equal(t, ilp.StatusInfeasible, s.Status())
	})

	t.Run("CancelledContext", func(t *testing.T) {
		s := factory()
		_, err := s.AddVariable("a", 0, 1)
		require.NoError(t, err)

		ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
		defer cancel()
		<-ctx.Done()

		err = s.Solve(ctx)
		assert.ErrorIs(t, err, ilp.ErrTimeout)
		assert.Equal(t, ilp.StatusError, s.Status())
	})

	t.Run("Validation", func(t *testing.T) {
		s := factory()
		assert.ErrorIs(t, s.AddConstraint(ilp.Constraint{Terms: []ilp.Term{{Var: 3, Coeff: 1}}}), ilp.ErrUnknownVar)
		assert.ErrorIs(t, s.SetObjective([]ilp.Term{{Var: 0, Coeff: 1}}), ilp.ErrUnknownVar)

		_, err := s.AddVariable("bad", 1, 0)
		assert.ErrorIs(t, err, ilp.ErrInvalidBounds)
	})

	t.Run("Deterministic", func(t *testing.T) {
		var m ilp.Model
		var sum []ilp.Term
		for i := range 4 {
			v, _ := m.AddVariable(fmt.Sprintf("x%d", i), 0, 1)
			sum = append(sum, ilp.Term{Var: v, Coeff: 1})
		}
		require.NoError(t, m.AddConstraint(ilp.Constraint{Terms: sum, Sense: ilp.Equal, RHS: 2}))

		_, first := Solve(t, factory, &m)
		_, second := Solve(t, factory, &m)
		assert.Equal(t, first, second)
	})
}
