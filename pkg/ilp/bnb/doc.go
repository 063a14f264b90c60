// Package bnb implements [ilp.Solver] as LP-based branch and bound.
//
// Every node solves the linear relaxation with gonum's simplex
// (gonum.org/v1/gonum/optimize/convex/lp). Variables are shifted by their
// lower bound so that the relaxation is in standard form, each bound and
// each inequality receives its own slack column, and equalities are split
// into two inequalities. The slack columns keep the constraint matrix at
// full row rank, which the simplex implementation requires.
//
// The search is depth first and branches on the first fractional variable,
// exploring the floor branch before the ceiling branch. Nodes whose
// relaxation cannot beat the incumbent are pruned. The context is checked
// before every node, so cancellation and deadlines take effect promptly,
// and the number of nodes is capped by [WithMaxNodes].
package bnb
