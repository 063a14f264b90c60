// Package floorplan assigns global pin positions for the top level of an
// analog layout.
//
// # Overview
//
// Cells are placed already; their bounding boxes are fixed inputs. What
// remains is to decide where each pin sits on its cell's boundary so that
// nets stay within their routing budget, declared symmetric pins are exact
// mirror images across a vertical axis, and pins respect the vertical
// ordering implied by the existing cell stack.
//
// The package works in three stages:
//
//  1. [InitProblem] classifies pins and snapshots the geometry into an
//     immutable [Problem].
//  2. [BuildGraph] sweeps the cells bottom to top and derives the ordering
//     constraint graph (package constraint).
//  3. [Formulate] encodes slots, symmetry, budgets and ordering as a 0/1
//     ILP (package ilp), which a [Driver] solves through a pluggable
//     backend.
//
// # Pin Classification
//
// Every pin gets a [Role]:
//
//   - [RoleSymPrimary] and [RoleSymSecondary] for the two sides of a
//     declared symmetry pair, whatever their net membership. Pair k uses
//     role-local index k on both sides.
//   - [RoleAsym] for the remaining pins of nets that keep at least two
//     non-ignored pins.
//   - [RoleOther] for everything else. These pins take no part in any
//     constraint or in the objective.
//
// Unknown names in the symmetry declaration fail with UNRESOLVED_PIN; pins
// declared twice or paired with themselves, and ignored pins declared
// symmetric, fail with INVALID_CONFIG. Initialization errors never return a
// partial problem.
//
// # Slots and Resources
//
// [Config.ResourcePerLength] converts database units into resource units.
// A cell side of height H offers H / ResourcePerLength tracks, and each
// (cell, side, track) is a [Slot] that holds at most one pin. The cost of a
// slot for a net is the Manhattan distance from the slot to the center of
// the net's cells, in resource units rounded to the nearest unit. Nets with
// a positive capacity must keep the sum of their pins' costs within it.
//
// # Symmetry
//
// The axis comes from [Config.SymmetryAxis] or, when unset, the center of
// the overall cell extent. It is kept doubled ([Problem.Axis2]) so that
// reflection (x, y) -> (axis2 - x, y) is exact. Each primary slot is tied to
// the secondary slot at its mirror point; slots without a mirror partner are
// forbidden for the pair.
//
// # Solving
//
// A [Driver] moves through [StateProblemBuilt], [StateGraphBuilt],
// [StateModelBuilt] and [StateSolved]. Each call to [Driver.Solve] rebuilds
// the graph and the model and opens a fresh solver session, so repeated
// calls are independent and deterministic.
//
//	p, err := floorplan.InitProblem(db, ckt, pairs, floorplan.DefaultConfig())
//	if err != nil {
//	    return err // configuration error
//	}
//	d := floorplan.NewDriver(p, pbsolver.Factory())
//	ok, err := d.Solve(ctx)
//	switch {
//	case err != nil:
//	    // GRAPH_INCONSISTENT, TIMEOUT or SOLVER_ERROR
//	case !ok:
//	    // infeasible
//	default:
//	    asg, _ := d.Assignment()
//	}
package floorplan
