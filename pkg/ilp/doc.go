// Package ilp defines the integer linear programming contract used by the
// floorplanner and a backend-neutral model recorder.
//
// # Solver Contract
//
// A [Solver] is a single-use session: variables and constraints are added,
// an objective is set, [Solver.Solve] runs once and values are read back.
// All coefficients and bounds are int64; the problems built by the
// floorplanner are small and integral, and keeping them integral lets
// pseudo-boolean backends encode them exactly.
//
// Solve must honor context cancellation. A deadline that expires before a
// definitive answer is reported as an error wrapping [ErrTimeout]; an
// infeasible model is not an error and is reported through
// [Solver.Status].
//
// # Recorded Models
//
// [Model] records variables, constraints and the objective without solving.
// [Model.Load] replays the recording into any [Solver], which gives every
// solve attempt a fresh session and lets the same formulation run on
// different backends. [Model.Check] evaluates an assignment against the
// recording, which backends and tests use to verify answers.
//
// # Backends
//
// Two implementations live in subpackages:
//
//   - pbsolver: pseudo-boolean optimization with gophersat
//   - bnb: LP relaxation with gonum's simplex and depth-first branch and bound
package ilp
