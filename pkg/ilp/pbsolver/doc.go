// Package pbsolver implements [ilp.Solver] on top of the gophersat
// pseudo-boolean MAXSAT optimizer.
//
// Bounded integer variables are binary expanded: x in [lo, hi] becomes
// lo + Σ 2^k b_k with an extra constraint capping the sum at hi - lo when
// the range is not a power of two minus one. Linear constraints become hard
// pseudo-boolean constraints after normalizing every coefficient to be
// positive (negative terms are rewritten over the negated literal).
// The minimization objective becomes a set of weighted unit soft clauses,
// one per bit, so the optimizer's cost equals the objective up to a
// constant offset.
//
// gophersat's search cannot be interrupted. Solve therefore runs it in a
// separate goroutine and returns [ilp.ErrTimeout] as soon as the context is
// done; the abandoned search finishes in the background and its result is
// discarded. Use [WithSearchLimit] to bound how many such searches run at
// once: a search keeps its slot until it really ends, so abandoned searches
// count against the limit and new sessions wait for them.
package pbsolver
