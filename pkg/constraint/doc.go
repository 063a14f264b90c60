// Package constraint derives pin ordering constraints from fixed cell
// geometry.
//
// # Constraint Graph
//
// A [Graph] is a directed graph over participating pins, identified by dense
// integer IDs. An edge p → q means "p must lie at or below q". The graph must
// stay acyclic for the floorplan to be formulable:
//
//   - [Graph.AddEdge] rejects self loops ([ErrSelfLoop]) and edges whose
//     reverse is already present ([ErrContradictoryEdge]). Duplicate edges
//     are ignored.
//   - [Graph.Validate] finds longer cycles ([ErrGraphHasCycle]) using
//     depth-first search with white/gray/black coloring.
//
// Inconsistencies are always reported, never silently broken.
//
// # Vertical Sweep
//
// [Sweep] builds the graph from cell bounding boxes. A horizontal sweep line
// moves bottom to top. Each cell opens at its Bottom and closes at its Top;
// at equal coordinates opens are processed before closes, then cells in index
// order, so the result is deterministic and zero-height cells are active for
// the instant they exist.
//
// The active set is an interval tree over horizontal extents, ordered by left
// edge and augmented with the largest right edge of each subtree. When cell A
// opens, only active cells overlapping A horizontally are visited, so a sweep
// costs O(n log n + k) for n cells and k overlapping pairs.
// For each such cell B with B.Bottom strictly below A.Bottom, every pin of B
// gets an edge to every pin of A that shares a relation key (a net or a
// symmetry pair).
//
// Horizontal overlap is strict: abutting cells never constrain each other.
// Vertical extents are closed: a cell whose top touches another's bottom is
// still active when the upper cell opens.
//
// # Export
//
// [ToDOT] writes the graph in Graphviz DOT format, ranked by topological
// level, and [RenderSVG] renders DOT to SVG through go-graphviz.
package constraint
