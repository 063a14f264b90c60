// Package design adapts an upstream layout database to the floorplanner.
//
// # Overview
//
// The floorplanner never reads layout files directly. It consumes two narrow
// read-only views of the design:
//
//   - [DesignDB] supplies the fixed placement: one bounding box per cell.
//   - [CircuitGraph] supplies pins in circuit-native form: name, owning
//     cell, net membership and an optional baseline location.
//
// [Design] is the in-memory, JSON-serializable implementation of both views
// used by the CLI and the HTTP service. Other databases can be plugged in by
// implementing the two interfaces.
//
// # Symmetry Declarations
//
// A [SymPair] names a primary and a secondary pin that must land in mirror
// positions across the vertical symmetry axis. Pairs are resolved against the
// circuit graph by the pin classifier in package floorplan; this package only
// carries them.
package design
