// Package pkg provides the core libraries of topfloor, the top-level
// floorplanner for analog IC layouts.
//
// # Overview
//
// Topfloor takes a fixed placement of analog sub-blocks and assigns every
// participating pin to a slot on the left or right edge of its cell. The
// assignment mirrors symmetric pin pairs around a vertical axis, keeps the
// vertical order of pins consistent across cells that overlap in height and
// keeps each net within its routing budget. The pkg directory is organized
// into three areas:
//
//  1. Domain logic: [design], [geom], [floorplan], [constraint], [ilp]
//  2. Infrastructure: [cache], [config], [io], [observability], [errors]
//  3. Orchestration: [pipeline]
//
// # Architecture
//
// The data flow through topfloor:
//
//	design JSON + symmetric-net file
//	         ↓
//	    [io] package (read and validate inputs)
//	         ↓
//	    [floorplan] package (classify pins, build the problem)
//	         ↓
//	    [constraint] package (vertical sweep line, ordering graph)
//	         ↓
//	    [ilp] package (formulate and solve the 0-1 program)
//	         ↓
//	    result report JSON, placement tables, DOT/SVG graph
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/topfloor/pkg/floorplan"
//	    "github.com/matzehuels/topfloor/pkg/ilp/pbsolver"
//	    tfio "github.com/matzehuels/topfloor/pkg/io"
//	)
//
//	d, _ := tfio.ImportDesign("opamp.json")
//	pairs, _ := tfio.ImportSymNet("opamp.sym")
//
//	p, err := floorplan.InitProblem(d, d, pairs, floorplan.Config{})
//	if err != nil {
//	    return err // configuration error
//	}
//	drv := floorplan.NewDriver(p, pbsolver.Factory(), floorplan.WithLogger(logger))
//	ok, err := drv.Solve(ctx)
//
// Most callers use [pipeline], which adds result caching and the
// observability hooks on top of the same steps.
//
// # Solver Backends
//
// [ilp/pbsolver] solves the model as a pseudo-boolean optimization problem
// with gophersat. [ilp/bnb] is a branch-and-bound search over LP relaxations
// solved with gonum. Both implement the [ilp.Factory] interface and return
// the same optimum.
//
// [design]: https://pkg.go.dev/github.com/matzehuels/topfloor/pkg/design
// [geom]: https://pkg.go.dev/github.com/matzehuels/topfloor/pkg/geom
// [floorplan]: https://pkg.go.dev/github.com/matzehuels/topfloor/pkg/floorplan
// [constraint]: https://pkg.go.dev/github.com/matzehuels/topfloor/pkg/constraint
// [ilp]: https://pkg.go.dev/github.com/matzehuels/topfloor/pkg/ilp
// [ilp.Factory]: https://pkg.go.dev/github.com/matzehuels/topfloor/pkg/ilp#Factory
// [ilp/pbsolver]: https://pkg.go.dev/github.com/matzehuels/topfloor/pkg/ilp/pbsolver
// [ilp/bnb]: https://pkg.go.dev/github.com/matzehuels/topfloor/pkg/ilp/bnb
// [cache]: https://pkg.go.dev/github.com/matzehuels/topfloor/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/topfloor/pkg/config
// [io]: https://pkg.go.dev/github.com/matzehuels/topfloor/pkg/io
// [observability]: https://pkg.go.dev/github.com/matzehuels/topfloor/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/topfloor/pkg/errors
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/topfloor/pkg/pipeline
package pkg
