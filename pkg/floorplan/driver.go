package floorplan

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/topfloor/pkg/constraint"
	"github.com/matzehuels/topfloor/pkg/errors"
	"github.com/matzehuels/topfloor/pkg/geom"
	"github.com/matzehuels/topfloor/pkg/ilp"
)

// State is the position of a [Driver] in the solve pipeline.
type State int

const (
	StateUninitialized State = iota
	StateProblemBuilt
	StateGraphBuilt
	StateModelBuilt
	StateSolved
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateProblemBuilt:
		return "problem-built"
	case StateGraphBuilt:
		return "graph-built"
	case StateModelBuilt:
		return "model-built"
	case StateSolved:
		return "solved"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Outcome is the result of the last solve attempt.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeFeasible
	OutcomeInfeasible
	OutcomeGraphInconsistent
	OutcomeSolverError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNone:
		return "none"
	case OutcomeFeasible:
		return "feasible"
	case OutcomeInfeasible:
		return "infeasible"
	case OutcomeGraphInconsistent:
		return "graph-inconsistent"
	case OutcomeSolverError:
		return "solver-error"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (o Outcome) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *Outcome) UnmarshalText(b []byte) error {
	for c := OutcomeNone; c <= OutcomeSolverError; c++ {
		if c.String() == string(b) {
			*o = c
			return nil
		}
	}
	return fmt.Errorf("unknown outcome %q", b)
}

// Placement is the chosen location of one pin.
type Placement struct {
	Pin      string     `json:"pin"`
	Cell     string     `json:"cell"`
	Role     Role       `json:"role"`
	Side     Side       `json:"side"`
	Track    int        `json:"track"`
	Position geom.Point `json:"position"`
}

// NetUsage reports the resource consumption of a kept net.
type NetUsage struct {
	Net      string `json:"net"`
	Capacity int64  `json:"capacity,omitempty"`
	Used     int64  `json:"used"`
}

// Assignment is a feasible floorplan.
type Assignment struct {
	Placements []Placement `json:"placements"`
	Nets       []NetUsage  `json:"nets,omitempty"`
	Objective  int64       `json:"objective"`
}

// SolveStats describes the last solve attempt.
type SolveStats struct {
	Edges       int              `json:"edges"`
	Formulation FormulationStats `json:"formulation"`
	Constraints int              `json:"constraints"`
	GraphTime   time.Duration    `json:"graph_time"`
	ModelTime   time.Duration    `json:"model_time"`
	SolveTime   time.Duration    `json:"solve_time"`
}

// Option configures a Driver.
type Option func(*Driver)

// WithLogger sets the logger for stage progress. The default discards.
func WithLogger(l *log.Logger) Option {
	return func(d *Driver) {
		if l != nil {
			d.logger = l
		}
	}
}

// Driver runs solve attempts against one problem. It holds the problem by
// reference and never mutates it; each attempt builds the constraint graph
// and the ILP from scratch and uses a fresh solver session.
//
// A Driver is not safe for concurrent use. Independent drivers may share a
// problem.
type Driver struct {
	problem    *Problem
	newSolver  ilp.Factory
	logger     *log.Logger
	buildGraph func(*Problem) (*constraint.Graph, constraint.SweepStats, error)

	state      State
	outcome    Outcome
	assignment *Assignment
	stats      SolveStats
}

// NewDriver returns a driver for p. A nil p yields a driver that fails
// every Solve with NOT_INITIALIZED.
func NewDriver(p *Problem, newSolver ilp.Factory, opts ...Option) *Driver {
	d := &Driver{
		problem:    p,
		newSolver:  newSolver,
		logger:     log.New(io.Discard),
		buildGraph: BuildGraph,
	}
	if p != nil {
		d.state = StateProblemBuilt
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// State returns the current pipeline state.
func (d *Driver) State() State { return d.state }

// Outcome returns the outcome of the last Solve.
func (d *Driver) Outcome() Outcome { return d.outcome }

// Stats returns statistics of the last Solve.
func (d *Driver) Stats() SolveStats { return d.stats }

// Assignment returns the floorplan found by the last Solve, if it was
// feasible.
func (d *Driver) Assignment() (*Assignment, bool) {
	return d.assignment, d.assignment != nil
}

// Solve builds the constraint graph and the ILP and solves it.
//
// It returns (true, nil) when a feasible floorplan was found and
// (false, nil) when the problem is infeasible. Graph inconsistencies
// (GRAPH_INCONSISTENT), timeouts (TIMEOUT) and solver failures
// (SOLVER_ERROR) are returned as errors; afterwards the driver is back in
// [StateProblemBuilt] and can be retried.
func (d *Driver) Solve(ctx context.Context) (bool, error) {
	d.outcome, d.assignment, d.stats = OutcomeNone, nil, SolveStats{}
	if d.problem == nil || d.state == StateUninitialized {
		return false, errors.New(errors.ErrCodeNotInitialized, "solve called on an uninitialized problem")
	}
	if d.newSolver == nil {
		return false, errors.New(errors.ErrCodeInvalidConfig, "no solver backend configured")
	}
	d.state = StateProblemBuilt
	p := d.problem

	start := time.Now()
	g, sweep, err := d.buildGraph(p)
	if err != nil {
		d.outcome = OutcomeGraphInconsistent
		return false, err
	}
	d.state = StateGraphBuilt
	d.stats.Edges = g.EdgeCount()
	d.stats.GraphTime = time.Since(start)
	d.logger.Debug("constraint graph built", "pins", g.NodeCount(), "edges", g.EdgeCount(), "visited", sweep.Visited)

	start = time.Now()
	obj, err := LookupObjective(p.cfg.Objective)
	if err != nil {
		d.state = StateProblemBuilt
		return false, err
	}
	enc, err := Formulate(p, g, obj)
	if err != nil {
		d.state = StateProblemBuilt
		if errors.Is(err, errors.ErrCodeGraphInconsistent) {
			d.outcome = OutcomeGraphInconsistent
		}
		return false, err
	}
	d.state = StateModelBuilt
	d.stats.Formulation = enc.Stats
	d.stats.Constraints = len(enc.Model.Constraints)
	d.stats.ModelTime = time.Since(start)
	d.logger.Debug("model formulated",
		"vars", enc.Stats.Vars,
		"constraints", len(enc.Model.Constraints),
		"symmetry", enc.Stats.Symmetry,
		"ordering", enc.Stats.Ordering)

	start = time.Now()
	values, status, err := d.run(ctx, &enc.Model)
	d.stats.SolveTime = time.Since(start)
	if err != nil {
		d.state = StateProblemBuilt
		d.outcome = OutcomeSolverError
		return false, err
	}
	d.state = StateSolved
	d.logger.Debug("solver finished", "status", status, "duration", d.stats.SolveTime)

	if status == ilp.StatusInfeasible {
		d.outcome = OutcomeInfeasible
		return false, nil
	}

	asg, err := d.assemble(enc, values)
	if err != nil {
		d.state = StateProblemBuilt
		d.outcome = OutcomeSolverError
		return false, errors.Wrap(errors.ErrCodeSolver, err, "solver returned an invalid assignment")
	}
	d.assignment = asg
	d.outcome = OutcomeFeasible
	return true, nil
}

// run solves m in a fresh session under the configured timeout.
func (d *Driver) run(ctx context.Context, m *ilp.Model) ([]int64, ilp.Status, error) {
	if t := d.problem.cfg.Timeout; t > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t)
		defer cancel()
	}

	s := d.newSolver()
	vars, err := m.Load(s)
	if err != nil {
		return nil, ilp.StatusError, errors.Wrap(errors.ErrCodeSolver, err, "load model")
	}
	if err := s.Solve(ctx); err != nil {
		if ilp.IsTimeout(err) || errors.IsTimeout(err) {
			return nil, ilp.StatusError, errors.Wrap(errors.ErrCodeTimeout, err, "solve")
		}
		return nil, ilp.StatusError, errors.Wrap(errors.ErrCodeSolver, err, "solve")
	}

	switch status := s.Status(); status {
	case ilp.StatusInfeasible:
		return nil, status, nil
	case ilp.StatusOptimal:
		values, err := ilp.Values(s, vars)
		if err != nil {
			return nil, ilp.StatusError, errors.Wrap(errors.ErrCodeSolver, err, "read solution")
		}
		return values, status, nil
	default:
		return nil, status, errors.New(errors.ErrCodeSolver, "solver finished with status %s", status)
	}
}

// assemble verifies values against the model and converts them into
// placements.
func (d *Driver) assemble(enc *Encoding, values []int64) (*Assignment, error) {
	if err := enc.Model.Check(values); err != nil {
		return nil, err
	}
	slots, err := enc.Decode(values)
	if err != nil {
		return nil, err
	}

	p := d.problem
	asg := &Assignment{
		Placements: make([]Placement, len(slots)),
		Objective:  enc.Model.ObjectiveValue(values),
	}
	for n, s := range slots {
		pin := p.pins[p.nodes[n]]
		asg.Placements[n] = Placement{
			Pin:      pin.Name,
			Cell:     p.cells[pin.Cell].Name,
			Role:     pin.Role,
			Side:     s.Side,
			Track:    s.Track,
			Position: s.Pos,
		}
	}

	for _, pair := range p.pairs {
		pp := asg.Placements[p.nodeOf[pair.Primary]].Position
		sp := asg.Placements[p.nodeOf[pair.Secondary]].Position
		if p.Reflect(pp) != sp {
			return nil, fmt.Errorf("pins %s and %s are not mirrored", p.pins[pair.Primary].Name, p.pins[pair.Secondary].Name)
		}
	}

	for id, net := range p.nets {
		u := NetUsage{Net: net.Name, Capacity: net.Capacity}
		for _, pin := range net.Pins {
			u.Used += p.NetCost(id, slots[p.nodeOf[pin]])
		}
		asg.Nets = append(asg.Nets, u)
	}
	return asg, nil
}
