package ilp

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrTimeout is wrapped by Solve when the context expires before the
	// solver reaches a definitive answer.
	ErrTimeout = errors.New("solver timed out")

	// ErrNotSolved is returned by Value before a successful Solve.
	ErrNotSolved = errors.New("model not solved to optimality")

	// ErrUnknownVar is returned when a constraint, objective or Value call
	// references a variable that was not created by the same session.
	ErrUnknownVar = errors.New("unknown variable")

	// ErrInvalidBounds is returned by AddVariable when lower > upper.
	ErrInvalidBounds = errors.New("lower bound exceeds upper bound")
)

// IsTimeout reports whether err wraps ErrTimeout.
func IsTimeout(err error) bool { return errors.Is(err, ErrTimeout) }

// Var identifies a variable within one solver session. Variables are
// numbered densely from 0 in creation order.
type Var int

// Term is Coeff * Var.
type Term struct {
	Var   Var
	Coeff int64
}

// Sense is the relation of a linear constraint.
type Sense int

const (
	LessEq Sense = iota
	GreaterEq
	Equal
)

func (s Sense) String() string {
	switch s {
	case LessEq:
		return "<="
	case GreaterEq:
		return ">="
	case Equal:
		return "="
	default:
		return fmt.Sprintf("Sense(%d)", int(s))
	}
}

// Constraint is Σ Terms Sense RHS.
type Constraint struct {
	Name  string
	Terms []Term
	Sense Sense
	RHS   int64
}

func (c Constraint) String() string {
	var sb strings.Builder
	if c.Name != "" {
		sb.WriteString(c.Name)
		sb.WriteString(": ")
	}
	for i, t := range c.Terms {
		if i > 0 {
			sb.WriteString(" + ")
		}
		fmt.Fprintf(&sb, "%d*x%d", t.Coeff, t.Var)
	}
	if len(c.Terms) == 0 {
		sb.WriteString("0")
	}
	fmt.Fprintf(&sb, " %s %d", c.Sense, c.RHS)
	return sb.String()
}

// Holds reports whether the constraint is satisfied by lhs.
func (c Constraint) Holds(lhs int64) bool {
	switch c.Sense {
	case LessEq:
		return lhs <= c.RHS
	case GreaterEq:
		return lhs >= c.RHS
	case Equal:
		return lhs == c.RHS
	}
	return false
}

// Status is the state of a solver session.
type Status int

const (
	StatusUnknown Status = iota
	StatusOptimal
	StatusInfeasible
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusUnknown:
		return "unknown"
	case StatusOptimal:
		return "optimal"
	case StatusInfeasible:
		return "infeasible"
	case StatusError:
		return "error"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Solver is one ILP session. Objectives are always minimized.
type Solver interface {
	// AddVariable creates an integer variable in [lower, upper].
	AddVariable(name string, lower, upper int64) (Var, error)
	// AddConstraint adds a linear constraint over existing variables.
	AddConstraint(c Constraint) error
	// SetObjective replaces the minimization objective. An empty objective
	// turns the session into a feasibility check.
	SetObjective(terms []Term) error
	// Solve runs the solver once.
	Solve(ctx context.Context) error
	// Status reports the outcome of the last Solve.
	Status() Status
	// Value returns the value of v in the optimal solution.
	Value(v Var) (int64, error)
}

// Factory creates a fresh solver session.
type Factory func() Solver
