package pipeline

import (
	"golang.org/x/sync/semaphore"

	"github.com/matzehuels/topfloor/pkg/config"
	"github.com/matzehuels/topfloor/pkg/errors"
	"github.com/matzehuels/topfloor/pkg/ilp"
	"github.com/matzehuels/topfloor/pkg/ilp/bnb"
	"github.com/matzehuels/topfloor/pkg/ilp/pbsolver"
)

// NewSolverFactory returns the session factory for a backend name.
// maxNodes limits the branch-and-bound search; zero keeps its default.
// searches, when non-nil, bounds concurrent pseudo-boolean searches.
func NewSolverFactory(backend string, maxNodes int, searches *semaphore.Weighted) (ilp.Factory, error) {
	switch backend {
	case config.BackendPB:
		var opts []pbsolver.Option
		if searches != nil {
			opts = append(opts, pbsolver.WithSearchLimit(searches))
		}
		return pbsolver.Factory(opts...), nil
	case config.BackendBnB:
		var opts []bnb.Option
		if maxNodes > 0 {
			opts = append(opts, bnb.WithMaxNodes(maxNodes))
		}
		return bnb.Factory(opts...), nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown solver backend %q (want one of %v)", backend, config.Backends())
	}
}
