package pipeline

import (
	"github.com/matzehuels/topfloor/pkg/cache"
	"github.com/matzehuels/topfloor/pkg/design"
	"github.com/matzehuels/topfloor/pkg/errors"
	tfio "github.com/matzehuels/topfloor/pkg/io"
)

// Inputs are the parsed design and symmetry declaration of a run.
type Inputs struct {
	Design *design.Design   `json:"design"`
	Pairs  []design.SymPair `json:"pairs"`
}

// Hash returns the content hash used in cache keys.
func (in Inputs) Hash() (string, error) {
	h, err := cache.HashJSON(in)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "hash inputs")
	}
	return h, nil
}

// Parse reads the inputs named by opts. Inline values take precedence over
// file paths. An inline design is validated here.
func Parse(opts Options) (Inputs, error) {
	var in Inputs
	var err error

	if opts.Design != nil {
		in.Design = opts.Design
		if err := in.Design.Validate(); err != nil {
			return in, err
		}
	} else if in.Design, err = tfio.ImportDesign(opts.DesignPath); err != nil {
		return in, err
	}

	if opts.Pairs != nil {
		in.Pairs = opts.Pairs
	} else if in.Pairs, err = tfio.ImportSymNet(opts.SymNetPath); err != nil {
		return in, err
	}
	if in.Pairs == nil {
		in.Pairs = []design.SymPair{}
	}
	return in, nil
}
