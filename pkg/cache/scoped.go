package cache

// ScopedKeyer wraps a Keyer with a prefix so that several users of one
// backend get separate namespaces. The HTTP service scopes its entries
// away from those written by the CLI:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "api:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// ResultKey generates a prefixed key for solve results.
func (k *ScopedKeyer) ResultKey(inputHash string, opts ResultKeyOpts) string {
	return k.prefix + k.inner.ResultKey(inputHash, opts)
}

// GraphKey generates a prefixed key for exported graphs.
func (k *ScopedKeyer) GraphKey(inputHash string, format string) string {
	return k.prefix + k.inner.GraphKey(inputHash, format)
}
