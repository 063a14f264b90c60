// Package cache stores solved floorplans so that repeated runs on the same
// inputs skip the solver.
//
// # Backends
//
//   - [FileCache]: one JSON file per entry under a directory (CLI default)
//   - [RedisCache]: a shared Redis instance (HTTP service deployments)
//   - [MongoCache]: a MongoDB collection with a TTL index
//   - [NullCache]: disables caching
//
// All backends store opaque bytes with an optional time-to-live and treat
// corrupt or expired entries as misses.
//
// # Keys
//
// A [Keyer] derives keys from a content hash of the inputs (design,
// symmetry pairs) and the options that influence the result (objective,
// backend, resource scale). [ScopedKeyer] prefixes keys so that several
// tenants can share one backend.
package cache

import (
	"context"
	"time"
)

// DefaultTTL is the lifetime of a cached result when none is configured.
const DefaultTTL = 24 * time.Hour

// Cache is a byte-oriented key/value store with expiration.
type Cache interface {
	// Get returns the value and true on a hit. Misses are not errors.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A non-positive ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases connections held by the cache.
	Close() error
}

// Clearer is implemented by caches that can drop every entry they own.
type Clearer interface {
	Clear(ctx context.Context) error
}

// ResultKeyOpts are the solve options that change a cached result.
type ResultKeyOpts struct {
	Backend           string `json:"backend"`
	Objective         string `json:"objective"`
	ResourcePerLength int64  `json:"resource_per_length"`
	SymmetryAxis      *int64 `json:"symmetry_axis,omitempty"`
	MaxNodes          int    `json:"max_nodes,omitempty"`
}

// Keyer derives cache keys.
type Keyer interface {
	// ResultKey identifies a solve result.
	ResultKey(inputHash string, opts ResultKeyOpts) string
	// GraphKey identifies an exported constraint graph.
	GraphKey(inputHash string, format string) string
}

// DefaultKeyer hashes key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ResultKey implements Keyer.
func (DefaultKeyer) ResultKey(inputHash string, opts ResultKeyOpts) string {
	return hashKey("result", inputHash, opts)
}

// GraphKey implements Keyer.
func (DefaultKeyer) GraphKey(inputHash string, format string) string {
	return hashKey("graph", inputHash, format)
}
