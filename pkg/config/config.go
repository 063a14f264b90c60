// Package config loads topfloor settings from TOML files.
//
// A configuration file has three tables:
//
//	[problem]
//	resource_per_length = 1000
//	objective = "total-resource"
//	# symmetry_axis = 50000
//
//	[solver]
//	backend = "pb"
//	timeout = "30s"
//	max_timeout = "5m"
//	max_nodes = 200000
//	max_searches = 4
//
//	[cache]
//	backend = "file"
//	dir = ""
//	redis_addr = "localhost:6379"
//	mongo_uri = "mongodb://localhost:27017"
//	ttl = "24h"
//
// Every key is optional; missing keys keep the values of [Default]. Unknown
// keys are rejected so that typos do not silently fall back to defaults.
package config

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/topfloor/pkg/errors"
	"github.com/matzehuels/topfloor/pkg/floorplan"
	"github.com/matzehuels/topfloor/pkg/ilp/bnb"
)

// Solver backends.
const (
	BackendPB  = "pb"
	BackendBnB = "bnb"
)

// Cache backends.
const (
	CacheNone  = "none"
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheMongo = "mongo"
)

// Duration is a time.Duration that decodes from strings like "30s".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the full topfloor configuration.
type Config struct {
	Problem Problem `toml:"problem"`
	Solver  Solver  `toml:"solver"`
	Cache   Cache   `toml:"cache"`
}

// Problem holds the floorplan tunables.
type Problem struct {
	ResourcePerLength int64  `toml:"resource_per_length"`
	Objective         string `toml:"objective"`
	SymmetryAxis      *int64 `toml:"symmetry_axis"`
}

// Solver selects and limits the ILP backend.
type Solver struct {
	Backend  string   `toml:"backend"`
	Timeout  Duration `toml:"timeout"`
	MaxNodes int      `toml:"max_nodes"`

	// MaxTimeout caps the timeout an HTTP request may ask for.
	MaxTimeout Duration `toml:"max_timeout"`
	// MaxSearches bounds concurrent pseudo-boolean searches in one process.
	MaxSearches int `toml:"max_searches"`
}

// Service limits.
const (
	DefaultMaxTimeout  = 5 * time.Minute
	DefaultMaxSearches = 4
)

// Cache selects the result cache.
type Cache struct {
	Backend   string   `toml:"backend"`
	Dir       string   `toml:"dir"`
	RedisAddr string   `toml:"redis_addr"`
	MongoURI  string   `toml:"mongo_uri"`
	TTL       Duration `toml:"ttl"`
}

// Default returns the reference configuration.
func Default() Config {
	return Config{
		Problem: Problem{
			ResourcePerLength: floorplan.DefaultResourcePerLength,
			Objective:         floorplan.ObjectiveTotalResource,
		},
		Solver: Solver{
			Backend:  BackendPB,
			Timeout:  Duration(floorplan.DefaultTimeout),
			MaxNodes: bnb.DefaultMaxNodes,

			MaxTimeout:  Duration(DefaultMaxTimeout),
			MaxSearches: DefaultMaxSearches,
		},
		Cache: Cache{
			Backend:   CacheFile,
			RedisAddr: "localhost:6379",
			MongoURI:  "mongodb://localhost:27017",
			TTL:       Duration(24 * time.Hour),
		},
	}
}

// Load reads path on top of [Default] and validates the result. An empty
// path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if err := errors.ValidatePath(path); err != nil {
		return cfg, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := Decode(string(data), &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "config %s", path)
	}
	return cfg, cfg.Validate()
}

// Decode decodes TOML text into cfg, keeping fields the text does not set.
func Decode(text string, cfg *Config) error {
	md, err := toml.Decode(text, cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

// Validate reports the first invalid setting as an INVALID_CONFIG error.
func (c Config) Validate() error {
	fp := c.Floorplan()
	if err := fp.ValidateAndSetDefaults(); err != nil {
		return err
	}
	if !slices.Contains(Backends(), c.Solver.Backend) {
		return errors.New(errors.ErrCodeInvalidConfig, "unknown solver backend %q (want one of %s)",
			c.Solver.Backend, strings.Join(Backends(), ", "))
	}
	if c.Solver.MaxNodes < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "max_nodes must not be negative, got %d", c.Solver.MaxNodes)
	}
	if c.Solver.MaxSearches < 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "max_searches must be positive, got %d", c.Solver.MaxSearches)
	}
	if c.Solver.MaxTimeout <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "max_timeout must be positive, got %s", c.Solver.MaxTimeout.Std())
	}
	if c.Solver.Timeout > c.Solver.MaxTimeout {
		return errors.New(errors.ErrCodeInvalidConfig, "timeout %s exceeds max_timeout %s", c.Solver.Timeout.Std(), c.Solver.MaxTimeout.Std())
	}
	switch c.Cache.Backend {
	case CacheNone, CacheFile:
	case CacheRedis:
		if c.Cache.RedisAddr == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "cache backend redis needs redis_addr")
		}
	case CacheMongo:
		if c.Cache.MongoURI == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "cache backend mongo needs mongo_uri")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q", c.Cache.Backend)
	}
	if c.Cache.TTL < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache ttl must not be negative")
	}
	return nil
}

// Floorplan converts the problem and solver tables into a floorplan config.
func (c Config) Floorplan() floorplan.Config {
	return floorplan.Config{
		ResourcePerLength: c.Problem.ResourcePerLength,
		Objective:         c.Problem.Objective,
		SymmetryAxis:      c.Problem.SymmetryAxis,
		Timeout:           c.Solver.Timeout.Std(),
	}
}

// Backends lists the supported solver backends.
func Backends() []string { return []string{BackendBnB, BackendPB} }
