package floorplan

import (
	"time"

	"github.com/matzehuels/topfloor/pkg/errors"
)

const (
	// DefaultResourcePerLength is the number of database length units that
	// make up one pin resource unit.
	DefaultResourcePerLength = 1000

	// DefaultTimeout bounds a single solver call.
	DefaultTimeout = 30 * time.Second
)

// Config holds the tunables of one floorplan problem. It is copied into the
// [Problem] at initialization and never shared.
type Config struct {
	// ResourcePerLength converts database length units into resource units.
	ResourcePerLength int64
	// Objective names the minimization policy (see [Objectives]).
	Objective string
	// SymmetryAxis is the x coordinate of the vertical symmetry axis. When
	// nil the axis runs through the center of the overall cell extent.
	SymmetryAxis *int64
	// Timeout bounds each solver call. Zero disables the limit.
	Timeout time.Duration
}

// DefaultConfig returns the reference configuration.
func DefaultConfig() Config {
	return Config{
		ResourcePerLength: DefaultResourcePerLength,
		Objective:         ObjectiveTotalResource,
		Timeout:           DefaultTimeout,
	}
}

// ValidateAndSetDefaults fills zero fields with defaults and rejects
// invalid values with an INVALID_CONFIG error.
func (c *Config) ValidateAndSetDefaults() error {
	if c.ResourcePerLength == 0 {
		c.ResourcePerLength = DefaultResourcePerLength
	}
	if c.ResourcePerLength < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "resource per length must be positive, got %d", c.ResourcePerLength)
	}
	if c.Objective == "" {
		c.Objective = ObjectiveTotalResource
	}
	if _, err := LookupObjective(c.Objective); err != nil {
		return err
	}
	if c.Timeout < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "timeout must not be negative, got %s", c.Timeout)
	}
	return nil
}
