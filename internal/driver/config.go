package driver

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

// ErrInvalidConfig marks an unsupported or malformed animation configuration.
var ErrInvalidConfig = errors.New("invalid animation config")

// Default rest thresholds, matching the values the command issuer uses when
// none are given.
const (
	DefaultRestDisplacementThreshold = 0.001
	DefaultRestSpeedThreshold        = 0.001
)

// Config is the closed set of driver configurations.
type Config interface {
	Type() string
	Validate() error
	sealed()
}

// FramesConfig drives a value through a table of per-frame fractions
// sampled at 60 frames per second.
type FramesConfig struct {
	Frames []float64
	// ToValue is the absolute target. When nil, the table holds offsets from
	// the value captured at start.
	ToValue *float64
}

// SpringConfig drives a value with a damped mass-spring system.
type SpringConfig struct {
	Tension  float64
	Friction float64
	// Mass defaults to 1 when zero.
	Mass                      float64
	Velocity                  float64
	RestDisplacementThreshold float64
	RestSpeedThreshold        float64
	OvershootClamping         bool
	ToValue                   float64
}

func (FramesConfig) Type() string { return "frames" }
func (SpringConfig) Type() string { return "spring" }

func (FramesConfig) sealed() {}
func (SpringConfig) sealed() {}

// Validate checks the frame table.
func (c FramesConfig) Validate() error {
	if len(c.Frames) == 0 {
		return fmt.Errorf("%w: frames table is empty", ErrInvalidConfig)
	}
	for i, f := range c.Frames {
		if !isFinite(f) {
			return fmt.Errorf("%w: frames[%d] is not finite", ErrInvalidConfig, i)
		}
	}
	if c.ToValue != nil && !isFinite(*c.ToValue) {
		return fmt.Errorf("%w: toValue is not finite", ErrInvalidConfig)
	}
	return nil
}

// Validate checks the spring parameters.
func (c SpringConfig) Validate() error {
	fields := []struct {
		name string
		v    float64
	}{
		{"tension", c.Tension},
		{"friction", c.Friction},
		{"mass", c.Mass},
		{"restDisplacementThreshold", c.RestDisplacementThreshold},
		{"restSpeedThreshold", c.RestSpeedThreshold},
	}
	for _, f := range fields {
		if !isFinite(f.v) || f.v < 0 {
			return fmt.Errorf("%w: %s must be a non-negative number, got %g", ErrInvalidConfig, f.name, f.v)
		}
	}
	if !isFinite(c.Velocity) || !isFinite(c.ToValue) {
		return fmt.Errorf("%w: velocity and toValue must be finite", ErrInvalidConfig)
	}
	return nil
}

// WithDefaults fills unset rest thresholds and mass.
func (c SpringConfig) WithDefaults() SpringConfig {
	if c.RestDisplacementThreshold == 0 {
		c.RestDisplacementThreshold = DefaultRestDisplacementThreshold
	}
	if c.RestSpeedThreshold == 0 {
		c.RestSpeedThreshold = DefaultRestSpeedThreshold
	}
	if c.Mass == 0 {
		c.Mass = 1
	}
	return c
}

// Types lists the supported driver type names.
func Types() []string {
	return slices.Clone([]string{"frames", "spring"})
}

// IsSupported reports whether name is one of Types.
func IsSupported(name string) bool {
	return slices.Contains(Types(), name)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
