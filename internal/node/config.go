package node

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

// ErrInvalidConfig marks a structurally invalid node configuration.
var ErrInvalidConfig = errors.New("invalid node config")

// Config is the per-kind configuration of a node. The set of implementations
// is closed: only the types in this file satisfy it.
type Config interface {
	Kind() Kind
	Validate() error
	sealed()
}

// ValueConfig configures a settable scalar.
type ValueConfig struct {
	Value float64
}

// InterpolationConfig maps the parent's scalar through a piecewise-linear curve.
type InterpolationConfig struct {
	InputRange  []float64
	OutputRange []float64
}

// AdditionConfig sums the scalars of Input.
type AdditionConfig struct {
	Input []int
}

// MultiplicationConfig multiplies the scalars of Input.
type MultiplicationConfig struct {
	Input []int
}

// DiffClampConfig tracks the movement of Input, clamped to [Min, Max].
type DiffClampConfig struct {
	Input int
	Min   float64
	Max   float64
}

// CondConfig selects the value of If while Condition is non-zero, and of
// Else otherwise. A NaN condition counts as zero.
type CondConfig struct {
	Condition int
	If        int
	Else      int
}

// StyleConfig flattens mapped children into the enclosing property map.
type StyleConfig struct {
	Style map[string]int
}

// TransformConfig builds the nested "decomposedMatrix" property.
type TransformConfig struct {
	Animated map[string]int
	Statics  map[string]Static
}

// PropsConfig collects mapped children into the property map of one view.
type PropsConfig struct {
	Props map[string]int
}

func (ValueConfig) Kind() Kind          { return KindValue }
func (InterpolationConfig) Kind() Kind  { return KindInterpolation }
func (AdditionConfig) Kind() Kind       { return KindAddition }
func (MultiplicationConfig) Kind() Kind { return KindMultiplication }
func (DiffClampConfig) Kind() Kind      { return KindDiffClamp }
func (CondConfig) Kind() Kind           { return KindCond }
func (StyleConfig) Kind() Kind          { return KindStyle }
func (TransformConfig) Kind() Kind      { return KindTransform }
func (PropsConfig) Kind() Kind          { return KindProps }

func (ValueConfig) sealed()          {}
func (InterpolationConfig) sealed()  {}
func (AdditionConfig) sealed()       {}
func (MultiplicationConfig) sealed() {}
func (DiffClampConfig) sealed()      {}
func (CondConfig) sealed()           {}
func (StyleConfig) sealed()          {}
func (TransformConfig) sealed()      {}
func (PropsConfig) sealed()          {}

func (c ValueConfig) Validate() error {
	if math.IsNaN(c.Value) {
		return fmt.Errorf("%w: value must be a number", ErrInvalidConfig)
	}
	return nil
}

func (c InterpolationConfig) Validate() error {
	if len(c.InputRange) < 2 {
		return fmt.Errorf("%w: inputRange needs at least 2 points, got %d", ErrInvalidConfig, len(c.InputRange))
	}
	if len(c.OutputRange) != len(c.InputRange) {
		return fmt.Errorf("%w: outputRange has %d points, inputRange has %d", ErrInvalidConfig, len(c.OutputRange), len(c.InputRange))
	}
	for i, v := range c.InputRange {
		if !isFinite(v) {
			return fmt.Errorf("%w: inputRange[%d] is not finite", ErrInvalidConfig, i)
		}
		// A zero-width segment would divide by zero during evaluation.
		if i > 0 && v <= c.InputRange[i-1] {
			return fmt.Errorf("%w: inputRange must be strictly increasing at index %d", ErrInvalidConfig, i)
		}
	}
	for i, v := range c.OutputRange {
		if !isFinite(v) {
			return fmt.Errorf("%w: outputRange[%d] is not finite", ErrInvalidConfig, i)
		}
	}
	return nil
}

func (c AdditionConfig) Validate() error {
	return validateInputs(c.Input)
}

func (c MultiplicationConfig) Validate() error {
	return validateInputs(c.Input)
}

func (c DiffClampConfig) Validate() error {
	if c.Input < 0 {
		return fmt.Errorf("%w: input tag %d is negative", ErrInvalidConfig, c.Input)
	}
	if !isFinite(c.Min) || !isFinite(c.Max) {
		return fmt.Errorf("%w: min and max must be finite", ErrInvalidConfig)
	}
	if c.Min > c.Max {
		return fmt.Errorf("%w: min %g is greater than max %g", ErrInvalidConfig, c.Min, c.Max)
	}
	return nil
}

func (c CondConfig) Validate() error {
	return validateInputs([]int{c.Condition, c.If, c.Else})
}

func (c StyleConfig) Validate() error {
	if len(c.Style) == 0 {
		return fmt.Errorf("%w: style mapping is empty", ErrInvalidConfig)
	}
	return validateMapping("style", c.Style)
}

func (c TransformConfig) Validate() error {
	if len(c.Animated) == 0 && len(c.Statics) == 0 {
		return fmt.Errorf("%w: transform has neither animated nor static entries", ErrInvalidConfig)
	}
	if err := validateMapping("animated", c.Animated); err != nil {
		return err
	}
	for key, s := range c.Statics {
		if key == "" {
			return fmt.Errorf("%w: statics contains an empty property name", ErrInvalidConfig)
		}
		if err := s.validate(); err != nil {
			return fmt.Errorf("statics %q: %w", key, err)
		}
	}
	return nil
}

func (c PropsConfig) Validate() error {
	if len(c.Props) == 0 {
		return fmt.Errorf("%w: props mapping is empty", ErrInvalidConfig)
	}
	return validateMapping("props", c.Props)
}

// Inputs lists every tag the configuration refers to by value, in a stable order.
func Inputs(cfg Config) []int {
	switch c := cfg.(type) {
	case AdditionConfig:
		return slices.Clone(c.Input)
	case MultiplicationConfig:
		return slices.Clone(c.Input)
	case DiffClampConfig:
		return []int{c.Input}
	case CondConfig:
		return []int{c.Condition, c.If, c.Else}
	case StyleConfig:
		return mappedTags(c.Style)
	case TransformConfig:
		return mappedTags(c.Animated)
	case PropsConfig:
		return mappedTags(c.Props)
	default:
		return nil
	}
}

func validateInputs(in []int) error {
	if len(in) == 0 {
		return fmt.Errorf("%w: input list is empty", ErrInvalidConfig)
	}
	for i, tag := range in {
		if tag < 0 {
			return fmt.Errorf("%w: input[%d] tag %d is negative", ErrInvalidConfig, i, tag)
		}
	}
	return nil
}

func validateMapping(field string, m map[string]int) error {
	for key, tag := range m {
		if key == "" {
			return fmt.Errorf("%w: %s contains an empty property name", ErrInvalidConfig, field)
		}
		if tag < 0 {
			return fmt.Errorf("%w: %s %q maps to negative tag %d", ErrInvalidConfig, field, key, tag)
		}
	}
	return nil
}

func mappedTags(m map[string]int) []int {
	keys := SortedKeys(m)
	tags := make([]int, 0, len(keys))
	for _, k := range keys {
		tags = append(tags, m[k])
	}
	return tags
}

// SortedKeys returns the keys of m in lexical order, so that evaluation of
// mappings is deterministic.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
