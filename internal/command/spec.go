package command

import (
	"fmt"
	"maps"
	"slices"

	"github.com/vk/animgraph/internal/driver"
	"github.com/vk/animgraph/internal/node"
)

// NodeSpec is a format-neutral node description shared by the payload
// decoder and the scene loaders.
type NodeSpec struct {
	Type        string
	Value       float64
	InputRange  []float64
	OutputRange []float64
	// Input lists the inputs of addition and multiplication nodes, or the
	// single input of a diffclamp node.
	Input    []int
	Min      float64
	Max      float64
	Style    map[string]int
	Animated map[string]int
	Statics  map[string]node.Static
	Props    map[string]int
	// Condition, IfInput and ElseInput are the inputs of a cond node.
	Condition *int
	IfInput   *int
	ElseInput *int
}

// Config builds the node configuration. Structural validation happens when
// the node is created.
func (s NodeSpec) Config() (node.Config, error) {
	kind, err := node.ParseKind(s.Type)
	if err != nil {
		return nil, err
	}
	switch kind {
	case node.KindValue:
		return node.ValueConfig{Value: s.Value}, nil
	case node.KindInterpolation:
		return node.InterpolationConfig{
			InputRange:  slices.Clone(s.InputRange),
			OutputRange: slices.Clone(s.OutputRange),
		}, nil
	case node.KindAddition:
		return node.AdditionConfig{Input: slices.Clone(s.Input)}, nil
	case node.KindMultiplication:
		return node.MultiplicationConfig{Input: slices.Clone(s.Input)}, nil
	case node.KindDiffClamp:
		if len(s.Input) != 1 {
			return nil, fmt.Errorf("%w: diffclamp takes exactly one input, got %d", node.ErrInvalidConfig, len(s.Input))
		}
		return node.DiffClampConfig{Input: s.Input[0], Min: s.Min, Max: s.Max}, nil
	case node.KindCond:
		if s.Condition == nil || s.IfInput == nil || s.ElseInput == nil {
			return nil, fmt.Errorf("%w: cond needs condition, ifInput and elseInput", node.ErrInvalidConfig)
		}
		return node.CondConfig{Condition: *s.Condition, If: *s.IfInput, Else: *s.ElseInput}, nil
	case node.KindStyle:
		return node.StyleConfig{Style: maps.Clone(s.Style)}, nil
	case node.KindTransform:
		return node.TransformConfig{Animated: maps.Clone(s.Animated), Statics: maps.Clone(s.Statics)}, nil
	case node.KindProps:
		return node.PropsConfig{Props: maps.Clone(s.Props)}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported node type %q", node.ErrInvalidConfig, s.Type)
	}
}

// AnimationSpec is a format-neutral driver description.
type AnimationSpec struct {
	Type   string
	Frames []float64
	// ToValue is optional for frames and required for springs.
	ToValue *float64

	Tension                   float64
	Friction                  float64
	Mass                      float64
	Velocity                  float64
	RestDisplacementThreshold float64
	RestSpeedThreshold        float64
	OvershootClamping         bool
}

// Config builds the driver configuration, filling spring defaults.
func (s AnimationSpec) Config() (driver.Config, error) {
	switch s.Type {
	case "frames":
		cfg := driver.FramesConfig{Frames: slices.Clone(s.Frames)}
		if s.ToValue != nil {
			to := *s.ToValue
			cfg.ToValue = &to
		}
		return cfg, nil
	case "spring":
		if s.ToValue == nil {
			return nil, fmt.Errorf("%w: spring animation requires toValue", driver.ErrInvalidConfig)
		}
		return driver.SpringConfig{
			Tension:                   s.Tension,
			Friction:                  s.Friction,
			Mass:                      s.Mass,
			Velocity:                  s.Velocity,
			RestDisplacementThreshold: s.RestDisplacementThreshold,
			RestSpeedThreshold:        s.RestSpeedThreshold,
			OvershootClamping:         s.OvershootClamping,
			ToValue:                   *s.ToValue,
		}.WithDefaults(), nil
	default:
		return nil, fmt.Errorf("%w: unsupported animation type %q (want one of %v)", driver.ErrInvalidConfig, s.Type, driver.Types())
	}
}
