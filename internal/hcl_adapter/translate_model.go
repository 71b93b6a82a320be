// This file translates decoded HCL blocks into the format-agnostic scene
// model defined in the config package.

package hcl_adapter

import (
	"context"
	"fmt"
	"strconv"

	"github.com/vk/animgraph/internal/command"
	"github.com/vk/animgraph/internal/config"
	"github.com/vk/animgraph/internal/ctxlog"
	"github.com/vk/animgraph/internal/driver"
)

// translateNode converts a node block into the agnostic model.
func (l *Loader) translateNode(ctx context.Context, b *nodeBlock, file string) (*config.Node, error) {
	logger := ctxlog.FromContext(ctx).With("node_type", b.Type, "node_tag", b.Tag)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("Translating HCL node to scene model.")

	tag, err := strconv.Atoi(b.Tag)
	if err != nil {
		return nil, fmt.Errorf("node %q %q: tag label must be an integer", b.Type, b.Tag)
	}

	input, err := decodeTags(ctx, b.Input, "input")
	if err != nil {
		return nil, fmt.Errorf("node %d: %w", tag, err)
	}
	statics, err := decodeStatics(ctx, b.Statics, "statics")
	if err != nil {
		return nil, fmt.Errorf("node %d: %w", tag, err)
	}

	return &config.Node{
		Tag: tag,
		Spec: command.NodeSpec{
			Type:        b.Type,
			Value:       b.Value,
			InputRange:  b.InputRange,
			OutputRange: b.OutputRange,
			Input:       input,
			Min:         b.Min,
			Max:         b.Max,
			Style:       b.Style,
			Animated:    b.Animated,
			Statics:     statics,
			Props:       b.Props,
			Condition:   b.Condition,
			IfInput:     b.IfInput,
			ElseInput:   b.ElseInput,
		},
		Source: file,
	}, nil
}

// translateAnimation converts an animation block into the agnostic model.
func (l *Loader) translateAnimation(ctx context.Context, b *animationBlock) (*config.Animation, error) {
	logger := ctxlog.FromContext(ctx).With("animation_type", b.Type, "node_tag", b.Node)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("Translating HCL animation to scene model.")

	if !driver.IsSupported(b.Type) {
		return nil, fmt.Errorf("animation on node %d: %w: unsupported animation type %q", b.Node, driver.ErrInvalidConfig, b.Type)
	}

	to, err := decodeOptionalNumber(ctx, b.ToValue, "to_value")
	if err != nil {
		return nil, fmt.Errorf("animation on node %d: %w", b.Node, err)
	}

	return &config.Animation{
		ID:   b.ID,
		Node: b.Node,
		Spec: command.AnimationSpec{
			Type:                      b.Type,
			Frames:                    b.Frames,
			ToValue:                   to,
			Tension:                   b.Tension,
			Friction:                  b.Friction,
			Mass:                      b.Mass,
			Velocity:                  b.Velocity,
			RestDisplacementThreshold: b.RestDisplacementThreshold,
			RestSpeedThreshold:        b.RestSpeedThreshold,
			OvershootClamping:         b.OvershootClamping,
		},
	}, nil
}
