package command

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vk/animgraph/internal/node"
)

var (
	// ErrUnknownCommand is returned by Decode for an unsupported command name.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrInvalidPayload is returned by Decode for a malformed payload.
	ErrInvalidPayload = errors.New("invalid command payload")
)

type nodeWire struct {
	Type        string                     `json:"type"`
	Value       float64                    `json:"value"`
	InputRange  []float64                  `json:"inputRange"`
	OutputRange []float64                  `json:"outputRange"`
	Input       json.RawMessage            `json:"input"`
	Min         float64                    `json:"min"`
	Max         float64                    `json:"max"`
	Style       map[string]int             `json:"style"`
	Animated    map[string]int             `json:"animated"`
	Statics     map[string]json.RawMessage `json:"statics"`
	Props       map[string]int             `json:"props"`
	Condition   *int                       `json:"condition"`
	IfInput     *int                       `json:"ifInput"`
	ElseInput   *int                       `json:"elseInput"`
}

type animationWire struct {
	Type                      string    `json:"type"`
	Frames                    []float64 `json:"frames"`
	ToValue                   *float64  `json:"toValue"`
	Tension                   float64   `json:"tension"`
	Friction                  float64   `json:"friction"`
	Mass                      float64   `json:"mass"`
	Velocity                  float64   `json:"velocity"`
	RestDisplacementThreshold float64   `json:"restDisplacementThreshold"`
	RestSpeedThreshold        float64   `json:"restSpeedThreshold"`
	OvershootClamping         bool      `json:"overshootClamping"`
}

type payloadWire struct {
	Tag         *int            `json:"tag"`
	ViewTag     *int            `json:"viewTag"`
	Parent      *int            `json:"parent"`
	Child       *int            `json:"child"`
	Value       *float64        `json:"value"`
	AnimationID int             `json:"animationId"`
	Config      json.RawMessage `json:"config"`
}

// Decode turns a generic payload, as delivered by a JSON bridge, into a
// command. Numbers may arrive as any JSON-compatible numeric type.
func Decode(name string, payload map[string]any) (Command, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidPayload, name, err)
	}
	var p payloadWire
	if err := strictUnmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidPayload, name, err)
	}

	switch name {
	case NameCreateNode:
		tag, err := p.require(name, "tag", p.Tag)
		if err != nil {
			return nil, err
		}
		spec, err := decodeNodeSpec(p.Config)
		if err != nil {
			return nil, fmt.Errorf("%s %d: %w", name, tag, err)
		}
		cfg, err := spec.Config()
		if err != nil {
			return nil, fmt.Errorf("%s %d: %w", name, tag, err)
		}
		return CreateNode{Tag: tag, Config: cfg}, nil

	case NameDropNode:
		tag, err := p.require(name, "tag", p.Tag)
		return DropNode{Tag: tag}, err

	case NameSetValue:
		tag, err := p.require(name, "tag", p.Tag)
		if err != nil {
			return nil, err
		}
		if p.Value == nil {
			return nil, fmt.Errorf("%w: %s: missing field %q", ErrInvalidPayload, name, "value")
		}
		return SetValue{Tag: tag, Value: *p.Value}, nil

	case NameStartAnimation:
		tag, err := p.require(name, "tag", p.Tag)
		if err != nil {
			return nil, err
		}
		var w animationWire
		if len(p.Config) == 0 {
			return nil, fmt.Errorf("%w: %s: missing field %q", ErrInvalidPayload, name, "config")
		}
		if err := strictUnmarshal(p.Config, &w); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidPayload, name, err)
		}
		cfg, err := AnimationSpec(w).Config()
		if err != nil {
			return nil, fmt.Errorf("%s %d: %w", name, tag, err)
		}
		return StartAnimation{ID: p.AnimationID, Tag: tag, Config: cfg}, nil

	case NameStopAnimation:
		tag, err := p.require(name, "tag", p.Tag)
		return StopAnimation{Tag: tag}, err

	case NameConnectNodes, NameDisconnectNodes:
		parent, err := p.require(name, "parent", p.Parent)
		if err != nil {
			return nil, err
		}
		child, err := p.require(name, "child", p.Child)
		if err != nil {
			return nil, err
		}
		if name == NameConnectNodes {
			return ConnectNodes{Parent: parent, Child: child}, nil
		}
		return DisconnectNodes{Parent: parent, Child: child}, nil

	case NameConnectNodeToView, NameDisconnectNodeFromView:
		tag, err := p.require(name, "tag", p.Tag)
		if err != nil {
			return nil, err
		}
		view, err := p.require(name, "viewTag", p.ViewTag)
		if err != nil {
			return nil, err
		}
		if name == NameConnectNodeToView {
			return ConnectNodeToView{Tag: tag, ViewTag: view}, nil
		}
		return DisconnectNodeFromView{Tag: tag, ViewTag: view}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, name)
	}
}

func (p payloadWire) require(cmd, field string, v *int) (int, error) {
	if v == nil {
		return 0, fmt.Errorf("%w: %s: missing field %q", ErrInvalidPayload, cmd, field)
	}
	return *v, nil
}

func decodeNodeSpec(raw json.RawMessage) (NodeSpec, error) {
	if len(raw) == 0 {
		return NodeSpec{}, fmt.Errorf("%w: missing field %q", ErrInvalidPayload, "config")
	}
	var w nodeWire
	if err := strictUnmarshal(raw, &w); err != nil {
		return NodeSpec{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	spec := NodeSpec{
		Type:        w.Type,
		Value:       w.Value,
		InputRange:  w.InputRange,
		OutputRange: w.OutputRange,
		Min:         w.Min,
		Max:         w.Max,
		Style:       w.Style,
		Animated:    w.Animated,
		Props:       w.Props,
		Condition:   w.Condition,
		IfInput:     w.IfInput,
		ElseInput:   w.ElseInput,
	}

	input, err := decodeInput(w.Input)
	if err != nil {
		return NodeSpec{}, err
	}
	spec.Input = input

	if len(w.Statics) > 0 {
		spec.Statics = make(map[string]node.Static, len(w.Statics))
		for key, raw := range w.Statics {
			s, err := decodeStatic(raw)
			if err != nil {
				return NodeSpec{}, fmt.Errorf("%w: statics[%q]: %v", node.ErrInvalidConfig, key, err)
			}
			spec.Statics[key] = s
		}
	}
	return spec, nil
}

// decodeInput accepts either a single tag or a list of tags.
func decodeInput(raw json.RawMessage) ([]int, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var one int
	if err := json.Unmarshal(raw, &one); err == nil {
		return []int{one}, nil
	}
	var many []int
	if err := json.Unmarshal(raw, &many); err != nil {
		return nil, fmt.Errorf("%w: input must be a tag or a list of tags", node.ErrInvalidConfig)
	}
	return many, nil
}

// decodeStatic accepts a number or a list of numbers.
func decodeStatic(raw json.RawMessage) (node.Static, error) {
	var number float64
	if err := json.Unmarshal(raw, &number); err == nil {
		return node.Number(number), nil
	}
	var numbers []float64
	if err := json.Unmarshal(raw, &numbers); err != nil {
		return node.Static{}, errors.New("want a number or a list of numbers")
	}
	return node.Numbers(numbers...), nil
}

func strictUnmarshal(raw []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
