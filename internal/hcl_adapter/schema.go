package hcl_adapter

import "github.com/hashicorp/hcl/v2"

// fileRoot is used to decode every top-level block of a scene file.
type fileRoot struct {
	Nodes      []*nodeBlock      `hcl:"node,block"`
	Edges      []*edgeBlock      `hcl:"edge,block"`
	Views      []*viewBlock      `hcl:"view,block"`
	Animations []*animationBlock `hcl:"animation,block"`
	Remain     hcl.Body          `hcl:",remain"`
}

type nodeBlock struct {
	Type string `hcl:"type,label"`
	Tag  string `hcl:"tag,label"`

	Value       float64   `hcl:"value,optional"`
	InputRange  []float64 `hcl:"input_range,optional"`
	OutputRange []float64 `hcl:"output_range,optional"`
	// Input is a single tag or a list of tags.
	Input    hcl.Expression `hcl:"input,optional"`
	Min      float64        `hcl:"min,optional"`
	Max      float64        `hcl:"max,optional"`
	Style    map[string]int `hcl:"style,optional"`
	Animated map[string]int `hcl:"animated,optional"`
	// Statics maps transform keys to a number or a list of numbers.
	Statics hcl.Expression `hcl:"statics,optional"`
	Props   map[string]int `hcl:"props,optional"`

	Condition *int `hcl:"condition,optional"`
	IfInput   *int `hcl:"if_input,optional"`
	ElseInput *int `hcl:"else_input,optional"`
}

type edgeBlock struct {
	Parent int `hcl:"parent"`
	Child  int `hcl:"child"`
}

type viewBlock struct {
	Node    int `hcl:"node"`
	ViewTag int `hcl:"view_tag"`
}

type animationBlock struct {
	Type string `hcl:"type,label"`
	Node int    `hcl:"node"`
	ID   int    `hcl:"id,optional"`

	Frames  []float64      `hcl:"frames,optional"`
	ToValue hcl.Expression `hcl:"to_value,optional"`

	Tension                   float64 `hcl:"tension,optional"`
	Friction                  float64 `hcl:"friction,optional"`
	Mass                      float64 `hcl:"mass,optional"`
	Velocity                  float64 `hcl:"velocity,optional"`
	RestDisplacementThreshold float64 `hcl:"rest_displacement_threshold,optional"`
	RestSpeedThreshold        float64 `hcl:"rest_speed_threshold,optional"`
	OvershootClamping         bool    `hcl:"overshoot_clamping,optional"`
}
