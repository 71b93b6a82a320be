package yaml_adapter

import "gopkg.in/yaml.v3"

type document struct {
	Nodes      []nodeDoc      `yaml:"nodes"`
	Edges      []edgeDoc      `yaml:"edges"`
	Views      []viewDoc      `yaml:"views"`
	Animations []animationDoc `yaml:"animations"`
}

type nodeDoc struct {
	Tag         int       `yaml:"tag"`
	Type        string    `yaml:"type"`
	Value       float64   `yaml:"value"`
	InputRange  []float64 `yaml:"inputRange"`
	OutputRange []float64 `yaml:"outputRange"`
	// Input is a single tag or a sequence of tags.
	Input    yaml.Node      `yaml:"input"`
	Min      float64        `yaml:"min"`
	Max      float64        `yaml:"max"`
	Style    map[string]int `yaml:"style"`
	Animated map[string]int `yaml:"animated"`
	// Statics values are numbers or sequences of numbers.
	Statics map[string]yaml.Node `yaml:"statics"`
	Props   map[string]int       `yaml:"props"`

	Condition *int `yaml:"condition"`
	IfInput   *int `yaml:"ifInput"`
	ElseInput *int `yaml:"elseInput"`
}

type edgeDoc struct {
	Parent int `yaml:"parent"`
	Child  int `yaml:"child"`
}

type viewDoc struct {
	Node    int `yaml:"node"`
	ViewTag int `yaml:"viewTag"`
}

type animationDoc struct {
	ID      int       `yaml:"id"`
	Node    int       `yaml:"node"`
	Type    string    `yaml:"type"`
	Frames  []float64 `yaml:"frames"`
	ToValue *float64  `yaml:"toValue"`

	Tension                   float64 `yaml:"tension"`
	Friction                  float64 `yaml:"friction"`
	Mass                      float64 `yaml:"mass"`
	Velocity                  float64 `yaml:"velocity"`
	RestDisplacementThreshold float64 `yaml:"restDisplacementThreshold"`
	RestSpeedThreshold        float64 `yaml:"restSpeedThreshold"`
	OvershootClamping         bool    `yaml:"overshootClamping"`
}
