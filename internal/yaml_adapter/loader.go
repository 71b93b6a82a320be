package yaml_adapter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/vk/animgraph/internal/command"
	"github.com/vk/animgraph/internal/config"
	"github.com/vk/animgraph/internal/ctxlog"
	"github.com/vk/animgraph/internal/fsutil"
	"github.com/vk/animgraph/internal/node"
	"gopkg.in/yaml.v3"
)

// Loader is the YAML implementation of config.Loader.
type Loader struct{}

func NewLoader() *Loader {
	return &Loader{}
}

// Load decodes every .yaml and .yml file under paths. Unknown keys are
// rejected.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Scene, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("YAML loader started.", "path_count", len(paths))

	files, err := fsutil.FindFiles(paths, ".yaml", ".yml")
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered YAML files.", "count", len(files))

	scene := &config.Scene{}
	for _, file := range files {
		if err := l.loadFile(file, scene); err != nil {
			return nil, err
		}
	}

	logger.Debug("YAML loading complete.", "nodes", len(scene.Nodes), "edges", len(scene.Edges), "views", len(scene.Views), "animations", len(scene.Animations))
	return scene, nil
}

func (l *Loader) loadFile(file string, scene *config.Scene) error {
	f, err := os.Open(file)
	if err != nil {
		return fmt.Errorf("failed to open YAML file %s: %w", file, err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	for {
		var doc document
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to decode YAML file %s: %w", file, err)
		}
		if err := translate(&doc, file, scene); err != nil {
			return fmt.Errorf("in %s: %w", file, err)
		}
	}
}

func translate(doc *document, file string, scene *config.Scene) error {
	for _, n := range doc.Nodes {
		input, err := decodeInput(&n.Input)
		if err != nil {
			return fmt.Errorf("node %d: %w", n.Tag, err)
		}
		statics, err := decodeStatics(n.Statics)
		if err != nil {
			return fmt.Errorf("node %d: %w", n.Tag, err)
		}
		scene.Nodes = append(scene.Nodes, &config.Node{
			Tag: n.Tag,
			Spec: command.NodeSpec{
				Type:        n.Type,
				Value:       n.Value,
				InputRange:  n.InputRange,
				OutputRange: n.OutputRange,
				Input:       input,
				Min:         n.Min,
				Max:         n.Max,
				Style:       n.Style,
				Animated:    n.Animated,
				Statics:     statics,
				Props:       n.Props,
				Condition:   n.Condition,
				IfInput:     n.IfInput,
				ElseInput:   n.ElseInput,
			},
			Source: file,
		})
	}
	for _, e := range doc.Edges {
		scene.Edges = append(scene.Edges, &config.Edge{Parent: e.Parent, Child: e.Child})
	}
	for _, v := range doc.Views {
		scene.Views = append(scene.Views, &config.View{Node: v.Node, ViewTag: v.ViewTag})
	}
	for _, a := range doc.Animations {
		scene.Animations = append(scene.Animations, &config.Animation{
			ID:   a.ID,
			Node: a.Node,
			Spec: command.AnimationSpec{
				Type:                      a.Type,
				Frames:                    a.Frames,
				ToValue:                   a.ToValue,
				Tension:                   a.Tension,
				Friction:                  a.Friction,
				Mass:                      a.Mass,
				Velocity:                  a.Velocity,
				RestDisplacementThreshold: a.RestDisplacementThreshold,
				RestSpeedThreshold:        a.RestSpeedThreshold,
				OvershootClamping:         a.OvershootClamping,
			},
		})
	}
	return nil
}

func decodeInput(n *yaml.Node) ([]int, error) {
	switch n.Kind {
	case 0:
		return nil, nil
	case yaml.ScalarNode:
		var tag int
		if err := n.Decode(&tag); err != nil {
			return nil, fmt.Errorf("%w: input: %v", node.ErrInvalidConfig, err)
		}
		return []int{tag}, nil
	case yaml.SequenceNode:
		var tags []int
		if err := n.Decode(&tags); err != nil {
			return nil, fmt.Errorf("%w: input: %v", node.ErrInvalidConfig, err)
		}
		return tags, nil
	default:
		return nil, fmt.Errorf("%w: input must be a tag or a list of tags (line %d)", node.ErrInvalidConfig, n.Line)
	}
}

func decodeStatics(in map[string]yaml.Node) (map[string]node.Static, error) {
	if len(in) == 0 {
		return nil, nil
	}
	out := make(map[string]node.Static, len(in))
	for key, n := range in {
		switch n.Kind {
		case yaml.ScalarNode:
			var f float64
			if err := n.Decode(&f); err != nil {
				return nil, fmt.Errorf("%w: statics[%q]: %v", node.ErrInvalidConfig, key, err)
			}
			out[key] = node.Number(f)
		case yaml.SequenceNode:
			var fs []float64
			if err := n.Decode(&fs); err != nil {
				return nil, fmt.Errorf("%w: statics[%q]: %v", node.ErrInvalidConfig, key, err)
			}
			out[key] = node.Numbers(fs...)
		default:
			return nil, fmt.Errorf("%w: statics[%q] must be a number or a list of numbers (line %d)", node.ErrInvalidConfig, key, n.Line)
		}
	}
	return out, nil
}
