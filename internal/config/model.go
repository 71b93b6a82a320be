package config

import (
	"errors"
	"fmt"

	"github.com/vk/animgraph/internal/command"
)

// ErrInvalidScene is returned when a scene is internally inconsistent.
var ErrInvalidScene = errors.New("invalid scene")

// Scene is the unified, format-agnostic representation of an initial graph.
type Scene struct {
	Nodes      []*Node
	Edges      []*Edge
	Views      []*View
	Animations []*Animation
}

// Node declares one animated node.
type Node struct {
	Tag  int
	Spec command.NodeSpec
	// Source names the file the node was declared in, for error messages.
	Source string
}

// Edge connects Parent -> Child.
type Edge struct {
	Parent int
	Child  int
}

// View binds a Props node to a view.
type View struct {
	Node    int
	ViewTag int
}

// Animation starts a driver on a Value node once the graph is built.
type Animation struct {
	ID   int
	Node int
	Spec command.AnimationSpec
}

// Merge appends every declaration of other to s.
func (s *Scene) Merge(other *Scene) {
	if other == nil {
		return
	}
	s.Nodes = append(s.Nodes, other.Nodes...)
	s.Edges = append(s.Edges, other.Edges...)
	s.Views = append(s.Views, other.Views...)
	s.Animations = append(s.Animations, other.Animations...)
}

// Empty reports whether the scene declares nothing.
func (s *Scene) Empty() bool {
	return len(s.Nodes) == 0 && len(s.Edges) == 0 && len(s.Views) == 0 && len(s.Animations) == 0
}

// Validate checks tag uniqueness and that every reference names a declared
// node. Kind checks are left to the engine.
func (s *Scene) Validate() error {
	declared := make(map[int]string, len(s.Nodes))
	for _, n := range s.Nodes {
		if n.Tag <= 0 {
			return fmt.Errorf("%w: node tag %d must be positive", ErrInvalidScene, n.Tag)
		}
		if prev, ok := declared[n.Tag]; ok {
			return fmt.Errorf("%w: node %d declared twice (%s, %s)", ErrInvalidScene, n.Tag, prev, n.Source)
		}
		declared[n.Tag] = n.Source
	}

	known := func(what string, tag int) error {
		if _, ok := declared[tag]; !ok {
			return fmt.Errorf("%w: %s references undeclared node %d", ErrInvalidScene, what, tag)
		}
		return nil
	}
	for _, e := range s.Edges {
		if err := known("edge", e.Parent); err != nil {
			return err
		}
		if err := known("edge", e.Child); err != nil {
			return err
		}
	}
	for _, v := range s.Views {
		if err := known("view", v.Node); err != nil {
			return err
		}
		if v.ViewTag <= 0 {
			return fmt.Errorf("%w: view tag %d must be positive", ErrInvalidScene, v.ViewTag)
		}
	}
	for _, a := range s.Animations {
		if err := known("animation", a.Node); err != nil {
			return err
		}
	}
	return nil
}

// Commands translates the scene into commands in dependency order: nodes,
// edges, view bindings, then animations. onComplete, if not nil, supplies
// the completion callback of each animation.
func (s *Scene) Commands(onComplete func(a *Animation, finished bool)) ([]command.Command, error) {
	cmds := make([]command.Command, 0, len(s.Nodes)+len(s.Edges)+len(s.Views)+len(s.Animations))

	for _, n := range s.Nodes {
		cfg, err := n.Spec.Config()
		if err != nil {
			return nil, fmt.Errorf("node %d: %w", n.Tag, err)
		}
		cmds = append(cmds, command.CreateNode{Tag: n.Tag, Config: cfg})
	}
	for _, e := range s.Edges {
		cmds = append(cmds, command.ConnectNodes{Parent: e.Parent, Child: e.Child})
	}
	for _, v := range s.Views {
		cmds = append(cmds, command.ConnectNodeToView{Tag: v.Node, ViewTag: v.ViewTag})
	}
	for _, a := range s.Animations {
		cfg, err := a.Spec.Config()
		if err != nil {
			return nil, fmt.Errorf("animation %d on node %d: %w", a.ID, a.Node, err)
		}
		start := command.StartAnimation{ID: a.ID, Tag: a.Node, Config: cfg}
		if onComplete != nil {
			start.OnComplete = func(finished bool) { onComplete(a, finished) }
		}
		cmds = append(cmds, start)
	}
	return cmds, nil
}
