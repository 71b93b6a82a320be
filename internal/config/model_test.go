package config

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/animgraph/internal/command"
	"github.com/vk/animgraph/internal/driver"
	"github.com/vk/animgraph/internal/engine"
	"github.com/vk/animgraph/internal/node"
)

func fadeScene() *Scene {
	to := 1.0
	return &Scene{
		Nodes: []*Node{
			{Tag: 1, Spec: command.NodeSpec{Type: "value"}},
			{Tag: 2, Spec: command.NodeSpec{Type: "props", Props: map[string]int{"opacity": 1}}},
		},
		Edges:      []*Edge{{Parent: 1, Child: 2}},
		Views:      []*View{{Node: 2, ViewTag: 7}},
		Animations: []*Animation{{ID: 3, Node: 1, Spec: command.AnimationSpec{Type: "frames", Frames: []float64{0, 1}, ToValue: &to}}},
	}
}

func TestSceneCommands(t *testing.T) {
	var ended []int
	cmds, err := fadeScene().Commands(func(a *Animation, finished bool) {
		assert.True(t, finished)
		ended = append(ended, a.ID)
	})
	require.NoError(t, err)

	var names []string
	for _, c := range cmds {
		names = append(names, c.Name())
	}
	assert.Equal(t, []string{
		command.NameCreateNode,
		command.NameCreateNode,
		command.NameConnectNodes,
		command.NameConnectNodeToView,
		command.NameStartAnimation,
	}, names)

	e := engine.New()
	for _, c := range cmds {
		require.NoError(t, c.Apply(e), c.Name())
	}
	_, err = e.Frame(context.Background(), 1)
	require.NoError(t, err)
	updates, err := e.Frame(context.Background(), 1+int64(17e6))
	require.NoError(t, err)
	require.Len(t, updates, 1)
	assert.Equal(t, 7, updates[0].ViewTag)
	assert.Equal(t, map[string]any{"opacity": 1.0}, updates[0].Props)

	e.RunCompletions()
	assert.Equal(t, []int{3}, ended)
}

func TestSceneCommandsErrors(t *testing.T) {
	s := fadeScene()
	s.Nodes[0].Spec.Type = "sprite"
	_, err := s.Commands(nil)
	assert.ErrorIs(t, err, node.ErrInvalidConfig)

	s = fadeScene()
	s.Animations[0].Spec.Type = "decay"
	_, err = s.Commands(nil)
	assert.ErrorIs(t, err, driver.ErrInvalidConfig)
}

func TestSceneValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *Scene)
		want   string
	}{
		{"valid", func(*Scene) {}, ""},
		{"duplicate tag", func(s *Scene) { s.Nodes = append(s.Nodes, &Node{Tag: 1, Source: "b.hcl"}) }, "node 1 declared twice"},
		{"non-positive tag", func(s *Scene) { s.Nodes[0].Tag = 0 }, "must be positive"},
		{"dangling edge", func(s *Scene) { s.Edges[0].Child = 9 }, "edge references undeclared node 9"},
		{"dangling view", func(s *Scene) { s.Views[0].Node = 9 }, "view references undeclared node 9"},
		{"bad view tag", func(s *Scene) { s.Views[0].ViewTag = -1 }, "view tag -1"},
		{"dangling animation", func(s *Scene) { s.Animations[0].Node = 9 }, "animation references undeclared node 9"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := fadeScene()
			tc.mutate(s)
			err := s.Validate()
			if tc.want == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidScene)
			assert.ErrorContains(t, err, tc.want)
		})
	}
}

type stubLoader struct {
	scene *Scene
	err   error
	paths []string
}

func (l *stubLoader) Load(_ context.Context, paths ...string) (*Scene, error) {
	l.paths = paths
	return l.scene, l.err
}

func TestLoadAll(t *testing.T) {
	a := &stubLoader{scene: &Scene{Nodes: []*Node{{Tag: 1, Spec: command.NodeSpec{Type: "value"}}}}}
	b := &stubLoader{scene: &Scene{
		Nodes: []*Node{{Tag: 2, Spec: command.NodeSpec{Type: "addition", Input: []int{1}}}},
		Edges: []*Edge{{Parent: 1, Child: 2}},
	}}

	s, err := LoadAll(context.Background(), []Loader{a, b}, "scenes")
	require.NoError(t, err)
	assert.Len(t, s.Nodes, 2)
	assert.Len(t, s.Edges, 1)
	assert.False(t, s.Empty())
	assert.Equal(t, []string{"scenes"}, b.paths)

	boom := errors.New("boom")
	_, err = LoadAll(context.Background(), []Loader{a, &stubLoader{err: boom}})
	assert.ErrorIs(t, err, boom)

	dup := &stubLoader{scene: &Scene{Nodes: []*Node{{Tag: 1}}}}
	_, err = LoadAll(context.Background(), []Loader{a, dup})
	assert.ErrorIs(t, err, ErrInvalidScene)

	empty, err := LoadAll(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, empty.Empty())
}
