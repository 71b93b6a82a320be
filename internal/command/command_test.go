package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/animgraph/internal/driver"
	"github.com/vk/animgraph/internal/engine"
	"github.com/vk/animgraph/internal/node"
	"github.com/vk/animgraph/internal/registry"
)

func TestDecode(t *testing.T) {
	t.Run("success case", func(t *testing.T) {
		tests := []struct {
			name    string
			payload map[string]any
			want    Command
		}{
			{
				NameCreateNode,
				map[string]any{"tag": 1, "config": map[string]any{"type": "value", "value": 0.5}},
				CreateNode{Tag: 1, Config: node.ValueConfig{Value: 0.5}},
			},
			{
				NameCreateNode,
				map[string]any{"tag": 2, "config": map[string]any{"type": "diffclamp", "input": 1, "min": 0, "max": 10}},
				CreateNode{Tag: 2, Config: node.DiffClampConfig{Input: 1, Min: 0, Max: 10}},
			},
			{
				NameCreateNode,
				map[string]any{"tag": 3, "config": map[string]any{"type": "addition", "input": []any{1.0, 2.0}}},
				CreateNode{Tag: 3, Config: node.AdditionConfig{Input: []int{1, 2}}},
			},
			{
				NameCreateNode,
				map[string]any{"tag": 4, "config": map[string]any{
					"type":     "transform",
					"animated": map[string]any{"translateY": 1},
					"statics":  map[string]any{"scale": 2, "matrix": []any{1, 0}},
				}},
				CreateNode{Tag: 4, Config: node.TransformConfig{
					Animated: map[string]int{"translateY": 1},
					Statics:  map[string]node.Static{"scale": node.Number(2), "matrix": node.Numbers(1, 0)},
				}},
			},
			{
				NameCreateNode,
				map[string]any{"tag": 5, "config": map[string]any{"type": "cond", "condition": 1, "ifInput": 2, "elseInput": 3}},
				CreateNode{Tag: 5, Config: node.CondConfig{Condition: 1, If: 2, Else: 3}},
			},
			{NameDropNode, map[string]any{"tag": 4}, DropNode{Tag: 4}},
			{NameSetValue, map[string]any{"tag": 1, "value": 3.25}, SetValue{Tag: 1, Value: 3.25}},
			{NameStopAnimation, map[string]any{"tag": 1}, StopAnimation{Tag: 1}},
			{NameConnectNodes, map[string]any{"parent": 1, "child": 2}, ConnectNodes{Parent: 1, Child: 2}},
			{NameDisconnectNodes, map[string]any{"parent": 1, "child": 2}, DisconnectNodes{Parent: 1, Child: 2}},
			{NameConnectNodeToView, map[string]any{"tag": 5, "viewTag": 11}, ConnectNodeToView{Tag: 5, ViewTag: 11}},
			{NameDisconnectNodeFromView, map[string]any{"tag": 5, "viewTag": 11}, DisconnectNodeFromView{Tag: 5, ViewTag: 11}},
		}
		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				got, err := Decode(tc.name, tc.payload)
				require.NoError(t, err)
				assert.Equal(t, tc.want, got)
				assert.Equal(t, tc.name, got.Name())
			})
		}
	})

	t.Run("animations", func(t *testing.T) {
		got, err := Decode(NameStartAnimation, map[string]any{
			"tag":         1,
			"animationId": 7,
			"config":      map[string]any{"type": "frames", "frames": []any{0, 0.5, 1}, "toValue": 10},
		})
		require.NoError(t, err)
		start, ok := got.(StartAnimation)
		require.True(t, ok)
		assert.Equal(t, 7, start.ID)
		frames, ok := start.Config.(driver.FramesConfig)
		require.True(t, ok)
		assert.Equal(t, []float64{0, 0.5, 1}, frames.Frames)
		require.NotNil(t, frames.ToValue)
		assert.Equal(t, 10.0, *frames.ToValue)

		got, err = Decode(NameStartAnimation, map[string]any{
			"tag":    1,
			"config": map[string]any{"type": "spring", "tension": 40, "friction": 7, "toValue": 1},
		})
		require.NoError(t, err)
		spring, ok := got.(StartAnimation).Config.(driver.SpringConfig)
		require.True(t, ok)
		assert.Equal(t, 40.0, spring.Tension)
		assert.Equal(t, driver.DefaultRestSpeedThreshold, spring.RestSpeedThreshold)
		assert.Equal(t, 1.0, spring.Mass)
	})

	t.Run("error cases", func(t *testing.T) {
		_, err := Decode("explode", map[string]any{})
		assert.ErrorIs(t, err, ErrUnknownCommand)

		_, err = Decode(NameDropNode, map[string]any{})
		assert.ErrorIs(t, err, ErrInvalidPayload)
		assert.ErrorContains(t, err, `missing field "tag"`)

		_, err = Decode(NameSetValue, map[string]any{"tag": 1})
		assert.ErrorContains(t, err, `missing field "value"`)

		_, err = Decode(NameConnectNodes, map[string]any{"parent": 1, "kid": 2})
		assert.ErrorIs(t, err, ErrInvalidPayload)

		_, err = Decode(NameCreateNode, map[string]any{"tag": 1, "config": map[string]any{"type": "sprite"}})
		assert.ErrorIs(t, err, node.ErrInvalidConfig)

		_, err = Decode(NameCreateNode, map[string]any{"tag": 1, "config": map[string]any{"type": "diffclamp", "input": []any{1, 2}}})
		assert.ErrorIs(t, err, node.ErrInvalidConfig)

		_, err = Decode(NameCreateNode, map[string]any{"tag": 1, "config": map[string]any{"type": "transform", "statics": map[string]any{"x": "big"}}})
		assert.ErrorIs(t, err, node.ErrInvalidConfig)

		_, err = Decode(NameCreateNode, map[string]any{"tag": 1, "config": map[string]any{"type": "cond", "condition": 1, "ifInput": 2}})
		assert.ErrorIs(t, err, node.ErrInvalidConfig)
		assert.ErrorContains(t, err, "cond needs condition, ifInput and elseInput")

		_, err = Decode(NameStartAnimation, map[string]any{"tag": 1, "config": map[string]any{"type": "decay"}})
		assert.ErrorIs(t, err, driver.ErrInvalidConfig)

		_, err = Decode(NameStartAnimation, map[string]any{"tag": 1, "config": map[string]any{"type": "spring", "tension": 1}})
		assert.ErrorContains(t, err, "requires toValue")
	})
}

func TestApply(t *testing.T) {
	e := engine.New()
	var ended []bool
	to := 1.0
	cmds := []Command{
		CreateNode{Tag: 1, Config: node.ValueConfig{}},
		CreateNode{Tag: 2, Config: node.PropsConfig{Props: map[string]int{"opacity": 1}}},
		ConnectNodes{Parent: 1, Child: 2},
		ConnectNodeToView{Tag: 2, ViewTag: 30},
		SetValue{Tag: 1, Value: 0.5},
		StartAnimation{Tag: 1, Config: driver.FramesConfig{Frames: []float64{1}, ToValue: &to}, OnComplete: func(f bool) { ended = append(ended, f) }},
	}
	for _, c := range cmds {
		require.NoError(t, c.Apply(e), c.Name())
	}

	updates, err := e.Frame(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, updates, 1)
	assert.Equal(t, map[string]any{"opacity": 1.0}, updates[0].Props)
	e.RunCompletions()
	assert.Equal(t, []bool{true}, ended)

	require.NoError(t, DisconnectNodeFromView{Tag: 2, ViewTag: 30}.Apply(e))
	require.NoError(t, DisconnectNodes{Parent: 1, Child: 2}.Apply(e))
	require.NoError(t, StopAnimation{Tag: 1}.Apply(e))
	require.NoError(t, DropNode{Tag: 2}.Apply(e))
	assert.ErrorIs(t, DropNode{Tag: 2}.Apply(e), registry.ErrNodeNotFound)
	assert.ErrorIs(t, SetValue{Tag: 2, Value: 1}.Apply(e), registry.ErrNodeNotFound)
}

func TestNodeSpecConfig(t *testing.T) {
	cfg, err := NodeSpec{Type: "Interpolation", InputRange: []float64{0, 1}, OutputRange: []float64{0, 2}}.Config()
	require.NoError(t, err)
	assert.Equal(t, node.KindInterpolation, cfg.Kind())

	_, err = NodeSpec{Type: "diffclamp"}.Config()
	assert.ErrorIs(t, err, node.ErrInvalidConfig)

	assert.Len(t, Names(), 9)
}
