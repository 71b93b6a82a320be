package node

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("value node starts with configured value", func(t *testing.T) {
		n, err := New(1, ValueConfig{Value: 4})
		require.NoError(t, err)
		assert.Equal(t, KindValue, n.Kind)
		assert.Equal(t, 4.0, n.Value)
		assert.Equal(t, Unconnected, n.ViewTag)
	})

	t.Run("derived nodes start as NaN", func(t *testing.T) {
		n, err := New(2, AdditionConfig{Input: []int{1}})
		require.NoError(t, err)
		assert.True(t, math.IsNaN(n.Value))
	})

	t.Run("nil config is rejected", func(t *testing.T) {
		_, err := New(3, nil)
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"value", ValueConfig{Value: 1}, false},
		{"value NaN", ValueConfig{Value: math.NaN()}, true},
		{"interpolation", InterpolationConfig{InputRange: []float64{0, 1}, OutputRange: []float64{0, 10}}, false},
		{"interpolation too short", InterpolationConfig{InputRange: []float64{0}, OutputRange: []float64{0}}, true},
		{"interpolation length mismatch", InterpolationConfig{InputRange: []float64{0, 1}, OutputRange: []float64{0}}, true},
		{"interpolation zero-width segment", InterpolationConfig{InputRange: []float64{0, 1, 1}, OutputRange: []float64{0, 1, 2}}, true},
		{"interpolation decreasing", InterpolationConfig{InputRange: []float64{1, 0}, OutputRange: []float64{0, 1}}, true},
		{"addition", AdditionConfig{Input: []int{1, 2}}, false},
		{"addition empty", AdditionConfig{}, true},
		{"multiplication negative tag", MultiplicationConfig{Input: []int{-1}}, true},
		{"diffclamp", DiffClampConfig{Input: 1, Min: 0, Max: 10}, false},
		{"diffclamp inverted bounds", DiffClampConfig{Input: 1, Min: 10, Max: 0}, true},
		{"cond", CondConfig{Condition: 1, If: 2, Else: 3}, false},
		{"cond negative branch", CondConfig{Condition: 1, If: 2, Else: -3}, true},
		{"style", StyleConfig{Style: map[string]int{"opacity": 1}}, false},
		{"style empty", StyleConfig{}, true},
		{"transform statics only", TransformConfig{Statics: map[string]Static{"scale": Number(2)}}, false},
		{"transform empty", TransformConfig{}, true},
		{"transform infinite static", TransformConfig{Statics: map[string]Static{"m": Numbers(1, math.Inf(1))}}, true},
		{"props", PropsConfig{Props: map[string]int{"style": 3}}, false},
		{"props empty key", PropsConfig{Props: map[string]int{"": 3}}, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind(" Interpolation ")
	require.NoError(t, err)
	assert.Equal(t, KindInterpolation, k)

	k, err = ParseKind("cond")
	require.NoError(t, err)
	assert.Equal(t, KindCond, k)
	assert.True(t, k.IsScalar())

	_, err = ParseKind("modulus")
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.ErrorContains(t, err, "unsupported node type")
}

func TestEdges(t *testing.T) {
	n, err := New(1, ValueConfig{})
	require.NoError(t, err)

	n.AddChild(2)
	n.AddChild(3)
	assert.True(t, n.HasChild(2))
	assert.True(t, n.RemoveChild(2))
	assert.False(t, n.RemoveChild(2))
	assert.Equal(t, []int{3}, n.Children)

	_, ok := n.Parent()
	assert.False(t, ok)
	n.AddParent(7)
	n.AddParent(8)
	p, ok := n.Parent()
	require.True(t, ok)
	assert.Equal(t, 7, p)
	assert.True(t, n.RemoveParent(7))
	p, _ = n.Parent()
	assert.Equal(t, 8, p)
}

func TestInterpolate(t *testing.T) {
	in := []float64{0, 1, 2}
	out := []float64{0, 100, 0}

	tests := []struct {
		value float64
		want  float64
	}{
		{0, 0},
		{0.5, 50},
		{1, 100},
		{1.5, 50},
		{2, 0},
		{-1, -100}, // first segment extended
		{3, -100},  // last segment extended
	}
	for _, tc := range tests {
		assert.InDelta(t, tc.want, Interpolate(tc.value, in, out), 1e-9, "value %v", tc.value)
	}
}

func TestDiffClamp(t *testing.T) {
	n, err := New(1, DiffClampConfig{Input: 0, Min: 0, Max: 10})
	require.NoError(t, err)

	assert.Equal(t, 5.0, n.DiffClamp(5))
	assert.Equal(t, 10.0, n.DiffClamp(20)) // +15, clamped
	assert.Equal(t, 7.0, n.DiffClamp(17))  // -3 from the clamped value
	assert.Equal(t, 0.0, n.DiffClamp(-50))
}

func TestStatic(t *testing.T) {
	s := Numbers(1, 2, 3)
	require.True(t, s.IsList())
	v := s.Value().([]float64)
	v[0] = 99
	assert.Equal(t, []float64{1, 2, 3}, s.Value(), "Value must return a copy")

	assert.Equal(t, 2.5, Number(2.5).Value())
}

func TestInputs(t *testing.T) {
	assert.Equal(t, []int{3, 1}, Inputs(AdditionConfig{Input: []int{3, 1}}))
	assert.Equal(t, []int{9}, Inputs(DiffClampConfig{Input: 9}))
	assert.Equal(t, []int{4, 2, 6}, Inputs(CondConfig{Condition: 4, If: 2, Else: 6}))
	assert.Equal(t, []int{5, 4}, Inputs(PropsConfig{Props: map[string]int{"a": 5, "b": 4}}))
	assert.Nil(t, Inputs(ValueConfig{}))
}

func TestTruthy(t *testing.T) {
	assert.True(t, Truthy(1))
	assert.True(t, Truthy(-0.1))
	assert.False(t, Truthy(0))
	assert.False(t, Truthy(math.Copysign(0, -1)))
	assert.False(t, Truthy(math.NaN()))
}
