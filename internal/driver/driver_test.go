package driver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/animgraph/internal/node"
)

const start = int64(2_000_000_000)

func ms(v int64) int64 { return v * 1_000_000 }

func valueNode(t *testing.T, v float64) *node.Node {
	t.Helper()
	n, err := node.New(1, node.ValueConfig{Value: v})
	require.NoError(t, err)
	return n
}

func ptr(v float64) *float64 { return &v }

func TestNew(t *testing.T) {
	t.Run("success case", func(t *testing.T) {
		d, err := New(valueNode(t, 0), FramesConfig{Frames: []float64{0, 1}}, nil)
		require.NoError(t, err)
		assert.Equal(t, NotStarted, d.State())
		assert.Equal(t, "not-started", d.State().String())
	})

	t.Run("error cases", func(t *testing.T) {
		props, err := node.New(2, node.PropsConfig{Props: map[string]int{"x": 1}})
		require.NoError(t, err)

		_, err = New(props, FramesConfig{Frames: []float64{0, 1}}, nil)
		assert.ErrorIs(t, err, ErrInvalidConfig)
		_, err = New(nil, FramesConfig{Frames: []float64{0, 1}}, nil)
		assert.ErrorIs(t, err, ErrInvalidConfig)
		_, err = New(valueNode(t, 0), nil, nil)
		assert.ErrorIs(t, err, ErrInvalidConfig)
		_, err = New(valueNode(t, 0), FramesConfig{}, nil)
		assert.ErrorContains(t, err, "frames table is empty")
		_, err = New(valueNode(t, 0), SpringConfig{Friction: -2}, nil)
		assert.ErrorContains(t, err, "friction must be a non-negative number")
	})
}

func TestFramesDriver(t *testing.T) {
	t.Run("absolute target", func(t *testing.T) {
		n := valueNode(t, 0)
		d, err := New(n, FramesConfig{Frames: []float64{0, 0.5, 1}, ToValue: ptr(10)}, nil)
		require.NoError(t, err)

		steps := []struct {
			at   int64
			want float64
		}{
			{0, 0}, {16, 0}, {17, 5}, {33, 5}, {34, 10},
		}
		for _, s := range steps {
			require.NoError(t, d.Step(start+ms(s.at)))
			assert.Equal(t, s.want, n.Value, "at %dms", s.at)
		}
		assert.Equal(t, Finished, d.State())

		// Finished drivers ignore later frames.
		n.Value = 3
		require.NoError(t, d.Step(start+ms(100)))
		assert.Equal(t, 3.0, n.Value)
	})

	t.Run("offsets without target", func(t *testing.T) {
		n := valueNode(t, 5)
		d, err := New(n, FramesConfig{Frames: []float64{0, 1, 2}}, nil)
		require.NoError(t, err)

		require.NoError(t, d.Step(start))
		assert.Equal(t, 5.0, n.Value)
		assert.Equal(t, Running, d.State())
		require.NoError(t, d.Step(start+ms(20)))
		assert.Equal(t, 6.0, n.Value)
		require.NoError(t, d.Step(start+ms(500)))
		assert.Equal(t, 7.0, n.Value)
		assert.Equal(t, Finished, d.State())
	})

	t.Run("time going backwards", func(t *testing.T) {
		n := valueNode(t, 0)
		d, err := New(n, FramesConfig{Frames: []float64{0, 0.5, 1}}, nil)
		require.NoError(t, err)
		require.NoError(t, d.Step(start))
		assert.ErrorIs(t, d.Step(start-ms(100)), ErrTimeWentBackwards)
	})
}

func runUntilFinished(t *testing.T, d *Driver, n *node.Node, maxMillis int64, observe func(float64)) {
	t.Helper()
	for at := int64(0); at <= maxMillis; at += 16 {
		require.NoError(t, d.Step(start+ms(at)))
		if observe != nil {
			observe(n.Value)
		}
		if d.State() == Finished {
			return
		}
	}
	t.Fatalf("driver did not finish within %dms", maxMillis)
}

func TestSpringDriver(t *testing.T) {
	t.Run("settles on the target", func(t *testing.T) {
		n := valueNode(t, 0)
		cfg := SpringConfig{Tension: 40, Friction: 7, ToValue: 1}.WithDefaults()
		d, err := New(n, cfg, nil)
		require.NoError(t, err)

		runUntilFinished(t, d, n, 10_000, nil)
		assert.Equal(t, 1.0, n.Value, "a finished spring snaps to its target")
	})

	t.Run("unset rest thresholds use the defaults", func(t *testing.T) {
		n := valueNode(t, 0)
		d, err := New(n, SpringConfig{Tension: 40, Friction: 7, ToValue: 1}, nil)
		require.NoError(t, err)

		runUntilFinished(t, d, n, 10_000, nil)
		assert.Equal(t, 1.0, n.Value)
	})

	t.Run("overshoot clamping stops at the target", func(t *testing.T) {
		n := valueNode(t, 0)
		cfg := SpringConfig{Tension: 200, Friction: 5, OvershootClamping: true, ToValue: 100}.WithDefaults()
		d, err := New(n, cfg, nil)
		require.NoError(t, err)

		runUntilFinished(t, d, n, 2_000, func(v float64) {
			assert.LessOrEqual(t, v, 100.0)
		})
		assert.Equal(t, 100.0, n.Value)
	})

	t.Run("zero tension decays velocity", func(t *testing.T) {
		n := valueNode(t, 0)
		cfg := SpringConfig{Friction: 5, Velocity: 10}.WithDefaults()
		d, err := New(n, cfg, nil)
		require.NoError(t, err)

		runUntilFinished(t, d, n, 10_000, nil)
		assert.InDelta(t, 2.0, n.Value, 0.01)
	})

	t.Run("same timestamp is a zero step", func(t *testing.T) {
		n := valueNode(t, 0)
		d, err := New(n, SpringConfig{Tension: 40, Friction: 7, ToValue: 1}.WithDefaults(), nil)
		require.NoError(t, err)

		require.NoError(t, d.Step(start))
		require.NoError(t, d.Step(start+ms(16)))
		v := n.Value
		require.NoError(t, d.Step(start+ms(16)))
		assert.Equal(t, v, n.Value)
	})

	t.Run("time going backwards", func(t *testing.T) {
		n := valueNode(t, 0)
		d, err := New(n, SpringConfig{Tension: 40, Friction: 7, ToValue: 1}.WithDefaults(), nil)
		require.NoError(t, err)
		require.NoError(t, d.Step(start))
		assert.ErrorIs(t, d.Step(start-ms(1)), ErrTimeWentBackwards)
	})
}

func TestSpringIsDeterministic(t *testing.T) {
	a := NewSpring(170, 26, 1, 1, 0, 0)
	b := NewSpring(170, 26, 0, 1, 0, 0)
	assert.Equal(t, 1.0, b.Mass, "zero mass defaults to 1")
	for range 250 {
		a.Step(0.001)
		b.Step(0.001)
	}
	assert.Equal(t, a.Position(), b.Position())
	assert.Equal(t, a.Velocity(), b.Velocity())
	assert.Greater(t, a.Position(), 0.5)
}

func TestComplete(t *testing.T) {
	var calls []bool
	d, err := New(valueNode(t, 0), FramesConfig{Frames: []float64{1}}, func(finished bool) {
		calls = append(calls, finished)
	})
	require.NoError(t, err)

	assert.False(t, d.Completed())
	d.Complete(true)
	d.Complete(false)
	d.Stop()
	assert.True(t, d.Completed())
	assert.Equal(t, Finished, d.State())
	assert.Equal(t, []bool{true}, calls)
}

func TestConfigDefaults(t *testing.T) {
	cfg := SpringConfig{Tension: 1}.WithDefaults()
	assert.Equal(t, DefaultRestDisplacementThreshold, cfg.RestDisplacementThreshold)
	assert.Equal(t, DefaultRestSpeedThreshold, cfg.RestSpeedThreshold)
	assert.Equal(t, 1.0, cfg.Mass)
	assert.Equal(t, []string{"frames", "spring"}, Types())
	assert.True(t, IsSupported("spring"))
	assert.False(t, IsSupported("decay"))
}
