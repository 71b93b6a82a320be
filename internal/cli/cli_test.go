package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/animgraph/internal/app"
)

func TestParse(t *testing.T) {
	t.Run("positional path and defaults", func(t *testing.T) {
		cfg, exit, err := Parse([]string{"scenes/"}, &bytes.Buffer{})
		require.NoError(t, err)
		require.False(t, exit)
		assert.Equal(t, "scenes/", cfg.ScenePath)
		assert.Equal(t, "json", cfg.LogFormat)
		assert.Equal(t, "info", cfg.LogLevel)
		assert.Equal(t, 60, cfg.FrameRate)
		assert.Equal(t, app.OutputLog, cfg.Output)
		assert.Equal(t, "/", cfg.SocketNamespace)
	})

	t.Run("flags win over positional path", func(t *testing.T) {
		cfg, _, err := Parse([]string{
			"-scene", "a.hcl", "-fps", "120", "-max-frames", "10", "-stop-when-idle",
			"-output", "JSON", "-log-format", "TEXT", "-log-level", "debug",
			"-healthcheck-port", "8080", "b.hcl",
		}, &bytes.Buffer{})
		require.NoError(t, err)
		assert.Equal(t, "a.hcl", cfg.ScenePath)
		assert.Equal(t, 120, cfg.FrameRate)
		assert.Equal(t, 10, cfg.MaxFrames)
		assert.True(t, cfg.StopWhenIdle)
		assert.Equal(t, app.OutputJSON, cfg.Output)
		assert.Equal(t, "text", cfg.LogFormat)
		assert.Equal(t, 8080, cfg.HealthcheckPort)
	})

	t.Run("shorthand and bridge only", func(t *testing.T) {
		cfg, _, err := Parse([]string{"-s", "x.yaml"}, &bytes.Buffer{})
		require.NoError(t, err)
		assert.Equal(t, "x.yaml", cfg.ScenePath)

		cfg, _, err = Parse([]string{"-socket-url", "http://localhost:3000", "-socket-namespace", "/anim"}, &bytes.Buffer{})
		require.NoError(t, err)
		assert.Empty(t, cfg.ScenePath)
		assert.Equal(t, "/anim", cfg.SocketNamespace)
	})

	t.Run("help and missing path print usage", func(t *testing.T) {
		for _, args := range [][]string{{"-h"}, {}} {
			out := &bytes.Buffer{}
			cfg, exit, err := Parse(args, out)
			require.NoError(t, err)
			assert.True(t, exit)
			assert.Nil(t, cfg)
			assert.Contains(t, out.String(), "Usage:")
		}
	})

	t.Run("invalid input", func(t *testing.T) {
		tests := []struct {
			args []string
			want string
		}{
			{[]string{"-nope"}, "flag provided but not defined"},
			{[]string{"-log-format", "xml", "s.hcl"}, "invalid log-format"},
			{[]string{"-log-level", "loud", "s.hcl"}, "invalid log-level"},
			{[]string{"-output", "screen", "s.hcl"}, "invalid output"},
			{[]string{"-fps", "-5", "s.hcl"}, "invalid frame rate"},
		}
		for _, tc := range tests {
			_, _, err := Parse(tc.args, &bytes.Buffer{})
			var exitErr *ExitError
			require.ErrorAs(t, err, &exitErr)
			assert.Equal(t, 2, exitErr.Code)
			assert.Contains(t, exitErr.Message, tc.want)
		}
	})
}
