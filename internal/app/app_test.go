package app

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/animgraph/internal/registry"
	"github.com/vk/animgraph/internal/sink"
)

const fadeYAML = `
nodes:
  - {tag: 1, type: value}
  - {tag: 2, type: interpolation, inputRange: [0, 1], outputRange: [0, 100]}
  - {tag: 3, type: props, props: {left: 2}}
edges:
  - {parent: 1, child: 2}
  - {parent: 2, child: 3}
views:
  - {node: 3, viewTag: 10}
animations:
  - {id: 1, node: 1, type: frames, frames: [0, 0.5, 1], toValue: 1}
`

func writeScene(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
	return dir
}

// updates extracts the JSON view updates from mixed output.
func updates(t *testing.T, out string) []sink.UpdateRecord {
	t.Helper()
	var records []sink.UpdateRecord
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		line := sc.Text()
		if !strings.HasPrefix(line, `{"viewTag"`) {
			continue
		}
		var r sink.UpdateRecord
		require.NoError(t, json.Unmarshal([]byte(line), &r))
		records = append(records, r)
	}
	return records
}

func TestNewConfig(t *testing.T) {
	cfg, err := NewConfig(Config{ScenePath: "scene.hcl"})
	require.NoError(t, err)
	assert.Equal(t, OutputLog, cfg.Output)

	_, err = NewConfig(Config{SocketURL: "http://localhost:3000"})
	assert.NoError(t, err)

	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"no source", Config{}, "scene path or a socket.io URL"},
		{"bad output", Config{ScenePath: "s", Output: "xml"}, "invalid output"},
		{"negative fps", Config{ScenePath: "s", FrameRate: -1}, "invalid frame rate"},
		{"negative frames", Config{ScenePath: "s", MaxFrames: -1}, "invalid max frames"},
		{"bad level", Config{ScenePath: "s", LogLevel: "loud"}, "invalid log-level"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewConfig(tc.cfg)
			assert.ErrorContains(t, err, tc.want)
		})
	}
}

func TestRunAnimatesScene(t *testing.T) {
	dir := writeScene(t, "fade.yaml", fadeYAML)
	a, out := SetupAppTest(t, &Config{
		ScenePath:    dir,
		FrameRate:    200,
		StopWhenIdle: true,
		Output:       OutputJSON,
	})
	require.Len(t, a.Scene().Nodes, 3)
	assert.NotEmpty(t, a.RunID())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, a.Run(ctx))

	records := updates(t, out.String())
	require.NotEmpty(t, records)
	last := records[len(records)-1]
	assert.Equal(t, 10, last.ViewTag)
	assert.Equal(t, 100.0, last.Props["left"])

	logs := out.String()
	assert.Contains(t, logs, "Animation ended.")
	assert.Contains(t, logs, "finished=true")
	assert.Contains(t, logs, "run_id="+a.RunID())
}

func TestRunStopsAtFrameLimit(t *testing.T) {
	dir := writeScene(t, "fade.yaml", fadeYAML)
	a, out := SetupAppTest(t, &Config{ScenePath: dir, FrameRate: 200, MaxFrames: 1, Output: OutputNone})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, a.Run(ctx))

	assert.Contains(t, out.String(), "Frame limit reached.")
	assert.Contains(t, out.String(), "finished=false", "the unfinished animation is cancelled")
}

func TestRunEmptyScene(t *testing.T) {
	a, out := SetupAppTest(t, &Config{ScenePath: t.TempDir()})
	require.NoError(t, a.Run(context.Background()))
	assert.Contains(t, out.String(), "nothing to animate")
}

func TestRunFailsOnCycle(t *testing.T) {
	dir := writeScene(t, "cycle.hcl", `
node "value" "1" {}
node "addition" "2" { input = [1, 3] }
node "addition" "3" { input = [2] }
edge {
  parent = 1
  child  = 2
}
edge {
  parent = 2
  child  = 3
}
edge {
  parent = 3
  child  = 2
}
animation "frames" {
  node   = 1
  frames = [0, 1]
}
`)
	a, _ := SetupAppTest(t, &Config{ScenePath: dir, FrameRate: 200})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := a.Run(ctx)
	require.Error(t, err)
	assert.ErrorContains(t, err, "cycle")
}

func TestNewAppPanicsOnBadScene(t *testing.T) {
	dir := writeScene(t, "bad.yaml", "nodes:\n  - {tag: 1, type: sprite}\n")
	assert.PanicsWithError(t, `failed to load scene: node 1: invalid node config: unsupported node type "sprite"`, func() {
		NewApp(&SafeBuffer{}, &Config{ScenePath: dir})
	})
}

func TestNewAppRejectsDanglingReference(t *testing.T) {
	dir := writeScene(t, "dangling.yaml", "nodes:\n  - {tag: 1, type: props, props: {x: 9}}\n")
	defer func() {
		r := recover()
		require.NotNil(t, r, "NewApp must panic")
		err, ok := r.(error)
		require.True(t, ok)
		assert.ErrorIs(t, err, registry.ErrInvalidGraph)
		assert.ErrorContains(t, err, "references missing node 9")
	}()
	NewApp(&SafeBuffer{}, &Config{ScenePath: dir})
}

func TestHealthMux(t *testing.T) {
	a, _ := SetupAppTest(t, &Config{ScenePath: t.TempDir()})
	mux := a.healthMux()

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK\n", rec.Body.String())

	a.Metrics().FrameFailed()
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "animgraph_frame_errors_total 1")
}

func TestLogger(t *testing.T) {
	buf := &SafeBuffer{}
	logger := newLogger("warn", "json", buf)
	logger.Info("hidden")
	logger.Warn("shown", "k", 1)
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)

	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}
