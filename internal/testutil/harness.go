// Package testutil provides an end-to-end harness that writes scene files to
// a temporary directory, runs the application over them and collects the log
// output and the emitted view updates.
package testutil

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vk/animgraph/internal/app"
	"github.com/vk/animgraph/internal/sink"
)

// DefaultTimeout bounds a harness run.
const DefaultTimeout = 10 * time.Second

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	LogOutput string
	Updates   []sink.UpdateRecord
	Err       error
	App       *app.App
}

// LastUpdate returns the most recent update sent to viewTag.
func (r *HarnessResult) LastUpdate(viewTag int) (map[string]any, bool) {
	for i := len(r.Updates) - 1; i >= 0; i-- {
		if r.Updates[i].ViewTag == viewTag {
			return r.Updates[i].Props, true
		}
	}
	return nil, false
}

// RunScene runs the app to idleness over files, given as relative path to
// content, using a fast wall clock and JSON output.
func RunScene(t *testing.T, files map[string]string) *HarnessResult {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), DefaultTimeout)
	defer cancel()
	return RunSceneWithConfig(ctx, t, files, app.Config{FrameRate: 250, StopWhenIdle: true})
}

// RunSceneWithConfig is RunScene with a caller-provided context and config.
// ScenePath, Output and the log settings are overridden.
func RunSceneWithConfig(ctx context.Context, t *testing.T, files map[string]string, cfg app.Config) *HarnessResult {
	t.Helper()

	sceneDir := t.TempDir()
	for name, content := range files {
		filePath := filepath.Join(sceneDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0o755))
		require.NoError(t, os.WriteFile(filePath, []byte(content), 0o644))
	}

	cfg.ScenePath = sceneDir
	cfg.Output = app.OutputJSON
	cfg.LogLevel = "debug"
	cfg.LogFormat = "text"

	logBuffer := &app.SafeBuffer{}

	var testApp *app.App
	var panicErr any
	func() {
		defer func() {
			if r := recover(); r != nil {
				panicErr = r
			}
		}()
		testApp = app.NewApp(logBuffer, &cfg)
	}()

	if panicErr != nil {
		return &HarnessResult{
			LogOutput: logBuffer.String(),
			Err:       fmt.Errorf("application startup panicked | %v", panicErr),
		}
	}

	runErr := testApp.Run(ctx)
	out := logBuffer.String()
	if os.Getenv("ANIMGRAPH_TEST_LOGS") == "true" {
		t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), out)
	}

	return &HarnessResult{
		LogOutput: out,
		Updates:   parseUpdates(t, out),
		Err:       runErr,
		App:       testApp,
	}
}

// parseUpdates picks the JSON update lines out of text-format logs.
func parseUpdates(t *testing.T, out string) []sink.UpdateRecord {
	t.Helper()
	var records []sink.UpdateRecord
	sc := bufio.NewScanner(strings.NewReader(out))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if !strings.HasPrefix(line, `{"viewTag"`) {
			continue
		}
		var r sink.UpdateRecord
		require.NoError(t, json.Unmarshal([]byte(line), &r))
		records = append(records, r)
	}
	require.NoError(t, sc.Err())
	return records
}
