package app

import (
	"bytes"
	"os"
	"sync"
	"testing"

	"github.com/vk/animgraph/internal/config"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// SetupAppTest creates a new app instance for system testing. Logs are
// written as text at debug level into the returned buffer, together with any
// view updates.
func SetupAppTest(t *testing.T, appConfig *Config, loaders ...config.Loader) (*App, *SafeBuffer) {
	t.Helper()

	logBuffer := &SafeBuffer{}
	appConfig.LogLevel = "debug"
	appConfig.LogFormat = "text"
	testApp := NewApp(logBuffer, appConfig, loaders...)

	t.Cleanup(func() {
		if os.Getenv("ANIMGRAPH_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})

	return testApp, logBuffer
}
